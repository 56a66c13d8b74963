package esxi_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vmware-esxi-manager/pkg/esxi"
	esximocks "github.com/Bibi40k/vmware-esxi-manager/pkg/esxi/mocks"
	"github.com/Bibi40k/vmware-esxi-manager/pkg/vcenter/mocks"
)

// fakeHost returns a host object that is never sent to vCenter.
func fakeHost(name string) *object.HostSystem {
	h := object.NewHostSystem(nil, types.ManagedObjectReference{Type: "HostSystem", Value: "host-" + name})
	h.InventoryPath = "/DC0/host/Cluster/" + name
	return h
}

func staticHosts(hosts ...*object.HostSystem) esxi.HostLister {
	return func(context.Context, esxi.Scope) ([]*object.HostSystem, error) {
		return hosts, nil
	}
}

func imageConfigs(byHost map[string]*esximocks.ImageConfig) esxi.ImageConfigFactory {
	return func(_ context.Context, host *object.HostSystem) (esxi.ImageConfig, error) {
		return byHost[host.Name()], nil
	}
}

func TestListPkgs(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ic := new(esximocks.ImageConfig)
	ic.On("FetchSoftwarePackages", mock.Anything).Return([]types.SoftwarePackage{
		{
			Name:                    "esx-base",
			Version:                 "8.0.2-0.0.22380479",
			Vendor:                  "VMware",
			Summary:                 "ESXi base",
			Description:             "The base ESXi package",
			AcceptanceLevel:         "vmware_certified",
			MaintenanceModeRequired: types.NewBool(true),
			CreationDate:            &created,
		},
		{Name: "vmware-fdm", Version: "8.0.2", Vendor: "VMware", AcceptanceLevel: "vmware_certified"},
	}, nil)

	m := esxi.NewManager(nil,
		esxi.WithHostLister(staticHosts(fakeHost("esx1"))),
		esxi.WithImageConfig(imageConfigs(map[string]*esximocks.ImageConfig{"esx1": ic})),
	)

	pkgs, err := m.ListPkgs(context.Background(), esxi.Scope{})
	require.NoError(t, err)
	require.Contains(t, pkgs, "esx1")
	require.Len(t, pkgs["esx1"], 2)

	base := pkgs["esx1"]["esx-base"]
	assert.Equal(t, "8.0.2-0.0.22380479", base.Version)
	assert.Equal(t, "VMware", base.Vendor)
	assert.Equal(t, "ESXi base", base.Summary)
	assert.Equal(t, "The base ESXi package", base.Description)
	assert.Equal(t, "vmware_certified", base.AcceptanceLevel)
	assert.True(t, base.MaintenanceModeRequired)
	require.NotNil(t, base.CreationDate)
	assert.True(t, created.Equal(*base.CreationDate))

	fdm := pkgs["esx1"]["vmware-fdm"]
	assert.False(t, fdm.MaintenanceModeRequired)
	assert.Nil(t, fdm.CreationDate)

	ic.AssertExpectations(t)
}

func TestListPkgs_APIFault(t *testing.T) {
	ic := new(esximocks.ImageConfig)
	ic.On("FetchSoftwarePackages", mock.Anything).Return(nil, errors.New("ServerFaultCode: A general system error occurred"))

	m := esxi.NewManager(nil,
		esxi.WithHostLister(staticHosts(fakeHost("esx1"))),
		esxi.WithImageConfig(imageConfigs(map[string]*esximocks.ImageConfig{"esx1": ic})),
	)

	_, err := m.ListPkgs(context.Background(), esxi.Scope{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, esxi.ErrAPI))

	var apiErr *esxi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "list_pkgs", apiErr.Op)
	assert.Equal(t, "esx1", apiErr.Host)
	assert.Contains(t, err.Error(), "general system error")
}

func TestListPkgs_NoHosts(t *testing.T) {
	m := esxi.NewManager(nil, esxi.WithHostLister(staticHosts()))

	pkgs, err := m.ListPkgs(context.Background(), esxi.Scope{Host: "no_host"})
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestAcceptanceLevel(t *testing.T) {
	hosts := []*object.HostSystem{fakeHost("esx1"), fakeHost("esx2")}
	byHost := map[string]*esximocks.ImageConfig{}
	for _, h := range hosts {
		ic := new(esximocks.ImageConfig)
		ic.On("UpdateAcceptanceLevel", mock.Anything, "community").Return(nil).Once()
		ic.On("AcceptanceLevel", mock.Anything).Return("community", nil)
		byHost[h.Name()] = ic
	}

	m := esxi.NewManager(nil,
		esxi.WithHostLister(staticHosts(hosts...)),
		esxi.WithImageConfig(imageConfigs(byHost)),
	)
	ctx := context.Background()

	ret, err := m.SetAcceptanceLevel(ctx, esxi.Scope{}, "community")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"esx1": "community", "esx2": "community"}, ret)

	ret, err = m.GetAcceptanceLevel(ctx, esxi.Scope{})
	require.NoError(t, err)
	for h, level := range ret {
		assert.Equal(t, "community", level, "host %s", h)
	}

	for _, ic := range byHost {
		ic.AssertExpectations(t)
	}
}

func TestSetAcceptanceLevel_Invalid(t *testing.T) {
	called := false
	m := esxi.NewManager(nil, esxi.WithHostLister(func(context.Context, esxi.Scope) ([]*object.HostSystem, error) {
		called = true
		return nil, nil
	}))

	_, err := m.SetAcceptanceLevel(context.Background(), esxi.Scope{}, "unsigned")
	assert.ErrorIs(t, err, esxi.ErrInvalidArgument)
	assert.False(t, called)
}

func TestSetAcceptanceLevel_UpdateFault(t *testing.T) {
	ic := new(esximocks.ImageConfig)
	ic.On("UpdateAcceptanceLevel", mock.Anything, "partner").Return(errors.New("HostConfigFault"))

	m := esxi.NewManager(nil,
		esxi.WithHostLister(staticHosts(fakeHost("esx1"))),
		esxi.WithImageConfig(imageConfigs(map[string]*esximocks.ImageConfig{"esx1": ic})),
	)

	_, err := m.SetAcceptanceLevel(context.Background(), esxi.Scope{}, "partner")
	assert.ErrorIs(t, err, esxi.ErrAPI)
	ic.AssertNotCalled(t, "AcceptanceLevel", mock.Anything)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := esxi.NewMetrics(reg)

	ok := new(esximocks.ImageConfig)
	ok.On("AcceptanceLevel", mock.Anything).Return("partner", nil)
	m := esxi.NewManager(nil,
		esxi.WithMetrics(metrics),
		esxi.WithHostLister(staticHosts(fakeHost("esx1"))),
		esxi.WithImageConfig(imageConfigs(map[string]*esximocks.ImageConfig{"esx1": ok})),
	)
	ctx := context.Background()

	_, err := m.GetAcceptanceLevel(ctx, esxi.Scope{})
	require.NoError(t, err)
	_, err = m.SetAcceptanceLevel(ctx, esxi.Scope{}, "bogus")
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "esxi_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	results := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "esxi_operations_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			results[labels["operation"]+"/"+labels["result"]] = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"get_acceptance_level/success": 1,
		"set_acceptance_level/error":   1,
	}, results)
}

func TestNilMetrics(t *testing.T) {
	m := esxi.NewManager(nil, esxi.WithHostLister(staticHosts()))

	_, err := m.GetAcceptanceLevel(context.Background(), esxi.Scope{})
	assert.NoError(t, err)
}

func TestScopeResolution_Mock(t *testing.T) {
	ctx := context.Background()
	esx1 := fakeHost("esx1")

	t.Run("host in datacenter", func(t *testing.T) {
		client := new(mocks.ClientInterface)
		client.On("FindHost", mock.Anything, "DC0", "esx1").Return(esx1, nil)
		ic := new(esximocks.ImageConfig)
		ic.On("AcceptanceLevel", mock.Anything).Return("partner", nil)

		m := esxi.NewManager(client, esxi.WithImageConfig(imageConfigs(map[string]*esximocks.ImageConfig{"esx1": ic})))
		ret, err := m.GetAcceptanceLevel(ctx, esxi.Scope{Datacenter: "DC0", Host: "esx1"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"esx1": "partner"}, ret)
		client.AssertExpectations(t)
	})

	t.Run("host outside cluster", func(t *testing.T) {
		client := new(mocks.ClientInterface)
		client.On("FindHost", mock.Anything, "DC0", "esx1").Return(esx1, nil)
		client.On("HostCluster", mock.Anything, esx1).Return("Other", nil)

		m := esxi.NewManager(client)
		ret, err := m.GetAcceptanceLevel(ctx, esxi.Scope{Datacenter: "DC0", Cluster: "Cluster", Host: "esx1"})
		require.NoError(t, err)
		assert.Empty(t, ret)
	})

	t.Run("unknown host", func(t *testing.T) {
		client := new(mocks.ClientInterface)
		client.On("FindHostByName", mock.Anything, "no_host").Return(nil, nil)

		m := esxi.NewManager(client)
		ret, err := m.GetAcceptanceLevel(ctx, esxi.Scope{Host: "no_host"})
		require.NoError(t, err)
		assert.Empty(t, ret)
	})

	t.Run("missing cluster", func(t *testing.T) {
		client := new(mocks.ClientInterface)
		client.On("ListHosts", mock.Anything, "DC0", "missing").
			Return(nil, &find.NotFoundError{})

		m := esxi.NewManager(client)
		_, err := m.GetAcceptanceLevel(ctx, esxi.Scope{Datacenter: "DC0", Cluster: "missing"})
		assert.ErrorIs(t, err, esxi.ErrNotFound)
	})
}

// serviceSystem returns a ServiceSystem mock that keeps the state of services
// between calls the way a host does.
func serviceSystem(services ...types.HostService) *esximocks.ServiceSystem {
	state := map[string]*types.HostService{}
	for i := range services {
		state[services[i].Key] = &services[i]
	}

	ss := new(esximocks.ServiceSystem)
	ss.On("Service", mock.Anything).Return(func(context.Context) []types.HostService {
		return append([]types.HostService(nil), services...)
	}, nil)
	ss.On("Start", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		state[args.String(1)].Running = true
	}).Return(nil)
	ss.On("Stop", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		state[args.String(1)].Running = false
	}).Return(nil)
	ss.On("Restart", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		state[args.String(1)].Running = true
	}).Return(nil)
	ss.On("UpdatePolicy", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		state[args.String(1)].Policy = args.String(2)
	}).Return(nil)
	return ss
}

func serviceSystems(byHost map[string]*esximocks.ServiceSystem) esxi.ServiceSystemFactory {
	return func(_ context.Context, host *object.HostSystem) (esxi.ServiceSystem, error) {
		return byHost[host.Name()], nil
	}
}

func TestManageService(t *testing.T) {
	hosts := []*object.HostSystem{fakeHost("esx1"), fakeHost("esx2")}
	byHost := map[string]*esximocks.ServiceSystem{}
	for _, h := range hosts {
		byHost[h.Name()] = serviceSystem(
			types.HostService{Key: "TSM-SSH", Label: "SSH", Policy: "off"},
			types.HostService{Key: "ntpd", Label: "NTP Daemon", Policy: "on", Running: true},
		)
	}
	m := esxi.NewManager(nil,
		esxi.WithHostLister(staticHosts(hosts...)),
		esxi.WithServiceSystem(serviceSystems(byHost)),
	)
	ctx := context.Background()

	all, err := m.ListServices(ctx, esxi.Scope{}, esxi.ServiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, esxi.Service{State: "stopped", StartupPolicy: "off"}, all["esx1"]["TSM-SSH"])
	assert.Equal(t, esxi.Service{State: "running", StartupPolicy: "on"}, all["esx1"]["ntpd"])

	states := []struct {
		action string
		want   string
	}{
		{"start", "running"},
		{"stop", "stopped"},
		{"restart", "running"},
	}
	for _, st := range states {
		ret, err := m.ManageService(ctx, esxi.Scope{}, "TSM-SSH", esxi.ServiceAction{State: st.action})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"esx1": st.action + " TSM-SSH",
			"esx2": st.action + " TSM-SSH",
		}, ret)

		listed, err := m.ListServices(ctx, esxi.Scope{}, esxi.ServiceFilter{Name: "TSM-SSH"})
		require.NoError(t, err)
		for host, svcs := range listed {
			require.Len(t, svcs, 1, "host %s", host)
			assert.Equal(t, st.want, svcs["TSM-SSH"].State, "host %s after %s", host, st.action)
		}
	}

	for _, policy := range []string{"on", "off", "automatic"} {
		ret, err := m.ManageService(ctx, esxi.Scope{}, "TSM-SSH", esxi.ServiceAction{StartupPolicy: policy})
		require.NoError(t, err)
		for host, applied := range ret {
			assert.Equal(t, "set TSM-SSH startup policy to "+policy, applied, "host %s", host)
		}

		listed, err := m.ListServices(ctx, esxi.Scope{}, esxi.ServiceFilter{Name: "TSM-SSH"})
		require.NoError(t, err)
		for host, svcs := range listed {
			assert.Equal(t, policy, svcs["TSM-SSH"].StartupPolicy, "host %s", host)
		}
	}

	running, err := m.ListServices(ctx, esxi.Scope{}, esxi.ServiceFilter{State: "running", StartupPolicy: "automatic"})
	require.NoError(t, err)
	for host, svcs := range running {
		assert.Len(t, svcs, 1, "host %s", host)
		assert.Contains(t, svcs, "TSM-SSH", "host %s", host)
	}

	ret, err := m.ManageService(ctx, esxi.Scope{}, "ntpd", esxi.ServiceAction{State: "stop", StartupPolicy: "off"})
	require.NoError(t, err)
	assert.Equal(t, "stop ntpd; set ntpd startup policy to off", ret["esx1"])

	for _, ss := range byHost {
		ss.AssertNumberOfCalls(t, "Start", 1)
		ss.AssertNumberOfCalls(t, "Restart", 1)
		ss.AssertNumberOfCalls(t, "Stop", 2)
	}
}

func TestManageService_APIFault(t *testing.T) {
	ss := new(esximocks.ServiceSystem)
	ss.On("Start", mock.Anything, "TSM-SSH").Return(errors.New("HostConfigFault"))

	m := esxi.NewManager(nil,
		esxi.WithHostLister(staticHosts(fakeHost("esx1"))),
		esxi.WithServiceSystem(serviceSystems(map[string]*esximocks.ServiceSystem{"esx1": ss})),
	)

	_, err := m.ManageService(context.Background(), esxi.Scope{}, "TSM-SSH", esxi.ServiceAction{State: "start", StartupPolicy: "on"})
	require.ErrorIs(t, err, esxi.ErrAPI)

	var apiErr *esxi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "manage_service", apiErr.Op)
	assert.Equal(t, "esx1", apiErr.Host)
	ss.AssertNotCalled(t, "UpdatePolicy", mock.Anything, mock.Anything, mock.Anything)
}
