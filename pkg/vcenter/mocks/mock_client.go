// Package mocks provides testify-based mock implementations for testing
// without a real vCenter connection.
package mocks

import (
	"context"

	"github.com/Bibi40k/vmware-esxi-manager/pkg/vcenter"
	"github.com/stretchr/testify/mock"
	"github.com/vmware/govmomi/object"
)

// ClientInterface is a mock for vcenter.ClientInterface.
type ClientInterface struct {
	mock.Mock
}

var _ vcenter.ClientInterface = (*ClientInterface)(nil)

func (m *ClientInterface) FindDatacenter(ctx context.Context, name string) (*object.Datacenter, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.Datacenter), args.Error(1)
}

func (m *ClientInterface) FindCluster(ctx context.Context, datacenter, name string) (*object.ClusterComputeResource, error) {
	args := m.Called(ctx, datacenter, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.ClusterComputeResource), args.Error(1)
}

func (m *ClientInterface) FindClusterByName(ctx context.Context, name string) (*object.ClusterComputeResource, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.ClusterComputeResource), args.Error(1)
}

func (m *ClientInterface) FindHost(ctx context.Context, datacenter, name string) (*object.HostSystem, error) {
	args := m.Called(ctx, datacenter, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.HostSystem), args.Error(1)
}

func (m *ClientInterface) FindHostByName(ctx context.Context, name string) (*object.HostSystem, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*object.HostSystem), args.Error(1)
}

func (m *ClientInterface) ListHosts(ctx context.Context, datacenter, cluster string) ([]*object.HostSystem, error) {
	args := m.Called(ctx, datacenter, cluster)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*object.HostSystem), args.Error(1)
}

func (m *ClientInterface) HostCluster(ctx context.Context, host *object.HostSystem) (string, error) {
	args := m.Called(ctx, host)
	return args.String(0), args.Error(1)
}

func (m *ClientInterface) ListClusters(ctx context.Context, datacenter string) ([]vcenter.ClusterInfo, error) {
	args := m.Called(ctx, datacenter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vcenter.ClusterInfo), args.Error(1)
}

func (m *ClientInterface) ListDatastores(ctx context.Context, datacenter string) ([]vcenter.DatastoreInfo, error) {
	args := m.Called(ctx, datacenter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vcenter.DatastoreInfo), args.Error(1)
}

func (m *ClientInterface) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}
