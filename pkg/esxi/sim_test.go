package esxi

import (
	"context"
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/simulator"

	"github.com/Bibi40k/vmware-esxi-manager/pkg/vcenter"
)

// Simulator inventory: DC0 with clusters DC0_C0 and DC0_C1 (two hosts each)
// and the standalone host DC0_H0.
const (
	simDatacenter = "DC0"
	simCluster    = "DC0_C0"
	simCluster2   = "DC0_C1"
	simStandalone = "DC0_H0"
)

func newSimManager(t *testing.T, opts ...Option) (*Manager, *vcenter.Client, context.Context) {
	t.Helper()

	m, client, _, ctx := newSimModelManager(t, opts...)
	return m, client, ctx
}

// newSimModelManager also returns the model so tests can change simulator objects.
func newSimModelManager(t *testing.T, opts ...Option) (*Manager, *vcenter.Client, *simulator.Model, context.Context) {
	t.Helper()

	model := simulator.VPX()
	model.Datacenter = 1
	model.Cluster = 2
	model.ClusterHost = 2
	model.Host = 1
	model.Machine = 0

	require.NoError(t, model.Create())
	model.Service.TLS = new(tls.Config)
	s := model.Service.NewServer()

	ctx := context.Background()
	password, _ := simulator.DefaultLogin.Password()
	client, err := vcenter.NewClient(ctx, &vcenter.Config{
		Host:     s.URL.String(),
		Username: simulator.DefaultLogin.Username(),
		Password: password,
		Insecure: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Disconnect()
		s.Close()
		model.Remove()
	})

	opts = append([]Option{WithConnectionPolling(10*time.Millisecond, 20)}, opts...)
	return NewManager(client, opts...), client, model, ctx
}

func clusterScope() Scope {
	return Scope{Datacenter: simDatacenter, Cluster: simCluster}
}

func simHosts(t *testing.T, ctx context.Context, client *vcenter.Client, scope Scope) []*object.HostSystem {
	t.Helper()

	hosts, err := client.ListHosts(ctx, scope.Datacenter, scope.Cluster)
	require.NoError(t, err)
	require.NotEmpty(t, hosts)
	return hosts
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
