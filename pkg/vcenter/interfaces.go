package vcenter

import (
	"context"

	"github.com/vmware/govmomi/object"
)

// ClientInterface abstracts vCenter inventory operations.
// The real implementation uses govmomi; tests inject a mock.
type ClientInterface interface {
	FindDatacenter(ctx context.Context, name string) (*object.Datacenter, error)
	FindCluster(ctx context.Context, datacenter, name string) (*object.ClusterComputeResource, error)
	FindClusterByName(ctx context.Context, name string) (*object.ClusterComputeResource, error)
	FindHost(ctx context.Context, datacenter, name string) (*object.HostSystem, error)
	FindHostByName(ctx context.Context, name string) (*object.HostSystem, error)
	ListHosts(ctx context.Context, datacenter, cluster string) ([]*object.HostSystem, error)
	HostCluster(ctx context.Context, host *object.HostSystem) (string, error)
	ListClusters(ctx context.Context, datacenter string) ([]ClusterInfo, error)
	ListDatastores(ctx context.Context, datacenter string) ([]DatastoreInfo, error)
	Disconnect() error
}

// compile-time interface compliance check
var _ ClientInterface = (*Client)(nil)
