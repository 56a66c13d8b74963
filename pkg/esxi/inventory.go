package esxi

import (
	"context"

	"github.com/Bibi40k/vmware-esxi-manager/pkg/vcenter"
)

// ListClusters returns the compute clusters of datacenter with their host counts.
func (m *Manager) ListClusters(ctx context.Context, datacenter string) (_ []vcenter.ClusterInfo, err error) {
	defer m.track("list_clusters")(&err)

	if datacenter == "" {
		return nil, invalidArgument("datacenter is required")
	}
	clusters, err := m.client.ListClusters(ctx, datacenter)
	if err != nil {
		return nil, notFound(err)
	}
	if clusters == nil {
		clusters = []vcenter.ClusterInfo{}
	}
	return clusters, nil
}

// ListDatastores returns capacity and type of every datastore in datacenter.
func (m *Manager) ListDatastores(ctx context.Context, datacenter string) (_ []vcenter.DatastoreInfo, err error) {
	defer m.track("list_datastores")(&err)

	if datacenter == "" {
		return nil, invalidArgument("datacenter is required")
	}
	datastores, err := m.client.ListDatastores(ctx, datacenter)
	if err != nil {
		return nil, notFound(err)
	}
	if datastores == nil {
		datastores = []vcenter.DatastoreInfo{}
	}
	return datastores, nil
}
