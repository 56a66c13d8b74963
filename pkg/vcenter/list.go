package vcenter

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// DatastoreInfo holds information about a vCenter datastore.
type DatastoreInfo struct {
	Name        string  `json:"name" yaml:"name"`
	CapacityGB  float64 `json:"capacity_gb" yaml:"capacity_gb"`
	FreeSpaceGB float64 `json:"free_space_gb" yaml:"free_space_gb"`
	Accessible  bool    `json:"accessible" yaml:"accessible"`
	Type        string  `json:"type" yaml:"type"` // VMFS, NFS, vsan, ...
}

// ClusterInfo holds information about a compute cluster.
type ClusterInfo struct {
	Name     string `json:"name" yaml:"name"`
	NumHosts int    `json:"num_hosts" yaml:"num_hosts"`
}

// ListHosts returns the ESXi hosts selected by datacenter and cluster.
//
//   - datacenter and cluster set: hosts of that cluster
//   - datacenter only: every host in the datacenter, standalone or clustered
//   - neither: every host in the inventory
func (c *Client) ListHosts(ctx context.Context, datacenter, cluster string) ([]*object.HostSystem, error) {
	if cluster != "" {
		if datacenter == "" {
			return nil, fmt.Errorf("cluster %q given without a datacenter", cluster)
		}
		cr, err := c.FindCluster(ctx, datacenter, cluster)
		if err != nil {
			return nil, err
		}
		return cr.Hosts(ctx)
	}

	if datacenter != "" {
		dc, err := c.FindDatacenter(ctx, datacenter)
		if err != nil {
			return nil, err
		}
		return c.hostsUnder(ctx, dc.Reference(), dc.InventoryPath)
	}

	return c.hostsUnder(ctx, c.conn.ServiceContent.RootFolder, "")
}

// hostsUnder walks the inventory below root with a container view and returns hosts sorted by name.
func (c *Client) hostsUnder(ctx context.Context, root types.ManagedObjectReference, rootPath string) ([]*object.HostSystem, error) {
	m := view.NewManager(c.conn.Client)
	v, err := m.CreateContainerView(ctx, root, []string{"HostSystem"}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create host view: %w", err)
	}
	defer func() {
		_ = v.Destroy(ctx)
	}()

	var hosts []mo.HostSystem
	if err := v.Retrieve(ctx, []string{"HostSystem"}, []string{"name"}, &hosts); err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Name < hosts[j].Name })

	result := make([]*object.HostSystem, 0, len(hosts))
	for _, h := range hosts {
		host := object.NewHostSystem(c.conn.Client, h.Reference())
		host.InventoryPath = path.Join("/", rootPath, "host", h.Name)
		result = append(result, host)
	}
	return result, nil
}

// HostCluster returns the name of the cluster owning host, or "" for a standalone host.
func (c *Client) HostCluster(ctx context.Context, host *object.HostSystem) (string, error) {
	var h mo.HostSystem
	if err := host.Properties(ctx, host.Reference(), []string{"parent"}, &h); err != nil {
		return "", fmt.Errorf("failed to read parent of host %s: %w", host.Reference().Value, err)
	}
	if h.Parent == nil || h.Parent.Type != "ClusterComputeResource" {
		return "", nil
	}

	var cr mo.ClusterComputeResource
	if err := host.Properties(ctx, *h.Parent, []string{"name"}, &cr); err != nil {
		return "", fmt.Errorf("failed to read cluster name: %w", err)
	}
	return cr.Name, nil
}

// ListClusters returns all compute clusters in a datacenter.
func (c *Client) ListClusters(ctx context.Context, datacenter string) ([]ClusterInfo, error) {
	dc, err := c.FindDatacenter(ctx, datacenter)
	if err != nil {
		return nil, err
	}
	c.finder.SetDatacenter(dc)

	clusters, err := c.finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		if _, ok := err.(*find.NotFoundError); ok {
			return nil, nil
		}
		return nil, err
	}

	var result []ClusterInfo
	for _, cr := range clusters {
		hosts, err := cr.Hosts(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list hosts of cluster %q: %w", cr.Name(), err)
		}
		result = append(result, ClusterInfo{Name: cr.Name(), NumHosts: len(hosts)})
	}
	return result, nil
}

// ListDatastores returns all datastores in a datacenter.
func (c *Client) ListDatastores(ctx context.Context, datacenter string) ([]DatastoreInfo, error) {
	dc, err := c.FindDatacenter(ctx, datacenter)
	if err != nil {
		return nil, err
	}
	c.finder.SetDatacenter(dc)

	dsList, err := c.finder.DatastoreList(ctx, "*")
	if err != nil {
		return nil, err
	}

	var result []DatastoreInfo
	for _, ds := range dsList {
		var moDS mo.Datastore
		if err := ds.Properties(ctx, ds.Reference(), []string{"summary"}, &moDS); err != nil {
			continue
		}
		s := moDS.Summary
		result = append(result, DatastoreInfo{
			Name:        s.Name,
			CapacityGB:  float64(s.Capacity) / (1024 * 1024 * 1024),
			FreeSpaceGB: float64(s.FreeSpace) / (1024 * 1024 * 1024),
			Accessible:  s.Accessible,
			Type:        s.Type,
		})
	}
	return result, nil
}

// FindClusterByName locates a cluster by name across every datacenter.
func (c *Client) FindClusterByName(ctx context.Context, name string) (*object.ClusterComputeResource, error) {
	m := view.NewManager(c.conn.Client)
	v, err := m.CreateContainerView(ctx, c.conn.ServiceContent.RootFolder, []string{"ClusterComputeResource"}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster view: %w", err)
	}
	defer func() {
		_ = v.Destroy(ctx)
	}()

	var clusters []mo.ClusterComputeResource
	if err := v.Retrieve(ctx, []string{"ClusterComputeResource"}, []string{"name"}, &clusters); err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	for _, cr := range clusters {
		if cr.Name != name {
			continue
		}
		cluster := object.NewClusterComputeResource(c.conn.Client, cr.Reference())
		cluster.InventoryPath = name
		return cluster, nil
	}
	return nil, fmt.Errorf("cluster %q not found", name)
}
