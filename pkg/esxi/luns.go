package esxi

import (
	"context"
	"sort"

	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// GetLunIDs returns the canonical (NAA) names of the disks backing the VMFS datastores
// mounted on any host, sorted and without duplicates.
func (m *Manager) GetLunIDs(ctx context.Context) (_ []string, err error) {
	defer m.track("get_lun_ids")(&err)

	hosts, err := m.listHosts(ctx, Scope{})
	if err != nil {
		return nil, err
	}
	props, err := hostProperties(ctx, hosts, "datastore")
	if err != nil {
		return nil, apiError("get_lun_ids", "", err)
	}

	seen := map[types.ManagedObjectReference]bool{}
	var refs []types.ManagedObjectReference
	for _, h := range props {
		for _, ds := range h.Datastore {
			if !seen[ds] {
				seen[ds] = true
				refs = append(refs, ds)
			}
		}
	}
	if len(refs) == 0 {
		return []string{}, nil
	}

	var datastores []mo.Datastore
	pc := property.DefaultCollector(hosts[0].Client())
	if err := pc.Retrieve(ctx, refs, []string{"info"}, &datastores); err != nil {
		return nil, apiError("get_lun_ids", "", err)
	}
	return vmfsDiskNames(datastores), nil
}

// vmfsDiskNames collects extent disk names of VMFS datastores.
func vmfsDiskNames(datastores []mo.Datastore) []string {
	names := map[string]bool{}
	for _, ds := range datastores {
		info, ok := ds.Info.(*types.VmfsDatastoreInfo)
		if !ok || info.Vmfs == nil {
			continue
		}
		for _, extent := range info.Vmfs.Extent {
			if extent.DiskName != "" {
				names[extent.DiskName] = true
			}
		}
	}

	ids := make([]string, 0, len(names))
	for name := range names {
		ids = append(ids, name)
	}
	sort.Strings(ids)
	return ids
}
