package esxi

import (
	"context"
	"sort"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// hostProperties retrieves props (and "name") for hosts in one property collector round trip.
// Results are sorted by host name.
func hostProperties(ctx context.Context, hosts []*object.HostSystem, props ...string) ([]mo.HostSystem, error) {
	if len(hosts) == 0 {
		return nil, nil
	}

	refs := make([]types.ManagedObjectReference, 0, len(hosts))
	for _, h := range hosts {
		refs = append(refs, h.Reference())
	}

	var out []mo.HostSystem
	pc := property.DefaultCollector(hosts[0].Client())
	if err := pc.Retrieve(ctx, refs, append([]string{"name"}, props...), &out); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// hostName returns the inventory name of host, falling back to its managed object id.
func hostName(host *object.HostSystem) string {
	if name := host.Name(); name != "" {
		return name
	}
	return host.Reference().Value
}

// boolValue reads bool and *bool fields alike.
func boolValue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case *bool:
		return b != nil && *b
	}
	return false
}
