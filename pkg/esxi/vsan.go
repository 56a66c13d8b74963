package esxi

import (
	"context"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/methods"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// VsanSystem abstracts a host's HostVsanSystem.
type VsanSystem interface {
	HostStatus(ctx context.Context) (types.VsanHostClusterStatus, error)
}

type hostVsanSystem struct {
	c   *vim25.Client
	ref types.ManagedObjectReference
}

// compile-time interface compliance check
var _ VsanSystem = (*hostVsanSystem)(nil)

// newHostVsanSystem is the default VsanSystemFactory. It returns nil when the host
// has no vSAN system.
func newHostVsanSystem(ctx context.Context, host *object.HostSystem) (VsanSystem, error) {
	var h mo.HostSystem
	if err := host.Properties(ctx, host.Reference(), []string{"configManager.vsanSystem"}, &h); err != nil {
		return nil, err
	}
	if h.ConfigManager.VsanSystem == nil {
		return nil, nil
	}
	return &hostVsanSystem{c: host.Client(), ref: *h.ConfigManager.VsanSystem}, nil
}

func (v *hostVsanSystem) HostStatus(ctx context.Context) (types.VsanHostClusterStatus, error) {
	res, err := methods.QueryHostStatus(ctx, v.c, &types.QueryHostStatus{This: v.ref})
	if err != nil {
		return types.VsanHostClusterStatus{}, err
	}
	return res.Returnval, nil
}

// vsanEnabled reports whether the host config has vSAN turned on.
func vsanEnabled(h mo.HostSystem) bool {
	return h.Config != nil && h.Config.VsanHostConfig != nil && boolValue(h.Config.VsanHostConfig.Enabled)
}

// vsanStatus queries the cluster status of a vSAN enabled host. It returns nil for
// hosts without vSAN.
func (m *Manager) vsanStatus(ctx context.Context, host *object.HostSystem, h mo.HostSystem) (*types.VsanHostClusterStatus, error) {
	if !vsanEnabled(h) {
		return nil, nil
	}
	vs, err := m.vsanSystem(ctx, host)
	if err != nil || vs == nil {
		return nil, err
	}
	status, err := vs.HostStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// vsanOf combines the vSAN host config with the queried cluster status.
// Health is "unknown" unless vSAN is enabled and the host reported one.
func vsanOf(h mo.HostSystem, status *types.VsanHostClusterStatus) VSAN {
	v := VSAN{Health: "unknown"}
	if h.Config != nil && h.Config.VsanHostConfig != nil {
		cfg := h.Config.VsanHostConfig
		v.Enabled = boolValue(cfg.Enabled)
		if cfg.ClusterInfo != nil {
			v.ClusterUUID = cfg.ClusterInfo.Uuid
			v.NodeUUID = cfg.ClusterInfo.NodeUuid
		}
	}
	if !v.Enabled || status == nil {
		return v
	}
	if status.Health != "" {
		v.Health = status.Health
	}
	if status.Uuid != "" {
		v.ClusterUUID = status.Uuid
	}
	if status.NodeUuid != "" {
		v.NodeUUID = status.NodeUuid
	}
	return v
}
