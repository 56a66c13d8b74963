package esxi

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
	"gopkg.in/yaml.v3"
)

// HostInfo is the summary returned by Get.
type HostInfo struct {
	CPUModel          string       `json:"cpu_model" yaml:"cpu_model"`
	NumCPUCores       int          `json:"num_cpu_cores" yaml:"num_cpu_cores"`
	NumCPUSockets     int          `json:"num_cpu_sockets" yaml:"num_cpu_sockets"`
	NumCPUThreads     int          `json:"num_cpu_threads" yaml:"num_cpu_threads"`
	MemoryMB          int64        `json:"memory_mb" yaml:"memory_mb"`
	Vendor            string       `json:"vendor" yaml:"vendor"`
	Model             string       `json:"model" yaml:"model"`
	Version           string       `json:"version" yaml:"version"`
	Build             string       `json:"build" yaml:"build"`
	ConnectionState   string       `json:"connection_state" yaml:"connection_state"`
	PowerState        string       `json:"power_state" yaml:"power_state"`
	InMaintenanceMode bool         `json:"in_maintenance_mode" yaml:"in_maintenance_mode"`
	Capabilities      Capabilities `json:"capabilities" yaml:"capabilities"`
	NICs              []NIC        `json:"nics" yaml:"nics"`
	Datastores        []string     `json:"datastores" yaml:"datastores"`
	VSAN              VSAN         `json:"vsan" yaml:"vsan"`
}

// NIC is a physical network adapter.
type NIC struct {
	Device  string `json:"device" yaml:"device"`
	MAC     string `json:"mac" yaml:"mac"`
	Driver  string `json:"driver" yaml:"driver"`
	SpeedMB int32  `json:"speed_mb" yaml:"speed_mb"` // 0 when the link is down
}

// VSAN is the vSAN membership and health of a host.
type VSAN struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	ClusterUUID string `json:"cluster_uuid" yaml:"cluster_uuid"`
	NodeUUID    string `json:"node_uuid" yaml:"node_uuid"`
	Health      string `json:"health" yaml:"health"` // vSAN host health state, "unknown" without vSAN
}

var hostInfoProperties = []string{
	"summary",
	"runtime",
	"capability",
	"datastore",
	"config.network.pnic",
	"config.vsanHostConfig",
}

// Get returns a summary of every host in scope. With a key, only the value at that
// colon-delimited path (e.g. "vsan:health") is returned per host, nil when absent.
func (m *Manager) Get(ctx context.Context, scope Scope, key string) (_ map[string]any, err error) {
	defer m.track("get")(&err)

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}
	props, err := hostProperties(ctx, hosts, hostInfoProperties...)
	if err != nil {
		return nil, apiError("get", "", err)
	}
	dsNames, err := datastoreNames(ctx, hosts, props)
	if err != nil {
		return nil, apiError("get", "", err)
	}

	byRef := make(map[types.ManagedObjectReference]*object.HostSystem, len(hosts))
	for _, host := range hosts {
		byRef[host.Reference()] = host
	}

	ret := make(map[string]any, len(props))
	for _, h := range props {
		status, err := m.vsanStatus(ctx, byRef[h.Self], h)
		if err != nil {
			return nil, apiError("get", h.Name, err)
		}
		info := hostInfoOf(h, dsNames, status)
		if key == "" {
			ret[h.Name] = info
			continue
		}
		v, err := lookupKey(info, key)
		if err != nil {
			return nil, err
		}
		ret[h.Name] = v
	}
	return ret, nil
}

func hostInfoOf(h mo.HostSystem, dsNames map[types.ManagedObjectReference]string, vsan *types.VsanHostClusterStatus) HostInfo {
	info := HostInfo{
		ConnectionState:   string(h.Runtime.ConnectionState),
		PowerState:        string(h.Runtime.PowerState),
		InMaintenanceMode: h.Runtime.InMaintenanceMode,
		Capabilities:      capabilitiesOf(h.Capability),
		NICs:              []NIC{},
		Datastores:        []string{},
		VSAN:              vsanOf(h, vsan),
	}
	if hw := h.Summary.Hardware; hw != nil {
		info.CPUModel = hw.CpuModel
		info.NumCPUCores = int(hw.NumCpuCores)
		info.NumCPUSockets = int(hw.NumCpuPkgs)
		info.NumCPUThreads = int(hw.NumCpuThreads)
		info.MemoryMB = hw.MemorySize / (1024 * 1024)
		info.Vendor = hw.Vendor
		info.Model = hw.Model
	}
	if p := h.Summary.Config.Product; p != nil {
		info.Version = p.Version
		info.Build = p.Build
	}
	if h.Config != nil && h.Config.Network != nil {
		for _, pnic := range h.Config.Network.Pnic {
			nic := NIC{Device: pnic.Device, MAC: pnic.Mac, Driver: pnic.Driver}
			if pnic.LinkSpeed != nil {
				nic.SpeedMB = pnic.LinkSpeed.SpeedMb
			}
			info.NICs = append(info.NICs, nic)
		}
	}
	for _, ref := range h.Datastore {
		if name, ok := dsNames[ref]; ok {
			info.Datastores = append(info.Datastores, name)
		}
	}
	return info
}

// datastoreNames resolves the names of every datastore mounted on props in one round trip.
func datastoreNames(ctx context.Context, hosts []*object.HostSystem, props []mo.HostSystem) (map[types.ManagedObjectReference]string, error) {
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
	names := make(map[types.ManagedObjectReference]string, len(refs))
	if len(refs) == 0 {
		return names, nil
	}

	var datastores []mo.Datastore
	pc := property.DefaultCollector(hosts[0].Client())
	if err := pc.Retrieve(ctx, refs, []string{"name"}, &datastores); err != nil {
		return nil, err
	}
	for _, ds := range datastores {
		names[ds.Self] = ds.Name
	}
	return names, nil
}

// lookupKey walks a colon-delimited path through the YAML form of info.
// List elements are addressed by index.
func lookupKey(info HostInfo, key string) (any, error) {
	raw, err := yaml.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode host info: %w", err)
	}
	var node any
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("failed to decode host info: %w", err)
	}

	for _, part := range strings.Split(key, ":") {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[part]
			if !ok {
				return nil, nil
			}
			node = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(n) {
				return nil, nil
			}
			node = n[i]
		default:
			return nil, nil
		}
	}
	return node, nil
}
