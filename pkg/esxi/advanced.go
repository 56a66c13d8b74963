package esxi

import (
	"context"
	"reflect"
	"sort"
	"strings"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// GetAdvancedConfig returns advanced option values of every host in scope.
// A name ending in "." selects a subtree; an empty name returns all options.
func (m *Manager) GetAdvancedConfig(ctx context.Context, scope Scope, name string) (_ map[string]map[string]any, err error) {
	defer m.track("get_advanced_config")(&err)

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]map[string]any, len(hosts))
	for _, host := range hosts {
		hn := hostName(host)
		om, err := host.ConfigManager().OptionManager(ctx)
		if err != nil {
			return nil, apiError("get_advanced_config", hn, err)
		}
		opts, err := queryOptions(ctx, om, name)
		if err != nil {
			return nil, apiError("get_advanced_config", hn, err)
		}
		ret[hn] = optionValues(opts)
	}
	return ret, nil
}

// SetAdvancedConfig sets one advanced option on every host in scope and returns its new value.
func (m *Manager) SetAdvancedConfig(ctx context.Context, scope Scope, name string, value any) (_ map[string]map[string]any, err error) {
	defer m.track("set_advanced_config")(&err)

	if name == "" {
		return nil, invalidArgument("advanced option name is required")
	}
	return m.setAdvancedConfigs(ctx, scope, "set_advanced_config", map[string]any{name: value})
}

// SetAdvancedConfigs sets several advanced options on every host in scope and returns the
// values read back from each host. Go int and uint values are sent as vSphere long.
func (m *Manager) SetAdvancedConfigs(ctx context.Context, scope Scope, values map[string]any) (_ map[string]map[string]any, err error) {
	defer m.track("set_advanced_configs")(&err)
	return m.setAdvancedConfigs(ctx, scope, "set_advanced_configs", values)
}

func (m *Manager) setAdvancedConfigs(ctx context.Context, scope Scope, op string, values map[string]any) (map[string]map[string]any, error) {
	if len(values) == 0 {
		return nil, invalidArgument("no advanced options to set")
	}
	changes, err := optionChanges(values)
	if err != nil {
		return nil, err
	}

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]map[string]any, len(hosts))
	for _, host := range hosts {
		hn := hostName(host)
		om, err := host.ConfigManager().OptionManager(ctx)
		if err != nil {
			return nil, apiError(op, hn, err)
		}
		if err := om.Update(ctx, changes); err != nil {
			return nil, apiError(op, hn, err)
		}

		ret[hn] = make(map[string]any, len(values))
		for _, change := range changes {
			key := change.GetOptionValue().Key
			opts, err := om.Query(ctx, key)
			if err != nil {
				return nil, apiError(op, hn, err)
			}
			if v, ok := optionValues(opts)[key]; ok {
				ret[hn][key] = v
			}
		}
		m.logger.Info("Advanced options updated", "host", hn, "operation", op, "count", len(changes))
	}
	return ret, nil
}

// queryOptions reads the "setting" property when name is empty, since QueryOptions
// needs a key or subtree.
func queryOptions(ctx context.Context, om *object.OptionManager, name string) ([]types.BaseOptionValue, error) {
	if name != "" {
		return om.Query(ctx, name)
	}
	var props mo.OptionManager
	if err := om.Properties(ctx, om.Reference(), []string{"setting"}, &props); err != nil {
		return nil, err
	}
	return props.Setting, nil
}

func optionValues(opts []types.BaseOptionValue) map[string]any {
	out := make(map[string]any, len(opts))
	for _, o := range opts {
		ov := o.GetOptionValue()
		if ov.Value == nil {
			out[ov.Key] = nil
			continue
		}
		out[ov.Key] = plainValue(reflect.ValueOf(ov.Value))
	}
	return out
}

// optionChanges builds OptionValues in key order.
func optionChanges(values map[string]any) ([]types.BaseOptionValue, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			return nil, invalidArgument("advanced option name is required")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changes := make([]types.BaseOptionValue, 0, len(keys))
	for _, k := range keys {
		changes = append(changes, &types.OptionValue{Key: k, Value: optionValue(values[k])})
	}
	return changes, nil
}

// optionValue maps platform sized integers onto the vSphere wire types.
func optionValue(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case uint:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case int8:
		return int32(n)
	case int16:
		return int32(n)
	case uint8:
		return int32(n)
	case uint16:
		return int32(n)
	}
	return v
}
