package esxi

import (
	"context"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
)

// GetAcceptanceLevel returns the image acceptance level of every host in scope.
func (m *Manager) GetAcceptanceLevel(ctx context.Context, scope Scope) (_ map[string]string, err error) {
	defer m.track("get_acceptance_level")(&err)

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]string, len(hosts))
	for _, host := range hosts {
		name := hostName(host)
		ic, err := m.imageConfig(ctx, host)
		if err != nil {
			return nil, apiError("get_acceptance_level", name, err)
		}
		level, err := ic.AcceptanceLevel(ctx)
		if err != nil {
			return nil, apiError("get_acceptance_level", name, err)
		}
		ret[name] = level
	}
	return ret, nil
}

// SetAcceptanceLevel sets the image acceptance level of every host in scope and
// returns the level each host reports afterwards.
func (m *Manager) SetAcceptanceLevel(ctx context.Context, scope Scope, level string) (_ map[string]string, err error) {
	defer m.track("set_acceptance_level")(&err)

	if !configs.Defaults.Host.ValidAcceptanceLevel(level) {
		return nil, invalidArgument("acceptance level %q (want one of %v)", level, configs.Defaults.Host.AcceptanceLevels)
	}

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]string, len(hosts))
	for _, host := range hosts {
		name := hostName(host)
		ic, err := m.imageConfig(ctx, host)
		if err != nil {
			return nil, apiError("set_acceptance_level", name, err)
		}
		if err := ic.UpdateAcceptanceLevel(ctx, level); err != nil {
			return nil, apiError("set_acceptance_level", name, err)
		}
		current, err := ic.AcceptanceLevel(ctx)
		if err != nil {
			return nil, apiError("set_acceptance_level", name, err)
		}
		m.logger.Info("Acceptance level updated", "host", name, "level", current)
		ret[name] = current
	}
	return ret, nil
}
