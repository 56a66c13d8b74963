package esxi

import (
	"context"
	"fmt"
	"strings"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/types"
)

// ServiceSystem abstracts a host's HostServiceSystem.
// *object.HostServiceSystem implements it; tests inject a mock.
type ServiceSystem interface {
	Service(ctx context.Context) ([]types.HostService, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	Restart(ctx context.Context, id string) error
	UpdatePolicy(ctx context.Context, id string, policy string) error
}

// compile-time interface compliance check
var _ ServiceSystem = (*object.HostServiceSystem)(nil)

// newHostServiceSystem is the default ServiceSystemFactory.
func newHostServiceSystem(ctx context.Context, host *object.HostSystem) (ServiceSystem, error) {
	ss, err := host.ConfigManager().ServiceSystem(ctx)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

// Service is the runtime view of a host service.
type Service struct {
	State         string `json:"state" yaml:"state"` // running or stopped
	StartupPolicy string `json:"startup_policy" yaml:"startup_policy"`
}

// ServiceFilter narrows ListServices. Empty fields match everything.
type ServiceFilter struct {
	Name          string
	State         string // running or stopped
	StartupPolicy string // on, off or automatic
}

func (f ServiceFilter) match(key string, svc Service) bool {
	return (f.Name == "" || f.Name == key) &&
		(f.State == "" || f.State == svc.State) &&
		(f.StartupPolicy == "" || f.StartupPolicy == svc.StartupPolicy)
}

// ServiceAction is applied by ManageService. At least one field must be set.
type ServiceAction struct {
	State         string // start, stop or restart
	StartupPolicy string // on, off or automatic
}

func (a ServiceAction) validate() error {
	if a.State == "" && a.StartupPolicy == "" {
		return invalidArgument("service action needs a state or a startup policy")
	}
	if a.State != "" && !configs.Defaults.Host.ValidServiceState(a.State) {
		return invalidArgument("service state %q (want one of %v)", a.State, configs.Defaults.Host.ServiceStates)
	}
	if a.StartupPolicy != "" && !configs.Defaults.Host.ValidServicePolicy(a.StartupPolicy) {
		return invalidArgument("startup policy %q (want one of %v)", a.StartupPolicy, configs.Defaults.Host.ServicePolicies)
	}
	return nil
}

// ListServices returns the services of every host in scope that match filter.
func (m *Manager) ListServices(ctx context.Context, scope Scope, filter ServiceFilter) (_ map[string]map[string]Service, err error) {
	defer m.track("list_services")(&err)

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]map[string]Service, len(hosts))
	for _, host := range hosts {
		name := hostName(host)
		ss, err := m.serviceSystem(ctx, host)
		if err != nil {
			return nil, apiError("list_services", name, err)
		}
		services, err := ss.Service(ctx)
		if err != nil {
			return nil, apiError("list_services", name, err)
		}

		ret[name] = map[string]Service{}
		for _, s := range services {
			svc := serviceOf(s)
			if filter.match(s.Key, svc) {
				ret[name][s.Key] = svc
			}
		}
	}
	return ret, nil
}

func serviceOf(s types.HostService) Service {
	state := "stopped"
	if s.Running {
		state = "running"
	}
	return Service{State: state, StartupPolicy: s.Policy}
}

// ManageService starts, stops or restarts service and/or updates its startup policy on every
// host in scope. The result describes what was applied per host.
func (m *Manager) ManageService(ctx context.Context, scope Scope, service string, action ServiceAction) (_ map[string]string, err error) {
	defer m.track("manage_service")(&err)

	if service == "" {
		return nil, invalidArgument("service name is required")
	}
	if err := action.validate(); err != nil {
		return nil, err
	}

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]string, len(hosts))
	for _, host := range hosts {
		name := hostName(host)
		ss, err := m.serviceSystem(ctx, host)
		if err != nil {
			return nil, apiError("manage_service", name, err)
		}
		applied, err := applyServiceAction(ctx, ss, service, action)
		if err != nil {
			return nil, apiError("manage_service", name, err)
		}
		m.logger.Info("Service updated", "host", name, "operation", "manage_service", "service", service, "applied", applied)
		ret[name] = applied
	}
	return ret, nil
}

func applyServiceAction(ctx context.Context, ss ServiceSystem, service string, action ServiceAction) (string, error) {
	var done []string
	switch action.State {
	case "start":
		if err := ss.Start(ctx, service); err != nil {
			return "", err
		}
	case "stop":
		if err := ss.Stop(ctx, service); err != nil {
			return "", err
		}
	case "restart":
		if err := ss.Restart(ctx, service); err != nil {
			return "", err
		}
	}
	if action.State != "" {
		done = append(done, fmt.Sprintf("%s %s", action.State, service))
	}
	if action.StartupPolicy != "" {
		if err := ss.UpdatePolicy(ctx, service, action.StartupPolicy); err != nil {
			return "", err
		}
		done = append(done, fmt.Sprintf("set %s startup policy to %s", service, action.StartupPolicy))
	}
	return strings.Join(done, "; "), nil
}
