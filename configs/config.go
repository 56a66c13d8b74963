// Package configs provides library defaults loaded from an embedded YAML file.
// All hardcoded values live in defaults.yaml.
package configs

import (
	_ "embed"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults holds all library default values (loaded from defaults.yaml at startup).
var Defaults LibDefaults

func init() {
	if err := yaml.Unmarshal(defaultsYAML, &Defaults); err != nil {
		panic("vmware-esxi-manager: invalid defaults.yaml: " + err.Error())
	}
}

// LibDefaults holds all configurable library defaults.
type LibDefaults struct {
	VCenter  VCenterDefaults `yaml:"vcenter"`
	Scope    ScopeDefaults   `yaml:"scope"`
	Host     HostDefaults    `yaml:"host"`
	Timeouts TimeoutDefaults `yaml:"timeouts"`
	Output   OutputDefaults  `yaml:"output"`
}

// VCenterDefaults holds vCenter connection defaults.
type VCenterDefaults struct {
	Port int `yaml:"port"`
}

// ScopeDefaults names the inventory used when the CLI gets no placement flags.
type ScopeDefaults struct {
	Datacenter string `yaml:"datacenter"`
	Cluster    string `yaml:"cluster"`
}

// HostDefaults holds ESXi host management defaults and accepted values.
type HostDefaults struct {
	ThumbprintPort   int      `yaml:"thumbprint_port"`
	AcceptanceLevels []string `yaml:"acceptance_levels"`
	ServiceStates    []string `yaml:"service_states"`
	ServicePolicies  []string `yaml:"service_policies"`
}

// ValidAcceptanceLevel reports whether level is a known image acceptance level.
func (h HostDefaults) ValidAcceptanceLevel(level string) bool {
	return slices.Contains(h.AcceptanceLevels, level)
}

// ValidServiceState reports whether state is a supported service action.
func (h HostDefaults) ValidServiceState(state string) bool {
	return slices.Contains(h.ServiceStates, state)
}

// ValidServicePolicy reports whether policy is a supported startup policy.
func (h HostDefaults) ValidServicePolicy(policy string) bool {
	return slices.Contains(h.ServicePolicies, policy)
}

// TimeoutDefaults holds all timeout and retry values.
type TimeoutDefaults struct {
	TaskSeconds           int `yaml:"task_seconds"`
	ConnectionPollSeconds int `yaml:"connection_poll_seconds"`
	ConnectionRetries     int `yaml:"connection_retries"`
	ThumbprintDialSeconds int `yaml:"thumbprint_dial_seconds"`
}

// As time.Duration convenience methods.

func (t TimeoutDefaults) Task() time.Duration {
	return time.Duration(t.TaskSeconds) * time.Second
}
func (t TimeoutDefaults) ConnectionPoll() time.Duration {
	return time.Duration(t.ConnectionPollSeconds) * time.Second
}
func (t TimeoutDefaults) ThumbprintDial() time.Duration {
	return time.Duration(t.ThumbprintDialSeconds) * time.Second
}

// OutputDefaults holds CLI output defaults.
type OutputDefaults struct {
	Format       string `yaml:"format"`
	DebugLogPath string `yaml:"debug_log_path"`
}
