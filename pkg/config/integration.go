// Package config holds file-backed contracts shared by the CLI and the live test suite.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// IntegrationConfig describes the expected state of a live vCenter environment.
// Live tests compare what the library reads back against these values.
type IntegrationConfig struct {
	// Canonical names of the disks backing the environment's VMFS datastores.
	DatastoreDiskNames []string `json:"esxi_datastore_disk_names" yaml:"esxi_datastore_disk_names"`
	// Host name -> camelCase capability name -> expected value.
	Capabilities map[string]map[string]any `json:"esxi_capabilities" yaml:"esxi_capabilities"`
	// Optional spare host used by the add/move/remove lifecycle tests.
	ManageTestInstance *ManageTestInstance `json:"esxi_manage_test_instance,omitempty" yaml:"esxi_manage_test_instance,omitempty"`
}

// ManageTestInstance is a host that lifecycle tests may add, move and remove.
type ManageTestInstance struct {
	Name       string `json:"name" yaml:"name"`
	User       string `json:"user" yaml:"user"`
	Password   string `json:"password" yaml:"password"`
	Cluster    string `json:"cluster" yaml:"cluster"`
	Datacenter string `json:"datacenter" yaml:"datacenter"`
	Move       string `json:"move" yaml:"move"`
}

// Validate checks the fields a lifecycle test cannot run without.
func (m ManageTestInstance) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("esxi_manage_test_instance.name is required")
	}
	if strings.TrimSpace(m.User) == "" {
		return fmt.Errorf("esxi_manage_test_instance.user is required")
	}
	if strings.TrimSpace(m.Cluster) == "" || strings.TrimSpace(m.Datacenter) == "" {
		return fmt.Errorf("esxi_manage_test_instance needs cluster and datacenter")
	}
	if m.Move != "" && m.Move == m.Cluster {
		return fmt.Errorf("esxi_manage_test_instance.move must differ from cluster %q", m.Cluster)
	}
	return nil
}

// HasManageTestInstance reports whether lifecycle tests are configured.
func (c IntegrationConfig) HasManageTestInstance() bool {
	return c.ManageTestInstance != nil && c.ManageTestInstance.Name != ""
}

// LoadIntegrationConfig reads IntegrationConfig from YAML or JSON.
func LoadIntegrationConfig(path string) (IntegrationConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return IntegrationConfig{}, fmt.Errorf("read integration config %s: %w", path, err)
	}

	var out IntegrationConfig
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(content, &out); err != nil {
			return IntegrationConfig{}, fmt.Errorf("parse integration config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(content, &out); err != nil {
			return IntegrationConfig{}, fmt.Errorf("parse integration config %s: %w", path, err)
		}
	}

	if out.HasManageTestInstance() {
		if err := out.ManageTestInstance.Validate(); err != nil {
			return IntegrationConfig{}, err
		}
	}
	return out, nil
}

// SaveIntegrationConfig writes IntegrationConfig to YAML or JSON based on file extension.
func SaveIntegrationConfig(path string, cfg IntegrationConfig) error {
	if cfg.HasManageTestInstance() {
		if err := cfg.ManageTestInstance.Validate(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var content []byte
	var err error
	if ext == ".json" {
		content, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		content, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshal integration config %s: %w", path, err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write integration config %s: %w", path, err)
	}
	return nil
}
