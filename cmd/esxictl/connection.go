package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/Bibi40k/vmware-esxi-manager/pkg/vcenter"
)

// vcenterFileConfig is the YAML structure of the connection file (configs/vcenter.yaml
// or its sops-encrypted configs/vcenter.sops.yaml).
type vcenterFileConfig struct {
	VCenter struct {
		Host     string `yaml:"host"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Port     int    `yaml:"port"`
		Insecure bool   `yaml:"insecure"`
	} `yaml:"vcenter"`
}

// loadVCenterConfig reads the connection file and applies VCENTER_* environment overrides.
// A missing file is fine as long as the environment names a host.
func loadVCenterConfig(path string) (*vcenterFileConfig, error) {
	var cfg vcenterFileConfig

	data, err := readConfigFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if cfg.VCenter.Host == "" {
		return nil, &userError{
			msg:  fmt.Sprintf("no vCenter host configured (%s)", path),
			hint: "create configs/vcenter.yaml or set VCENTER_HOST, VCENTER_USERNAME and VCENTER_PASSWORD",
		}
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if isSopsFile(path) {
		if err := checkSopsRequirements(); err != nil {
			return nil, err
		}
		return sopsDecrypt(path)
	}
	return os.ReadFile(path)
}

func (c *vcenterFileConfig) applyEnv(getenv func(string) string) error {
	if v := getenv("VCENTER_HOST"); v != "" {
		c.VCenter.Host = v
	}
	if v := getenv("VCENTER_USERNAME"); v != "" {
		c.VCenter.Username = v
	}
	if v := getenv("VCENTER_PASSWORD"); v != "" {
		c.VCenter.Password = v
	}
	if v := getenv("VCENTER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return &userError{msg: fmt.Sprintf("invalid VCENTER_PORT %q", v), hint: "use a TCP port number, e.g. 443"}
		}
		c.VCenter.Port = port
	}
	if v := getenv("VCENTER_INSECURE"); v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return &userError{msg: fmt.Sprintf("invalid VCENTER_INSECURE %q", v), hint: "use true or false"}
		}
		c.VCenter.Insecure = insecure
	}
	return nil
}

func (c *vcenterFileConfig) clientConfig() *vcenter.Config {
	return &vcenter.Config{
		Host:     c.VCenter.Host,
		Username: c.VCenter.Username,
		Password: c.VCenter.Password,
		Port:     c.VCenter.Port,
		Insecure: c.VCenter.Insecure,
	}
}
