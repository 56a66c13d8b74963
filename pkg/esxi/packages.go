package esxi

import (
	"context"
	"time"

	"github.com/vmware/govmomi/vim25/types"
)

// Package describes one installed VIB.
type Package struct {
	Version                 string     `json:"version" yaml:"version"`
	Vendor                  string     `json:"vendor" yaml:"vendor"`
	Summary                 string     `json:"summary" yaml:"summary"`
	Description             string     `json:"description" yaml:"description"`
	AcceptanceLevel         string     `json:"acceptance_level" yaml:"acceptance_level"`
	MaintenanceModeRequired bool       `json:"maintenance_mode_required" yaml:"maintenance_mode_required"`
	CreationDate            *time.Time `json:"creation_date" yaml:"creation_date"`
}

// ListPkgs returns the installed packages of every host in scope, keyed by host then package name.
// A fault raised while fetching the packages of any host aborts the call with an *APIError.
func (m *Manager) ListPkgs(ctx context.Context, scope Scope) (_ map[string]map[string]Package, err error) {
	defer m.track("list_pkgs")(&err)

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]map[string]Package, len(hosts))
	for _, host := range hosts {
		name := hostName(host)
		ic, err := m.imageConfig(ctx, host)
		if err != nil {
			return nil, apiError("list_pkgs", name, err)
		}
		pkgs, err := ic.FetchSoftwarePackages(ctx)
		if err != nil {
			return nil, apiError("list_pkgs", name, err)
		}

		ret[name] = make(map[string]Package, len(pkgs))
		for _, p := range pkgs {
			ret[name][p.Name] = packageOf(p)
		}
	}
	return ret, nil
}

func packageOf(p types.SoftwarePackage) Package {
	return Package{
		Version:                 p.Version,
		Vendor:                  p.Vendor,
		Summary:                 p.Summary,
		Description:             p.Description,
		AcceptanceLevel:         p.AcceptanceLevel,
		MaintenanceModeRequired: boolValue(p.MaintenanceModeRequired),
		CreationDate:            timeValue(p.CreationDate),
	}
}

// timeValue reads time.Time and *time.Time fields alike. The zero time maps to nil.
func timeValue(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		ts := *t
		return &ts
	}
	return nil
}
