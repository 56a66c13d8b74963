package esxi

import (
	"context"
	"fmt"

	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/methods"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
)

// ImageConfig abstracts a host's HostImageConfigManager.
// The real implementation calls the vSphere API; tests inject a mock.
type ImageConfig interface {
	FetchSoftwarePackages(ctx context.Context) ([]types.SoftwarePackage, error)
	AcceptanceLevel(ctx context.Context) (string, error)
	UpdateAcceptanceLevel(ctx context.Context, level string) error
}

// hostImageConfig is the HostImageConfigManager of one host.
type hostImageConfig struct {
	c   *vim25.Client
	ref types.ManagedObjectReference
}

// compile-time interface compliance check
var _ ImageConfig = (*hostImageConfig)(nil)

// newHostImageConfig is the default ImageConfigFactory.
func newHostImageConfig(ctx context.Context, host *object.HostSystem) (ImageConfig, error) {
	var h mo.HostSystem
	if err := host.Properties(ctx, host.Reference(), []string{"configManager.imageConfigManager"}, &h); err != nil {
		return nil, err
	}
	if h.ConfigManager.ImageConfigManager == nil {
		return nil, fmt.Errorf("host %s has no image config manager: %w", hostName(host), ErrNotFound)
	}
	return &hostImageConfig{c: host.Client(), ref: *h.ConfigManager.ImageConfigManager}, nil
}

func (i *hostImageConfig) FetchSoftwarePackages(ctx context.Context) ([]types.SoftwarePackage, error) {
	res, err := methods.FetchSoftwarePackages(ctx, i.c, &types.FetchSoftwarePackages{This: i.ref})
	if err != nil {
		return nil, err
	}
	return res.Returnval, nil
}

func (i *hostImageConfig) AcceptanceLevel(ctx context.Context) (string, error) {
	res, err := methods.HostImageConfigGetAcceptance(ctx, i.c, &types.HostImageConfigGetAcceptance{This: i.ref})
	if err != nil {
		return "", err
	}
	return res.Returnval, nil
}

func (i *hostImageConfig) UpdateAcceptanceLevel(ctx context.Context, level string) error {
	_, err := methods.UpdateHostImageAcceptanceLevel(ctx, i.c, &types.UpdateHostImageAcceptanceLevel{
		This:               i.ref,
		NewAcceptanceLevel: level,
	})
	return err
}
