// Package mocks provides testify-based mocks of the host managers the
// vCenter simulator does not implement.
package mocks

import (
	"context"

	"github.com/Bibi40k/vmware-esxi-manager/pkg/esxi"
	"github.com/stretchr/testify/mock"
	"github.com/vmware/govmomi/vim25/types"
)

// ImageConfig is a mock for esxi.ImageConfig.
type ImageConfig struct {
	mock.Mock
}

var _ esxi.ImageConfig = (*ImageConfig)(nil)

func (m *ImageConfig) FetchSoftwarePackages(ctx context.Context) ([]types.SoftwarePackage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.SoftwarePackage), args.Error(1)
}

func (m *ImageConfig) AcceptanceLevel(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *ImageConfig) UpdateAcceptanceLevel(ctx context.Context, level string) error {
	args := m.Called(ctx, level)
	return args.Error(0)
}
