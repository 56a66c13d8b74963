package mocks

import (
	"context"

	"github.com/Bibi40k/vmware-esxi-manager/pkg/esxi"
	"github.com/stretchr/testify/mock"
	"github.com/vmware/govmomi/vim25/types"
)

// ServiceSystem is a mock for esxi.ServiceSystem.
type ServiceSystem struct {
	mock.Mock
}

var _ esxi.ServiceSystem = (*ServiceSystem)(nil)

func (m *ServiceSystem) Service(ctx context.Context) ([]types.HostService, error) {
	args := m.Called(ctx)
	if fn, ok := args.Get(0).(func(context.Context) []types.HostService); ok {
		return fn(ctx), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HostService), args.Error(1)
}

func (m *ServiceSystem) Start(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ServiceSystem) Stop(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ServiceSystem) Restart(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ServiceSystem) UpdatePolicy(ctx context.Context, id string, policy string) error {
	args := m.Called(ctx, id, policy)
	return args.Error(0)
}
