// Package esxi manages ESXi hosts through vCenter: inventory queries, packages,
// services, advanced settings, DNS and host lifecycle (add/remove/move/connect/disconnect).
//
// Every query returns a map keyed by host name. An empty map means no host matched the scope.
package esxi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
	"github.com/Bibi40k/vmware-esxi-manager/pkg/vcenter"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
)

// defaultLogger is used if no logger is provided.
var defaultLogger = slog.Default()

// Scope selects the hosts an operation applies to.
type Scope struct {
	Datacenter string
	Cluster    string
	Host       string
}

func (s Scope) String() string {
	return fmt.Sprintf("datacenter=%q cluster=%q host=%q", s.Datacenter, s.Cluster, s.Host)
}

// HostLister resolves a Scope to host objects.
type HostLister func(ctx context.Context, scope Scope) ([]*object.HostSystem, error)

// ImageConfigFactory returns the image configuration manager of a host.
type ImageConfigFactory func(ctx context.Context, host *object.HostSystem) (ImageConfig, error)

// ServiceSystemFactory returns the service system of a host.
type ServiceSystemFactory func(ctx context.Context, host *object.HostSystem) (ServiceSystem, error)

// VsanSystemFactory returns the vSAN system of a host.
type VsanSystemFactory func(ctx context.Context, host *object.HostSystem) (VsanSystem, error)

// Thumbprinter returns the SHA-1 SSL thumbprint presented by addr.
type Thumbprinter func(ctx context.Context, addr string) (string, error)

// Manager runs ESXi host operations over an authenticated vCenter session.
type Manager struct {
	client        vcenter.ClientInterface
	logger        *slog.Logger
	metrics       *Metrics
	listHosts     HostLister
	imageConfig   ImageConfigFactory
	serviceSystem ServiceSystemFactory
	vsanSystem    VsanSystemFactory
	thumbprint    Thumbprinter
	pollEvery     time.Duration
	pollRetries   uint64
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger for mutating operations.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics records every operation in metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithHostLister replaces scope resolution.
func WithHostLister(lister HostLister) Option {
	return func(m *Manager) { m.listHosts = lister }
}

// WithImageConfig replaces the image configuration manager lookup.
func WithImageConfig(factory ImageConfigFactory) Option {
	return func(m *Manager) { m.imageConfig = factory }
}

// WithServiceSystem replaces the host service system lookup.
func WithServiceSystem(factory ServiceSystemFactory) Option {
	return func(m *Manager) { m.serviceSystem = factory }
}

// WithVsanSystem replaces the host vSAN system lookup used by Get.
func WithVsanSystem(factory VsanSystemFactory) Option {
	return func(m *Manager) { m.vsanSystem = factory }
}

// WithThumbprinter replaces the SSL thumbprint lookup used by Add.
func WithThumbprinter(fn Thumbprinter) Option {
	return func(m *Manager) { m.thumbprint = fn }
}

// WithConnectionPolling sets how connection state is polled after Add and Connect.
func WithConnectionPolling(every time.Duration, retries uint64) Option {
	return func(m *Manager) {
		m.pollEvery = every
		m.pollRetries = retries
	}
}

// NewManager creates a Manager bound to client.
func NewManager(client vcenter.ClientInterface, opts ...Option) *Manager {
	m := &Manager{
		client:        client,
		logger:        defaultLogger,
		imageConfig:   newHostImageConfig,
		serviceSystem: newHostServiceSystem,
		vsanSystem:    newHostVsanSystem,
		thumbprint:    FetchThumbprint,
		pollEvery:     configs.Defaults.Timeouts.ConnectionPoll(),
		pollRetries:   uint64(configs.Defaults.Timeouts.ConnectionRetries),
	}
	m.listHosts = m.resolveScope
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// resolveScope is the default HostLister.
func (m *Manager) resolveScope(ctx context.Context, scope Scope) ([]*object.HostSystem, error) {
	if scope.Cluster != "" && scope.Datacenter == "" {
		return nil, invalidArgument("cluster %q given without a datacenter", scope.Cluster)
	}
	if scope.Host == "" {
		hosts, err := m.client.ListHosts(ctx, scope.Datacenter, scope.Cluster)
		if err != nil {
			return nil, notFound(err)
		}
		return hosts, nil
	}

	var host *object.HostSystem
	var err error
	if scope.Datacenter != "" {
		host, err = m.client.FindHost(ctx, scope.Datacenter, scope.Host)
	} else {
		host, err = m.client.FindHostByName(ctx, scope.Host)
	}
	if err != nil {
		return nil, notFound(err)
	}
	if host == nil {
		return nil, nil
	}

	if scope.Cluster != "" {
		owner, err := m.client.HostCluster(ctx, host)
		if err != nil {
			return nil, apiError("resolve_scope", scope.Host, err)
		}
		if owner != scope.Cluster {
			return nil, nil
		}
	}
	return []*object.HostSystem{host}, nil
}

// findHost returns the host named name anywhere in the inventory.
func (m *Manager) findHost(ctx context.Context, name string) (*object.HostSystem, error) {
	host, err := m.client.FindHostByName(ctx, name)
	if err != nil {
		return nil, apiError("find_host", name, err)
	}
	if host == nil {
		return nil, fmt.Errorf("host %q: %w", name, ErrNotFound)
	}
	return host, nil
}

// notFound marks inventory lookup failures with ErrNotFound.
func notFound(err error) error {
	var nf *find.NotFoundError
	if errors.As(err, &nf) || errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
