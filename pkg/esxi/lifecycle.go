package esxi

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
	"github.com/Bibi40k/vmware-esxi-manager/internal/utils"
)

// HostState is the outcome of a lifecycle operation.
type HostState struct {
	State string `json:"state" yaml:"state"`
}

// AddSpec describes a host to add to vCenter.
type AddSpec struct {
	Host       string // host name or address, also its inventory name
	User       string
	Password   string
	Cluster    string // empty adds a standalone host to Datacenter
	Datacenter string
	// VerifyHostCert leaves the SSL thumbprint empty so vCenter verifies the host certificate.
	// Otherwise the thumbprint presented by the host is trusted.
	VerifyHostCert bool
	// Connect adds the host in connected state (the vSphere default).
	Connect *bool
}

func (s AddSpec) validate() error {
	switch {
	case s.Host == "":
		return invalidArgument("host name is required")
	case s.User == "":
		return invalidArgument("user is required")
	case s.Cluster == "" && s.Datacenter == "":
		return invalidArgument("cluster or datacenter is required")
	}
	return nil
}

func (s AddSpec) connected() bool {
	return s.Connect == nil || *s.Connect
}

// Add adds a host to a cluster (or as standalone host to a datacenter) and waits until
// vCenter reports it connected.
func (m *Manager) Add(ctx context.Context, spec AddSpec) (_ HostState, err error) {
	defer m.track("add")(&err)

	if err := spec.validate(); err != nil {
		return HostState{}, err
	}

	cnx := types.HostConnectSpec{
		HostName: spec.Host,
		UserName: spec.User,
		Password: spec.Password,
		Force:    true,
	}
	if !spec.VerifyHostCert {
		addr := utils.JoinHostDefaultPort(spec.Host, configs.Defaults.Host.ThumbprintPort)
		thumbprint, err := m.thumbprint(ctx, addr)
		if err != nil {
			return HostState{}, fmt.Errorf("failed to read SSL thumbprint of %s: %w", addr, err)
		}
		cnx.SslThumbprint = thumbprint
	}

	task, err := m.addHostTask(ctx, spec, cnx)
	if err != nil {
		return HostState{}, err
	}
	if err := waitTask(ctx, task); err != nil {
		return HostState{}, apiError("add", spec.Host, err)
	}
	m.logger.Info("Host added", "host", spec.Host, "operation", "add", "cluster", spec.Cluster)

	if !spec.connected() {
		return HostState{State: string(types.HostSystemConnectionStateDisconnected)}, nil
	}
	host, err := m.findHost(ctx, spec.Host)
	if err != nil {
		return HostState{}, err
	}
	if err := m.waitForConnection(ctx, host, types.HostSystemConnectionStateConnected); err != nil {
		return HostState{}, apiError("add", spec.Host, err)
	}
	return HostState{State: string(types.HostSystemConnectionStateConnected)}, nil
}

func (m *Manager) addHostTask(ctx context.Context, spec AddSpec, cnx types.HostConnectSpec) (*object.Task, error) {
	if spec.Cluster != "" {
		var cluster *object.ClusterComputeResource
		var err error
		if spec.Datacenter != "" {
			cluster, err = m.client.FindCluster(ctx, spec.Datacenter, spec.Cluster)
		} else {
			cluster, err = m.client.FindClusterByName(ctx, spec.Cluster)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		task, err := cluster.AddHost(ctx, cnx, spec.connected(), nil, nil)
		if err != nil {
			return nil, apiError("add", spec.Host, err)
		}
		return task, nil
	}

	dc, err := m.client.FindDatacenter(ctx, spec.Datacenter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	folders, err := dc.Folders(ctx)
	if err != nil {
		return nil, apiError("add", spec.Host, err)
	}
	task, err := folders.HostFolder.AddStandaloneHost(ctx, cnx, spec.connected(), nil, nil)
	if err != nil {
		return nil, apiError("add", spec.Host, err)
	}
	return task, nil
}

// Disconnect disconnects a host from vCenter.
func (m *Manager) Disconnect(ctx context.Context, name string) (_ HostState, err error) {
	defer m.track("disconnect")(&err)

	host, err := m.findHost(ctx, name)
	if err != nil {
		return HostState{}, err
	}
	task, err := host.Disconnect(ctx)
	if err != nil {
		return HostState{}, apiError("disconnect", name, err)
	}
	if err := waitTask(ctx, task); err != nil {
		return HostState{}, apiError("disconnect", name, err)
	}
	m.logger.Info("Host disconnected", "host", name, "operation", "disconnect")
	return HostState{State: string(types.HostSystemConnectionStateDisconnected)}, nil
}

// Connect reconnects a host and waits until vCenter reports it connected.
func (m *Manager) Connect(ctx context.Context, name string) (_ HostState, err error) {
	defer m.track("connect")(&err)

	host, err := m.findHost(ctx, name)
	if err != nil {
		return HostState{}, err
	}
	task, err := host.Reconnect(ctx, nil, nil)
	if err != nil {
		return HostState{}, apiError("connect", name, err)
	}
	if err := waitTask(ctx, task); err != nil {
		return HostState{}, apiError("connect", name, err)
	}
	if err := m.waitForConnection(ctx, host, types.HostSystemConnectionStateConnected); err != nil {
		return HostState{}, apiError("connect", name, err)
	}
	m.logger.Info("Host connected", "host", name, "operation", "connect")
	return HostState{State: string(types.HostSystemConnectionStateConnected)}, nil
}

// Move moves a host into cluster.
func (m *Manager) Move(ctx context.Context, name, cluster string) (_ HostState, err error) {
	defer m.track("move")(&err)

	if cluster == "" {
		return HostState{}, invalidArgument("target cluster is required")
	}
	host, err := m.findHost(ctx, name)
	if err != nil {
		return HostState{}, err
	}
	current, err := m.client.HostCluster(ctx, host)
	if err != nil {
		return HostState{}, apiError("move", name, err)
	}
	if current == cluster {
		return HostState{State: fmt.Sprintf("host %s already in cluster %s", name, cluster)}, nil
	}

	target, err := m.client.FindClusterByName(ctx, cluster)
	if err != nil {
		return HostState{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	task, err := target.MoveInto(ctx, host)
	if err != nil {
		return HostState{}, apiError("move", name, err)
	}
	if err := waitTask(ctx, task); err != nil {
		return HostState{}, apiError("move", name, err)
	}

	if current == "" {
		current = "standalone"
	}
	m.logger.Info("Host moved", "host", name, "operation", "move", "from", current, "to", cluster)
	return HostState{State: fmt.Sprintf("moved %s from %s to %s", name, current, cluster)}, nil
}

// Remove removes a host from the vCenter inventory. A standalone host is removed
// together with its compute resource.
func (m *Manager) Remove(ctx context.Context, name string) (_ HostState, err error) {
	defer m.track("remove")(&err)

	host, err := m.findHost(ctx, name)
	if err != nil {
		return HostState{}, err
	}

	var h mo.HostSystem
	if err := host.Properties(ctx, host.Reference(), []string{"parent"}, &h); err != nil {
		return HostState{}, apiError("remove", name, err)
	}

	var task *object.Task
	if h.Parent != nil && h.Parent.Type == "ComputeResource" {
		task, err = object.NewComputeResource(host.Client(), *h.Parent).Destroy(ctx)
	} else {
		task, err = host.Destroy(ctx)
	}
	if err != nil {
		return HostState{}, apiError("remove", name, err)
	}
	if err := waitTask(ctx, task); err != nil {
		return HostState{}, apiError("remove", name, err)
	}
	m.logger.Info("Host removed", "host", name, "operation", "remove")
	return HostState{State: fmt.Sprintf("removed host %s", name)}, nil
}

// errConnectionPending marks a poll that should be retried.
var errConnectionPending = errors.New("connection state pending")

// waitForConnection polls the host's runtime connection state until it equals want.
func (m *Manager) waitForConnection(ctx context.Context, host *object.HostSystem, want types.HostSystemConnectionState) error {
	poll := func() error {
		var h mo.HostSystem
		if err := host.Properties(ctx, host.Reference(), []string{"runtime.connectionState"}, &h); err != nil {
			return backoff.Permanent(err)
		}
		if h.Runtime.ConnectionState != want {
			return fmt.Errorf("%w: host %s is %s", errConnectionPending, hostName(host), h.Runtime.ConnectionState)
		}
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(m.pollEvery), m.pollRetries), ctx)
	return backoff.RetryNotify(poll, b, func(err error, next time.Duration) {
		m.logger.Debug("Waiting for host connection", "host", hostName(host), "state", want, "error", err, "next", next)
	})
}

// FetchThumbprint dials addr over TLS and returns the SHA-1 thumbprint of the
// certificate it presents. The certificate is not verified.
func FetchThumbprint(ctx context.Context, addr string) (string, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: configs.Defaults.Timeouts.ThumbprintDial()},
		Config:    &tls.Config{InsecureSkipVerify: true}, // #nosec G402
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = conn.Close()
	}()

	certs := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return "", fmt.Errorf("%s presented no certificate", addr)
	}
	return soap.ThumbprintSHA1(certs[0]), nil
}

// waitTask waits for task, bounded by the configured task timeout.
func waitTask(ctx context.Context, task *object.Task) error {
	ctx, cancel := context.WithTimeout(ctx, configs.Defaults.Timeouts.Task())
	defer cancel()
	_, err := task.WaitForResult(ctx)
	return err
}
