// Package vcenter provides a wrapper around the govmomi library for vCenter operations.
package vcenter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Bibi40k/vmware-esxi-manager/configs"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/soap"
)

// Client wraps govmomi client and provides high-level vCenter operations.
// It plays the role of the authenticated service instance every ESXi operation runs against.
type Client struct {
	conn   *govmomi.Client
	finder *find.Finder
	ctx    context.Context
}

// Config holds vCenter connection parameters.
type Config struct {
	Host     string // vCenter hostname, IP or full https URL
	Username string // vCenter username
	Password string // vCenter password
	Port     int    // vCenter port (default: 443)
	Insecure bool   // Skip TLS verification (not recommended for production)
}

// NewClient creates a new vCenter client and connects to the vCenter server.
// Returns an error if connection fails.
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	vcURL, err := serviceURL(cfg)
	if err != nil {
		return nil, err
	}

	client, err := govmomi.NewClient(ctx, vcURL, cfg.Insecure)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vCenter: %w", err)
	}

	return &Client{
		conn:   client,
		finder: find.NewFinder(client.Client, true),
		ctx:    ctx,
	}, nil
}

// serviceURL builds the /sdk endpoint URL with credentials from cfg.
func serviceURL(cfg *Config) (*url.URL, error) {
	if cfg.Port == 0 {
		cfg.Port = configs.Defaults.VCenter.Port
	}

	var vcURL *url.URL
	if strings.Contains(cfg.Host, "://") {
		parsed, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid vCenter URL %q: %w", cfg.Host, err)
		}
		if parsed.Scheme != "https" {
			return nil, fmt.Errorf("unsupported vCenter URL scheme %q (https required)", parsed.Scheme)
		}
		if parsed.Path == "" {
			parsed.Path = "/sdk"
		}
		if parsed.Host == "" {
			return nil, fmt.Errorf("invalid vCenter URL (missing host): %q", cfg.Host)
		}
		if parsed.Port() == "" && cfg.Port != 0 {
			parsed.Host = fmt.Sprintf("%s:%d", parsed.Hostname(), cfg.Port)
		}
		vcURL = parsed
	} else {
		if strings.TrimSpace(cfg.Host) == "" {
			return nil, fmt.Errorf("vCenter host is required")
		}
		// Build vCenter URL from host + port
		vcURL = &url.URL{
			Scheme: "https",
			Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Path:   "/sdk",
		}
	}
	vcURL.User = url.UserPassword(cfg.Username, cfg.Password)
	return vcURL, nil
}

// Disconnect closes the vCenter connection.
func (c *Client) Disconnect() error {
	if c.conn != nil {
		return c.conn.Logout(c.ctx)
	}
	return nil
}

// FindDatacenter locates a datacenter by name.
func (c *Client) FindDatacenter(ctx context.Context, name string) (*object.Datacenter, error) {
	dc, err := c.finder.Datacenter(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("datacenter %q not found: %w", name, err)
	}
	return dc, nil
}

// FindCluster locates a cluster by name within a datacenter.
func (c *Client) FindCluster(ctx context.Context, datacenter, name string) (*object.ClusterComputeResource, error) {
	dc, err := c.FindDatacenter(ctx, datacenter)
	if err != nil {
		return nil, err
	}

	c.finder.SetDatacenter(dc)
	cluster, err := c.finder.ClusterComputeResource(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cluster %q not found: %w", name, err)
	}
	return cluster, nil
}

// FindHost locates an ESXi host by name within a datacenter.
// Returns nil if the host doesn't exist (no error).
func (c *Client) FindHost(ctx context.Context, datacenter, name string) (*object.HostSystem, error) {
	dc, err := c.FindDatacenter(ctx, datacenter)
	if err != nil {
		return nil, err
	}

	hosts, err := c.hostsUnder(ctx, dc.Reference(), dc.InventoryPath)
	if err != nil {
		return nil, err
	}
	return hostNamed(hosts, name), nil
}

// FindHostByName locates an ESXi host by name across every datacenter.
// Returns nil if the host doesn't exist (no error).
func (c *Client) FindHostByName(ctx context.Context, name string) (*object.HostSystem, error) {
	hosts, err := c.hostsUnder(ctx, c.conn.ServiceContent.RootFolder, "")
	if err != nil {
		return nil, err
	}
	return hostNamed(hosts, name), nil
}

func hostNamed(hosts []*object.HostSystem, name string) *object.HostSystem {
	for _, h := range hosts {
		if h.Name() == name {
			return h
		}
	}
	return nil
}

// Client returns the underlying govmomi client for advanced operations.
func (c *Client) Client() *govmomi.Client {
	return c.conn
}

// VimClient returns the vim25 client used by property collectors and method calls.
func (c *Client) VimClient() *vim25.Client {
	return c.conn.Client
}

// SOAPClient returns the underlying SOAP client for low-level operations.
func (c *Client) SOAPClient() *soap.Client {
	return c.conn.Client.Client
}
