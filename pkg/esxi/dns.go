package esxi

import (
	"context"
)

// DNSConfig is a host's DNS configuration.
type DNSConfig struct {
	DHCP         bool     `json:"dhcp" yaml:"dhcp"`
	IP           []string `json:"ip" yaml:"ip"` // DNS server addresses
	HostName     string   `json:"host_name" yaml:"host_name"`
	DomainName   string   `json:"domain_name" yaml:"domain_name"`
	SearchDomain []string `json:"search_domain" yaml:"search_domain"`
}

// GetDNSConfig returns the DNS configuration of every host in scope.
func (m *Manager) GetDNSConfig(ctx context.Context, scope Scope) (_ map[string]DNSConfig, err error) {
	defer m.track("get_dns_config")(&err)

	hosts, err := m.listHosts(ctx, scope)
	if err != nil {
		return nil, err
	}
	props, err := hostProperties(ctx, hosts, "config.network.dnsConfig")
	if err != nil {
		return nil, apiError("get_dns_config", "", err)
	}

	ret := make(map[string]DNSConfig, len(props))
	for _, h := range props {
		var cfg DNSConfig
		if h.Config != nil && h.Config.Network != nil && h.Config.Network.DnsConfig != nil {
			dns := h.Config.Network.DnsConfig.GetHostDnsConfig()
			cfg = DNSConfig{
				DHCP:         dns.Dhcp,
				IP:           dns.Address,
				HostName:     dns.HostName,
				DomainName:   dns.DomainName,
				SearchDomain: dns.SearchDomain,
			}
		}
		ret[h.Name] = cfg
	}
	return ret, nil
}
