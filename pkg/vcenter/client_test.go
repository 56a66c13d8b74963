package vcenter

import (
	"testing"
)

func TestNewClient(t *testing.T) {
	t.Skip("Integration test - requires vCenter")
}

func TestServiceURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *Config
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "host with default port",
			cfg:      &Config{Host: "vcenter.example.com", Username: "admin", Password: "secret"},
			wantHost: "vcenter.example.com:443",
			wantPath: "/sdk",
		},
		{
			name:     "host with explicit port",
			cfg:      &Config{Host: "vcenter.example.com", Username: "admin", Password: "secret", Port: 8443},
			wantHost: "vcenter.example.com:8443",
			wantPath: "/sdk",
		},
		{
			name:     "https URL without path",
			cfg:      &Config{Host: "https://vcenter.example.com", Username: "admin", Password: "secret"},
			wantHost: "vcenter.example.com:443",
			wantPath: "/sdk",
		},
		{
			name:     "https URL keeps its port and path",
			cfg:      &Config{Host: "https://127.0.0.1:9443/custom", Username: "admin", Password: "secret"},
			wantHost: "127.0.0.1:9443",
			wantPath: "/custom",
		},
		{
			name:    "http URL rejected",
			cfg:     &Config{Host: "http://vcenter.example.com"},
			wantErr: true,
		},
		{
			name:    "URL without host",
			cfg:     &Config{Host: "https:///sdk"},
			wantErr: true,
		},
		{
			name:    "empty host",
			cfg:     &Config{Host: "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := serviceURL(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("serviceURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if u.Scheme != "https" {
				t.Errorf("scheme = %q, want https", u.Scheme)
			}
			if u.Host != tt.wantHost {
				t.Errorf("host = %q, want %q", u.Host, tt.wantHost)
			}
			if u.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", u.Path, tt.wantPath)
			}
			if u.User.Username() != tt.cfg.Username {
				t.Errorf("username = %q, want %q", u.User.Username(), tt.cfg.Username)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{
		Host:     "vcenter.example.com",
		Username: "admin",
		Password: "secret",
	}

	if cfg.Port != 0 {
		t.Errorf("expected Port=0, got %d", cfg.Port)
	}
	if _, err := serviceURL(cfg); err != nil {
		t.Fatalf("serviceURL() failed: %v", err)
	}
	if cfg.Port != 443 {
		t.Errorf("expected default Port=443, got %d", cfg.Port)
	}
}

// Benchmark for future performance testing
func BenchmarkClientConnect(b *testing.B) {
	b.Skip("Benchmark - requires vCenter")
}
