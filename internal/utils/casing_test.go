package utils

import (
	"testing"
)

func TestCamelToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vmotionSupported", "vmotion_supported"},
		{"accel3dSupported", "accel3d_supported"},
		{"cpuHwMmuSupported", "cpu_hw_mmu_supported"},
		{"encryptionCBRCSupported", "encryption_c_b_r_c_supported"},
		{"vmDirectPathGen2Supported", "vm_direct_path_gen2_supported"},
		{"maxHostRunningVms", "max_host_running_vms"},
		{"maxRunningVMs", "max_running_v_ms"},
		{"vPMCSupported", "v_p_m_c_supported"},
		{"SanSupported", "san_supported"},
		{"name", "name"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CamelToSnakeCase(tt.in); got != tt.want {
				t.Errorf("CamelToSnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
