package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// isSopsFile reports whether path follows the *.sops.yaml naming used for encrypted configs.
func isSopsFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, ".sops.yaml") || strings.HasSuffix(base, ".sops.yml")
}

// sopsDecrypt decrypts a SOPS-encrypted file and returns the plaintext content.
func sopsDecrypt(path string) ([]byte, error) {
	out, err := exec.Command("sops", "-d", path).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("sops -d %s: %s", filepath.Base(path), string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("sops -d %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// checkSopsRequirements verifies SOPS is available and the AGE key is accessible.
func checkSopsRequirements() error {
	if _, err := exec.LookPath("sops"); err != nil {
		return &userError{
			msg:  "'sops' not found in PATH",
			hint: "install sops or pass a plain --vcenter-config file",
		}
	}

	ageKeyFile := os.ExpandEnv("$HOME/.config/sops/age/keys.txt")
	if envKey := os.Getenv("SOPS_AGE_KEY_FILE"); envKey != "" {
		ageKeyFile = envKey
	}
	if _, err := os.Stat(ageKeyFile); os.IsNotExist(err) {
		return &userError{
			msg:  fmt.Sprintf("AGE key not found at %s", ageKeyFile),
			hint: "set SOPS_AGE_KEY_FILE or create the key",
		}
	}
	return nil
}
