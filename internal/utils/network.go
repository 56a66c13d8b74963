package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// JoinHostDefaultPort returns addr as "host:port", appending port when addr has none.
// Example: "esxi01.example.com" + 443 -> "esxi01.example.com:443"
func JoinHostDefaultPort(addr string, port int) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(strings.Trim(addr, "[]"), strconv.Itoa(port))
}

// ValidateHostAddress checks that addr is a usable host name or IP address.
func ValidateHostAddress(addr string) error {
	host := strings.TrimSpace(addr)
	if host == "" {
		return fmt.Errorf("host address is empty")
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if strings.ContainsAny(host, " /\\:@") {
		return fmt.Errorf("invalid host address: %s", addr)
	}
	return nil
}

// IsPortOpen checks if a TCP port is accessible within the given timeout.
func IsPortOpen(host string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", JoinHostDefaultPort(host, port), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
