// Package utils provides internal utility functions.
package utils

import (
	"strings"
	"unicode"
)

// CamelToSnakeCase converts a vSphere property name to snake_case.
// Every upper-case letter starts a new word, so acronyms are split per letter:
// "encryptionCBRCSupported" -> "encryption_c_b_r_c_supported".
func CamelToSnakeCase(s string) string {
	if s == "" {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(s) + 8)
	for i, r := range s {
		if i == 0 {
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		if unicode.IsUpper(r) {
			sb.WriteByte('_')
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
