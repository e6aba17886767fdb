package config

import "strings"

// MaskSecret masks a secret, keeping only the first and last 4 characters.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) < 8 {
		return "***"
	}

	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
