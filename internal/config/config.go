// Package config provides configuration loading, validation, and management
// for the book recommendation service. It handles reading from an optional
// YAML file, BOOKREC_* environment variables, a local .env file, default
// values, and validating the result.
package config

import (
	"errors"
	"fmt"
)

// ErrConfiguration wraps every failure returned by LoadConfig.
var ErrConfiguration = errors.New("configuration error")

// Redacted returns a printable copy of the secret, keeping only a short
// suffix so operators can tell keys apart in logs.
func Redacted(secret string) string {
	const keep = 4
	if secret == "" {
		return ""
	}
	if len(secret) <= keep {
		return "****"
	}
	return fmt.Sprintf("****%s", secret[len(secret)-keep:])
}
