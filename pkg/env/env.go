// Package env reads raw environment variables for the handful of knobs that
// must work before config parsing (log format, PORT overrides).
package env

import "os"

// Get returns the named environment variable or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
