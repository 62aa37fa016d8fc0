//go:build integration

package integration

import (
	"os"
	"testing"
)

// requireEnv returns the value of key or skips the test when it is unset.
func requireEnv(t *testing.T, key string) string {
	t.Helper()

	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}

	return value
}
