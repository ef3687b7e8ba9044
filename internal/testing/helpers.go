package testing

import (
	"os"
	"testing"
)

// SkipIfNoDatabase skips the test if database is not available.
// SQLite runs in memory and is always available.
func SkipIfNoDatabase(t *testing.T, provider string) {
	t.Helper()
	if provider == "sqlite" {
		return
	}
	if GetTestDatabaseURL(provider) == "" {
		t.Skipf("TEST_DATABASE_URL_%s not set, skipping %s test", provider, provider)
	}
}

// GetProviderFromEnv gets provider from environment or returns default
func GetProviderFromEnv() string {
	provider := os.Getenv("TEST_PROVIDER")
	if provider == "" {
		return "sqlite"
	}
	return provider
}
