package testing

import (
	"os"
	"strings"
	"testing"

	"github.com/carlosnayan/linq-go/internal/driver"
)

// SetupTestDB creates a test database and returns connection + cleanup function.
// SQLite always runs in memory; PostgreSQL and MySQL are skipped unless
// TEST_DATABASE_URL_<PROVIDER> is set.
func SetupTestDB(t *testing.T, provider string) (driver.DB, func()) {
	t.Helper()

	switch provider {
	case "postgresql":
		return SetupPostgreSQLTestDB(t)
	case "mysql":
		return SetupMySQLTestDB(t)
	case "sqlite":
		return SetupSQLiteTestDB(t)
	default:
		t.Fatalf("unsupported provider: %s", provider)
		return nil, nil
	}
}

// Providers lists the providers integration tests loop over
func Providers() []string {
	return []string{"sqlite", "postgresql", "mysql"}
}

// GetTestDatabaseURL gets test database URL from environment variables
func GetTestDatabaseURL(provider string) string {
	url := os.Getenv("TEST_DATABASE_URL_" + strings.ToUpper(provider))
	if url == "" {
		url = os.Getenv("TEST_DATABASE_URL")
	}
	return url
}

// replaceDatabaseName swaps the database segment of a URL, keeping any query string
func replaceDatabaseName(url, dbName string) string {
	if url == "" {
		return url
	}

	base, query := url, ""
	if i := strings.Index(url, "?"); i != -1 {
		base, query = url[:i], url[i:]
	}

	lastSlash := strings.LastIndex(base, "/")
	if lastSlash == -1 {
		return base + "/" + dbName + query
	}
	return base[:lastSlash+1] + dbName + query
}

// removeDatabaseFromURL drops the database segment of a URL
func removeDatabaseFromURL(url string) string {
	return replaceDatabaseName(url, "")
}
