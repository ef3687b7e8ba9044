package testing

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/carlosnayan/linq-go/internal/driver"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// SetupPostgreSQLTestDB creates a throwaway PostgreSQL database
func SetupPostgreSQLTestDB(t *testing.T) (driver.DB, func()) {
	t.Helper()

	baseURL := GetTestDatabaseURL("postgresql")
	if baseURL == "" {
		t.Skip("TEST_DATABASE_URL_POSTGRESQL not set, skipping PostgreSQL test")
		return nil, nil
	}

	adminURL := replaceDatabaseName(baseURL, "postgres")
	admin, err := sql.Open("pgx", adminURL)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}
	defer admin.Close()

	testDBName := fmt.Sprintf("linq_test_%d", time.Now().UnixNano())
	if _, err := admin.Exec("CREATE DATABASE " + testDBName); err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	drop := func() {
		if cleanupDB, err := sql.Open("pgx", adminURL); err == nil {
			_, _ = cleanupDB.Exec("DROP DATABASE IF EXISTS " + testDBName)
			cleanupDB.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := driver.NewPgxPoolWithConfig(ctx, replaceDatabaseName(baseURL, testDBName), &driver.PoolConfig{MaxConns: 4})
	if err != nil {
		drop()
		t.Fatalf("failed to connect to test database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		drop()
	}

	return driver.NewPgxPool(pool), cleanup
}
