package testing

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/carlosnayan/linq-go/internal/driver"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// SetupMySQLTestDB creates a throwaway MySQL database
func SetupMySQLTestDB(t *testing.T) (driver.DB, func()) {
	t.Helper()

	baseURL := strings.TrimPrefix(GetTestDatabaseURL("mysql"), "mysql://")
	if baseURL == "" {
		t.Skip("TEST_DATABASE_URL_MYSQL not set, skipping MySQL test")
		return nil, nil
	}

	serverURL := removeDatabaseFromURL(baseURL)
	admin, err := sql.Open("mysql", serverURL)
	if err != nil {
		t.Skipf("failed to open MySQL connection: %v", err)
		return nil, nil
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := admin.PingContext(ctx); err != nil {
		t.Skipf("MySQL not available: %v", err)
		return nil, nil
	}

	testDBName := fmt.Sprintf("linq_test_%d", time.Now().UnixNano())
	if _, err := admin.Exec("CREATE DATABASE " + testDBName); err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	drop := func() {
		if cleanupDB, err := sql.Open("mysql", serverURL); err == nil {
			_, _ = cleanupDB.Exec("DROP DATABASE IF EXISTS " + testDBName)
			cleanupDB.Close()
		}
	}

	testDB, err := sql.Open("mysql", replaceDatabaseName(baseURL, testDBName))
	if err != nil {
		drop()
		t.Skipf("failed to connect to test database: %v", err)
		return nil, nil
	}
	if err := testDB.PingContext(ctx); err != nil {
		testDB.Close()
		drop()
		t.Skipf("failed to ping test database: %v", err)
		return nil, nil
	}

	cleanup := func() {
		testDB.Close()
		drop()
	}

	return driver.NewSQLDB(testDB), cleanup
}
