package testing

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/carlosnayan/linq-go/internal/driver"
	_ "modernc.org/sqlite" // pure Go SQLite driver, registered as "sqlite"
)

// SetupSQLiteTestDB creates an in-memory SQLite database. A single
// connection is kept so every query sees the same database.
func SetupSQLiteTestDB(t *testing.T) (driver.DB, func()) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open SQLite: %v", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to ping SQLite database: %v", err)
	}

	return driver.NewSQLDB(db), func() { db.Close() }
}
