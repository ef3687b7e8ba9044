package testing

import (
	"context"
	"testing"
)

func TestReplaceDatabaseName(t *testing.T) {
	tests := []struct {
		url  string
		name string
		want string
	}{
		{"postgres://u:p@localhost:5432/app", "test", "postgres://u:p@localhost:5432/test"},
		{"postgres://u:p@localhost:5432/app?sslmode=disable", "test", "postgres://u:p@localhost:5432/test?sslmode=disable"},
		{"root@tcp(localhost:3306)/app", "", "root@tcp(localhost:3306)/"},
		{"", "x", ""},
	}

	for _, tt := range tests {
		if got := replaceDatabaseName(tt.url, tt.name); got != tt.want {
			t.Errorf("replaceDatabaseName(%q, %q) = %q, want %q", tt.url, tt.name, got, tt.want)
		}
	}
}

func TestSetupSQLiteTestDB_SeedBlog(t *testing.T) {
	db, cleanup := SetupTestDB(t, "sqlite")
	defer cleanup()

	SeedBlog(t, db)

	var count int
	if err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 posts, got %d", count)
	}

	CleanTestData(t, db, "posts", "users")
	if err := db.QueryRow(context.Background(), "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty posts after clean, got %d", count)
	}
}
