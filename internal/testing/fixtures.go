package testing

import (
	"context"
	"testing"
	"time"

	"github.com/carlosnayan/linq-go/internal/driver"
)

// BlogSchema creates the users/posts tables shared by integration tests.
// The DDL sticks to types every supported provider accepts.
var BlogSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255)
	)`,
	`CREATE TABLE posts (
		id INTEGER PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		content TEXT,
		user_id INTEGER
	)`,
}

// BlogFixtures seeds two users and three posts titled a, b and c.
// Post 2 has no content and post 3 belongs to user 2.
var BlogFixtures = []string{
	`INSERT INTO users (id, name, email) VALUES (1, 'ana', 'ana@example.com')`,
	`INSERT INTO users (id, name, email) VALUES (2, 'bob', NULL)`,
	`INSERT INTO posts (id, title, content, user_id) VALUES (1, 'a', 'first', 1)`,
	`INSERT INTO posts (id, title, content, user_id) VALUES (2, 'b', NULL, 1)`,
	`INSERT INTO posts (id, title, content, user_id) VALUES (3, 'c', 'third', 2)`,
}

// ExecAll runs each statement, failing the test on the first error
func ExecAll(t *testing.T, db driver.DB, statements ...string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			t.Fatalf("failed to exec %q: %v", stmt, err)
		}
	}
}

// SeedBlog creates the blog schema and loads its fixtures
func SeedBlog(t *testing.T, db driver.DB) {
	t.Helper()
	ExecAll(t, db, BlogSchema...)
	ExecAll(t, db, BlogFixtures...)
}

// CleanTestData deletes every row from the given tables
func CleanTestData(t *testing.T, db driver.DB, tables ...string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range tables {
		if _, err := db.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clean %s: %v", table, err)
		}
	}
}
