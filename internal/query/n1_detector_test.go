package query

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeStatement(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"positional", `SELECT * FROM "users" WHERE "id" = $1`, `SELECT * FROM "users" WHERE "id" = ?`},
		{"in list", "SELECT * FROM posts WHERE user_id IN (?, ?, ?)", "SELECT * FROM posts WHERE user_id IN (...)"},
		{"postgres in list", "SELECT * FROM posts WHERE user_id IN ($1, $2)", "SELECT * FROM posts WHERE user_id IN (...)"},
		{"whitespace", "SELECT  *\n FROM t", "SELECT * FROM t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStatement(tt.in); got != tt.want {
				t.Errorf("NormalizeStatement(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestN1Detector_AlertsOverThreshold(t *testing.T) {
	d := NewN1Detector(3, time.Minute)

	for i := 0; i < 3; i++ {
		d.Record("SELECT * FROM posts WHERE user_id = $1", "posts")
	}
	d.Record("SELECT * FROM users", "users")

	alerts := d.Check()
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Count != 3 {
		t.Errorf("expected count 3, got %d", alerts[0].Count)
	}
	if len(alerts[0].Tables) != 1 || alerts[0].Tables[0] != "posts" {
		t.Errorf("unexpected tables: %v", alerts[0].Tables)
	}
	if !strings.Contains(alerts[0].String(), "possible N+1") {
		t.Errorf("unexpected alert text: %s", alerts[0])
	}
}

func TestN1Detector_WindowExpires(t *testing.T) {
	d := NewN1Detector(2, 10*time.Millisecond)
	d.Record("SELECT 1", "t")
	d.Record("SELECT 1", "t")
	time.Sleep(20 * time.Millisecond)

	if alerts := d.Check(); len(alerts) != 0 {
		t.Errorf("expected no alerts after window, got %d", len(alerts))
	}
}

func TestN1Detector_MaxSize(t *testing.T) {
	d := NewN1DetectorWithMaxSize(1, time.Minute, 2)
	d.Record("SELECT a", "t")
	d.Record("SELECT b", "t")
	d.Record("SELECT c", "t")

	if alerts := d.Check(); len(alerts) != 2 {
		t.Errorf("expected 2 tracked patterns, got %d", len(alerts))
	}
}
