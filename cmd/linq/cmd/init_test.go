package cmd

import (
	"strings"
	"testing"

	"github.com/carlosnayan/linq-go/internal/config"
)

func TestInit_CreatesConfig(t *testing.T) {
	setupTestDir(t)
	out := captureOutput(t)

	if err := newApp().Run([]string{"init"}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !fileExists(config.FileName) {
		t.Fatal("linq.conf was not created")
	}
	if !strings.Contains(out.String(), "Created linq.conf") {
		t.Errorf("unexpected output: %s", out.String())
	}

	content := readFile(t, config.FileName)
	for _, want := range []string{"[datasource]", `env(\"DATABASE_URL\")`, "[[tables]]"} {
		if !strings.Contains(content, want) {
			t.Errorf("config should contain %s", want)
		}
	}
	if _, err := config.Parse(content); err != nil {
		t.Errorf("generated config does not parse: %v", err)
	}
}

func TestInit_RefusesOverwrite(t *testing.T) {
	setupTestDir(t)
	captureOutput(t)

	if err := newApp().Run([]string{"init"}); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	err := newApp().Run([]string{"init"})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
	if err := newApp().Run([]string{"init", "--force"}); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
}

func TestInit_Provider(t *testing.T) {
	setupTestDir(t)
	captureOutput(t)

	if err := newApp().Run([]string{"init", "--provider", "sqlite"}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(readFile(t, config.FileName), `provider = "sqlite"`) {
		t.Error("provider was not written")
	}

	if err := newApp().Run([]string{"init", "--force", "--provider", "oracle"}); err == nil {
		t.Error("expected unsupported provider error")
	}
}
