package cmd

import (
	"bytes"
	"os"
	"testing"
)

// setupTestDir creates a temporary directory for testing and changes to it
func setupTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current dir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change to temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldDir) })

	return dir
}

// captureOutput redirects command output to a buffer and resets the
// global flags
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	configFile = ""
	verbose = false
	t.Cleanup(func() {
		stdout = old
		configFile = ""
		verbose = false
	})
	return &buf
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}
