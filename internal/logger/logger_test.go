package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogger_RespectsLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger([]string{"warn"}, &buf)

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written with only warn enabled: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 2") {
		t.Errorf("missing warn line: %q", out)
	}
}

func TestLogger_QueryInterpolatesAndRedacts(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger([]string{"query"}, &buf)

	l.Query("q1", `SELECT * FROM "users" WHERE "entity".name = $1 AND "entity".token = $2`, []interface{}{"ana", "my-secret-token"}, time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "'ana'") {
		t.Errorf("argument not interpolated: %q", out)
	}
	if strings.Contains(out, "my-secret-token") {
		t.Errorf("sensitive value leaked: %q", out)
	}
	if !strings.Contains(out, "(q1)") {
		t.Errorf("query id missing: %q", out)
	}
}

func TestFormatQuery_PositionalDoesNotClobberTwoDigits(t *testing.T) {
	args := make([]interface{}, 10)
	for i := range args {
		args[i] = i + 1
	}
	got := formatQuery("a = $1 AND b = $10", args)
	if got != "a = 1 AND b = 10" {
		t.Errorf("formatQuery = %q", got)
	}
}

func TestFormatQuery_QuestionMarks(t *testing.T) {
	got := formatQuery("a = ? AND b IN (?, ?)", []interface{}{1, "x", nil})
	if got != "a = 1 AND b IN ('x', NULL)" {
		t.Errorf("formatQuery = %q", got)
	}
}

func TestSetLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(nil, &buf)
	if l.Enabled(LogLevelInfo) {
		t.Fatal("info enabled on empty logger")
	}
	l.SetLevels([]string{"info"})
	if !l.Enabled(LogLevelInfo) {
		t.Error("info not enabled after SetLevels")
	}
}
