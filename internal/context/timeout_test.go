package contextutil

import (
	"context"
	"testing"
	"time"
)

func TestWithQueryTimeout_UsesConfiguredTimeout(t *testing.T) {
	prev := QueryTimeout()
	defer SetQueryTimeout(prev)

	SetQueryTimeout(2 * time.Second)
	ctx, cancel := WithQueryTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if remaining := time.Until(deadline); remaining > 2*time.Second || remaining < time.Second {
		t.Errorf("unexpected remaining time %v", remaining)
	}
}

func TestSetQueryTimeout_IgnoresNonPositive(t *testing.T) {
	prev := QueryTimeout()
	defer SetQueryTimeout(prev)

	SetQueryTimeout(0)
	if QueryTimeout() != prev {
		t.Errorf("timeout changed to %v", QueryTimeout())
	}
}
