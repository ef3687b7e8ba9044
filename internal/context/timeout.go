package contextutil

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultTimeout é o timeout padrão para operações de banco de dados
var DefaultTimeout = 30 * time.Second

var queryTimeout atomic.Int64

func init() {
	queryTimeout.Store(int64(5 * time.Second))
}

// SetQueryTimeout overrides the timeout used by WithQueryTimeout.
// Non-positive values are ignored.
func SetQueryTimeout(d time.Duration) {
	if d > 0 {
		queryTimeout.Store(int64(d))
	}
}

// QueryTimeout returns the current query timeout
func QueryTimeout() time.Duration {
	return time.Duration(queryTimeout.Load())
}

// WithTimeout cria um contexto com timeout, usando o timeout padrão se não especificado
func WithTimeout(ctx context.Context, timeout ...time.Duration) (context.Context, context.CancelFunc) {
	t := DefaultTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		t = timeout[0]
	}
	return context.WithTimeout(ctx, t)
}

// WithQueryTimeout cria um contexto com timeout para queries (5 segundos por padrão)
func WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, QueryTimeout())
}
