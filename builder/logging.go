package builder

import (
	"time"

	"github.com/carlosnayan/linq-go/internal/logger"
)

// getLogger returns the query's logger, or the current default logger so
// that configuration applied after the query was built still takes effect
func (q *Query[T]) getLogger() *logger.Logger {
	if q.opts.logger != nil {
		return q.opts.logger
	}
	return logger.GetDefaultLogger()
}

func (q *Query[T]) logExecution(id, op string, start time.Time, rows int, err error) {
	l := q.getLogger()
	duration := time.Since(start)

	if err != nil {
		l.Error("(%s) %s on %s failed after %v: %v", id, op, q.table, duration, err)
		return
	}

	l.Info("(%s) %s on %s: %d row(s) in %v", id, op, q.table, rows, duration)

	if q.opts.slowQuery > 0 && duration > q.opts.slowQuery {
		l.Warn("Slow query detected: (%s) %s on %s took %v", id, op, q.table, duration)
	}
}

// SetLogLevels configures the levels of the default logger
func SetLogLevels(levels []string) {
	logger.SetLogLevels(levels)
}
