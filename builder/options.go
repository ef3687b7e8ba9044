package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/carlosnayan/linq-go/internal/logger"
)

// Direction is a sort direction
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection accepts asc/desc in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Asc, nil
	case "DESC":
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort direction %q", s)
}

// OrderBy defines sorting for a single field
type OrderBy struct {
	Field string
	Order Direction
}

// FindOptions is the simplified, equality-only projection of a query
type FindOptions struct {
	// Where maps field names to the values they must equal
	Where map[string]any

	Order     []OrderBy
	Skip      *int
	Take      *int
	Relations []string
}

// LikeOptions controls wildcarding in WhereLike. The zero value matches
// anywhere in the column.
type LikeOptions struct {
	// StartsWith anchors the match at the start of the column
	StartsWith bool
	// EndsWith anchors the match at the end of the column
	EndsWith bool
}

// DefaultAlias is the alias used when none is given
const DefaultAlias = "entity"

type options struct {
	alias     string
	strict    bool
	logger    *logger.Logger
	slowQuery time.Duration
}

func defaultOptions() options {
	return options{alias: DefaultAlias, slowQuery: time.Second}
}

// Option configures a Query
type Option func(*options)

// WithAlias sets the table alias clauses are written against
func WithAlias(alias string) Option {
	return func(o *options) {
		if alias != "" {
			o.alias = alias
		}
	}
}

// WithStrict makes terminal operations fail with ErrUntranslatable when a
// predicate degraded, instead of running the broader query
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithLogger sets the logger. Nil means the package default logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSlowQueryThreshold sets the duration above which executions are
// logged at warn level
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *options) { o.slowQuery = d }
}

// Ptr is a helper function to create a pointer to an int
func Ptr(i int) *int {
	return &i
}
