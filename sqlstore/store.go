// Package sqlstore executes builder queries against a SQL database.
//
// Each clause handed to a store query is compiled on its own, so
// placeholders named alike in different clauses never collide: every
// occurrence becomes a fresh positional argument of the dialect.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/carlosnayan/linq-go/builder"
	"github.com/carlosnayan/linq-go/internal/cache"
	contextutil "github.com/carlosnayan/linq-go/internal/context"
	"github.com/carlosnayan/linq-go/internal/dialect"
	"github.com/carlosnayan/linq-go/internal/driver"
	"github.com/carlosnayan/linq-go/internal/errors"
	"github.com/carlosnayan/linq-go/internal/logger"
	"github.com/carlosnayan/linq-go/internal/query"
)

// Store is a builder.Store over a driver.DB
type Store struct {
	db        driver.DB
	dialect   dialect.Dialect
	schema    *Schema
	logger    *logger.Logger
	detector  *query.N1Detector
	templates *cache.Cache[template]
	timeout   time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger statements are written to. The default
// logger is used otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithN1Detector records every executed statement in d
func WithN1Detector(d *query.N1Detector) Option {
	return func(s *Store) { s.detector = d }
}

// WithTemplateCache sizes the compiled clause cache
func WithTemplateCache(maxSize int, ttl time.Duration) Option {
	return func(s *Store) { s.templates = cache.New[template](maxSize, ttl) }
}

// WithQueryTimeout bounds every terminal call. Without it the process
// wide query timeout applies.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New creates a store. schema may be nil, in which case every table is
// selected with alias.* and has no relations.
func New(db driver.DB, d dialect.Dialect, schema *Schema, opts ...Option) *Store {
	s := &Store{
		db:        db,
		dialect:   d,
		schema:    schema,
		templates: cache.Default[template](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateQuery implements builder.Store. When the schema declares tables, a
// query over any other table fails with ErrUnknownTable at execution.
func (s *Store) CreateQuery(table, alias string) builder.StoreQuery {
	t, ok := s.schema.Table(table)
	q := &storeQuery{
		store:  s,
		table:  t,
		alias:  alias,
		limit:  dialect.NoLimit,
		offset: 0,
	}
	if !ok && s.schema.declared() {
		q.err = errors.NewLinqError(errors.ErrUnknownTable.Code,
			fmt.Sprintf("%s: %q", errors.ErrUnknownTable.Message, table), nil)
	}
	return q
}

// Dialect returns the dialect statements are rendered for
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

// Schema returns the schema the store was created with
func (s *Store) Schema() *Schema {
	return s.schema
}

// TemplateStats reports the compiled clause cache counters
func (s *Store) TemplateStats() cache.Stats {
	return s.templates.Stats()
}

func (s *Store) getLogger() *logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.GetDefaultLogger()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return contextutil.WithTimeout(ctx, s.timeout)
	}
	return contextutil.WithQueryTimeout(ctx)
}

// compile returns the template for clause, compiling it at most once per
// alias
func (s *Store) compile(alias, clause string) template {
	key := alias + "\x00" + clause
	if t, ok := s.templates.Get(key); ok {
		return t
	}
	t := compileClause(clause, alias)
	s.templates.Put(key, t)
	return t
}

// query runs statement and records it with the logger and the detector
func (s *Store) query(ctx context.Context, table, statement string, args []any) (driver.Rows, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, statement, args...)
	s.record(ctx, table, statement, args, time.Since(start))
	return rows, err
}

func (s *Store) queryRow(ctx context.Context, table, statement string, args []any) driver.Row {
	start := time.Now()
	row := s.db.QueryRow(ctx, statement, args...)
	s.record(ctx, table, statement, args, time.Since(start))
	return row
}

func (s *Store) record(ctx context.Context, table, statement string, args []any, d time.Duration) {
	s.getLogger().Query(builder.QueryIDFromContext(ctx), statement, args, d)
	if s.detector != nil {
		s.detector.Record(statement, table)
	}
}
