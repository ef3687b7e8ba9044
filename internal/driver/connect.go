package driver

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/carlosnayan/linq-go/internal/dialect"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig tunes the pgx connection pool
type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolConfig returns the pool settings used when none are configured
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		MaxConns:          10,
		MinConns:          1,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
}

func (p *PoolConfig) apply(cfg *pgxpool.Config) {
	if p.MaxConns > 0 {
		cfg.MaxConns = p.MaxConns
	}
	if p.MinConns > 0 {
		cfg.MinConns = p.MinConns
	}
	if p.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = p.MaxConnLifetime
	}
	if p.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = p.MaxConnIdleTime
	}
	if p.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = p.HealthCheckPeriod
	}
}

// OpenOptions controls how Open reaches the database
type OpenOptions struct {
	// DriverName overrides the database/sql driver picked from the dialect
	DriverName string
	// Pool is applied to PostgreSQL pools. Nil means DefaultPoolConfig.
	Pool *PoolConfig
	// UseStdlib opens PostgreSQL through database/sql instead of pgxpool
	UseStdlib bool
}

// Open connects to url and returns a DB adapter. PostgreSQL goes through
// pgxpool unless opts.UseStdlib is set; MySQL and SQLite use database/sql.
// The caller must register the database/sql driver it needs.
func Open(ctx context.Context, provider, url string, opts *OpenOptions) (DB, error) {
	if opts == nil {
		opts = &OpenOptions{}
	}
	if provider == "" {
		provider = DetectProvider(url)
	}
	d := dialect.GetDialect(provider)

	if d.Name() == "postgresql" && !opts.UseStdlib {
		pool, err := NewPgxPoolWithConfig(ctx, url, opts.Pool)
		if err != nil {
			return nil, err
		}
		return NewPgxPool(pool), nil
	}

	driverName := opts.DriverName
	if driverName == "" {
		driverName = d.GetDriverName()
	}

	db, err := sql.Open(driverName, dataSourceName(d.Name(), url))
	if err != nil {
		if strings.Contains(err.Error(), "unknown driver") {
			return nil, fmt.Errorf("driver %q is not registered, import it in your main package: %w", driverName, err)
		}
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}

	return NewSQLDB(db), nil
}

// NewPgxPoolWithConfig parses url, applies poolConfig and pings the new pool
func NewPgxPoolWithConfig(ctx context.Context, url string, poolConfig *PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres url: %w", err)
	}
	if poolConfig == nil {
		poolConfig = DefaultPoolConfig()
	}
	poolConfig.apply(cfg)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	return pool, nil
}

// DetectProvider detects the provider from the URL
func DetectProvider(url string) string {
	url = strings.ToLower(url)

	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgresql"
	case strings.HasPrefix(url, "mysql://"):
		return "mysql"
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"), url == ":memory:":
		return "sqlite"
	}

	return "postgresql"
}

// dataSourceName strips URL schemes the database/sql drivers do not accept.
func dataSourceName(provider, url string) string {
	switch provider {
	case "mysql":
		return strings.TrimPrefix(url, "mysql://")
	case "sqlite":
		return strings.TrimPrefix(url, "sqlite://")
	}
	return url
}
