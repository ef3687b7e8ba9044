package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/carlosnayan/linq-go/builder"
	"github.com/carlosnayan/linq-go/cli"
	"github.com/carlosnayan/linq-go/internal/config"
	"github.com/carlosnayan/linq-go/internal/dialect"
	"github.com/carlosnayan/linq-go/internal/driver"
	"github.com/carlosnayan/linq-go/internal/logger"
	"github.com/carlosnayan/linq-go/internal/query"
	"github.com/carlosnayan/linq-go/sqlstore"
)

// queryFlags holds the flags of `linq query`
type queryFlags struct {
	table    string
	alias    string
	where    []string
	orWhere  []string
	vars     []string
	orders   []string
	includes []string
	skip     int
	take     int
	first    bool
	count    bool
	strict   bool
}

var qf = queryFlags{skip: -1, take: -1}

var queryCmd = &cli.Command{
	Name:  "query",
	Short: "Run a query against the configured datasource",
	Long: `Builds a query from predicates and prints the matching rows as JSON.
Conditions are applied in order: --where clauses are AND-ed, --or-where
clauses are OR-ed onto what precedes them.`,
	Usage: `linq query --table posts --where "x => x.id >= min" --var min=2 [--order id:desc] [--take 10]`,
	Flags: []*cli.Flag{
		{Name: "table", Short: "t", Usage: "Table to query", Required: true, Value: &qf.table},
		{Name: "alias", Short: "a", Usage: "Query alias (default: default_alias from linq.conf)", Value: &qf.alias},
		{Name: "where", Short: "w", Usage: "Predicate AND-ed onto the query (repeatable)", Value: &qf.where},
		{Name: "or-where", Usage: "Predicate OR-ed onto the query (repeatable)", Value: &qf.orWhere},
		{Name: "var", Usage: "Bind a variable, name=value (repeatable)", Value: &qf.vars},
		{Name: "order", Short: "o", Usage: "Sort key, field[:asc|desc] (repeatable)", Value: &qf.orders},
		{Name: "include", Short: "i", Usage: "Relation to load (repeatable)", Value: &qf.includes},
		{Name: "skip", Usage: "Rows to skip", Value: &qf.skip},
		{Name: "take", Usage: "Maximum rows to return", Value: &qf.take},
		{Name: "first", Usage: "Return only the first row", Value: &qf.first},
		{Name: "count", Usage: "Print the number of matching rows", Value: &qf.count},
		{Name: "strict", Usage: "Fail instead of ignoring untranslatable predicates", Value: &qf.strict},
	},
	Run: runQuery,
}

func runQuery(args []string) error {
	defer func() { qf = queryFlags{skip: -1, take: -1} }()

	if qf.first && qf.count {
		return fmt.Errorf("--first and --count cannot be combined")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	q, err := buildQuery(store, cfg)
	if err != nil {
		return err
	}

	var result any
	switch {
	case qf.count:
		n, err := q.Count(ctx)
		if err != nil {
			return err
		}
		result = map[string]int64{"count": n}
	case qf.first:
		row, err := q.First(ctx)
		if err != nil {
			return err
		}
		result = row
	default:
		rows, err := q.ToArray(ctx)
		if err != nil {
			return err
		}
		result = rows
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// buildQuery applies the command flags to a new query
func buildQuery(store builder.Store, cfg *config.Config) (*builder.Query[map[string]any], error) {
	opts := []builder.Option{builder.WithStrict(qf.strict || cfg.Strict)}
	switch {
	case qf.alias != "":
		opts = append(opts, builder.WithAlias(qf.alias))
	case cfg.DefaultAlias != "":
		opts = append(opts, builder.WithAlias(cfg.DefaultAlias))
	}
	if cfg.SlowQuery.Duration > 0 {
		opts = append(opts, builder.WithSlowQueryThreshold(cfg.SlowQuery.Duration))
	}

	q := builder.NewQuery[map[string]any](store, qf.table, opts...)

	vars, err := parseVars(qf.vars)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(vars) {
		q.WithVariable(name, vars[name])
	}

	for _, src := range qf.where {
		q.AndWhere(builder.Source(src))
	}
	for _, src := range qf.orWhere {
		q.OrWhere(builder.Source(src))
	}
	for _, arg := range qf.orders {
		o, err := parseOrder(arg)
		if err != nil {
			return nil, err
		}
		q.OrderBy(o.Field, o.Order)
	}
	for _, rel := range qf.includes {
		q.Include(rel)
	}
	if qf.skip >= 0 {
		q.Skip(qf.skip)
	}
	if qf.take >= 0 {
		q.Take(qf.take)
	}
	return q, nil
}

// openStore connects to the configured datasource. N+1 alerts are logged
// when the returned close function runs.
func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, func(), error) {
	url := cfg.GetDatabaseURL()
	if url == "" {
		return nil, nil, fmt.Errorf("datasource url is empty, set it in %s", config.FileName)
	}
	provider := cfg.GetProvider()
	if provider == "" {
		provider = driver.DetectProvider(url)
	}

	db, err := driver.Open(ctx, provider, url, openOptions(cfg))
	if err != nil {
		return nil, nil, err
	}

	schema, err := sqlstore.SchemaFromConfig(cfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	detector := query.DefaultN1Detector()
	store := sqlstore.New(db, dialect.GetDialect(provider), schema,
		sqlstore.WithN1Detector(detector),
		sqlstore.WithQueryTimeout(cfg.QueryTimeout.Duration),
	)

	closeDB := func() {
		for _, alert := range detector.Check() {
			logger.Warn("%s", alert)
		}
		db.Close()
	}
	return store, closeDB, nil
}

// openOptions maps the datasource section onto driver options. driver =
// "pgx" sends PostgreSQL through database/sql instead of pgxpool.
func openOptions(cfg *config.Config) *driver.OpenOptions {
	opts := &driver.OpenOptions{}
	if cfg.Datasource != nil {
		opts.DriverName = cfg.Datasource.Driver
		opts.UseStdlib = cfg.Datasource.Driver == "pgx"
	}
	if cfg.Pool != nil {
		opts.Pool = &driver.PoolConfig{
			MaxConns:        cfg.Pool.MaxConns,
			MinConns:        cfg.Pool.MinConns,
			MaxConnLifetime: cfg.Pool.MaxConnLifetime.Duration,
			MaxConnIdleTime: cfg.Pool.MaxConnIdleTime.Duration,
		}
	}
	return opts
}
