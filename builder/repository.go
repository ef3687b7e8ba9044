package builder

// Repository is a table handle that hands out query builders
type Repository[T any] struct {
	store Store
	table string
	opts  []Option
}

// NewRepository creates a repository for table. opts apply to every
// query it creates.
func NewRepository[T any](store Store, table string, opts ...Option) *Repository[T] {
	return &Repository[T]{store: store, table: table, opts: opts}
}

// Table returns the table name
func (r *Repository[T]) Table() string {
	return r.table
}

// Linq starts a query. The optional alias overrides the configured one.
func (r *Repository[T]) Linq(alias ...string) *Query[T] {
	opts := append([]Option(nil), r.opts...)
	if len(alias) > 0 && alias[0] != "" {
		opts = append(opts, WithAlias(alias[0]))
	}
	return NewQuery[T](r.store, r.table, opts...)
}
