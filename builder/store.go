package builder

import "context"

// Store is the storage engine the builder executes against
type Store interface {
	// CreateQuery starts a query over table, aliased as alias
	CreateQuery(table, alias string) StoreQuery
}

// StoreQuery is one store-native query. The builder creates a fresh one
// for every terminal call and replays its state onto it.
type StoreQuery interface {
	// Where appends a clause. params binds exactly the placeholders the
	// clause references.
	Where(c Combinator, clause string, params map[string]any)
	AddOrderBy(field string, dir Direction)
	Offset(n int)
	Limit(n int)
	// LeftJoinAndSelect eagerly loads the named relation
	LeftJoinAndSelect(relation string)

	// GetMany fills dest, a pointer to a slice
	GetMany(ctx context.Context, dest any) error
	// GetOne fills dest, a pointer to a value, and reports whether a row matched
	GetOne(ctx context.Context, dest any) (bool, error)
	GetCount(ctx context.Context) (int64, error)
}

type queryIDKey struct{}

// WithQueryID tags ctx with the id of the terminal call so a store can
// log its statements under the same id
func WithQueryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, queryIDKey{}, id)
}

// QueryIDFromContext returns the id set by WithQueryID
func QueryIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(queryIDKey{}).(string)
	return id
}
