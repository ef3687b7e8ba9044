// Package linq compiles entity predicates into parameterized query
// conditions and runs them through a fluent, replayable query builder.
//
// The builder lives in package builder; package sqlstore executes its
// queries against PostgreSQL, MySQL or SQLite.
//
//	repo := builder.NewRepository[Post](sqlstore.New(db, d, schema), "posts")
//	posts, err := repo.Linq("p").
//		WithVariable("lid", 3).
//		WhereGte("id", 2).
//		AndWhere(builder.Source("p => p.id <= lid")).
//		ToArray(ctx)
package linq

// Version is the release of the library and the linq CLI
const Version = "0.1.0"
