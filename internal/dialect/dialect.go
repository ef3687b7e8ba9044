package dialect

import (
	"strings"
)

// NoLimit marks an absent LIMIT or OFFSET in GetLimitOffsetSyntax.
const NoLimit = -1

// Dialect representa um dialeto de banco de dados
// Abstracts the differences between PostgreSQL, MySQL and SQLite that matter
// when rendering a select: identifier quoting, placeholders and pagination.
type Dialect interface {
	// Name returns the dialect name ("postgresql", "mysql", "sqlite")
	Name() string

	// QuoteIdentifier quotes a table, alias or column name
	// PostgreSQL: "name", MySQL: `name`, SQLite: "name"
	QuoteIdentifier(name string) string

	// GetPlaceholder returns the positional placeholder for the 1-based index
	// PostgreSQL: $1, $2, MySQL: ?, ?, SQLite: ?, ?
	GetPlaceholder(index int) string

	// GetDriverName returns the database/sql driver name
	// PostgreSQL: "pgx", MySQL: "mysql", SQLite: "sqlite3"
	GetDriverName() string

	// GetLimitOffsetSyntax returns the LIMIT/OFFSET suffix. NoLimit for
	// either argument leaves that part out.
	GetLimitOffsetSyntax(limit, offset int) string
}

// GetDialect retorna o dialeto apropriado para o provider
func GetDialect(provider string) Dialect {
	provider = strings.ToLower(provider)

	switch provider {
	case "postgresql", "postgres":
		return &PostgreSQLDialect{}
	case "mysql", "mariadb":
		return &MySQLDialect{}
	case "sqlite", "sqlite3":
		return &SQLiteDialect{}
	default:
		// Default para PostgreSQL
		return &PostgreSQLDialect{}
	}
}

// quoteWith wraps name in q, doubling any embedded q.
func quoteWith(name, q string) string {
	return q + strings.ReplaceAll(name, q, q+q) + q
}
