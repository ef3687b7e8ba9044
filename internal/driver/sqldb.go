package driver

import (
	"context"
	"database/sql"
)

// SQLDBAdapter adapts *sql.DB (MySQL, SQLite, pgx stdlib) to the DB interface
type SQLDBAdapter struct {
	db *sql.DB
}

// NewSQLDB creates a new adapter from *sql.DB
func NewSQLDB(db *sql.DB) DB {
	return &SQLDBAdapter{db: db}
}

// Exec executes a query that doesn't return rows
func (a *SQLDBAdapter) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLResult{result: result}, nil
}

// Query executes a query that returns multiple rows
func (a *SQLDBAdapter) Query(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &SQLRows{rows: rows}, nil
}

// QueryRow executes a query that returns a single row
func (a *SQLDBAdapter) QueryRow(ctx context.Context, query string, args ...interface{}) Row {
	return a.db.QueryRowContext(ctx, query, args...)
}

// SQLDB returns the wrapped *sql.DB
func (a *SQLDBAdapter) SQLDB() *sql.DB {
	return a.db
}

// Close closes the wrapped *sql.DB
func (a *SQLDBAdapter) Close() error {
	return a.db.Close()
}

// SQLResult wraps sql.Result
type SQLResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected, 0 when the driver cannot tell
func (r *SQLResult) RowsAffected() int64 {
	n, err := r.result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// SQLRows wraps *sql.Rows
type SQLRows struct {
	rows *sql.Rows
}

// Close closes the rows iterator
func (r *SQLRows) Close() {
	_ = r.rows.Close()
}

// Err returns any error that occurred during iteration
func (r *SQLRows) Err() error {
	return r.rows.Err()
}

// Next prepares the next result row for reading
func (r *SQLRows) Next() bool {
	return r.rows.Next()
}

// Scan copies the columns in the current row into the values pointed at by dest
func (r *SQLRows) Scan(dest ...interface{}) error {
	return r.rows.Scan(dest...)
}

// Columns returns the result column names
func (r *SQLRows) Columns() ([]string, error) {
	return r.rows.Columns()
}
