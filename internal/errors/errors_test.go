package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDriverError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		op       OperationType
		expected *LinqError
	}{
		{"no rows on first", sql.ErrNoRows, OpFindFirst, ErrNotFound},
		{"unique", fmt.Errorf("UNIQUE constraint failed: posts.title"), OpFindMany, ErrUniqueConstraint},
		{"missing table", fmt.Errorf("no such table: posts"), OpFindMany, ErrTableNotFound},
		{"missing column", fmt.Errorf("no such column: entity.nope"), OpCount, ErrColumnNotFound},
		{"deadline", context.DeadlineExceeded, OpFindMany, ErrTimeout},
		{"canceled", context.Canceled, OpFindMany, ErrCanceled},
		{"refused", fmt.Errorf("dial tcp: connection refused"), OpFindMany, ErrConnectionFailed},
		{"other", fmt.Errorf("boom"), OpFindMany, ErrRawQueryFailed},
		{"digits in sqlite column name", fmt.Errorf("SQL logic error: no such column: entity.col1062"), OpFindMany, ErrColumnNotFound},
		{"digits in plain message", fmt.Errorf("near 23505: syntax error"), OpFindMany, ErrRawQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapDriverError(tt.err, tt.op)
			if !errors.Is(got, tt.expected) {
				t.Fatalf("MapDriverError(%v) = %v, want code %s", tt.err, got, tt.expected.Code)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("cause %v not preserved in %v", tt.err, got)
			}
		})
	}
}

func TestMapDriverError_NoRowsOnFindManyIsNil(t *testing.T) {
	if err := MapDriverError(sql.ErrNoRows, OpFindMany); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestMapDriverError_PassesLinqErrorThrough(t *testing.T) {
	in := WrapLinqError(ErrUnboundPlaceholder, fmt.Errorf("p_id"))
	if got := MapDriverError(in, OpFindMany); got != error(in) {
		t.Errorf("expected the same error back, got %v", got)
	}
}

func TestSanitizeError_ProductionKeepsCode(t *testing.T) {
	prev := ProductionMode
	ProductionMode = true
	defer func() { ProductionMode = prev }()

	err := SanitizeError(WrapLinqError(ErrColumnNotFound, fmt.Errorf("no such column: secret_col")))
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("code lost: %v", err)
	}
	if err.Error() != ErrColumnNotFound.Message {
		t.Errorf("message leaked cause: %q", err.Error())
	}
}

func TestMapDriverError_MySQL(t *testing.T) {
	tests := []struct {
		name     string
		number   uint16
		expected *LinqError
	}{
		{"duplicate entry", 1062, ErrUniqueConstraint},
		{"foreign key", 1452, ErrForeignKeyConstraint},
		{"null column", 1048, ErrNullConstraint},
		{"missing table", 1146, ErrTableNotFound},
		{"unknown column", 1054, ErrColumnNotFound},
		{"statement timeout", 3024, ErrTimeout},
		{"other number", 1064, ErrRawQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cause := fmt.Errorf("query: %w", &mysql.MySQLError{Number: tt.number, Message: "Unknown column 'no_such_table' in 'where clause'"})
			got := MapDriverError(cause, OpFindMany)
			if !errors.Is(got, tt.expected) {
				t.Fatalf("MapDriverError(%d) = %v, want code %s", tt.number, got, tt.expected.Code)
			}
		})
	}
}

func TestMapDriverError_MySQLInvalidConn(t *testing.T) {
	if got := MapDriverError(mysql.ErrInvalidConn, OpCount); !errors.Is(got, ErrConnectionFailed) {
		t.Errorf("expected ErrConnectionFailed, got %v", got)
	}
}

func TestMapDriverError_PostgreSQL(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected *LinqError
	}{
		{"unique", "23505", ErrUniqueConstraint},
		{"foreign key", "23503", ErrForeignKeyConstraint},
		{"not null", "23502", ErrNullConstraint},
		{"undefined table", "42P01", ErrTableNotFound},
		{"undefined column", "42703", ErrColumnNotFound},
		{"query canceled", "57014", ErrTimeout},
		{"connection failure", "08006", ErrConnectionFailed},
		{"syntax", "42601", ErrRawQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cause := &pgconn.PgError{Code: tt.code, Message: "duplicate key value violates unique constraint"}
			got := MapDriverError(cause, OpFindMany)
			if !errors.Is(got, tt.expected) {
				t.Fatalf("MapDriverError(%s) = %v, want code %s", tt.code, got, tt.expected.Code)
			}
			var pgErr *pgconn.PgError
			if !errors.As(got, &pgErr) {
				t.Errorf("PgError not reachable through %v", got)
			}
		})
	}
}

func TestSanitizeError_DevelopmentKeepsMessage(t *testing.T) {
	prev := ProductionMode
	ProductionMode = false
	defer func() { ProductionMode = prev }()

	in := WrapLinqError(ErrColumnNotFound, fmt.Errorf("no such column: secret_col"))
	if got := SanitizeError(in); got != error(in) {
		t.Errorf("expected the error unchanged, got %v", got)
	}
}

func TestSanitizeError_ProductionHidesPlainErrors(t *testing.T) {
	prev := ProductionMode
	ProductionMode = true
	defer func() { ProductionMode = prev }()

	got := SanitizeError(fmt.Errorf("no such table: users"))
	if got.Error() != "database operation failed" {
		t.Errorf("schema leaked: %q", got.Error())
	}
}
