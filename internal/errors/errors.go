package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var ProductionMode = os.Getenv("ENV") == "production" || os.Getenv("ENV") == "prod"

// LinqError is the error type surfaced by the builder and the SQL store.
// Two LinqErrors match under errors.Is when their codes are equal.
type LinqError struct {
	Code    string
	Message string
	cause   error
}

func (e *LinqError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *LinqError) Unwrap() error {
	return e.cause
}

func (e *LinqError) Is(target error) bool {
	if t, ok := target.(*LinqError); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrNotFound             = &LinqError{Code: "L2025", Message: "Record not found"}
	ErrUniqueConstraint     = &LinqError{Code: "L2002", Message: "Unique constraint violation"}
	ErrForeignKeyConstraint = &LinqError{Code: "L2003", Message: "Foreign key constraint violation"}
	ErrNullConstraint       = &LinqError{Code: "L2011", Message: "Not null constraint violation"}
	ErrRawQueryFailed       = &LinqError{Code: "L2010", Message: "Query failed"}
	ErrTableNotFound        = &LinqError{Code: "L2021", Message: "Table does not exist"}
	ErrColumnNotFound       = &LinqError{Code: "L2022", Message: "Column not found"}
	ErrTooManyRows          = &LinqError{Code: "L2000", Message: "Result set too large"}

	ErrConnectionFailed = &LinqError{Code: "L1001", Message: "Database not reachable"}
	ErrTimeout          = &LinqError{Code: "L1008", Message: "Operation timeout"}
	ErrCanceled         = &LinqError{Code: "L1009", Message: "Operation canceled"}

	ErrUntranslatable     = &LinqError{Code: "L3001", Message: "Predicate could not be translated"}
	ErrUnboundPlaceholder = &LinqError{Code: "L3002", Message: "Clause references an unbound placeholder"}
	ErrUnknownRelation    = &LinqError{Code: "L3003", Message: "Unknown relation"}
	ErrUnknownTable       = &LinqError{Code: "L3004", Message: "Unknown table"}
	ErrListTooLarge       = &LinqError{Code: "L3005", Message: "List exceeds the bound value limit"}
)

type OperationType string

const (
	OpFindMany  OperationType = "FindMany"
	OpFindFirst OperationType = "FindFirst"
	OpCount     OperationType = "Count"
)

func NewLinqError(code, message string, cause error) *LinqError {
	return &LinqError{Code: code, Message: message, cause: cause}
}

func WrapLinqError(sentinel *LinqError, cause error) *LinqError {
	return &LinqError{Code: sentinel.Code, Message: sentinel.Message, cause: cause}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func IsUntranslatable(err error) bool {
	return errors.Is(err, ErrUntranslatable)
}

func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no rows") ||
		strings.Contains(errStr, "ErrNoRows")
}

// classifyEngineError maps MySQL error numbers and PostgreSQL SQLSTATE
// codes. ok is false for any other error.
func classifyEngineError(err error) (sentinel *LinqError, ok bool) {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062:
			return ErrUniqueConstraint, true
		case 1451, 1452:
			return ErrForeignKeyConstraint, true
		case 1048:
			return ErrNullConstraint, true
		case 1146:
			return ErrTableNotFound, true
		case 1054:
			return ErrColumnNotFound, true
		case 3024:
			return ErrTimeout, true
		}
		return ErrRawQueryFailed, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return ErrUniqueConstraint, true
		case pgErr.Code == "23503":
			return ErrForeignKeyConstraint, true
		case pgErr.Code == "23502":
			return ErrNullConstraint, true
		case pgErr.Code == "42P01":
			return ErrTableNotFound, true
		case pgErr.Code == "42703":
			return ErrColumnNotFound, true
		case pgErr.Code == "57014":
			return ErrTimeout, true
		case strings.HasPrefix(pgErr.Code, "08"):
			return ErrConnectionFailed, true
		}
		return ErrRawQueryFailed, true
	}

	if errors.Is(err, mysql.ErrInvalidConn) {
		return ErrConnectionFailed, true
	}
	return nil, false
}

// SQLite reports failures only as text.
func isUniqueViolation(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "foreign key constraint failed")
}

func isNullViolation(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "not null constraint failed")
}

func isMissingTable(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such table")
}

func isMissingColumn(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such column")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded")
}

func isConnectionError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "database is closed")
}

// MapDriverError classifies an engine failure into a LinqError carrying the
// original error as its cause. Errors that already are LinqErrors pass through.
func MapDriverError(err error, op OperationType) error {
	if err == nil {
		return nil
	}

	var le *LinqError
	if errors.As(err, &le) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return WrapLinqError(ErrCanceled, err)
	}

	if isNoRows(err) {
		switch op {
		case OpFindMany:
			return nil
		default:
			return WrapLinqError(ErrNotFound, err)
		}
	}

	if sentinel, ok := classifyEngineError(err); ok {
		return WrapLinqError(sentinel, err)
	}

	switch {
	case isUniqueViolation(err):
		return WrapLinqError(ErrUniqueConstraint, err)
	case isForeignKeyViolation(err):
		return WrapLinqError(ErrForeignKeyConstraint, err)
	case isNullViolation(err):
		return WrapLinqError(ErrNullConstraint, err)
	case isMissingTable(err):
		return WrapLinqError(ErrTableNotFound, err)
	case isMissingColumn(err):
		return WrapLinqError(ErrColumnNotFound, err)
	case isTimeout(err):
		return WrapLinqError(ErrTimeout, err)
	case isConnectionError(err):
		return WrapLinqError(ErrConnectionFailed, err)
	}

	return WrapLinqError(ErrRawQueryFailed, err)
}

// SanitizeError hides schema details from error messages in production mode.
func SanitizeError(err error) error {
	if err == nil {
		return nil
	}

	if !ProductionMode {
		return err
	}

	var le *LinqError
	if errors.As(err, &le) {
		return &LinqError{Code: le.Code, Message: le.Message}
	}

	errMsg := err.Error()
	errMsg = sanitizeSchemaNames(errMsg)
	errMsg = sanitizeSQLDetails(errMsg)

	return fmt.Errorf("%s", errMsg)
}

func sanitizeSchemaNames(msg string) string {
	patterns := []string{"table", "relation", "column", "field", "from", "where"}
	lower := strings.ToLower(msg)
	for _, pattern := range patterns {
		if strings.Contains(lower, pattern) {
			return "database operation failed"
		}
	}
	return msg
}

func sanitizeSQLDetails(msg string) string {
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "sql") ||
		strings.Contains(lower, "syntax") ||
		strings.Contains(lower, "constraint") {
		return "database operation failed"
	}
	return msg
}
