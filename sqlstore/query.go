package sqlstore

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/carlosnayan/linq-go/builder"
)

type clause struct {
	combinator builder.Combinator
	text       string
	params     map[string]any
}

// storeQuery accumulates one SELECT. It is used for a single terminal call.
type storeQuery struct {
	store    *Store
	table    Table
	alias    string
	clauses  []clause
	orders   []builder.OrderBy
	offset   int
	limit    int
	includes []string
	err      error
}

var _ builder.StoreQuery = (*storeQuery)(nil)

func (q *storeQuery) Where(c builder.Combinator, text string, params map[string]any) {
	q.clauses = append(q.clauses, clause{combinator: c, text: text, params: params})
}

func (q *storeQuery) AddOrderBy(field string, dir builder.Direction) {
	q.orders = append(q.orders, builder.OrderBy{Field: field, Order: dir})
}

func (q *storeQuery) Offset(n int) {
	q.offset = n
}

func (q *storeQuery) Limit(n int) {
	q.limit = n
}

func (q *storeQuery) LeftJoinAndSelect(relation string) {
	for _, r := range q.includes {
		if r == relation {
			return
		}
	}
	q.includes = append(q.includes, relation)
}

// GetMany implements builder.StoreQuery
func (q *storeQuery) GetMany(ctx context.Context, dest any) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to slice, got %T", dest)
	}

	ctx, cancel := q.store.withTimeout(ctx)
	defer cancel()

	return q.fetch(ctx, destVal.Elem())
}

// GetOne implements builder.StoreQuery
func (q *storeQuery) GetOne(ctx context.Context, dest any) (bool, error) {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.IsNil() {
		return false, fmt.Errorf("dest must be a non-nil pointer, got %T", dest)
	}

	ctx, cancel := q.store.withTimeout(ctx)
	defer cancel()

	one := *q
	if one.limit < 0 || one.limit > 1 {
		one.limit = 1
	}
	rows := reflect.New(reflect.SliceOf(destVal.Elem().Type())).Elem()
	if err := one.fetch(ctx, rows); err != nil {
		return false, err
	}
	if rows.Len() == 0 {
		return false, nil
	}
	destVal.Elem().Set(rows.Index(0))
	return true, nil
}

// GetCount implements builder.StoreQuery
func (q *storeQuery) GetCount(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	ctx, cancel := q.store.withTimeout(ctx)
	defer cancel()

	statement, args, err := q.buildCount()
	if err != nil {
		return 0, err
	}
	var count int64
	if err := q.store.queryRow(ctx, q.table.Name, statement, args).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// fetch runs the select, appends the rows to slice and loads includes
func (q *storeQuery) fetch(ctx context.Context, slice reflect.Value) error {
	if q.err != nil {
		return q.err
	}
	if err := q.checkIncludes(); err != nil {
		return err
	}

	statement, args, err := q.buildSelect()
	if err != nil {
		return err
	}

	rows, err := q.store.query(ctx, q.table.Name, statement, args)
	if err != nil {
		return err
	}

	start := slice.Len()
	keys, err := scanRows(rows, slice, q.keyColumns())
	if err != nil {
		return err
	}
	if len(q.includes) == 0 {
		return nil
	}
	return q.loadIncludes(ctx, slice.Slice(start, slice.Len()), keys)
}

// keyColumns lists the parent columns includes need
func (q *storeQuery) keyColumns() []string {
	var cols []string
	for _, name := range q.includes {
		if rel, ok := q.table.Relation(name); ok {
			cols = append(cols, rel.LocalKey)
		}
	}
	return cols
}

// buildSelect renders
// SELECT cols FROM table AS alias WHERE ... ORDER BY ... LIMIT ... OFFSET ...
func (q *storeQuery) buildSelect() (string, []any, error) {
	d := q.store.dialect
	var sb strings.Builder
	sb.Grow(128)

	sb.WriteString("SELECT ")
	sb.WriteString(q.selectList())
	q.writeFrom(&sb)

	argIndex := 1
	where, args, err := q.buildWhere(&argIndex)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(q.orders) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range q.orders {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(q.column(o.Field))
			sb.WriteByte(' ')
			sb.WriteString(string(o.Order))
		}
	}

	offset := q.offset
	if offset < 0 {
		offset = 0
	}
	if limitOffset := d.GetLimitOffsetSyntax(q.limit, offset); limitOffset != "" {
		sb.WriteByte(' ')
		sb.WriteString(limitOffset)
	}

	return sb.String(), args, nil
}

// buildCount renders SELECT COUNT(*) with the same FROM and WHERE
func (q *storeQuery) buildCount() (string, []any, error) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*)")
	q.writeFrom(&sb)

	argIndex := 1
	where, args, err := q.buildWhere(&argIndex)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	return sb.String(), args, nil
}

func (q *storeQuery) writeFrom(sb *strings.Builder) {
	d := q.store.dialect
	sb.WriteString(" FROM ")
	sb.WriteString(d.QuoteIdentifier(q.table.Name))
	sb.WriteString(" AS ")
	sb.WriteString(d.QuoteIdentifier(q.alias))
}

// buildWhere joins the clauses in order. Each clause is parenthesized so
// its own operators bind tighter than the combinators around it.
func (q *storeQuery) buildWhere(argIndex *int) (string, []any, error) {
	if len(q.clauses) == 0 {
		return "", nil, nil
	}

	d := q.store.dialect
	var sb strings.Builder
	var args []any

	for i, c := range q.clauses {
		if i > 0 {
			if c.combinator == builder.CombineOr {
				sb.WriteString(" OR ")
			} else {
				sb.WriteString(" AND ")
			}
		}
		text, clauseArgs, err := q.store.compile(q.alias, c.text).render(d, q.alias, c.params, argIndex)
		if err != nil {
			return "", nil, err
		}
		sb.WriteByte('(')
		sb.WriteString(text)
		sb.WriteByte(')')
		args = append(args, clauseArgs...)
	}

	return sb.String(), args, nil
}

// selectList renders the alias qualified columns of the table, or alias.*
// when the schema does not list them. Relation keys are always selected.
func (q *storeQuery) selectList() string {
	d := q.store.dialect
	if len(q.table.Columns) == 0 {
		return d.QuoteIdentifier(q.alias) + ".*"
	}

	cols := append([]string(nil), q.table.Columns...)
	for _, key := range q.keyColumns() {
		if !contains(cols, key) {
			cols = append(cols, key)
		}
	}

	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = q.column(col)
	}
	return strings.Join(parts, ", ")
}

func (q *storeQuery) column(name string) string {
	d := q.store.dialect
	return d.QuoteIdentifier(q.alias) + "." + d.QuoteIdentifier(name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
