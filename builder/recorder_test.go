package builder

import (
	"context"
	"fmt"
	"reflect"
)

type post struct {
	ID      int64   `db:"id"`
	Title   string  `db:"title"`
	Content *string `db:"content"`
}

type whereCall struct {
	comb   Combinator
	clause string
	params map[string]any
}

// recordingStore captures every call a Query replays onto a store query
type recordingStore struct {
	queries []*recordingQuery
	rows    []post
	count   int64
	err     error
}

func (s *recordingStore) CreateQuery(table, alias string) StoreQuery {
	q := &recordingQuery{store: s, table: table, alias: alias, offset: -1, limit: -1}
	s.queries = append(s.queries, q)
	return q
}

func (s *recordingStore) last() *recordingQuery {
	return s.queries[len(s.queries)-1]
}

type recordingQuery struct {
	store    *recordingStore
	table    string
	alias    string
	wheres   []whereCall
	orders   []OrderBy
	offset   int
	limit    int
	includes []string
	calls    []string
	ctx      context.Context
}

func (q *recordingQuery) Where(c Combinator, clause string, params map[string]any) {
	q.wheres = append(q.wheres, whereCall{comb: c, clause: clause, params: params})
	q.calls = append(q.calls, fmt.Sprintf("%s(%s)", c, clause))
}

func (q *recordingQuery) AddOrderBy(field string, dir Direction) {
	q.orders = append(q.orders, OrderBy{Field: field, Order: dir})
	q.calls = append(q.calls, fmt.Sprintf("orderBy(%s %s)", field, dir))
}

func (q *recordingQuery) Offset(n int) {
	q.offset = n
	q.calls = append(q.calls, fmt.Sprintf("offset(%d)", n))
}

func (q *recordingQuery) Limit(n int) {
	q.limit = n
	q.calls = append(q.calls, fmt.Sprintf("limit(%d)", n))
}

func (q *recordingQuery) LeftJoinAndSelect(relation string) {
	q.includes = append(q.includes, relation)
	q.calls = append(q.calls, fmt.Sprintf("include(%s)", relation))
}

func (q *recordingQuery) GetMany(ctx context.Context, dest any) error {
	q.ctx = ctx
	if q.store.err != nil {
		return q.store.err
	}
	if q.store.rows != nil {
		reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(q.store.rows))
	}
	return nil
}

func (q *recordingQuery) GetOne(ctx context.Context, dest any) (bool, error) {
	q.ctx = ctx
	if q.store.err != nil {
		return false, q.store.err
	}
	if len(q.store.rows) == 0 || q.limit == 0 {
		return false, nil
	}
	reflect.ValueOf(dest).Elem().Set(reflect.ValueOf(q.store.rows[0]))
	return true, nil
}

func (q *recordingQuery) GetCount(ctx context.Context) (int64, error) {
	q.ctx = ctx
	return q.store.count, q.store.err
}
