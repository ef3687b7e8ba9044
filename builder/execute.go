package builder

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/carlosnayan/linq-go/internal/errors"
	"github.com/google/uuid"
)

// ToArray runs the query and returns every matching row. An empty result
// is an empty slice.
func (q *Query[T]) ToArray(ctx context.Context) ([]T, error) {
	if err := q.checkStrict(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx = WithQueryID(ctx, id)
	start := time.Now()

	sq := q.store.CreateQuery(q.table, q.opts.alias)
	q.apply(sq, true)

	var rows []T
	err := sq.GetMany(ctx, &rows)
	q.logExecution(id, "ToArray", start, len(rows), err)
	if mapped := errors.MapDriverError(err, errors.OpFindMany); mapped != nil {
		return nil, mapped
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// First runs the query limited to one row. It returns nil, nil when
// nothing matches.
func (q *Query[T]) First(ctx context.Context) (*T, error) {
	if err := q.checkStrict(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx = WithQueryID(ctx, id)
	start := time.Now()

	sq := q.store.CreateQuery(q.table, q.opts.alias)
	q.apply(sq, true)
	limit := 1
	if q.take != nil {
		limit = min(*q.take, 1)
	}
	sq.Limit(limit)

	var row T
	found, err := sq.GetOne(ctx, &row)
	n := 0
	if found {
		n = 1
	}
	q.logExecution(id, "First", start, n, err)
	if mapped := errors.MapDriverError(err, errors.OpFindFirst); mapped != nil {
		if errors.IsNotFound(mapped) {
			return nil, nil
		}
		return nil, mapped
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}

// Count returns the number of matching rows. Pagination and includes are
// ignored.
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	if err := q.checkStrict(); err != nil {
		return 0, err
	}

	id := uuid.NewString()
	ctx = WithQueryID(ctx, id)
	start := time.Now()

	sq := q.store.CreateQuery(q.table, q.opts.alias)
	q.apply(sq, false)

	count, err := sq.GetCount(ctx)
	q.logExecution(id, "Count", start, 1, err)
	if mapped := errors.MapDriverError(err, errors.OpCount); mapped != nil {
		return 0, mapped
	}
	return count, nil
}

// apply replays the accumulated state onto a fresh store query: conditions
// in append order, then sorts, then skip/take, then includes. With full
// unset only the conditions are replayed.
func (q *Query[T]) apply(sq StoreQuery, full bool) {
	for i, c := range q.conditions {
		comb := c.Combinator
		switch {
		case i == 0:
			comb = CombineFirst
		case comb == CombineFirst:
			comb = CombineAnd
		}
		sq.Where(comb, c.Text, c.clone().Params)
	}
	if !full {
		return
	}

	for _, o := range q.orders {
		sq.AddOrderBy(o.Field, o.Order)
	}
	if q.skip != nil {
		sq.Offset(*q.skip)
	}
	if q.take != nil {
		sq.Limit(*q.take)
	}
	for _, r := range q.relations {
		sq.LeftJoinAndSelect(r)
	}
}

// checkStrict fails when strict mode is on and something degraded
func (q *Query[T]) checkStrict() error {
	if !q.opts.strict || len(q.diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(q.diagnostics))
	for i, d := range q.diagnostics {
		errs[i] = d
	}
	return errors.WrapLinqError(errors.ErrUntranslatable, stderrors.Join(errs...))
}
