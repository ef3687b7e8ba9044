package builder

import (
	"fmt"

	"github.com/carlosnayan/linq-go/internal/limits"
	"github.com/carlosnayan/linq-go/internal/logger"
)

// Query accumulates conditions, sorts, pagination and includes for one
// table and executes them on demand. A Query is owned by one caller and
// is not safe for concurrent use. Every mutator returns the same Query.
type Query[T any] struct {
	store Store
	table string
	opts  options

	vars        *QueryContext
	conditions  []Condition
	orders      []OrderBy
	skip        *int
	take        *int
	relations   []string
	diagnostics []Diagnostic
}

// NewQuery creates a builder over table. The default alias is "entity".
func NewQuery[T any](store Store, table string, opts ...Option) *Query[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Query[T]{
		store: store,
		table: table,
		opts:  o,
		vars:  NewQueryContext(),
	}
}

// Alias returns the alias clauses are written against
func (q *Query[T]) Alias() string {
	return q.opts.alias
}

// Table returns the table the query reads
func (q *Query[T]) Table() string {
	return q.table
}

// WithVariable binds name for predicates appended after this call
func (q *Query[T]) WithVariable(name string, value any) *Query[T] {
	q.vars.Set(name, value)
	return q
}

// Variables returns the builder's variable context
func (q *Query[T]) Variables() *QueryContext {
	return q.vars
}

// Where appends a predicate as the opening clause
func (q *Query[T]) Where(p Predicate) *Query[T] {
	return q.addPredicate(CombineFirst, p)
}

// AndWhere appends a predicate joined with AND
func (q *Query[T]) AndWhere(p Predicate) *Query[T] {
	return q.addPredicate(CombineAnd, p)
}

// OrWhere appends a predicate joined with OR
func (q *Query[T]) OrWhere(p Predicate) *Query[T] {
	return q.addPredicate(CombineOr, p)
}

func (q *Query[T]) addPredicate(c Combinator, p Predicate) *Query[T] {
	if p == nil {
		return q.appendCondition(c, "<nil>", Condition{Text: NeutralClause}, &Diagnostic{Reason: "nil predicate"})
	}
	if len(q.conditions) >= limits.MaxQueryConditions {
		q.drop(p.String(), fmt.Sprintf("more than %d conditions", limits.MaxQueryConditions))
		return q
	}

	ex := p.Extract(q.vars)
	cond, diag := Translate(q.opts.alias, ex)
	return q.appendCondition(c, p.String(), cond, diag)
}

// WhereEq appends `alias.field = :p_field`
func (q *Query[T]) WhereEq(field string, value any) *Query[T] {
	return q.whereDirect(field, OpEq, value)
}

// WhereNe appends `alias.field != :p_field`
func (q *Query[T]) WhereNe(field string, value any) *Query[T] {
	return q.whereDirect(field, OpNe, value)
}

// WhereGt appends `alias.field > :p_field`
func (q *Query[T]) WhereGt(field string, value any) *Query[T] {
	return q.whereDirect(field, OpGt, value)
}

// WhereLt appends `alias.field < :p_field`
func (q *Query[T]) WhereLt(field string, value any) *Query[T] {
	return q.whereDirect(field, OpLt, value)
}

// WhereGte appends `alias.field >= :p_field`
func (q *Query[T]) WhereGte(field string, value any) *Query[T] {
	return q.whereDirect(field, OpGte, value)
}

// WhereLte appends `alias.field <= :p_field`
func (q *Query[T]) WhereLte(field string, value any) *Query[T] {
	return q.whereDirect(field, OpLte, value)
}

// WhereLike appends `alias.field LIKE :p_field`. By default value is
// wrapped as %value%; StartsWith drops the leading wildcard and EndsWith
// drops the trailing one.
func (q *Query[T]) WhereLike(field string, value string, opts ...LikeOptions) *Query[T] {
	var o LikeOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	desc := fmt.Sprintf("%s LIKE %q", field, value)
	if len(q.conditions) >= limits.MaxQueryConditions {
		q.drop(desc, fmt.Sprintf("more than %d conditions", limits.MaxQueryConditions))
		return q
	}
	if !IsIdentifier(q.opts.alias) || !IsIdentifier(field) {
		cond, diag := translateComparison(q.opts.alias, field, OpLike, value, true)
		return q.appendCondition(CombineFirst, desc, cond, diag)
	}
	cond := likeCondition(q.opts.alias+"."+field, Placeholder(field), likePattern(value, o))
	return q.appendCondition(CombineFirst, desc, cond, nil)
}

// WhereIn appends `alias.field IN (:...p_field)`. values may be given
// one by one or as a single slice.
func (q *Query[T]) WhereIn(field string, values ...any) *Query[T] {
	return q.whereList(field, OpIn, values)
}

// WhereNotIn appends `alias.field NOT IN (:...p_field)`
func (q *Query[T]) WhereNotIn(field string, values ...any) *Query[T] {
	return q.whereList(field, OpNotIn, values)
}

// WhereIsNull appends `alias.field IS NULL`
func (q *Query[T]) WhereIsNull(field string) *Query[T] {
	return q.whereDirect(field, OpIsNull, nil)
}

// WhereIsNotNull appends `alias.field IS NOT NULL`
func (q *Query[T]) WhereIsNotNull(field string) *Query[T] {
	return q.whereDirect(field, OpIsNotNull, nil)
}

func (q *Query[T]) whereList(field string, op Operator, values []any) *Query[T] {
	list := values
	if len(values) == 1 {
		if l, ok := asList(values[0]); ok {
			list = l
		}
	}
	return q.whereDirect(field, op, append([]any{}, list...))
}

func (q *Query[T]) whereDirect(field string, op Operator, value any) *Query[T] {
	hasValue := op != OpIsNull && op != OpIsNotNull
	c := Comparison{Field: field, Operator: op}
	if hasValue {
		c.Operand = Literal{Value: value}
	}
	if len(q.conditions) >= limits.MaxQueryConditions {
		q.drop(c.String(), fmt.Sprintf("more than %d conditions", limits.MaxQueryConditions))
		return q
	}
	cond, diag := translateComparison(q.opts.alias, field, op, value, hasValue)
	return q.appendCondition(CombineFirst, c.String(), cond, diag)
}

func (q *Query[T]) appendCondition(c Combinator, desc string, cond Condition, diag *Diagnostic) *Query[T] {
	cond.Combinator = c
	if diag != nil {
		diag.Predicate = desc
		q.diagnostics = append(q.diagnostics, *diag)
		q.getLogger().Warn("linq: predicate on %s degraded to %s: %s", q.table, NeutralClause, diag.Error())
	}
	q.conditions = append(q.conditions, cond)
	return q
}

// drop records a call that was ignored entirely
func (q *Query[T]) drop(desc, reason string) {
	d := Diagnostic{Predicate: desc, Reason: reason}
	q.diagnostics = append(q.diagnostics, d)
	q.getLogger().Warn("linq: ignoring %s on %s", d.Error(), q.table)
}

// OrderBy appends a sort key. Keys apply in call order.
func (q *Query[T]) OrderBy(field string, dir Direction) *Query[T] {
	desc := fmt.Sprintf("order by %s %s", field, dir)
	switch {
	case !IsIdentifier(field):
		q.drop(desc, "invalid field name")
	case dir != Asc && dir != Desc:
		q.drop(desc, "invalid direction")
	case len(q.orders) >= limits.MaxOrderByFields:
		q.drop(desc, fmt.Sprintf("more than %d sort keys", limits.MaxOrderByFields))
	default:
		q.orders = append(q.orders, OrderBy{Field: field, Order: dir})
	}
	return q
}

// Skip sets the number of rows to skip. The last call wins.
func (q *Query[T]) Skip(n int) *Query[T] {
	if n < 0 {
		q.drop(fmt.Sprintf("skip %d", n), "negative offset")
		return q
	}
	q.skip = &n
	return q
}

// Take sets the maximum number of rows. The last call wins.
func (q *Query[T]) Take(n int) *Query[T] {
	if n < 0 {
		q.drop(fmt.Sprintf("take %d", n), "negative limit")
		return q
	}
	q.take = &n
	return q
}

// Include eagerly loads a relation. Repeated names are ignored.
func (q *Query[T]) Include(relation string) *Query[T] {
	if !IsIdentifier(relation) {
		q.drop("include "+relation, "invalid relation name")
		return q
	}
	for _, r := range q.relations {
		if r == relation {
			return q
		}
	}
	if len(q.relations) >= limits.MaxJoins {
		q.drop("include "+relation, fmt.Sprintf("more than %d relations", limits.MaxJoins))
		return q
	}
	q.relations = append(q.relations, relation)
	return q
}

// Conditions returns a copy of the accumulated conditions
func (q *Query[T]) Conditions() []Condition {
	out := make([]Condition, len(q.conditions))
	for i, c := range q.conditions {
		out[i] = c.clone()
	}
	return out
}

// Orders returns a copy of the sort keys
func (q *Query[T]) Orders() []OrderBy {
	return append([]OrderBy(nil), q.orders...)
}

// Relations returns a copy of the included relations in call order
func (q *Query[T]) Relations() []string {
	return append([]string(nil), q.relations...)
}

// Pagination returns the skip and take values, nil when unset
func (q *Query[T]) Pagination() (skip, take *int) {
	return copyInt(q.skip), copyInt(q.take)
}

// Diagnostics returns every degradation recorded so far
func (q *Query[T]) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), q.diagnostics...)
}

// Clone returns an independent copy of the query state
func (q *Query[T]) Clone() *Query[T] {
	return &Query[T]{
		store:       q.store,
		table:       q.table,
		opts:        q.opts,
		vars:        q.vars.clone(),
		conditions:  q.Conditions(),
		orders:      q.Orders(),
		skip:        copyInt(q.skip),
		take:        copyInt(q.take),
		relations:   q.Relations(),
		diagnostics: q.Diagnostics(),
	}
}

// SetLogger sets the logger used by this query
func (q *Query[T]) SetLogger(l *logger.Logger) *Query[T] {
	q.opts.logger = l
	return q
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
