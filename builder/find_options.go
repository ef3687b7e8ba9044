package builder

import "regexp"

var equalityClause = regexp.MustCompile(`^(\w+)\.(\w+)\s*=\s*:(\w+)$`)

// ToFindOptions projects the query into an equality-only filter. Only
// `alias.field = :p` clauses on this query's alias are kept; every other
// condition is left out.
func (q *Query[T]) ToFindOptions() FindOptions {
	fo := FindOptions{
		Where:     make(map[string]any),
		Order:     q.Orders(),
		Skip:      copyInt(q.skip),
		Take:      copyInt(q.take),
		Relations: q.Relations(),
	}

	for _, c := range q.conditions {
		m := equalityClause.FindStringSubmatch(c.Text)
		if m == nil || m[1] != q.opts.alias {
			continue
		}
		value, ok := c.Params[m[3]]
		if !ok {
			continue
		}
		fo.Where[m[2]] = value
	}

	return fo
}
