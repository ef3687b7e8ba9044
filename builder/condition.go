package builder

import (
	"fmt"
	"sort"
	"strings"
)

// Combinator says how a clause joins the clauses appended before it
type Combinator string

const (
	// CombineFirst opens the clause list. Only the first appended clause is
	// rendered as such; a later CombineFirst clause joins with AND.
	CombineFirst Combinator = "where"
	CombineAnd   Combinator = "andWhere"
	CombineOr    Combinator = "orWhere"
)

// Operator is a normalized comparison operator
type Operator string

const (
	OpEq        Operator = "="
	OpNe        Operator = "!="
	OpGt        Operator = ">"
	OpLt        Operator = "<"
	OpGte       Operator = ">="
	OpLte       Operator = "<="
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT IN"
	OpLike      Operator = "LIKE"
	OpIsNull    Operator = "IS NULL"
	OpIsNotNull Operator = "IS NOT NULL"
)

// NeutralClause is the always-true clause a failed translation degrades to
const NeutralClause = "1=1"

// Condition is a translated clause. Text references exactly the
// placeholders present as keys in Params: `:name` for a scalar and
// `(:...name)` for a list.
type Condition struct {
	Combinator Combinator
	Text       string
	Params     map[string]any
}

// IsNeutral reports whether c is the always-true clause
func (c Condition) IsNeutral() bool {
	return c.Text == NeutralClause && len(c.Params) == 0
}

func (c Condition) clone() Condition {
	out := c
	if c.Params != nil {
		out.Params = make(map[string]any, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return out
}

// String renders the condition with its bindings, for logs and the CLI
func (c Condition) String() string {
	if len(c.Params) == 0 {
		return fmt.Sprintf("%s %s", c.Combinator, c.Text)
	}
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	binds := make([]string, len(keys))
	for i, k := range keys {
		binds[i] = fmt.Sprintf("%s=%s", k, formatOperand(c.Params[k]))
	}
	return fmt.Sprintf("%s %s {%s}", c.Combinator, c.Text, strings.Join(binds, ", "))
}

// Diagnostic records a predicate or call that degraded to the neutral
// clause or was dropped
type Diagnostic struct {
	Predicate string
	Reason    string
}

func (d Diagnostic) Error() string {
	if d.Predicate == "" {
		return d.Reason
	}
	return fmt.Sprintf("%s: %s", d.Predicate, d.Reason)
}
