package builder

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Predicate is a single-comparison filter over one entity. Extract
// resolves it against the builder's variables; it must never panic and
// reports failure through Extraction.Matched.
type Predicate interface {
	Extract(vars *QueryContext) Extraction
	String() string
}

// Operand is the right-hand side of a Comparison: a Literal, a
// VariableRef or a Bound variable
type Operand interface {
	resolve(vars *QueryContext) (value any, name string, ok bool)
	String() string
}

// Literal is a constant operand
type Literal struct {
	Value any
}

func (l Literal) resolve(*QueryContext) (any, string, bool) {
	return l.Value, "", true
}

func (l Literal) String() string {
	return formatOperand(l.Value)
}

// VariableRef names a variable bound on the builder with WithVariable.
// It is resolved when the predicate is appended.
type VariableRef struct {
	Name string
}

func (v VariableRef) resolve(vars *QueryContext) (any, string, bool) {
	value, ok := vars.Get(v.Name)
	return value, v.Name, ok
}

func (v VariableRef) String() string {
	return v.Name
}

// Bound is a named variable that carries its own value
type Bound struct {
	Name  string
	Value any
}

func (b Bound) resolve(*QueryContext) (any, string, bool) {
	return b.Value, b.Name, true
}

func (b Bound) String() string {
	return b.Name
}

// Var references a builder variable by name
func Var(name string) VariableRef {
	return VariableRef{Name: name}
}

// Bind creates a variable reference that already holds its value
func Bind(name string, value any) Bound {
	return Bound{Name: name, Value: value}
}

// Comparison is `<entity>.<Field> <Operator> <Operand>`. Operand is nil
// for IS NULL and IS NOT NULL.
type Comparison struct {
	Field    string
	Operator Operator
	Operand  Operand
}

// Extract implements Predicate without parsing any text
func (c Comparison) Extract(vars *QueryContext) Extraction {
	ex := Extraction{Field: c.Field, Operator: c.Operator}

	if c.Operator == OpIsNull || c.Operator == OpIsNotNull {
		ex.Matched = true
		return ex
	}
	if c.Operand == nil {
		ex.Reason = fmt.Sprintf("operator %s needs an operand", c.Operator)
		return ex
	}

	value, name, ok := c.Operand.resolve(vars)
	if !ok {
		ex.Reason = fmt.Sprintf("variable %q is not bound", name)
		return ex
	}
	if name != "" {
		ex.Resolved = map[string]any{name: value}
	}

	ex.Matched = true
	ex.Value = value
	ex.HasValue = true
	return ex
}

func (c Comparison) String() string {
	if c.Operand == nil {
		return fmt.Sprintf("%s %s", c.Field, c.Operator)
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Operand)
}

// FieldRef starts a typed comparison on an entity field
type FieldRef struct {
	name string
}

// Field returns a reference to the named entity field
func Field(name string) FieldRef {
	return FieldRef{name: name}
}

func (f FieldRef) compare(op Operator, value any) Comparison {
	return Comparison{Field: f.name, Operator: op, Operand: toOperand(value)}
}

// Eq compares with =. value may be a plain value, Var or Bind.
func (f FieldRef) Eq(value any) Comparison { return f.compare(OpEq, value) }

// Ne compares with !=
func (f FieldRef) Ne(value any) Comparison { return f.compare(OpNe, value) }

// Gt compares with >
func (f FieldRef) Gt(value any) Comparison { return f.compare(OpGt, value) }

// Lt compares with <
func (f FieldRef) Lt(value any) Comparison { return f.compare(OpLt, value) }

// Gte compares with >=
func (f FieldRef) Gte(value any) Comparison { return f.compare(OpGte, value) }

// Lte compares with <=
func (f FieldRef) Lte(value any) Comparison { return f.compare(OpLte, value) }

// Like matches the field against %value%
func (f FieldRef) Like(value any) Comparison { return f.compare(OpLike, value) }

// In matches any of values. A single Var or Bind argument must resolve
// to a slice.
func (f FieldRef) In(values ...any) Comparison { return f.list(OpIn, values) }

// NotIn matches none of values
func (f FieldRef) NotIn(values ...any) Comparison { return f.list(OpNotIn, values) }

// IsNull matches NULL columns
func (f FieldRef) IsNull() Comparison {
	return Comparison{Field: f.name, Operator: OpIsNull}
}

// IsNotNull matches non-NULL columns
func (f FieldRef) IsNotNull() Comparison {
	return Comparison{Field: f.name, Operator: OpIsNotNull}
}

func (f FieldRef) list(op Operator, values []any) Comparison {
	if len(values) == 1 {
		if operand, ok := values[0].(Operand); ok {
			return Comparison{Field: f.name, Operator: op, Operand: operand}
		}
		if list, ok := asList(values[0]); ok {
			return Comparison{Field: f.name, Operator: op, Operand: Literal{Value: list}}
		}
	}
	return Comparison{Field: f.name, Operator: op, Operand: Literal{Value: append([]any(nil), values...)}}
}

func toOperand(value any) Operand {
	if operand, ok := value.(Operand); ok {
		return operand
	}
	return Literal{Value: value}
}

const (
	maxShownItems = 8
	maxShownBytes = 64
)

// formatOperand renders v for descriptions and logs. Long lists and
// strings are cut short.
func formatOperand(v any) string {
	if v == nil {
		return "null"
	}
	if val, ok := v.(string); ok {
		if len(val) > maxShownBytes {
			return fmt.Sprintf("%q...", truncateUTF8(val, maxShownBytes))
		}
		return fmt.Sprintf("%q", val)
	}
	list, ok := asList(v)
	if !ok {
		return fmt.Sprint(v)
	}
	shown := list
	if len(shown) > maxShownItems {
		shown = shown[:maxShownItems]
	}
	parts := make([]string, len(shown), len(shown)+1)
	for i, item := range shown {
		parts[i] = formatOperand(item)
	}
	if rest := len(list) - len(shown); rest > 0 {
		parts = append(parts, fmt.Sprintf("... %d more", rest))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func truncateUTF8(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
