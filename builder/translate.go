package builder

import (
	"fmt"
	"reflect"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether s is safe to write into a clause unquoted
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// Placeholder returns the deterministic placeholder name for field
func Placeholder(field string) string {
	return "p_" + field
}

// Translate turns an extraction into a parameterized clause against
// alias. Anything it cannot translate safely yields the neutral clause
// and a diagnostic. The returned condition has no combinator set.
func Translate(alias string, ex Extraction) (Condition, *Diagnostic) {
	if !ex.Matched {
		return neutral(ex.Reason)
	}
	return translateComparison(alias, ex.Field, ex.Operator, ex.Value, ex.HasValue)
}

func translateComparison(alias, field string, op Operator, value any, hasValue bool) (Condition, *Diagnostic) {
	if !IsIdentifier(alias) {
		return neutral(fmt.Sprintf("invalid alias %q", alias))
	}
	if !IsIdentifier(field) {
		return neutral(fmt.Sprintf("invalid field name %q", field))
	}

	column := alias + "." + field
	p := Placeholder(field)

	switch op {
	case OpIsNull, OpIsNotNull:
		return Condition{Text: fmt.Sprintf("%s %s", column, op)}, nil

	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte:
		if !hasValue {
			return neutral(fmt.Sprintf("operator %s needs an operand", op))
		}
		if value == nil {
			switch op {
			case OpEq:
				return Condition{Text: column + " IS NULL"}, nil
			case OpNe:
				return Condition{Text: column + " IS NOT NULL"}, nil
			}
			return neutral(fmt.Sprintf("cannot compare %s with null using %s", field, op))
		}
		if _, isList := asList(value); isList {
			return neutral(fmt.Sprintf("list operand needs in or not in, got %s", op))
		}
		return Condition{
			Text:   fmt.Sprintf("%s %s :%s", column, op, p),
			Params: map[string]any{p: value},
		}, nil

	case OpIn, OpNotIn:
		list, ok := asList(value)
		if !hasValue || !ok {
			return neutral(fmt.Sprintf("operator %s needs a list operand", op))
		}
		if len(list) == 0 && op == OpNotIn {
			// nothing to exclude
			return Condition{Text: NeutralClause}, nil
		}
		return Condition{
			Text:   fmt.Sprintf("%s %s (:...%s)", column, op, p),
			Params: map[string]any{p: list},
		}, nil

	case OpLike:
		if !hasValue || value == nil {
			return neutral("like needs a non-null operand")
		}
		if _, isList := asList(value); isList {
			return neutral("like does not accept a list operand")
		}
		return likeCondition(column, p, "%"+fmt.Sprint(value)+"%"), nil
	}

	return neutral(fmt.Sprintf("unsupported operator %q", op))
}

func likeCondition(column, placeholder, pattern string) Condition {
	return Condition{
		Text:   fmt.Sprintf("%s LIKE :%s", column, placeholder),
		Params: map[string]any{placeholder: pattern},
	}
}

// likePattern applies LikeOptions wildcarding to value
func likePattern(value string, opts LikeOptions) string {
	if !opts.StartsWith {
		value = "%" + value
	}
	if !opts.EndsWith {
		value = value + "%"
	}
	return value
}

func neutral(reason string) (Condition, *Diagnostic) {
	return Condition{Text: NeutralClause}, &Diagnostic{Reason: reason}
}

// asList converts slices and arrays (other than []byte) to []any
func asList(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
