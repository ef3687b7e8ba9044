package sqlstore

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/carlosnayan/linq-go/internal/dialect"
	"github.com/carlosnayan/linq-go/internal/errors"
	"github.com/carlosnayan/linq-go/internal/limits"
)

type segmentKind int

const (
	segLiteral segmentKind = iota
	segParam               // :name
	segList                // :...name
	segColumn              // alias.column
)

type segment struct {
	kind segmentKind
	text string // literal text, placeholder name or column name
}

// template is a clause split into literal text, placeholders and
// alias-qualified columns. It does not depend on the dialect or on the
// position of the clause in the statement, so it can be cached.
type template struct {
	segments []segment
	params   []string
}

// compileClause parses clause. Placeholders inside quoted strings are
// left alone and `::` casts are not placeholders.
func compileClause(clause, alias string) template {
	var t template
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{kind: segLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(clause); {
		ch := clause[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			end := closingQuote(clause, i)
			lit.WriteString(clause[i:end])
			i = end

		case ch == ':' && i+1 < len(clause) && clause[i+1] == ':':
			lit.WriteString("::")
			i += 2

		case ch == ':':
			kind := segParam
			start := i + 1
			if strings.HasPrefix(clause[start:], "...") {
				kind = segList
				start += 3
			}
			end := start
			for end < len(clause) && isWordChar(clause[end]) {
				end++
			}
			if end == start {
				lit.WriteByte(ch)
				i++
				continue
			}
			flush()
			name := clause[start:end]
			t.segments = append(t.segments, segment{kind: kind, text: name})
			t.params = append(t.params, name)
			i = end

		case isWordStart(ch) && (i == 0 || !isWordChar(clause[i-1])):
			end := i
			for end < len(clause) && isWordChar(clause[end]) {
				end++
			}
			word := clause[i:end]
			if word == alias && end+1 < len(clause) && clause[end] == '.' && isWordStart(clause[end+1]) {
				colEnd := end + 1
				for colEnd < len(clause) && isWordChar(clause[colEnd]) {
					colEnd++
				}
				flush()
				t.segments = append(t.segments, segment{kind: segColumn, text: clause[end+1 : colEnd]})
				i = colEnd
				continue
			}
			lit.WriteString(word)
			i = end

		default:
			lit.WriteByte(ch)
			i++
		}
	}
	flush()
	return t
}

func closingQuote(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		if s[i] == q {
			if i+1 < len(s) && s[i+1] == q {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(s)
}

func isWordStart(ch byte) bool {
	return ch == '_' || 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isWordChar(ch byte) bool {
	return isWordStart(ch) || '0' <= ch && ch <= '9'
}

// render writes the clause for d, numbering placeholders from *argIndex.
// Every placeholder must be bound in params.
func (t template) render(d dialect.Dialect, alias string, params map[string]any, argIndex *int) (string, []any, error) {
	var sb strings.Builder
	var args []any

	for _, seg := range t.segments {
		switch seg.kind {
		case segLiteral:
			sb.WriteString(seg.text)

		case segColumn:
			sb.WriteString(d.QuoteIdentifier(alias))
			sb.WriteByte('.')
			sb.WriteString(d.QuoteIdentifier(seg.text))

		case segParam:
			v, ok := params[seg.text]
			if !ok {
				return "", nil, errors.NewLinqError(errors.ErrUnboundPlaceholder.Code,
					fmt.Sprintf("%s: %q", errors.ErrUnboundPlaceholder.Message, seg.text), nil)
			}
			sb.WriteString(d.GetPlaceholder(*argIndex))
			args = append(args, v)
			(*argIndex)++

		case segList:
			v, ok := params[seg.text]
			if !ok {
				return "", nil, errors.NewLinqError(errors.ErrUnboundPlaceholder.Code,
					fmt.Sprintf("%s: %q", errors.ErrUnboundPlaceholder.Message, seg.text), nil)
			}
			items := expandList(v)
			if len(items) > limits.MaxInListSize {
				return "", nil, errors.NewLinqError(errors.ErrListTooLarge.Code,
					fmt.Sprintf("%s: %q has %d values, at most %d", errors.ErrListTooLarge.Message, seg.text, len(items), limits.MaxInListSize), nil)
			}
			if len(items) == 0 {
				// IN (NULL) matches nothing
				sb.WriteString("NULL")
				continue
			}
			for j, item := range items {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(d.GetPlaceholder(*argIndex))
				args = append(args, item)
				(*argIndex)++
			}
		}
	}

	return sb.String(), args, nil
}

// expandList spreads a slice or array into its elements. A scalar is a
// one-element list.
func expandList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return []any{nil}
	}
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Type().Elem().Kind() == reflect.Uint8 {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
