package sqlstore

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/carlosnayan/linq-go/internal/driver"
	"github.com/carlosnayan/linq-go/internal/errors"
	"github.com/carlosnayan/linq-go/internal/limits"
)

var mapRowType = reflect.TypeOf(map[string]any{})

// scanRows appends every row of rows to the slice slicePtr points to.
// Elements may be structs, pointers to structs or map[string]any. The
// values of the capture columns are returned per row, in row order.
func scanRows(rows driver.Rows, slice reflect.Value, capture []string) (map[string][]any, error) {
	defer rows.Close()

	elemType := slice.Type().Elem()
	isPtr := elemType.Kind() == reflect.Ptr
	baseType := elemType
	if isPtr {
		baseType = elemType.Elem()
	}
	isMap := baseType == mapRowType
	if !isMap && baseType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported destination element type %s", elemType)
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var columnToField map[string][]int
	if !isMap {
		columnToField = fieldsByColumn(baseType)
	}

	captured := make(map[string][]any, len(capture))
	captureIdx := make(map[int]string, len(capture))
	for _, c := range capture {
		for i, col := range columns {
			if col == c {
				captureIdx[i] = c
			}
		}
		captured[c] = nil
	}

	rowCount := 0
	for rows.Next() {
		if rowCount >= limits.MaxScanRows {
			return nil, errors.WrapLinqError(errors.ErrTooManyRows,
				fmt.Errorf("more than %d rows", limits.MaxScanRows))
		}

		var rowValue reflect.Value
		targets := make([]any, len(columns))
		fieldOf := make([]reflect.Value, len(columns))

		if isMap {
			for i := range targets {
				var v any
				targets[i] = &v
			}
		} else {
			rowValue = reflect.New(baseType).Elem()
			for i, col := range columns {
				if idx, ok := columnToField[col]; ok {
					field := rowValue.FieldByIndex(idx)
					fieldOf[i] = field
					targets[i] = field.Addr().Interface()
				} else {
					var dummy any
					targets[i] = &dummy
				}
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		if isMap {
			m := make(map[string]any, len(columns))
			for i, col := range columns {
				m[col] = plainValue(*targets[i].(*any))
			}
			rowValue = reflect.ValueOf(m)
		}

		for i, c := range captureIdx {
			var v any
			if fieldOf[i].IsValid() {
				v = fieldOf[i].Interface()
			} else {
				v = *targets[i].(*any)
			}
			captured[c] = append(captured[c], v)
		}

		if isPtr {
			ptr := reflect.New(baseType)
			ptr.Elem().Set(rowValue)
			rowValue = ptr
		}
		slice.Set(reflect.Append(slice, rowValue))
		rowCount++
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return captured, nil
}

// plainValue turns driver byte slices into strings for map rows
func plainValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

var (
	fieldCache   = make(map[reflect.Type]map[string][]int)
	fieldCacheMu sync.RWMutex
)

// fieldsByColumn maps column names to struct field indexes. A field
// answers to its db tag, its json tag and its snake_case name, in that
// priority. Embedded structs are flattened.
func fieldsByColumn(t reflect.Type) map[string][]int {
	fieldCacheMu.RLock()
	m, ok := fieldCache[t]
	fieldCacheMu.RUnlock()
	if ok {
		return m
	}

	m = make(map[string][]int)
	collectFields(t, nil, m, make(map[string]int))

	fieldCacheMu.Lock()
	fieldCache[t] = m
	fieldCacheMu.Unlock()
	return m
}

// collectFields fills m. prio holds the rank of the name that claimed each
// column so a tag match is never replaced by a snake_case match.
func collectFields(t reflect.Type, prefix []int, m map[string][]int, prio map[string]int) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFields(field.Type, index, m, prio)
			continue
		}
		if !field.IsExported() {
			continue
		}

		for rank, name := range columnNames(field) {
			if name == "" {
				continue
			}
			if p, taken := prio[name]; taken && p <= rank {
				continue
			}
			m[name] = index
			prio[name] = rank
		}
	}
}

// columnNames returns the db tag, the json tag and the snake_case name of
// field, in priority order. Missing names are empty. A field tagged db:"-"
// answers to none.
func columnNames(field reflect.StructField) [3]string {
	var names [3]string
	dbTag := field.Tag.Get("db")
	if dbTag == "-" {
		return names
	}
	jsonTag := field.Tag.Get("json")
	if idx := strings.Index(jsonTag, ","); idx != -1 {
		jsonTag = jsonTag[:idx]
	}
	if jsonTag == "-" {
		jsonTag = ""
	}

	names[0] = dbTag
	names[1] = jsonTag
	names[2] = toSnakeCase(field.Name)
	return names
}

// toSnakeCase converts CamelCase to snake_case, keeping acronyms together
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
