package sqlstore

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/carlosnayan/linq-go/internal/errors"
	"github.com/carlosnayan/linq-go/internal/limits"
)

// checkIncludes fails on relations the table does not declare
func (q *storeQuery) checkIncludes() error {
	for _, name := range q.includes {
		if _, ok := q.table.Relation(name); !ok {
			return errors.NewLinqError(errors.ErrUnknownRelation.Code,
				fmt.Sprintf("%s %q on table %q", errors.ErrUnknownRelation.Message, name, q.table.Name), nil)
		}
	}
	return nil
}

// loadIncludes loads every included relation of parents with one
// statement per relation and batch of keys
func (q *storeQuery) loadIncludes(ctx context.Context, parents reflect.Value, keys map[string][]any) error {
	if parents.Len() == 0 {
		return nil
	}
	for _, name := range q.includes {
		rel, _ := q.table.Relation(name)
		if err := q.loadRelation(ctx, parents, rel, keys[rel.LocalKey]); err != nil {
			return err
		}
	}
	return nil
}

func (q *storeQuery) loadRelation(ctx context.Context, parents reflect.Value, rel Relation, parentKeys []any) error {
	base := parents.Type().Elem()
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	isMap := base == mapRowType

	var fieldType reflect.Type
	var fieldIdx []int
	switch {
	case isMap && rel.Many:
		fieldType = reflect.SliceOf(mapRowType)
	case isMap:
		fieldType = mapRowType
	default:
		idx, ok := fieldsByColumn(base)[rel.Name]
		if !ok {
			return errors.NewLinqError(errors.ErrUnknownRelation.Code,
				fmt.Sprintf("%s: %s has no field for %q", errors.ErrUnknownRelation.Message, base, rel.Name), nil)
		}
		fieldIdx = idx
		fieldType = base.FieldByIndex(idx).Type
	}

	relatedType := fieldType
	if rel.Many {
		if fieldType.Kind() != reflect.Slice {
			return fmt.Errorf("relation %q loads many rows but %s.%s is %s", rel.Name, base, rel.Name, fieldType)
		}
		relatedType = fieldType.Elem()
	}

	// distinct keys in first seen order
	var distinct []any
	seen := make(map[string]bool)
	for _, k := range parentKeys {
		ks, ok := keyString(k)
		if !ok || seen[ks] {
			continue
		}
		seen[ks] = true
		distinct = append(distinct, normalizeKey(k))
	}

	related := reflect.New(reflect.SliceOf(relatedType)).Elem()
	var foreignKeys []any
	for start := 0; start < len(distinct); start += limits.MaxInListSize {
		end := start + limits.MaxInListSize
		if end > len(distinct) {
			end = len(distinct)
		}
		statement, args := q.buildRelationSelect(rel, distinct[start:end])
		rows, err := q.store.query(ctx, rel.Table, statement, args)
		if err != nil {
			return err
		}
		captured, err := scanRows(rows, related, []string{rel.ForeignKey})
		if err != nil {
			return err
		}
		foreignKeys = append(foreignKeys, captured[rel.ForeignKey]...)
	}

	children := make(map[string][]int)
	for j, fk := range foreignKeys {
		if ks, ok := keyString(fk); ok {
			children[ks] = append(children[ks], j)
		}
	}

	for i := 0; i < parents.Len(); i++ {
		var matches []int
		if i < len(parentKeys) {
			if ks, ok := keyString(parentKeys[i]); ok {
				matches = children[ks]
			}
		}

		var value reflect.Value
		if rel.Many {
			value = reflect.MakeSlice(fieldType, 0, len(matches))
			for _, j := range matches {
				value = reflect.Append(value, related.Index(j))
			}
		} else if len(matches) > 0 {
			value = related.Index(matches[0])
		} else {
			value = reflect.Zero(fieldType)
		}

		parent := parents.Index(i)
		if parent.Kind() == reflect.Ptr {
			parent = parent.Elem()
		}
		if isMap {
			m := parent.Interface().(map[string]any)
			if !rel.Many && len(matches) == 0 {
				m[rel.Name] = nil
			} else {
				m[rel.Name] = value.Interface()
			}
			continue
		}
		parent.FieldByIndex(fieldIdx).Set(value)
	}

	return nil
}

// buildRelationSelect renders the select of rows of rel whose foreign key
// is one of keys
func (q *storeQuery) buildRelationSelect(rel Relation, keys []any) (string, []any) {
	d := q.store.dialect
	t, _ := q.store.schema.Table(rel.Table)
	alias := d.QuoteIdentifier(rel.Table)
	col := func(name string) string { return alias + "." + d.QuoteIdentifier(name) }

	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(t.Columns) == 0 {
		sb.WriteString(alias + ".*")
	} else {
		cols := append([]string(nil), t.Columns...)
		if !contains(cols, rel.ForeignKey) {
			cols = append(cols, rel.ForeignKey)
		}
		for i, c := range cols {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(col(c))
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(alias)
	sb.WriteString(" AS ")
	sb.WriteString(alias)
	sb.WriteString(" WHERE ")
	sb.WriteString(col(rel.ForeignKey))
	sb.WriteString(" IN (")
	for i := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.GetPlaceholder(i + 1))
	}
	sb.WriteByte(')')
	if t.PrimaryKey != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(col(t.PrimaryKey))
	}

	return sb.String(), keys
}

// normalizeKey dereferences pointers and widens integers so keys read
// from different column types compare equal
func normalizeKey(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	}
	if b, ok := rv.Interface().([]byte); ok {
		return string(b)
	}
	return rv.Interface()
}

// keyString is the grouping key of v. NULL keys match nothing.
func keyString(v any) (string, bool) {
	n := normalizeKey(v)
	if n == nil {
		return "", false
	}
	return fmt.Sprint(n), true
}
