package sqlstore

import (
	"fmt"

	"github.com/carlosnayan/linq-go/builder"
	"github.com/carlosnayan/linq-go/internal/config"
)

// Table describes a table the store can query
type Table struct {
	Name string
	// Columns selected for the table. Empty selects every column.
	Columns    []string
	PrimaryKey string
	Relations  []Relation
}

// Relation describes how to load related rows for Include. Rows of Table
// whose ForeignKey equals the parent's LocalKey belong to the parent.
type Relation struct {
	Name       string
	Table      string
	LocalKey   string
	ForeignKey string
	// Many loads a slice; otherwise the first related row is loaded
	Many bool
}

// Schema is the set of tables known to a Store
type Schema struct {
	tables map[string]Table
}

// NewSchema validates and indexes tables
func NewSchema(tables ...Table) (*Schema, error) {
	s := &Schema{tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		if !builder.IsIdentifier(t.Name) {
			return nil, fmt.Errorf("invalid table name %q", t.Name)
		}
		if _, dup := s.tables[t.Name]; dup {
			return nil, fmt.Errorf("table %q declared twice", t.Name)
		}
		for _, col := range t.Columns {
			if !builder.IsIdentifier(col) {
				return nil, fmt.Errorf("table %q: invalid column %q", t.Name, col)
			}
		}
		for _, r := range t.Relations {
			for _, id := range []string{r.Name, r.Table, r.LocalKey, r.ForeignKey} {
				if !builder.IsIdentifier(id) {
					return nil, fmt.Errorf("table %q: relation %q has invalid identifier %q", t.Name, r.Name, id)
				}
			}
		}
		s.tables[t.Name] = t
	}
	return s, nil
}

// SchemaFromConfig builds a schema from the [[tables]] entries of linq.conf
func SchemaFromConfig(cfg *config.Config) (*Schema, error) {
	tables := make([]Table, 0, len(cfg.Tables))
	for _, tc := range cfg.Tables {
		t := Table{Name: tc.Name, Columns: tc.Columns, PrimaryKey: tc.PrimaryKey}
		for _, rc := range tc.Relations {
			t.Relations = append(t.Relations, Relation{
				Name:       rc.Name,
				Table:      rc.Table,
				LocalKey:   rc.LocalKey,
				ForeignKey: rc.ForeignKey,
				Many:       rc.Many,
			})
		}
		tables = append(tables, t)
	}
	return NewSchema(tables...)
}

// Table returns the named table. Tables that were never declared are
// returned with no columns and no relations.
func (s *Schema) Table(name string) (Table, bool) {
	if s == nil {
		return Table{Name: name}, false
	}
	t, ok := s.tables[name]
	if !ok {
		return Table{Name: name}, false
	}
	return t, true
}

func (s *Schema) declared() bool {
	return s != nil && len(s.tables) > 0
}

// Relation returns the named relation of table
func (t Table) Relation(name string) (Relation, bool) {
	for _, r := range t.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}
