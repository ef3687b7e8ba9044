package sqlstore

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/carlosnayan/linq-go/internal/dialect"
	"github.com/carlosnayan/linq-go/internal/errors"
	"github.com/carlosnayan/linq-go/internal/limits"
)

func TestRender(t *testing.T) {
	pg := dialect.GetDialect("postgresql")
	my := dialect.GetDialect("mysql")

	tests := []struct {
		name     string
		d        dialect.Dialect
		clause   string
		params   map[string]any
		start    int
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "scalar postgres",
			d:        pg,
			clause:   "e.id >= :p_id",
			params:   map[string]any{"p_id": 2},
			start:    1,
			wantSQL:  `"e"."id" >= $1`,
			wantArgs: []any{2},
		},
		{
			name:     "numbering continues",
			d:        pg,
			clause:   "e.id <= :p_id",
			params:   map[string]any{"p_id": 3},
			start:    2,
			wantSQL:  `"e"."id" <= $2`,
			wantArgs: []any{3},
		},
		{
			name:     "scalar mysql",
			d:        my,
			clause:   "e.title LIKE :p_title",
			params:   map[string]any{"p_title": "%a%"},
			start:    1,
			wantSQL:  "`e`.`title` LIKE ?",
			wantArgs: []any{"%a%"},
		},
		{
			name:     "list expands",
			d:        pg,
			clause:   "e.id IN (:...p_id)",
			params:   map[string]any{"p_id": []int{1, 3}},
			start:    1,
			wantSQL:  `"e"."id" IN ($1, $2)`,
			wantArgs: []any{1, 3},
		},
		{
			name:    "empty list",
			d:       pg,
			clause:  "e.id IN (:...p_id)",
			params:  map[string]any{"p_id": []any{}},
			start:   1,
			wantSQL: `"e"."id" IN (NULL)`,
		},
		{
			name:     "quoted text and casts are kept",
			d:        pg,
			clause:   "e.note = ':p_x' AND e.n::text = :p_n",
			params:   map[string]any{"p_n": "1"},
			start:    1,
			wantSQL:  `"e"."note" = ':p_x' AND "e"."n"::text = $1`,
			wantArgs: []any{"1"},
		},
		{
			name:    "other aliases untouched",
			d:       pg,
			clause:  "x.id = e.owner_id",
			start:   1,
			wantSQL: `x.id = "e"."owner_id"`,
		},
		{
			name:    "neutral clause",
			d:       pg,
			clause:  "1=1",
			start:   1,
			wantSQL: "1=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := tt.start
			sql, args, err := compileClause(tt.clause, "e").render(tt.d, "e", tt.params, &idx)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) || (len(args) > 0 && !reflect.DeepEqual(args, tt.wantArgs)) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
			if idx != tt.start+len(tt.wantArgs) {
				t.Errorf("next index = %d, want %d", idx, tt.start+len(tt.wantArgs))
			}
		})
	}
}

func TestRender_Unbound(t *testing.T) {
	idx := 1
	_, _, err := compileClause("e.id = :p_id", "e").render(dialect.GetDialect("sqlite"), "e", nil, &idx)
	if !stderrors.Is(err, errors.ErrUnboundPlaceholder) {
		t.Fatalf("err = %v, want ErrUnboundPlaceholder", err)
	}
}

func TestRender_ListTooLarge(t *testing.T) {
	idx := 1
	ids := make([]int64, limits.MaxInListSize+1)
	params := map[string]any{"p_id": ids}
	_, _, err := compileClause("e.id IN (:...p_id)", "e").render(dialect.GetDialect("sqlite"), "e", params, &idx)
	if !stderrors.Is(err, errors.ErrListTooLarge) {
		t.Fatalf("err = %v, want ErrListTooLarge", err)
	}
	if idx != 1 {
		t.Errorf("argIndex advanced to %d", idx)
	}
}

func TestCompileClause_Params(t *testing.T) {
	tpl := compileClause("e.a = :p_a OR e.b IN (:...p_b)", "e")
	want := []string{"p_a", "p_b"}
	if !reflect.DeepEqual(tpl.params, want) {
		t.Errorf("params = %v, want %v", tpl.params, want)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ID":         "id",
		"UserID":     "user_id",
		"Title":      "title",
		"HTTPServer": "http_server",
		"CreatedAt":  "created_at",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFieldsByColumn_TagPriority(t *testing.T) {
	type row struct {
		Title string
		Name  string `db:"title"`
		Skip  string `db:"-"`
	}
	idx := fieldsByColumn(reflect.TypeOf(row{}))
	if got := idx["title"]; !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("title maps to %v, want the tagged field", got)
	}
	if got := idx["name"]; !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("name maps to %v", got)
	}
	if _, ok := idx["skip"]; ok {
		t.Error("db:\"-\" field should not be mapped")
	}
}

func TestKeyString(t *testing.T) {
	n := int32(7)
	var nilPtr *int64
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{int64(7), "7", true},
		{&n, "7", true},
		{uint8(7), "7", true},
		{[]byte("7"), "7", true},
		{"abc", "abc", true},
		{nil, "", false},
		{nilPtr, "", false},
	}
	for _, tt := range tests {
		got, ok := keyString(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("keyString(%#v) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
