package cmd

import (
	"strings"
	"testing"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "bound variable",
			args: []string{"translate", "--var", "lid=3", "x => x.id <= lid"},
			want: []string{"matched:   yes", "condition: entity.id <= :p_id", ":p_id = 3"},
		},
		{
			name: "alias and string literal",
			args: []string{"translate", "--alias", "p", `p => p.title == "a"`},
			want: []string{"condition: p.title = :p_title", `:p_title = "a"`},
		},
		{
			name: "null literal",
			args: []string{"translate", "x => x.content == null"},
			want: []string{"condition: entity.content IS NULL"},
		},
		{
			name: "unbound variable degrades",
			args: []string{"translate", "x => x.id <= lid"},
			want: []string{"matched:   no", "reason:", "condition: 1=1"},
		},
		{
			name: "connectives degrade",
			args: []string{"translate", "x => x.id > 1 && x.id < 3"},
			want: []string{"matched:   no", "condition: 1=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureOutput(t)
			if err := newApp().Run(tt.args); err != nil {
				t.Fatalf("translate failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestTranslate_Errors(t *testing.T) {
	captureOutput(t)

	if err := newApp().Run([]string{"translate"}); err == nil {
		t.Error("expected missing predicate error")
	}
	if err := newApp().Run([]string{"translate", "--var", "bad", "x => x.id = 1"}); err == nil {
		t.Error("expected invalid --var error")
	}
}
