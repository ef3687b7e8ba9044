package cmd

import (
	"fmt"
	"strings"

	"github.com/carlosnayan/linq-go/builder"
	"github.com/carlosnayan/linq-go/cli"
)

var (
	translateAlias string
	translateVars  []string
)

var translateCmd = &cli.Command{
	Name:  "translate",
	Short: "Show how a predicate translates to a condition",
	Long: `Extracts the comparison in a predicate and prints the condition it
translates to. No database is needed.`,
	Usage: `linq translate [--alias entity] [--var name=value ...] "x => x.id <= lid"`,
	Flags: []*cli.Flag{
		{
			Name:  "alias",
			Short: "a",
			Usage: "Alias the condition is written for (default: entity)",
			Value: &translateAlias,
		},
		{
			Name:  "var",
			Usage: "Bind a variable, name=value (repeatable)",
			Value: &translateVars,
		},
	},
	Run: runTranslate,
}

func runTranslate(args []string) error {
	defer func() {
		translateAlias = ""
		translateVars = nil
	}()

	if len(args) == 0 {
		return fmt.Errorf("missing predicate")
	}
	src := strings.Join(args, " ")

	vars, err := parseVars(translateVars)
	if err != nil {
		return err
	}
	qc := builder.NewQueryContext()
	for name, value := range vars {
		qc.Set(name, value)
	}

	alias := translateAlias
	if alias == "" {
		alias = builder.DefaultAlias
	}

	ex := builder.ExtractSource(src, qc)
	cond, diag := builder.Translate(alias, ex)

	fmt.Fprintf(stdout, "predicate: %s\n", src)
	if ex.Matched {
		fmt.Fprintf(stdout, "matched:   %s\n", Success("yes"))
		fmt.Fprintf(stdout, "field:     %s\n", ex.Field)
		fmt.Fprintf(stdout, "operator:  %s\n", ex.Operator)
		if ex.HasValue {
			fmt.Fprintf(stdout, "value:     %v\n", ex.Value)
		}
	} else {
		fmt.Fprintf(stdout, "matched:   %s\n", Warning("no"))
	}
	if diag != nil {
		fmt.Fprintf(stdout, "reason:    %s\n", Warning(diag.Reason))
	}
	fmt.Fprintf(stdout, "condition: %s\n", cond.Text)
	for _, name := range sortedKeys(cond.Params) {
		fmt.Fprintf(stdout, "  %s = %s\n", Info(":"+name), formatParam(cond.Params[name]))
	}
	return nil
}

func formatParam(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
