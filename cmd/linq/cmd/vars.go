package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/carlosnayan/linq-go/builder"
)

// parseVars turns name=value pairs into bindings. Values that read as
// integers, floats, booleans or null take that type; the rest are
// strings, with surrounding quotes removed.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || !builder.IsIdentifier(name) {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", pair)
		}
		vars[name] = parseValue(strings.TrimSpace(raw))
	}
	return vars, nil
}

func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// parseOrder reads field:asc or field:desc. A bare field sorts ascending.
func parseOrder(arg string) (builder.OrderBy, error) {
	field, dir, _ := strings.Cut(arg, ":")
	if dir == "" {
		dir = string(builder.Asc)
	}
	d, err := builder.ParseDirection(dir)
	if err != nil {
		return builder.OrderBy{}, fmt.Errorf("invalid --order %q: %w", arg, err)
	}
	return builder.OrderBy{Field: field, Order: d}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
