package builder

import "sort"

// QueryContext holds the named variables a builder uses to resolve free
// identifiers in predicates. It belongs to exactly one Query and is not
// safe for concurrent use.
type QueryContext struct {
	vars map[string]any
}

// NewQueryContext returns an empty context
func NewQueryContext() *QueryContext {
	return &QueryContext{vars: make(map[string]any)}
}

// Set stores or overwrites a binding
func (c *QueryContext) Set(name string, value any) {
	c.vars[name] = value
}

// Get returns the bound value. The bool is false when name is unbound,
// which is a normal outcome rather than an error.
func (c *QueryContext) Get(name string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.vars[name]
	return v, ok
}

// Len returns the number of bindings
func (c *QueryContext) Len() int {
	if c == nil {
		return 0
	}
	return len(c.vars)
}

// Names returns the bound names in sorted order
func (c *QueryContext) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.vars))
	for name := range c.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *QueryContext) clone() *QueryContext {
	out := NewQueryContext()
	for k, v := range c.vars {
		out.vars[k] = v
	}
	return out
}
