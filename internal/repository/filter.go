package repository

import "strings"

// Filter is a SQL boolean expression with '?' placeholders and its arguments.
// Clauses are written by application code only, never built from user input.
type Filter struct {
	Clause string
	Args   []any
}

// Where builds a Filter.
func Where(clause string, args ...any) Filter {
	return Filter{Clause: clause, Args: args}
}

// IsZero reports whether the filter has no clause.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Clause) == ""
}

// And combines filters with AND, skipping empty ones.
func And(filters ...Filter) Filter {
	var (
		parts []string
		args  []any
	)
	for _, f := range filters {
		if f.IsZero() {
			continue
		}
		parts = append(parts, "("+f.Clause+")")
		args = append(args, f.Args...)
	}
	return Filter{Clause: strings.Join(parts, " AND "), Args: args}
}
