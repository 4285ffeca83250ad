package postgres

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"peopleapi/internal/model"
)

// baseColumns are stored for every entity, in this order, ahead of the entity columns.
var baseColumns = []string{"id", "created", "last_updated"}

// Table describes how an entity type maps onto its table.
// Columns, Values and Targets cover the entity-specific columns only and must agree in order.
type Table[T model.Model] struct {
	Name    string
	Columns []string
	// New returns an empty entity to scan into.
	New func() T
	// Values returns the column values of e in Columns order.
	Values func(e T) []any
	// Targets returns pointers to the fields of e in Columns order.
	Targets func(e T) []any
}

func (t Table[T]) selectList() string {
	return strings.Join(append(slices.Clone(baseColumns), t.Columns...), ", ")
}

func (t Table[T]) hasColumn(name string) bool {
	return slices.Contains(baseColumns, name) || slices.Contains(t.Columns, name)
}

func (t Table[T]) targets(e T) []any {
	meta := e.Meta()
	return append([]any{&meta.ID, &meta.Created, &meta.LastUpdated}, t.Targets(e)...)
}

// placeholders returns "$from, $from+1, ..." for n parameters.
func placeholders(from, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(out, ", ")
}

// rebind rewrites '?' placeholders into PostgreSQL positional parameters,
// numbering them from 1. Question marks inside quoted literals are not supported.
func rebind(query string) string {
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
