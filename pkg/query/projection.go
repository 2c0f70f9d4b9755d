// Package query builds parameterized PostgreSQL queries from domain field
// names, keeping column naming concerns out of the repositories.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps domain field names to table columns for a single
// aliased table. Field names are the exported Go names used by callers;
// columns are the snake_case database names.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	order  []string
	fields map[string]string
}

// NewProjectionMap creates a projection for schema.table with the given alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project registers a column under a domain field name. Registration order
// determines column order in SELECT clauses.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	if _, exists := p.fields[field]; !exists {
		p.order = append(p.order, field)
	}
	p.fields[field] = column
	return p
}

// Table returns the aliased table reference, e.g. "public.users u".
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the alias-qualified column for a domain field.
// Unknown fields panic: a bad field name is a programming error, not input.
func (p *ProjectionMap) Column(field string) string {
	col, ok := p.fields[field]
	if !ok {
		panic(fmt.Sprintf("query: unknown projection field %q", field))
	}
	return fmt.Sprintf("%s.%s", p.alias, col)
}

// Columns returns the full alias-qualified column list in registration order.
func (p *ProjectionMap) Columns() string {
	cols := make([]string, len(p.order))
	for i, field := range p.order {
		cols[i] = p.Column(field)
	}
	return strings.Join(cols, ", ")
}
