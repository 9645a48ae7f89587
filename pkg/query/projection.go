// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"fmt"
	"strings"
)

type join struct {
	kind  string
	table string
	alias string
	on    string
}

// ProjectionMap maps view property names to qualified column references
// (alias.column) over a base table and any number of joined tables.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	joins      []join
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		alias:      alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project adds a base-table column mapping from database column to view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	return p.ProjectFrom(p.alias, column, viewName)
}

// ProjectFrom maps a column of a joined table, identified by its alias.
func (p *ProjectionMap) ProjectFrom(alias, column, viewName string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", alias, column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Join adds an INNER JOIN on table (schema-qualified by the map's schema).
func (p *ProjectionMap) Join(table, alias, on string) *ProjectionMap {
	p.joins = append(p.joins, join{kind: "JOIN", table: table, alias: alias, on: on})
	return p
}

// LeftJoin adds a LEFT JOIN on table (schema-qualified by the map's schema).
func (p *ProjectionMap) LeftJoin(table, alias, on string) *ProjectionMap {
	p.joins = append(p.joins, join{kind: "LEFT JOIN", table: table, alias: alias, on: on})
	return p
}

// Alias returns the base table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the fully qualified base table reference with alias (schema.table alias).
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// From returns the FROM clause body: the base table followed by its joins.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.Table()
	}

	var sb strings.Builder
	sb.WriteString(p.Table())
	for _, j := range p.joins {
		fmt.Fprintf(&sb, " %s %s.%s %s ON %s", j.kind, p.schema, j.table, j.alias, j.on)
	}
	return sb.String()
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// ColumnList returns all mapped columns as a slice.
func (p *ProjectionMap) ColumnList() []string {
	return p.columnList
}
