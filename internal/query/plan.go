package query

import (
	"rawlite/dberr"
	"rawlite/internal/schema"
	"rawlite/record"
)

// Plan is an executable query plan: either a full table scan with an
// optional in-memory equality filter, or an index-assisted lookup that
// resolves matching rowids through a single-column index first.
type Plan struct {
	Table   *schema.Table
	Count   bool
	Columns []int // Projected column positions in table order

	// Index-assisted lookup; nil means full scan.
	Index *schema.Index

	// Equality predicate. FilterColumn is the table column position for
	// in-memory filtering during a full scan, or -1 when no filtering is
	// needed (no predicate, or the index already guarantees equality).
	Match        record.Value
	FilterColumn int
}

// Build resolves a parsed statement against the catalog and chooses
// between an index-assisted lookup and a full scan.
func Build(stmt *Statement, catalog *schema.Catalog) (*Plan, error) {
	table, err := catalog.ResolveTable(stmt.Table)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Table:        table,
		Count:        stmt.Count,
		FilterColumn: -1,
	}

	if !stmt.Count {
		if stmt.Star {
			plan.Columns = make([]int, len(table.Columns))
			for i := range table.Columns {
				plan.Columns[i] = i
			}
		} else {
			plan.Columns = make([]int, len(stmt.Columns))
			for i, name := range stmt.Columns {
				idx, ok := table.ColumnIndex(name)
				if !ok {
					return nil, &dberr.ColumnError{Table: table.Name, Column: name}
				}
				plan.Columns[i] = idx
			}
		}
	}

	if stmt.Filter != nil {
		idx, ok := table.ColumnIndex(stmt.Filter.Column)
		if !ok {
			return nil, &dberr.ColumnError{Table: table.Name, Column: stmt.Filter.Column}
		}
		plan.Match = stmt.Filter.Value

		if index, ok := catalog.ResolveIndex(table.Name, stmt.Filter.Column); ok {
			plan.Index = index
		} else {
			plan.FilterColumn = idx
		}
	}

	return plan, nil
}
