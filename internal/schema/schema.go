// Package schema builds the catalog of tables and indexes from the
// sqlite_master table stored on page 1.
//
// The catalog is constructed once per opened file and is immutable
// thereafter; queries receive it as an explicit value.
package schema

import (
	"strings"

	"rawlite/dberr"
)

// Entry is one row of the sqlite_master catalog:
//
//	CREATE TABLE sqlite_master (
//	  type TEXT,      -- "table", "index", "trigger", "view"
//	  name TEXT,      -- object name
//	  tbl_name TEXT,  -- owning table name
//	  rootpage INT,   -- root b-tree page
//	  sql TEXT        -- CREATE statement
//	);
type Entry struct {
	Type      string // "table", "index", "view", "trigger"
	Name      string // Object name
	TableName string // Owning table name
	RootPage  uint32 // Root page number (0 for views and triggers)
	SQL       string // CREATE statement text, may be empty
}

// Catalog holds the parsed sqlite_master entries in stored order.
type Catalog struct {
	entries []Entry
}

// Table is a resolved table definition.
type Table struct {
	Name     string   // Declared name
	RootPage uint32   // Root page of the table b-tree
	Columns  []string // Ordered column names from the declaration
	// RowidAlias is the index of the INTEGER PRIMARY KEY column that
	// aliases the rowid, or -1. Such columns store Null in the record
	// body; their value is the cell's rowid.
	RowidAlias int
}

// Index is a resolved single-column index definition.
type Index struct {
	Name     string
	Table    string
	RootPage uint32
	Column   string // The sole indexed column
}

// Entries returns the raw catalog entries in stored order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// TableCount returns the number of user tables, excluding the sqlite_*
// internal catalog tables.
func (c *Catalog) TableCount() int {
	return len(c.TableNames())
}

// TableNames returns user table names in catalog order, excluding internal
// sqlite_* tables.
func (c *Catalog) TableNames() []string {
	var names []string
	for _, e := range c.entries {
		if e.Type != "table" || strings.HasPrefix(e.Name, "sqlite_") {
			continue
		}
		names = append(names, e.Name)
	}
	return names
}

// ResolveTable looks up a table by name, case-insensitively, and parses its
// declaration into an ordered column list.
func (c *Catalog) ResolveTable(name string) (*Table, error) {
	for _, e := range c.entries {
		if e.Type != "table" || !strings.EqualFold(e.Name, name) {
			continue
		}
		columns, alias := parseColumnList(e.SQL)
		return &Table{
			Name:       e.Name,
			RootPage:   e.RootPage,
			Columns:    columns,
			RowidAlias: alias,
		}, nil
	}
	return nil, &dberr.SchemaError{Kind: "table", Name: name}
}

// ResolveIndex finds an index owned by tableName whose declaration names
// columnName as its sole indexed column. Multi-column indexes are never
// selected. Returns false when no such index exists.
func (c *Catalog) ResolveIndex(tableName, columnName string) (*Index, bool) {
	for _, e := range c.entries {
		if e.Type != "index" || !strings.EqualFold(e.TableName, tableName) {
			continue
		}
		cols := parseIndexColumns(e.SQL)
		if len(cols) != 1 || !strings.EqualFold(cols[0], columnName) {
			continue
		}
		return &Index{
			Name:     e.Name,
			Table:    e.TableName,
			RootPage: e.RootPage,
			Column:   cols[0],
		}, true
	}
	return nil, false
}

// ColumnIndex returns the position of a column, matching case-insensitively.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, col := range t.Columns {
		if strings.EqualFold(col, name) {
			return i, true
		}
	}
	return 0, false
}
