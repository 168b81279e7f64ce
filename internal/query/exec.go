package query

import (
	"rawlite/dberr"
	"rawlite/internal/btree"
	"rawlite/record"
)

// Result is the typed outcome of a query: a count, or a lazy row sequence.
type Result struct {
	IsCount bool
	Count   int64
	Columns []string // Projected column names (empty for counts)
	Rows    *Rows    // nil for counts
}

// Rows is a lazy, finite, non-restartable sequence of projected rows.
// A consumer stops early simply by not calling Next again; no partial row
// is ever produced after an error.
type Rows struct {
	tree *btree.Tree
	plan *Plan

	scan   *btree.Scan // full-scan mode
	rowids []int64     // index-assisted mode, in index key order
	pos    int

	cur []record.Value
	err error
}

// Execute runs a plan. Counts traverse eagerly and return a number; selects
// return a Rows sequence that reads pages as it is pulled.
func Execute(tree *btree.Tree, plan *Plan) (*Result, error) {
	if plan.Count {
		n, err := executeCount(tree, plan)
		if err != nil {
			return nil, err
		}
		return &Result{IsCount: true, Count: n}, nil
	}

	columns := make([]string, len(plan.Columns))
	for i, idx := range plan.Columns {
		columns[i] = plan.Table.Columns[idx]
	}

	rows := &Rows{tree: tree, plan: plan}
	if plan.Index != nil {
		rowids, err := tree.IndexScanEqual(plan.Index.RootPage, plan.Match)
		if err != nil {
			return nil, err
		}
		rows.rowids = rowids
	} else {
		rows.scan = tree.Scan(plan.Table.RootPage)
	}

	return &Result{Columns: columns, Rows: rows}, nil
}

// executeCount counts surviving rows under the plan's predicate.
func executeCount(tree *btree.Tree, plan *Plan) (int64, error) {
	if plan.Index != nil {
		rowids, err := tree.IndexScanEqual(plan.Index.RootPage, plan.Match)
		if err != nil {
			return 0, err
		}
		return int64(len(rowids)), nil
	}

	var n int64
	scan := tree.Scan(plan.Table.RootPage)
	for scan.Next() {
		if plan.FilterColumn >= 0 {
			match, err := rowMatches(plan, scan.Cell())
			if err != nil {
				return 0, err
			}
			if !match {
				continue
			}
		}
		n++
	}
	if err := scan.Err(); err != nil {
		return 0, err
	}
	return n, nil
}

// Next advances to the next row surviving the filter. It returns false at
// the end of the sequence or on error; check Err to distinguish.
func (r *Rows) Next() bool {
	if r.err != nil {
		return false
	}
	if r.scan != nil {
		return r.nextScan()
	}
	return r.nextIndexed()
}

func (r *Rows) nextScan() bool {
	for r.scan.Next() {
		cell := r.scan.Cell()
		_, values, err := record.Decode(cell.Payload)
		if err != nil {
			r.err = err
			return false
		}
		if r.plan.FilterColumn >= 0 {
			if !record.Equal(columnValue(r.plan, cell, values, r.plan.FilterColumn), r.plan.Match) {
				continue
			}
		}
		r.cur = r.project(cell, values)
		return true
	}
	r.err = r.scan.Err()
	return false
}

func (r *Rows) nextIndexed() bool {
	if r.pos >= len(r.rowids) {
		return false
	}
	rowid := r.rowids[r.pos]
	r.pos++

	cell, found, err := r.tree.SeekRowid(r.plan.Table.RootPage, rowid)
	if err != nil {
		r.err = err
		return false
	}
	if !found {
		r.err = dberr.Formatf(r.plan.Index.RootPage, "index entry references missing rowid %d", rowid)
		return false
	}

	_, values, err := record.Decode(cell.Payload)
	if err != nil {
		r.err = err
		return false
	}
	r.cur = r.project(cell, values)
	return true
}

// Row returns the projected values produced by the last successful Next.
func (r *Rows) Row() []record.Value {
	return r.cur
}

// Err returns the error that terminated the sequence, if any.
func (r *Rows) Err() error {
	return r.err
}

// project maps decoded record values onto the plan's projection.
func (r *Rows) project(cell *btree.Cell, values []record.Value) []record.Value {
	out := make([]record.Value, len(r.plan.Columns))
	for i, idx := range r.plan.Columns {
		out[i] = columnValue(r.plan, cell, values, idx)
	}
	return out
}

// columnValue returns the effective value of a table column: rowid-alias
// columns materialize from the cell's rowid (the record body stores Null
// for them), and columns missing from short records read as Null.
func columnValue(plan *Plan, cell *btree.Cell, values []record.Value, idx int) record.Value {
	if idx == plan.Table.RowidAlias {
		return record.Integer(cell.Rowid)
	}
	if idx >= len(values) {
		return record.Null()
	}
	return values[idx]
}

// rowMatches decodes a cell's record and applies the in-memory filter.
func rowMatches(plan *Plan, cell *btree.Cell) (bool, error) {
	_, values, err := record.Decode(cell.Payload)
	if err != nil {
		return false, err
	}
	return record.Equal(columnValue(plan, cell, values, plan.FilterColumn), plan.Match), nil
}
