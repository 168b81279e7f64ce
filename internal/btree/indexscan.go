package btree

import (
	"rawlite/dberr"
	"rawlite/record"
)

// idxFrame is one level of the index-scan descent stack. Interior frames
// remember the cell whose child subtree is being visited, so the cell's own
// entry can be handled after the subtree returns.
type idxFrame struct {
	pageNum      uint32
	data         []byte
	header       *PageHeader
	idx          int
	tookRight    bool
	descended    bool // child of cell idx pushed; its entry is pending
	pendingCmp   int
	pendingRowid int64
}

// IndexScanEqual returns the rowids of every index entry whose leading key
// equals match, in index key order (which need not match table storage
// order). Comparison is typed: integers and reals compare numerically, text
// byte-wise, and mismatched storage classes by their defined total order.
// Entries are sorted, so the walk prunes subtrees below the match and stops
// once a decoded key exceeds it.
func (t *Tree) IndexScanEqual(root uint32, match record.Value) ([]int64, error) {
	if match.IsNull() {
		// NULL equals nothing, even stored NULL keys.
		return nil, nil
	}

	stack := make([]idxFrame, 0, MaxDepth)

	push := func(pageNum uint32) error {
		if len(stack) >= MaxDepth {
			return dberr.Formatf(pageNum, "b-tree deeper than %d levels", MaxDepth)
		}
		data, h, err := t.page(pageNum)
		if err != nil {
			return err
		}
		if h.IsTable {
			return dberr.Formatf(pageNum, "index scan reached table page type 0x%02x", h.PageType)
		}
		stack = append(stack, idxFrame{pageNum: pageNum, data: data, header: h})
		return nil
	}

	if err := push(root); err != nil {
		return nil, err
	}

	var rowids []int64
	done := false

	for len(stack) > 0 && !done {
		f := &stack[len(stack)-1]

		if f.header.IsLeaf {
			for f.idx < int(f.header.NumCells) && !done {
				cell, err := t.cell(f.data, f.header, f.idx, f.pageNum)
				if err != nil {
					return nil, err
				}
				f.idx++
				key, rowid, err := entryKeyRowid(cell.Payload, f.pageNum)
				if err != nil {
					return nil, err
				}
				switch cmp := record.Compare(key, match); {
				case cmp < 0:
				case cmp == 0:
					rowids = append(rowids, rowid)
				default:
					done = true
				}
			}
			stack = stack[:len(stack)-1]
			continue
		}

		if f.descended {
			// The subtree left of cell idx is finished; the cell's own
			// entry comes next in key order.
			f.descended = false
			if f.pendingCmp == 0 {
				rowids = append(rowids, f.pendingRowid)
			} else if f.pendingCmp > 0 {
				done = true
			}
			f.idx++
			continue
		}

		if f.idx < int(f.header.NumCells) {
			cell, err := t.cell(f.data, f.header, f.idx, f.pageNum)
			if err != nil {
				return nil, err
			}
			key, rowid, err := entryKeyRowid(cell.Payload, f.pageNum)
			if err != nil {
				return nil, err
			}
			cmp := record.Compare(key, match)
			if cmp < 0 {
				// Subtree and entry are both below the match.
				f.idx++
				continue
			}
			f.descended = true
			f.pendingCmp = cmp
			f.pendingRowid = rowid
			if err := push(cell.ChildPage); err != nil {
				return nil, err
			}
			continue
		}

		if !f.tookRight {
			f.tookRight = true
			if err := push(f.header.RightChild); err != nil {
				return nil, err
			}
			continue
		}
		stack = stack[:len(stack)-1]
	}

	return rowids, nil
}

// entryKeyRowid decodes an index entry payload into its leading key and
// trailing rowid. Index records store the indexed column values followed by
// the rowid as the final column.
func entryKeyRowid(payload []byte, pageNum uint32) (record.Value, int64, error) {
	_, values, err := record.Decode(payload)
	if err != nil {
		return record.Value{}, 0, pageErr(err, pageNum)
	}
	if len(values) < 2 {
		return record.Value{}, 0, dberr.Formatf(pageNum, "index entry has %d columns, want at least 2", len(values))
	}
	last := values[len(values)-1]
	if last.Kind != record.KindInteger {
		return record.Value{}, 0, dberr.Formatf(pageNum, "index entry rowid has non-integer storage class")
	}
	return values[0], last.Int, nil
}
