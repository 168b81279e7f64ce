package btree

import (
	"rawlite/dberr"
)

// scanFrame is one level of the explicit descent stack.
type scanFrame struct {
	pageNum   uint32
	data      []byte
	header    *PageHeader
	idx       int  // next cell index to visit
	tookRight bool // interior pages: right-most child already pushed
}

// Scan is a lazy, finite, non-restartable in-order traversal of a b-tree.
//
// For table trees each step yields a leaf cell with its rowid and record
// payload; for index trees it yields the entry payload. Cells arrive in
// ascending key order. A consumer stops a scan simply by not calling Next
// again; there is no other cancellation primitive.
type Scan struct {
	tree  *Tree
	stack []scanFrame
	cur   *Cell
	err   error
	done  bool
}

// Scan starts a traversal rooted at the given page.
func (t *Tree) Scan(root uint32) *Scan {
	s := &Scan{tree: t, stack: make([]scanFrame, 0, MaxDepth)}
	s.push(root)
	return s
}

func (s *Scan) push(pageNum uint32) bool {
	if len(s.stack) >= MaxDepth {
		s.err = dberr.Formatf(pageNum, "b-tree deeper than %d levels", MaxDepth)
		return false
	}
	data, h, err := s.tree.page(pageNum)
	if err != nil {
		s.err = err
		return false
	}
	s.stack = append(s.stack, scanFrame{pageNum: pageNum, data: data, header: h})
	return true
}

// Next advances to the next leaf cell. It returns false when the traversal
// is exhausted or has failed; check Err to distinguish.
func (s *Scan) Next() bool {
	if s.err != nil || s.done {
		return false
	}

	for len(s.stack) > 0 {
		f := &s.stack[len(s.stack)-1]

		if f.header.IsLeaf {
			if f.idx < int(f.header.NumCells) {
				cell, err := s.tree.cell(f.data, f.header, f.idx, f.pageNum)
				if err != nil {
					s.err = err
					return false
				}
				f.idx++
				s.cur = cell
				return true
			}
			s.stack = s.stack[:len(s.stack)-1]
			continue
		}

		// Interior page: children in cell order, right-most child last.
		if f.idx < int(f.header.NumCells) {
			cell, err := s.tree.cell(f.data, f.header, f.idx, f.pageNum)
			if err != nil {
				s.err = err
				return false
			}
			f.idx++
			if !s.push(cell.ChildPage) {
				return false
			}
			continue
		}
		if !f.tookRight {
			f.tookRight = true
			if !s.push(f.header.RightChild) {
				return false
			}
			continue
		}
		s.stack = s.stack[:len(s.stack)-1]
	}

	s.done = true
	return false
}

// Cell returns the cell produced by the last successful Next.
func (s *Scan) Cell() *Cell {
	return s.cur
}

// Err returns the error that terminated the scan, if any.
func (s *Scan) Err() error {
	return s.err
}
