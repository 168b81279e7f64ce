package btree

import (
	"rawlite/internal/pager"
)

// MaxDepth bounds b-tree descent. Page layouts are untrusted input, so the
// traversal depth is checked explicitly instead of trusting the tree to be
// acyclic. Real trees stay far below this due to high branching factor.
const MaxDepth = 20

// Tree traverses table and index b-trees stored in a database file.
// It holds no state beyond the pager reference; every scan re-reads pages.
type Tree struct {
	pager  *pager.Pager
	usable int
}

// New returns a Tree over the given pager.
func New(p *pager.Pager) *Tree {
	return &Tree{pager: p, usable: p.UsableSize()}
}

// page reads and classifies page n.
func (t *Tree) page(n uint32) ([]byte, *PageHeader, error) {
	data, err := t.pager.ReadPage(n)
	if err != nil {
		return nil, nil, err
	}
	h, err := ParsePageHeader(data, n)
	if err != nil {
		return nil, nil, err
	}
	return data, h, nil
}

// cell parses the i-th cell of a page.
func (t *Tree) cell(data []byte, h *PageHeader, i int, pageNum uint32) (*Cell, error) {
	off, err := h.CellPointer(data, i)
	if err != nil {
		return nil, pageErr(err, pageNum)
	}
	return ParseCell(h.PageType, data, off, t.usable, pageNum)
}
