package btree

import (
	"rawlite/dberr"
)

// SeekRowid performs a point lookup for rowid in the table tree rooted at
// root. It returns the matching leaf cell, or found=false when no row has
// that rowid — absence is not an error.
//
// At each interior page the descent follows the first child whose separator
// key is >= the target; separator keys need not equal any stored rowid. If
// no separator qualifies, descent falls through to the right-most child.
func (t *Tree) SeekRowid(root uint32, rowid int64) (*Cell, bool, error) {
	pageNum := root

	for depth := 0; depth < MaxDepth; depth++ {
		data, h, err := t.page(pageNum)
		if err != nil {
			return nil, false, err
		}
		if !h.IsTable {
			return nil, false, dberr.Formatf(pageNum, "rowid lookup reached index page type 0x%02x", h.PageType)
		}

		if h.IsLeaf {
			for i := 0; i < int(h.NumCells); i++ {
				cell, err := t.cell(data, h, i, pageNum)
				if err != nil {
					return nil, false, err
				}
				if cell.Rowid == rowid {
					return cell, true, nil
				}
			}
			return nil, false, nil
		}

		next := h.RightChild
		for i := 0; i < int(h.NumCells); i++ {
			cell, err := t.cell(data, h, i, pageNum)
			if err != nil {
				return nil, false, err
			}
			if cell.Rowid >= rowid {
				next = cell.ChildPage
				break
			}
		}
		pageNum = next
	}

	return nil, false, dberr.Formatf(root, "b-tree deeper than %d levels", MaxDepth)
}
