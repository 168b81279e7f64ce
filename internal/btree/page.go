// Package btree decodes and traverses SQLite table and index b-trees.
//
// Traversal is purely functional over the pager: no page is cached between
// calls, and all cursor state is transient, scoped to a single scan.
package btree

import (
	"encoding/binary"

	"rawlite/dberr"
)

// Page type constants (first byte of the page header)
const (
	PageTypeInteriorIndex = 0x02 // Interior index b-tree page
	PageTypeInteriorTable = 0x05 // Interior table b-tree page
	PageTypeLeafIndex     = 0x0a // Leaf index b-tree page
	PageTypeLeafTable     = 0x0d // Leaf table b-tree page
)

// Page header offsets
const (
	pageHeaderOffsetType       = 0 // Page type (1 byte)
	pageHeaderOffsetFreeblock  = 1 // First freeblock offset (2 bytes)
	pageHeaderOffsetNumCells   = 3 // Number of cells (2 bytes)
	pageHeaderOffsetCellStart  = 5 // Start of cell content area (2 bytes)
	pageHeaderOffsetFragmented = 7 // Fragmented free bytes (1 byte)
	pageHeaderOffsetRightChild = 8 // Right-most child pointer (4 bytes, interior only)
)

// Header sizes
const (
	pageHeaderSizeLeaf     = 8   // Leaf pages: 8 bytes
	pageHeaderSizeInterior = 12  // Interior pages: 12 bytes (includes right child pointer)
	fileHeaderSize         = 100 // Database file header on page 1
)

// PageHeader is the parsed header of a b-tree page.
type PageHeader struct {
	PageType         byte   // Page type (0x02, 0x05, 0x0a, 0x0d)
	FirstFreeblock   uint16 // Offset to first freeblock (0 if none)
	NumCells         uint16 // Number of cells on this page
	CellContentStart uint16 // Start of cell content area
	FragmentedBytes  byte   // Number of fragmented free bytes
	RightChild       uint32 // Right-most child page number (interior pages only)

	// Derived properties
	IsLeaf        bool // True if this is a leaf page
	IsTable       bool // True if this is a table b-tree page
	CellPtrOffset int  // Offset where the cell pointer array starts
}

// ParsePageHeader parses the b-tree page header from raw page data.
// Page 1 carries the 100-byte file header before its page header.
func ParsePageHeader(data []byte, pageNum uint32) (*PageHeader, error) {
	offset := 0
	if pageNum == 1 {
		offset = fileHeaderSize
	}
	if len(data) < offset+pageHeaderSizeLeaf {
		return nil, dberr.Formatf(pageNum, "page data too small: %d bytes", len(data))
	}

	h := &PageHeader{
		PageType:         data[offset+pageHeaderOffsetType],
		FirstFreeblock:   binary.BigEndian.Uint16(data[offset+pageHeaderOffsetFreeblock:]),
		NumCells:         binary.BigEndian.Uint16(data[offset+pageHeaderOffsetNumCells:]),
		CellContentStart: binary.BigEndian.Uint16(data[offset+pageHeaderOffsetCellStart:]),
		FragmentedBytes:  data[offset+pageHeaderOffsetFragmented],
	}

	switch h.PageType {
	case PageTypeLeafTable:
		h.IsLeaf, h.IsTable = true, true
	case PageTypeLeafIndex:
		h.IsLeaf = true
	case PageTypeInteriorTable:
		h.IsTable = true
	case PageTypeInteriorIndex:
	default:
		return nil, dberr.Formatf(pageNum, "invalid page type: 0x%02x", h.PageType)
	}

	if h.IsLeaf {
		h.CellPtrOffset = offset + pageHeaderSizeLeaf
	} else {
		if len(data) < offset+pageHeaderSizeInterior {
			return nil, dberr.Formatf(pageNum, "interior page data too small: %d bytes", len(data))
		}
		h.RightChild = binary.BigEndian.Uint32(data[offset+pageHeaderOffsetRightChild:])
		h.CellPtrOffset = offset + pageHeaderSizeInterior
	}

	return h, nil
}

// CellPointer returns the offset of the i-th cell in the page.
func (h *PageHeader) CellPointer(data []byte, cellIndex int) (int, error) {
	if cellIndex < 0 || cellIndex >= int(h.NumCells) {
		return 0, dberr.Formatf(0, "cell index out of range: %d (have %d cells)", cellIndex, h.NumCells)
	}

	ptrOffset := h.CellPtrOffset + cellIndex*2
	if ptrOffset+2 > len(data) {
		return 0, dberr.Formatf(0, "cell pointer array exceeds page bounds at offset %d", ptrOffset)
	}

	cellOffset := int(binary.BigEndian.Uint16(data[ptrOffset:]))
	if cellOffset >= len(data) {
		return 0, dberr.Formatf(0, "cell offset %d exceeds page bounds", cellOffset)
	}
	return cellOffset, nil
}
