package btree

import (
	"encoding/binary"

	"rawlite/dberr"
	"rawlite/record"
)

// Cell is a parsed b-tree cell, tagged by the page type it came from.
// Table cells carry a rowid; interior cells carry a left-child pointer;
// payload-bearing cells (table leaf, index leaf, index interior) carry a
// record payload.
type Cell struct {
	Rowid     int64  // Table cells: the integer row key
	ChildPage uint32 // Interior cells: left child page number
	Payload   []byte // Record payload, fully local (never an overflow chain)
}

// ParseCell parses the cell at cellOffset on a page of the given type.
//
// Payloads that spill to overflow pages are rejected with dberr.ErrOverflow:
// the engine never follows overflow chains and never truncates.
func ParseCell(pageType byte, data []byte, cellOffset, usableSize int, pageNum uint32) (*Cell, error) {
	end := usableSize
	if end > len(data) {
		end = len(data)
	}
	if cellOffset >= end {
		return nil, dberr.Formatf(pageNum, "cell offset %d outside usable page area", cellOffset)
	}
	cellData := data[cellOffset:end]

	switch pageType {
	case PageTypeLeafTable:
		return parseTableLeafCell(cellData, usableSize, pageNum)
	case PageTypeInteriorTable:
		return parseTableInteriorCell(cellData, pageNum)
	case PageTypeLeafIndex:
		return parseIndexCell(cellData, 0, usableSize, pageNum)
	case PageTypeInteriorIndex:
		return parseIndexCell(cellData, 4, usableSize, pageNum)
	default:
		return nil, dberr.Formatf(pageNum, "invalid page type: 0x%02x", pageType)
	}
}

// parseTableLeafCell parses a table leaf cell.
// Format: varint(payload_size), varint(rowid), payload
func parseTableLeafCell(cellData []byte, usableSize int, pageNum uint32) (*Cell, error) {
	payloadSize, n, err := record.GetVarint(cellData)
	if err != nil {
		return nil, pageErr(err, pageNum)
	}
	offset := n

	rowid, n, err := record.GetVarint(cellData[offset:])
	if err != nil {
		return nil, pageErr(err, pageNum)
	}
	offset += n

	payload, err := localPayload(cellData[offset:], payloadSize, usableSize, true, pageNum)
	if err != nil {
		return nil, err
	}

	return &Cell{Rowid: int64(rowid), Payload: payload}, nil
}

// parseTableInteriorCell parses a table interior cell.
// Format: 4-byte child page number, varint(rowid)
func parseTableInteriorCell(cellData []byte, pageNum uint32) (*Cell, error) {
	if len(cellData) < 4 {
		return nil, dberr.Formatf(pageNum, "interior cell truncated: %d bytes", len(cellData))
	}
	childPage := binary.BigEndian.Uint32(cellData[0:4])

	rowid, _, err := record.GetVarint(cellData[4:])
	if err != nil {
		return nil, pageErr(err, pageNum)
	}

	return &Cell{ChildPage: childPage, Rowid: int64(rowid)}, nil
}

// parseIndexCell parses an index leaf or interior cell. Interior cells are
// prefixed by a 4-byte child page number (childPrefix = 4).
// Format: [4-byte child page], varint(payload_size), payload
func parseIndexCell(cellData []byte, childPrefix, usableSize int, pageNum uint32) (*Cell, error) {
	cell := &Cell{}

	if childPrefix > 0 {
		if len(cellData) < childPrefix {
			return nil, dberr.Formatf(pageNum, "interior cell truncated: %d bytes", len(cellData))
		}
		cell.ChildPage = binary.BigEndian.Uint32(cellData[0:4])
	}

	payloadSize, n, err := record.GetVarint(cellData[childPrefix:])
	if err != nil {
		return nil, pageErr(err, pageNum)
	}

	payload, err := localPayload(cellData[childPrefix+n:], payloadSize, usableSize, false, pageNum)
	if err != nil {
		return nil, err
	}
	cell.Payload = payload
	return cell, nil
}

// localPayload returns the payload slice if it is stored entirely on this
// page, or an overflow rejection otherwise. The maxLocal threshold mirrors
// SQLite's embedded payload limit, beyond which a writer spills to overflow
// pages even when spare room remains on the page.
func localPayload(rest []byte, payloadSize uint64, usableSize int, isTable bool, pageNum uint32) ([]byte, error) {
	maxLocal := maxLocalPayload(usableSize, isTable)
	if payloadSize > uint64(maxLocal) || payloadSize > uint64(len(rest)) {
		return nil, &dberr.FormatError{
			Page:   pageNum,
			Detail: "payload spans overflow pages",
			Err:    dberr.ErrOverflow,
		}
	}
	return rest[:payloadSize], nil
}

// maxLocalPayload is the largest payload a writer stores fully in-page:
// usable-35 for table leaves, ((usable-12)*64/255)-23 for index pages.
func maxLocalPayload(usableSize int, isTable bool) int {
	if isTable {
		return usableSize - 35
	}
	return (usableSize-12)*64/255 - 23
}

// pageErr attaches a page number to format errors bubbling up from varint
// or record decoding.
func pageErr(err error, pageNum uint32) error {
	if fe, ok := err.(*dberr.FormatError); ok && fe.Page == 0 {
		fe.Page = pageNum
	}
	return err
}
