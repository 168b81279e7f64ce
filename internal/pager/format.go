// Package pager reads pages from a SQLite database file.
//
// The pager parses the 100-byte file header once at open time and serves
// raw page slices by 1-based page number. It is strictly read-only and
// keeps no page cache: every read goes back to the underlying file, trading
// memory for predictability.
package pager

import (
	"encoding/binary"

	"rawlite/dberr"
)

// File format constants
const (
	// DatabaseHeaderSize is the size of the database file header (first 100 bytes).
	DatabaseHeaderSize = 100

	// MinPageSize is the minimum allowed page size (512 bytes).
	MinPageSize = 512

	// MaxPageSize is the maximum allowed page size (65536 bytes).
	MaxPageSize = 65536

	// MagicHeaderString is the magic header string for SQLite 3 database files.
	// Must be exactly 16 bytes including the null terminator.
	MagicHeaderString = "SQLite format 3\x00"
)

// Database header byte offsets (read-only fields the engine interprets)
const (
	// OffsetMagic is the offset of the magic header string (16 bytes).
	OffsetMagic = 0

	// OffsetPageSize is the offset of the page size field (2 bytes, big-endian).
	// A stored value of 1 represents 65536.
	OffsetPageSize = 16

	// OffsetReservedSpace is the reserved space at end of each page (1 byte).
	OffsetReservedSpace = 20

	// OffsetFileChangeCounter is the file change counter (4 bytes, big-endian).
	OffsetFileChangeCounter = 24

	// OffsetDatabaseSize is the database size in pages (4 bytes, big-endian).
	OffsetDatabaseSize = 28

	// OffsetSchemaFormat is the schema format number (4 bytes, big-endian).
	OffsetSchemaFormat = 44

	// OffsetTextEncoding is the database text encoding (4 bytes, big-endian).
	// 1 = UTF-8, 2 = UTF-16le, 3 = UTF-16be
	OffsetTextEncoding = 56
)

// Text encoding values
const (
	EncodingUTF8    = 1
	EncodingUTF16LE = 2
	EncodingUTF16BE = 3
)

// DatabaseHeader is the parsed 100-byte header at the start of the file.
// It is built once at open time and immutable for the session.
type DatabaseHeader struct {
	// PageSize is the stored page size field. A value of 1 means 65536;
	// use GetPageSize for the actual size.
	PageSize uint16

	// ReservedSpace is the number of unused bytes at the end of each page.
	ReservedSpace uint8

	// FileChangeCounter is incremented whenever the database file is modified.
	FileChangeCounter uint32

	// DatabaseSize is the size of the database file in pages, as recorded
	// in the header (may be stale in files written by very old engines).
	DatabaseSize uint32

	// SchemaFormat is the schema format number (1, 2, 3, or 4).
	SchemaFormat uint32

	// TextEncoding is the database text encoding (1=UTF-8, 2=UTF-16le, 3=UTF-16be).
	TextEncoding uint32
}

// ParseDatabaseHeader parses the 100-byte database header from raw bytes.
func ParseDatabaseHeader(data []byte) (*DatabaseHeader, error) {
	if len(data) < DatabaseHeaderSize {
		return nil, dberr.Formatf(0, "file smaller than %d-byte header", DatabaseHeaderSize)
	}

	if string(data[OffsetMagic:OffsetMagic+16]) != MagicHeaderString {
		return nil, dberr.Formatf(0, "invalid magic header")
	}

	header := &DatabaseHeader{
		PageSize:          binary.BigEndian.Uint16(data[OffsetPageSize : OffsetPageSize+2]),
		ReservedSpace:     data[OffsetReservedSpace],
		FileChangeCounter: binary.BigEndian.Uint32(data[OffsetFileChangeCounter : OffsetFileChangeCounter+4]),
		DatabaseSize:      binary.BigEndian.Uint32(data[OffsetDatabaseSize : OffsetDatabaseSize+4]),
		SchemaFormat:      binary.BigEndian.Uint32(data[OffsetSchemaFormat : OffsetSchemaFormat+4]),
		TextEncoding:      binary.BigEndian.Uint32(data[OffsetTextEncoding : OffsetTextEncoding+4]),
	}

	if !isValidPageSize(int(header.PageSize)) {
		return nil, dberr.Formatf(0, "invalid page size: %d", header.PageSize)
	}

	return header, nil
}

// isValidPageSize checks if a stored page size field is valid.
// Valid values are powers of 2 between 512 and 65536, or the special
// value 1 representing 65536.
func isValidPageSize(size int) bool {
	if size == 1 {
		return true
	}
	if size < MinPageSize || size > MaxPageSize {
		return false
	}
	return size&(size-1) == 0
}

// GetPageSize returns the actual page size, handling the special case where
// a stored value of 1 means 65536.
func (h *DatabaseHeader) GetPageSize() int {
	if h.PageSize == 1 {
		return MaxPageSize
	}
	return int(h.PageSize)
}

// UsableSize returns the number of usable bytes per page: the page size
// minus the reserved region at the end of each page.
func (h *DatabaseHeader) UsableSize() int {
	return h.GetPageSize() - int(h.ReservedSpace)
}
