package pager

import (
	"io"
	"os"

	"rawlite/dberr"
)

// Pager serves raw page slices from a SQLite database file.
//
// A Pager holds a single file handle and the header parsed at open time.
// It performs one blocking read per page request and must not be shared
// across concurrent callers without external locking; independent Pagers
// on the same path are safe.
type Pager struct {
	r        io.ReaderAt
	size     int64
	header   *DatabaseHeader
	pageSize int
	closer   io.Closer // nil when backed by an in-memory buffer
}

// Open opens the database file at path and parses its header.
func Open(path string) (*Pager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &dberr.IOError{Path: path, Op: "open", Err: err}
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &dberr.IOError{Path: path, Op: "stat", Err: err}
	}

	p, err := New(f, st.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	p.closer = f
	return p, nil
}

// New builds a Pager over an arbitrary ReaderAt of the given size, such as
// an in-memory snapshot. The header is parsed immediately.
func New(r io.ReaderAt, size int64) (*Pager, error) {
	buf := make([]byte, DatabaseHeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, dberr.Formatf(0, "file smaller than %d-byte header", DatabaseHeaderSize)
		}
		return nil, &dberr.IOError{Op: "read", Err: err}
	}

	header, err := ParseDatabaseHeader(buf)
	if err != nil {
		return nil, err
	}

	return &Pager{
		r:        r,
		size:     size,
		header:   header,
		pageSize: header.GetPageSize(),
	}, nil
}

// Header returns the parsed database header.
func (p *Pager) Header() *DatabaseHeader {
	return p.header
}

// PageSize returns the actual page size in bytes.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// UsableSize returns the usable bytes per page (page size minus reserved space).
func (p *Pager) UsableSize() int {
	return p.header.UsableSize()
}

// ReadPage returns the raw bytes of 1-based page n. The full page must lie
// within the file; a range past the end is a format error, not a short read.
func (p *Pager) ReadPage(n uint32) ([]byte, error) {
	if n == 0 {
		return nil, dberr.Formatf(0, "page number 0 is not addressable")
	}

	start := int64(n-1) * int64(p.pageSize)
	end := start + int64(p.pageSize)
	if end > p.size {
		return nil, dberr.Formatf(n, "page range [%d, %d) exceeds file length %d", start, end, p.size)
	}

	buf := make([]byte, p.pageSize)
	if _, err := p.r.ReadAt(buf, start); err != nil {
		return nil, &dberr.IOError{Op: "read", Err: err}
	}
	return buf, nil
}

// Close releases the underlying file handle, if any.
func (p *Pager) Close() error {
	if p.closer == nil {
		return nil
	}
	err := p.closer.Close()
	p.closer = nil
	return err
}
