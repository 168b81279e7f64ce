// Package rawlite reads SQLite database files directly, byte by byte,
// without linking a database library. It parses the on-disk page and
// B-tree format and executes a restricted SELECT dialect against the raw
// image, which is never modified.
//
// Use Open to attach to a database file (or an xz-compressed snapshot of
// one), then Query to run statements:
//
//	db, err := rawlite.Open("app.db")
//	if err != nil { ... }
//	defer db.Close()
//	res, err := db.Query("SELECT name, color FROM apples WHERE color = 'Red'")
//
// The supported grammar is SELECT COUNT(*) FROM t, and SELECT cols|* FROM t
// with at most one WHERE col = literal predicate. Anything else returns
// dberr.ErrParse.
package rawlite

import (
	"rawlite/dberr"
	"rawlite/internal/btree"
	"rawlite/internal/pager"
	"rawlite/internal/query"
	"rawlite/internal/schema"
	"rawlite/internal/snapshot"
	"rawlite/record"
)

// DB is a read-only handle on a database image. It is safe for concurrent
// queries: all state below it is immutable after Open.
type DB struct {
	source  *snapshot.Source
	pager   *pager.Pager
	tree    *btree.Tree
	catalog *schema.Catalog
}

// Metadata describes the opened database image.
type Metadata struct {
	PageSize     int    // Page size in bytes (65536 for the stored value 1)
	TableCount   int    // User tables, excluding sqlite_* internals
	SchemaFormat uint32 // Schema format number from the file header
	TextEncoding uint32 // 1=UTF-8, 2=UTF-16le, 3=UTF-16be
	Path         string // Path the image was opened from
	Compressed   bool   // True when opened from an xz snapshot
}

// Open opens the database image at path and loads its schema. Paths ending
// in ".xz" are decompressed into memory first.
func Open(path string) (*DB, error) {
	src, err := snapshot.Open(path)
	if err != nil {
		return nil, err
	}

	db, err := open(src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return db, nil
}

func open(src *snapshot.Source) (*DB, error) {
	p, err := pager.New(src.ReaderAt(), src.Size())
	if err != nil {
		return nil, err
	}

	tree := btree.New(p)
	catalog, err := schema.Load(tree)
	if err != nil {
		return nil, err
	}

	return &DB{source: src, pager: p, tree: tree, catalog: catalog}, nil
}

// Metadata returns the page size and user table count of the image.
func (db *DB) Metadata() Metadata {
	header := db.pager.Header()
	return Metadata{
		PageSize:     db.pager.PageSize(),
		TableCount:   db.catalog.TableCount(),
		SchemaFormat: header.SchemaFormat,
		TextEncoding: header.TextEncoding,
		Path:         db.source.Path(),
		Compressed:   db.source.Compressed(),
	}
}

// TableNames returns the user table names in schema order.
func (db *DB) TableNames() []string {
	return db.catalog.TableNames()
}

// Fingerprint returns the hex BLAKE3-256 digest of the raw image bytes.
func (db *DB) Fingerprint() (string, error) {
	return db.source.Fingerprint()
}

// QueryResult is the outcome of a query: either a count, or a lazy row
// sequence consumed through Next/Row.
type QueryResult struct {
	inner *query.Result
}

// Query parses, plans, and executes a statement. For SELECT queries the
// returned result streams rows lazily; errors encountered mid-scan surface
// through Err after Next returns false.
func (db *DB) Query(sql string) (*QueryResult, error) {
	stmt, err := query.Parse(sql)
	if err != nil {
		return nil, err
	}
	plan, err := query.Build(stmt, db.catalog)
	if err != nil {
		return nil, err
	}
	res, err := query.Execute(db.tree, plan)
	if err != nil {
		return nil, err
	}
	return &QueryResult{inner: res}, nil
}

// IsCount reports whether the result is a COUNT(*) aggregate.
func (r *QueryResult) IsCount() bool {
	return r.inner.IsCount
}

// Count returns the aggregate value for COUNT(*) queries.
func (r *QueryResult) Count() int64 {
	return r.inner.Count
}

// Columns returns the projected column names, in projection order.
func (r *QueryResult) Columns() []string {
	return r.inner.Columns
}

// Next advances to the next row. It returns false at the end of the
// sequence or on error; check Err to distinguish.
func (r *QueryResult) Next() bool {
	if r.inner.Rows == nil {
		return false
	}
	return r.inner.Rows.Next()
}

// Row returns the values produced by the last successful Next.
func (r *QueryResult) Row() []record.Value {
	return r.inner.Rows.Row()
}

// Err returns the error that terminated the row sequence, if any.
func (r *QueryResult) Err() error {
	if r.inner.Rows == nil {
		return nil
	}
	return r.inner.Rows.Err()
}

// Close releases the underlying file handle. The DB must not be used
// afterwards.
func (db *DB) Close() error {
	if err := db.pager.Close(); err != nil {
		return err
	}
	return db.source.Close()
}

// Sentinel re-exports so callers matching error kinds need not import
// dberr separately.
var (
	ErrIO             = dberr.ErrIO
	ErrFormat         = dberr.ErrFormat
	ErrOverflow       = dberr.ErrOverflow
	ErrSchema         = dberr.ErrSchema
	ErrParse          = dberr.ErrParse
	ErrColumnNotFound = dberr.ErrColumnNotFound
)
