package rawlite_test

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ulikunitz/xz"
	_ "modernc.org/sqlite" // reference engine, used only to write fixtures

	"rawlite"
	"rawlite/dberr"
)

// createFixture writes a small fruit database with a reference SQLite
// engine and returns its path. The engine under test then reads the file
// back with no database library involved.
func createFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fruit.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open reference database: %v", err)
	}
	defer db.Close()
	// One connection, so the page_size pragma governs file creation.
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA page_size = 4096",
		"PRAGMA journal_mode = DELETE",
		"CREATE TABLE apples (id integer primary key, name text, color text)",
		"CREATE TABLE oranges (id integer primary key, name text)",
		"CREATE TABLE grapes (id integer primary key, name text)",
		"CREATE INDEX idx_apples_color ON apples (color)",
		`INSERT INTO apples (id, name, color) VALUES
			(1, 'Granny Smith', 'Light Green'),
			(2, 'Fuji', 'Red'),
			(3, 'Honeycrisp', 'Blush Red'),
			(4, 'Golden Delicious', 'Yellow')`,
		"INSERT INTO oranges (id, name) VALUES (1, 'Mandarin'), (2, 'Navel')",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture statement failed: %v\n%s", err, stmt)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close reference database: %v", err)
	}
	return path
}

func openFixture(t *testing.T) *rawlite.DB {
	t.Helper()
	db, err := rawlite.Open(createFixture(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// collectRows drains a result into string rows for comparison.
func collectRows(t *testing.T, res *rawlite.QueryResult) [][]string {
	t.Helper()

	var rows [][]string
	for res.Next() {
		row := make([]string, len(res.Row()))
		for i, v := range res.Row() {
			row[i] = v.String()
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		t.Fatalf("row scan error = %v", err)
	}
	return rows
}

func TestMetadata(t *testing.T) {
	db := openFixture(t)

	meta := db.Metadata()
	if meta.PageSize != 4096 {
		t.Errorf("PageSize = %d, want 4096", meta.PageSize)
	}
	if meta.TableCount != 3 {
		t.Errorf("TableCount = %d, want 3", meta.TableCount)
	}
	if meta.TextEncoding != 1 {
		t.Errorf("TextEncoding = %d, want 1 (UTF-8)", meta.TextEncoding)
	}
	if meta.Compressed {
		t.Error("Compressed = true for a plain file")
	}
}

func TestTableNames(t *testing.T) {
	db := openFixture(t)

	want := []string{"apples", "oranges", "grapes"}
	got := db.TableNames()
	if len(got) != len(want) {
		t.Fatalf("TableNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TableNames() = %v, want %v", got, want)
		}
	}
}

func TestQueryCount(t *testing.T) {
	db := openFixture(t)

	tests := []struct {
		sql  string
		want int64
	}{
		{"SELECT COUNT(*) FROM apples", 4},
		{"SELECT COUNT(*) FROM oranges", 2},
		{"SELECT COUNT(*) FROM grapes", 0},
		{"SELECT COUNT(*) FROM apples WHERE color = 'Red'", 1},
		{"SELECT COUNT(*) FROM apples WHERE color = 'Mauve'", 0},
		{"SELECT COUNT(*) FROM apples WHERE name = 'Fuji'", 1},
	}

	for _, tt := range tests {
		t.Run(tt.sql, func(t *testing.T) {
			res, err := db.Query(tt.sql)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if !res.IsCount() {
				t.Fatal("IsCount() = false, want true")
			}
			if res.Count() != tt.want {
				t.Errorf("Count() = %d, want %d", res.Count(), tt.want)
			}
		})
	}
}

func TestQuerySelectStar(t *testing.T) {
	db := openFixture(t)

	res, err := db.Query("SELECT * FROM apples")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	wantCols := []string{"id", "name", "color"}
	cols := res.Columns()
	if len(cols) != len(wantCols) {
		t.Fatalf("Columns() = %v, want %v", cols, wantCols)
	}
	for i := range wantCols {
		if cols[i] != wantCols[i] {
			t.Fatalf("Columns() = %v, want %v", cols, wantCols)
		}
	}

	rows := collectRows(t, res)
	want := [][]string{
		{"1", "Granny Smith", "Light Green"},
		{"2", "Fuji", "Red"},
		{"3", "Honeycrisp", "Blush Red"},
		{"4", "Golden Delicious", "Yellow"},
	}
	assertRows(t, rows, want)
}

// The id column aliases the rowid: its record slot stores NULL and the
// value comes from the b-tree cell, which projection must surface.
func TestQueryRowidAlias(t *testing.T) {
	db := openFixture(t)

	res, err := db.Query("SELECT id FROM oranges")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	assertRows(t, collectRows(t, res), [][]string{{"1"}, {"2"}})
}

func TestQueryWhereIndexed(t *testing.T) {
	db := openFixture(t)

	res, err := db.Query("SELECT id, name FROM apples WHERE color = 'Red'")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	assertRows(t, collectRows(t, res), [][]string{{"2", "Fuji"}})
}

func TestQueryWhereUnindexed(t *testing.T) {
	db := openFixture(t)

	res, err := db.Query("SELECT color FROM apples WHERE name = 'Honeycrisp'")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	assertRows(t, collectRows(t, res), [][]string{{"Blush Red"}})
}

func TestQueryWhereRowidAlias(t *testing.T) {
	db := openFixture(t)

	res, err := db.Query("SELECT name FROM apples WHERE id = 3")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	assertRows(t, collectRows(t, res), [][]string{{"Honeycrisp"}})
}

// Table and column names resolve case-insensitively; stored data does not.
func TestQueryCaseSensitivity(t *testing.T) {
	db := openFixture(t)

	res, err := db.Query("SELECT NAME FROM APPLES WHERE COLOR = 'Red'")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	assertRows(t, collectRows(t, res), [][]string{{"Fuji"}})

	res, err = db.Query("SELECT name FROM apples WHERE color = 'red'")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if rows := collectRows(t, res); len(rows) != 0 {
		t.Errorf("lowercase literal matched %v, want no rows", rows)
	}
}

func TestQueryErrors(t *testing.T) {
	db := openFixture(t)

	tests := []struct {
		name     string
		sql      string
		sentinel error
	}{
		{"missing table", "SELECT * FROM pears", dberr.ErrSchema},
		{"missing column", "SELECT taste FROM apples", dberr.ErrColumnNotFound},
		{"missing filter column", "SELECT name FROM apples WHERE taste = 'sweet'", dberr.ErrColumnNotFound},
		{"unsupported sql", "DELETE FROM apples", dberr.ErrParse},
		{"inequality", "SELECT name FROM apples WHERE id < 3", dberr.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Query(tt.sql)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Query() error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestQueryNullNeverEqual(t *testing.T) {
	path := createFixture(t)

	// A row whose color is NULL must not match any equality literal.
	ref, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open reference database: %v", err)
	}
	if _, err := ref.Exec("INSERT INTO apples (id, name, color) VALUES (5, 'Mystery', NULL)"); err != nil {
		t.Fatalf("fixture insert failed: %v", err)
	}
	if err := ref.Close(); err != nil {
		t.Fatalf("failed to close reference database: %v", err)
	}

	db, err := rawlite.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	res, err := db.Query("SELECT COUNT(*) FROM apples WHERE color = 'Red'")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if res.Count() != 1 {
		t.Errorf("Count() = %d, want 1", res.Count())
	}

	res, err = db.Query("SELECT name, color FROM apples WHERE id = 5")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	assertRows(t, collectRows(t, res), [][]string{{"Mystery", ""}})
}

// Every restricted statement must return the same rows the reference
// engine returns for the same file.
func TestReferenceCrossCheck(t *testing.T) {
	path := createFixture(t)

	db, err := rawlite.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	ref, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		t.Fatalf("failed to open reference database: %v", err)
	}
	defer ref.Close()

	queries := []string{
		"SELECT * FROM apples",
		"SELECT name, color FROM apples",
		"SELECT name FROM apples WHERE color = 'Red'",
		"SELECT id, color FROM apples WHERE name = 'Fuji'",
		"SELECT * FROM oranges",
		"SELECT name FROM apples WHERE color = 'Mauve'",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			res, err := db.Query(q)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			got := collectRows(t, res)
			want := referenceRows(t, ref, q)
			assertRows(t, got, want)
		})
	}
}

// referenceRows runs a statement on the reference engine and renders the
// rows the way Value.String does (NULL empty, floats in 'g' form).
func referenceRows(t *testing.T, db *sql.DB, query string) [][]string {
	t.Helper()

	rows, err := db.Query(query)
	if err != nil {
		t.Fatalf("reference query failed: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		t.Fatalf("reference columns failed: %v", err)
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			t.Fatalf("reference scan failed: %v", err)
		}

		row := make([]string, len(vals))
		for i, v := range vals {
			switch v := v.(type) {
			case nil:
				row[i] = ""
			case int64:
				row[i] = strconv.FormatInt(v, 10)
			case float64:
				row[i] = strconv.FormatFloat(v, 'g', -1, 64)
			case []byte:
				row[i] = string(v)
			case string:
				row[i] = v
			default:
				t.Fatalf("reference value has unexpected type %T", v)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("reference rows failed: %v", err)
	}
	return out
}

func TestFingerprint(t *testing.T) {
	path := createFixture(t)

	db, err := rawlite.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	sum1, err := db.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if len(sum1) != 64 {
		t.Fatalf("Fingerprint() length = %d, want 64 hex chars", len(sum1))
	}

	db2, err := rawlite.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db2.Close()

	sum2, err := db2.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if sum1 != sum2 {
		t.Errorf("fingerprints differ: %s vs %s", sum1, sum2)
	}
}

func TestOpenXZSnapshot(t *testing.T) {
	path := createFixture(t)
	xzPath := compressFixture(t, path)

	db, err := rawlite.Open(xzPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	meta := db.Metadata()
	if !meta.Compressed {
		t.Error("Compressed = false for an xz snapshot")
	}
	if meta.PageSize != 4096 {
		t.Errorf("PageSize = %d, want 4096", meta.PageSize)
	}

	res, err := db.Query("SELECT name FROM apples WHERE color = 'Red'")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	assertRows(t, collectRows(t, res), [][]string{{"Fuji"}})

	// The fingerprint covers the decompressed image, so it matches the
	// plain file's.
	plain, err := rawlite.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer plain.Close()

	sumXZ, err := db.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	sumPlain, err := plain.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if sumXZ != sumPlain {
		t.Errorf("snapshot fingerprint %s differs from plain %s", sumXZ, sumPlain)
	}
}

func TestOpenErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := rawlite.Open(filepath.Join(t.TempDir(), "absent.db"))
		if !errors.Is(err, dberr.ErrIO) {
			t.Errorf("Open() error = %v, want ErrIO", err)
		}
	})

	t.Run("not a database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk.db")
		if err := os.WriteFile(path, []byte("this is not a database"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := rawlite.Open(path)
		if !errors.Is(err, dberr.ErrFormat) {
			t.Errorf("Open() error = %v, want ErrFormat", err)
		}
	})
}

func TestSentinelReExports(t *testing.T) {
	if !errors.Is(rawlite.ErrParse, dberr.ErrParse) {
		t.Error("ErrParse re-export does not match dberr.ErrParse")
	}
	if !errors.Is(rawlite.ErrSchema, dberr.ErrSchema) {
		t.Error("ErrSchema re-export does not match dberr.ErrSchema")
	}
}

// compressFixture writes an xz copy of the fixture next to it.
func compressFixture(t *testing.T, path string) string {
	t.Helper()

	src, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	xzPath := path + ".xz"
	dst, err := os.Create(xzPath)
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	w, err := xz.NewWriter(dst)
	if err != nil {
		t.Fatalf("xz.NewWriter() error = %v", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("compress close failed: %v", err)
	}
	return xzPath
}

func assertRows(t *testing.T, got, want [][]string) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("row %d = %v, want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("row %d = %v, want %v", i, got[i], want[i])
			}
		}
	}
}
