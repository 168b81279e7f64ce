// Command rawlite inspects SQLite database files without a database
// library: it parses the raw page format and answers a restricted SELECT
// dialect directly from the bytes.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"rawlite"
	"rawlite/dberr"
	"rawlite/internal/logging"
	"rawlite/record"
)

const version = "0.1.0"

// Exit codes by error kind, so scripts can distinguish bad input from a
// bad database image.
const (
	exitIO     = 2
	exitFormat = 3
	exitSchema = 4
	exitParse  = 5
)

// CLI defines the command-line interface for rawlite.
var CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`
	JSON    bool `name:"log-json" help:"Emit logs as JSON"`

	Info    InfoCmd    `cmd:"" help:"Print database header metadata"`
	Tables  TablesCmd  `cmd:"" help:"List user table names"`
	Query   QueryCmd   `cmd:"" help:"Execute a SELECT statement"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// InfoCmd prints page size, table count, and the image fingerprint.
type InfoCmd struct {
	Database string `arg:"" help:"Path to database file (or .xz snapshot)" type:"existingfile"`
}

func (c *InfoCmd) Run() error {
	db, err := rawlite.Open(c.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	meta := db.Metadata()
	fingerprint, err := db.Fingerprint()
	if err != nil {
		return err
	}

	fmt.Printf("database page size: %d\n", meta.PageSize)
	fmt.Printf("number of tables: %d\n", meta.TableCount)
	fmt.Printf("schema format: %d\n", meta.SchemaFormat)
	fmt.Printf("text encoding: %s\n", encodingName(meta.TextEncoding))
	fmt.Printf("blake3: %s\n", fingerprint)
	if meta.Compressed {
		fmt.Printf("source: xz snapshot\n")
	}
	return nil
}

func encodingName(enc uint32) string {
	switch enc {
	case 1:
		return "UTF-8"
	case 2:
		return "UTF-16le"
	case 3:
		return "UTF-16be"
	}
	return fmt.Sprintf("unknown (%d)", enc)
}

// TablesCmd lists user table names on one space-separated line.
type TablesCmd struct {
	Database string `arg:"" help:"Path to database file (or .xz snapshot)" type:"existingfile"`
}

func (c *TablesCmd) Run() error {
	db, err := rawlite.Open(c.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println(strings.Join(db.TableNames(), " "))
	return nil
}

// QueryCmd executes one statement and prints the result: a bare number
// for COUNT(*), pipe-delimited rows otherwise. NULL prints as empty.
type QueryCmd struct {
	Database string `arg:"" help:"Path to database file (or .xz snapshot)" type:"existingfile"`
	SQL      string `arg:"" help:"SELECT statement to execute"`
	Header   bool   `help:"Print column names before rows"`
}

func (c *QueryCmd) Run() error {
	queryID := logging.NewQueryID()
	log := logging.ForQuery(queryID, c.SQL)

	db, err := rawlite.Open(c.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := db.Query(c.SQL)
	if err != nil {
		log.Error("query failed", "error", err)
		return err
	}

	if res.IsCount() {
		fmt.Println(res.Count())
		return nil
	}

	if c.Header {
		fmt.Println(strings.Join(res.Columns(), "|"))
	}

	rows := 0
	for res.Next() {
		fmt.Println(formatRow(res.Row()))
		rows++
	}
	if err := res.Err(); err != nil {
		log.Error("row scan failed", "error", err, "rows_emitted", rows)
		return err
	}
	log.Debug("query done", "rows", rows)
	return nil
}

// formatRow renders one row pipe-delimited, NULL as empty string.
func formatRow(row []record.Value) string {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = v.String()
	}
	return strings.Join(fields, "|")
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("rawlite version %s\n", version)
	return nil
}

// exitCode maps an error to a stable exit code by kind.
func exitCode(err error) int {
	switch {
	case errors.Is(err, dberr.ErrIO):
		return exitIO
	case errors.Is(err, dberr.ErrFormat), errors.Is(err, dberr.ErrOverflow):
		return exitFormat
	case errors.Is(err, dberr.ErrSchema), errors.Is(err, dberr.ErrColumnNotFound):
		return exitSchema
	case errors.Is(err, dberr.ErrParse):
		return exitParse
	}
	return 1
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("rawlite"),
		kong.Description("Read-only SQLite file inspector"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := logging.LevelWarn
	if CLI.Verbose {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if CLI.JSON {
		format = logging.FormatJSON
	}
	logging.InitLogger(level, format)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rawlite: %v\n", err)
		os.Exit(exitCode(err))
	}
}
