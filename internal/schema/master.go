package schema

import (
	"rawlite/dberr"
	"rawlite/internal/btree"
	"rawlite/record"
)

// masterRootPage is the fixed root of the sqlite_master table.
const masterRootPage = 1

// Load scans the sqlite_master table and builds the catalog. Every schema
// record must decode into the five fixed fields; a malformed record fails
// the whole load.
func Load(t *btree.Tree) (*Catalog, error) {
	c := &Catalog{}

	scan := t.Scan(masterRootPage)
	for scan.Next() {
		entry, err := decodeMasterRow(scan.Cell().Payload)
		if err != nil {
			return nil, err
		}
		c.entries = append(c.entries, entry)
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// decodeMasterRow decodes one sqlite_master record into an Entry.
func decodeMasterRow(payload []byte) (Entry, error) {
	_, values, err := record.Decode(payload)
	if err != nil {
		return Entry{}, err
	}
	if len(values) < 5 {
		return Entry{}, dberr.Formatf(masterRootPage, "schema record has %d columns, want 5", len(values))
	}

	typ, err := masterText(values[0], "type")
	if err != nil {
		return Entry{}, err
	}
	name, err := masterText(values[1], "name")
	if err != nil {
		return Entry{}, err
	}
	tblName, err := masterText(values[2], "tbl_name")
	if err != nil {
		return Entry{}, err
	}

	// rootpage is Null for views and triggers
	var rootPage uint32
	switch values[3].Kind {
	case record.KindInteger:
		rootPage = uint32(values[3].Int)
	case record.KindNull:
	default:
		return Entry{}, dberr.Formatf(masterRootPage, "schema record rootpage has non-integer storage class")
	}

	// sql is Null for some auto-created objects
	var sql string
	switch values[4].Kind {
	case record.KindText:
		sql = string(values[4].Bytes)
	case record.KindNull:
	default:
		return Entry{}, dberr.Formatf(masterRootPage, "schema record sql has unexpected storage class")
	}

	return Entry{
		Type:      typ,
		Name:      name,
		TableName: tblName,
		RootPage:  rootPage,
		SQL:       sql,
	}, nil
}

func masterText(v record.Value, field string) (string, error) {
	if v.Kind != record.KindText {
		return "", dberr.Formatf(masterRootPage, "schema record %s has non-text storage class", field)
	}
	return string(v.Bytes), nil
}
