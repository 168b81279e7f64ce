package main

import (
	"errors"
	"fmt"
	"testing"

	"rawlite/dberr"
	"rawlite/record"
)

func TestFormatRow(t *testing.T) {
	tests := []struct {
		name string
		row  []record.Value
		want string
	}{
		{
			name: "mixed values",
			row:  []record.Value{record.Integer(2), record.Text("Fuji"), record.Text("Red")},
			want: "2|Fuji|Red",
		},
		{
			name: "null renders empty",
			row:  []record.Value{record.Integer(5), record.Null(), record.Text("x")},
			want: "5||x",
		},
		{
			name: "single column",
			row:  []record.Value{record.Real(1.5)},
			want: "1.5",
		},
		{
			name: "empty row",
			row:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRow(tt.row); got != tt.want {
				t.Errorf("formatRow() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"io", &dberr.IOError{Op: "open", Err: errors.New("denied")}, exitIO},
		{"format", dberr.Formatf(3, "bad page"), exitFormat},
		{"overflow", &dberr.FormatError{Detail: "spilled", Err: dberr.ErrOverflow}, exitFormat},
		{"schema", &dberr.SchemaError{Kind: "table", Name: "pears"}, exitSchema},
		{"column", &dberr.ColumnError{Table: "apples", Column: "taste"}, exitSchema},
		{"parse", &dberr.ParseError{SQL: "DROP TABLE x", Detail: "unsupported"}, exitParse},
		{"unclassified", fmt.Errorf("something else"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
