// Package query parses, plans, and executes the restricted SQL dialect.
//
// The grammar is deliberately fixed-shape: a statement is either
// SELECT COUNT(*) FROM t, or SELECT cols|* FROM t with at most one
// WHERE col = literal predicate. Everything else is a parse error by
// contract — joins, multiple predicates, and other clauses are rejected
// explicitly, never silently ignored.
package query

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"rawlite/dberr"
	"rawlite/record"
)

// Statement is the parsed form of a supported SQL statement.
type Statement struct {
	Count   bool      // SELECT COUNT(*) ...
	Star    bool      // SELECT * ...
	Columns []string  // Projected column names (nil for Count and Star)
	Table   string    // Table name
	Filter  *Predicate // Optional single equality predicate
}

// Predicate is a single WHERE column = literal condition.
type Predicate struct {
	Column string
	Value  record.Value
}

// sqlLexer tokenizes the restricted dialect. Keywords are their own token
// type so the grammar can match them case-insensitively.
var sqlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(SELECT|COUNT|FROM|WHERE)\b`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),*=]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

//nolint:govet // participle grammar tags are not standard struct tags
type selectGrammar struct {
	Count   *countClause `parser:"\"SELECT\" ( @@"`
	Star    bool         `parser:"        | @\"*\""`
	Columns []string     `parser:"        | @Ident ( \",\" @Ident )* )"`
	Table   string       `parser:"\"FROM\" @Ident"`
	Where   *whereClause `parser:"@@?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type countClause struct {
	Present bool `parser:"@\"COUNT\" \"(\" \"*\" \")\""`
}

//nolint:govet // participle grammar tags are not standard struct tags
type whereClause struct {
	Column string    `parser:"\"WHERE\" @Ident"`
	Value  litClause `parser:"\"=\" @@"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type litClause struct {
	Str *string `parser:"  @String"`
	Num *string `parser:"| @Number"`
}

var sqlParser = participle.MustBuild[selectGrammar](
	participle.Lexer(sqlLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Keyword"),
)

// Parse parses SQL text into a Statement, rejecting anything outside the
// restricted grammar with dberr.ErrParse.
func Parse(sql string) (*Statement, error) {
	parsed, err := sqlParser.ParseString("", sql)
	if err != nil {
		return nil, &dberr.ParseError{SQL: sql, Detail: err.Error()}
	}

	stmt := &Statement{
		Count:   parsed.Count != nil,
		Star:    parsed.Star,
		Columns: parsed.Columns,
		Table:   parsed.Table,
	}

	if parsed.Where != nil {
		value, err := literalValue(parsed.Where.Value, sql)
		if err != nil {
			return nil, err
		}
		stmt.Filter = &Predicate{
			Column: parsed.Where.Column,
			Value:  value,
		}
	}

	return stmt, nil
}

// literalValue converts a parsed literal into a typed value: quoted strings
// become text, bare numerals become integers or reals.
func literalValue(lit litClause, sql string) (record.Value, error) {
	if lit.Str != nil {
		s := *lit.Str
		if len(s) < 2 {
			return record.Value{}, &dberr.ParseError{SQL: sql, Detail: "unterminated string literal"}
		}
		return record.Text(s[1 : len(s)-1]), nil
	}
	if lit.Num != nil {
		s := *lit.Num
		if !strings.Contains(s, ".") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return record.Integer(i), nil
			}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return record.Value{}, &dberr.ParseError{SQL: sql, Detail: "invalid numeric literal: " + s}
		}
		return record.Real(f), nil
	}
	return record.Value{}, &dberr.ParseError{SQL: sql, Detail: "missing literal"}
}
