package schema

import (
	"strings"
)

// Table-level constraint keywords. A declaration fragment starting with one
// of these (with no preceding identifier) defines no column.
var constraintKeywords = []string{"PRIMARY", "FOREIGN", "UNIQUE", "CHECK", "CONSTRAINT"}

// parseColumnList extracts the ordered column names from a CREATE TABLE
// declaration, plus the position of the INTEGER PRIMARY KEY rowid-alias
// column (-1 if none).
//
// The declaration body is the outermost parenthesis pair following the
// table name. It is split on commas at paren depth 0, quote-aware;
// fragments that are table-level constraints are discarded, and the leading
// identifier of each remaining fragment is the column name.
func parseColumnList(sql string) ([]string, int) {
	body, ok := parenBody(sql)
	if !ok {
		return nil, -1
	}

	var columns []string
	alias := -1
	for _, frag := range splitTopLevel(body) {
		frag = strings.TrimSpace(frag)
		if frag == "" || isTableConstraint(frag) {
			continue
		}

		name, rest := leadingIdentifier(frag)
		if name == "" {
			continue
		}
		if isRowidAlias(rest) {
			alias = len(columns)
		}
		columns = append(columns, name)
	}
	return columns, alias
}

// parseIndexColumns extracts the indexed column names from a CREATE INDEX
// declaration.
func parseIndexColumns(sql string) []string {
	body, ok := parenBody(sql)
	if !ok {
		return nil
	}

	var columns []string
	for _, frag := range splitTopLevel(body) {
		name, _ := leadingIdentifier(strings.TrimSpace(frag))
		if name != "" {
			columns = append(columns, name)
		}
	}
	return columns
}

// parenBody returns the text inside the outermost parenthesis pair.
func parenBody(sql string) (string, bool) {
	start := strings.IndexByte(sql, '(')
	if start < 0 {
		return "", false
	}

	depth := 0
	var quote byte
	for i := start; i < len(sql); i++ {
		ch := sql[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '[':
			quote = ']'
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sql[start+1 : i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits s on commas at paren depth 0, quote-aware.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '[':
			quote = ']'
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// isTableConstraint reports whether a fragment starts with a table-level
// constraint keyword.
func isTableConstraint(frag string) bool {
	word := frag
	if i := strings.IndexFunc(frag, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '('
	}); i >= 0 {
		word = frag[:i]
	}
	for _, kw := range constraintKeywords {
		if strings.EqualFold(word, kw) {
			return true
		}
	}
	return false
}

// leadingIdentifier returns the first identifier of a fragment with any
// surrounding quotes stripped ("name", `name`, or [name]), and the
// remainder of the fragment.
func leadingIdentifier(frag string) (string, string) {
	if frag == "" {
		return "", ""
	}

	switch frag[0] {
	case '"', '`':
		if end := strings.IndexByte(frag[1:], frag[0]); end >= 0 {
			return frag[1 : 1+end], frag[2+end:]
		}
		return "", ""
	case '[':
		if end := strings.IndexByte(frag, ']'); end > 0 {
			return frag[1:end], frag[end+1:]
		}
		return "", ""
	}

	end := len(frag)
	for i := 0; i < len(frag); i++ {
		ch := frag[i]
		if ch == '_' || ch == '$' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') {
			continue
		}
		end = i
		break
	}
	return frag[:end], frag[end:]
}

// isRowidAlias reports whether a column's declaration tail marks it as the
// INTEGER PRIMARY KEY alias for the rowid. Only the exact type name
// INTEGER qualifies.
func isRowidAlias(rest string) bool {
	fields := strings.Fields(strings.ToUpper(rest))
	return len(fields) >= 3 &&
		fields[0] == "INTEGER" && fields[1] == "PRIMARY" && fields[2] == "KEY"
}
