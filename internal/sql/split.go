package sql

import "strings"

// CutStatement returns the first semicolon-terminated statement in s and
// the text after it. Semicolons inside single-quoted strings do not count.
// ok is false when s holds no complete statement yet.
func CutStatement(s string) (stmt, rest string, ok bool) {
	inQuote := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return strings.TrimSpace(s[:i]), s[i+1:], true
			}
		}
	}
	return "", s, false
}

// SplitStatements splits input into statements on semicolons outside quoted
// strings. Empty statements are dropped; a final statement without a
// terminating semicolon is kept.
func SplitStatements(input string) []string {
	var out []string
	rest := input
	for {
		stmt, r, ok := CutStatement(rest)
		if !ok {
			break
		}
		if stmt != "" {
			out = append(out, stmt)
		}
		rest = r
	}
	if tail := strings.TrimSpace(rest); tail != "" {
		out = append(out, tail)
	}
	return out
}
