package sql

import "strings"

// Parse parses a single SQL statement string into an AST Statement.
// A trailing semicolon is optional; more than one statement is an error
// (split input with SplitStatements first).
func Parse(query string) (Statement, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, parseErrorf(-1, "empty query")
	}

	toks, err := tokenize(q)
	if err != nil {
		return nil, err
	}

	// Remove trailing semicolon if present
	if n := len(toks); n >= 2 && toks[n-2].kind == tokPunct && toks[n-2].text == ";" {
		toks = append(toks[:n-2], toks[n-1])
	}
	for _, t := range toks {
		if t.kind == tokPunct && t.text == ";" {
			return nil, parseErrorf(t.offset, "unexpected ';': one statement per call")
		}
	}

	p := &parser{toks: toks}
	first := p.peek()
	if first.kind == tokIdent {
		switch strings.ToUpper(first.text) {
		case "CREATE":
			return parseCreateTable(p)
		case "INSERT":
			return parseInsert(p)
		case "SELECT":
			return parseSelect(p)
		}
	}

	return nil, parseErrorf(first.offset,
		"unrecognized statement %s (supported: CREATE TABLE, INSERT, SELECT)", first)
}
