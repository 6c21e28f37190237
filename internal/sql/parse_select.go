package sql

import "strings"

// parseSelect parses a simple SELECT statement.
// Supported forms (case-insensitive, flexible spaces):
//
//	SELECT * FROM users;
//	SELECT id, name FROM users WHERE id = 1;
//	SELECT * FROM users WHERE name = 'Alice';
func parseSelect(p *parser) (Statement, error) {
	p.next() // SELECT
	p.stmt = "SELECT"

	var columns []string
	seen := make(map[string]bool)
	if p.acceptPunct("*") {
		if !p.peekKeyword("FROM") {
			return nil, p.errorf("expected FROM after '*'")
		}
	} else {
		for {
			name, err := p.ident("column name")
			if err != nil {
				return nil, err
			}
			if seen[name] {
				return nil, p.errorf("duplicate column %q", name)
			}
			seen[name] = true
			columns = append(columns, name)
			if p.acceptPunct(",") {
				continue
			}
			if p.peekKeyword("FROM") {
				break
			}
			if p.atEOF() {
				return nil, p.errorf("missing FROM")
			}
			return nil, p.errorf("expected ',' or FROM, got %s", p.peek())
		}
	}

	p.next() // FROM
	tableName, err := p.ident("table name")
	if err != nil {
		return nil, err
	}

	var where *WhereExpr
	if p.acceptKeyword("WHERE") {
		where, err = parseWhereClause(p)
		if err != nil {
			return nil, err
		}
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return &SelectStmt{
		TableName: tableName,
		Columns:   columns,
		Where:     where,
	}, nil
}

// parseWhereClause parses a simple "column = literal" expression.
func parseWhereClause(p *parser) (*WhereExpr, error) {
	if p.atEOF() {
		return nil, p.errorf("empty WHERE clause")
	}
	col, err := p.ident("column name in WHERE")
	if err != nil {
		return nil, err
	}

	switch t := p.peek(); {
	case t.kind == tokPunct && t.text == "=":
		p.next()
	case t.kind == tokOperator:
		return nil, p.errorf("WHERE: only '=' operator is supported, got %q", t.text)
	case t.kind == tokIdent && strings.EqualFold(t.text, "NOT"), t.kind == tokIdent && strings.EqualFold(t.text, "IS"):
		return nil, p.errorf("WHERE: only '=' operator is supported, got %s", strings.ToUpper(t.text))
	default:
		return nil, p.errorf("WHERE: expected '=' after %q", col)
	}

	if p.atEOF() {
		return nil, p.errorf("WHERE: missing value after '='")
	}
	val, err := p.literal()
	if err != nil {
		return nil, err
	}

	if p.peekKeyword("AND") || p.peekKeyword("OR") {
		return nil, p.errorf("WHERE: compound conditions (%s) are not supported",
			strings.ToUpper(p.peek().text))
	}

	return &WhereExpr{Column: col, Value: val}, nil
}
