package sql

// parseInsert parses an INSERT INTO ... VALUES (...) statement.
// Supported syntax:
//
//	INSERT INTO users (id, name) VALUES (1, 'Alice');
//	INSERT INTO users VALUES (1, 'Alice');
func parseInsert(p *parser) (Statement, error) {
	p.next() // INSERT
	p.stmt = "INSERT"
	if !p.acceptKeyword("INTO") {
		return nil, p.errorf("missing INTO")
	}

	tableName, err := p.ident("table name")
	if err != nil {
		return nil, err
	}

	var columns []string
	if p.acceptPunct("(") {
		columns, err = p.identList("column")
		if err != nil {
			return nil, err
		}
	}

	if !p.acceptKeyword("VALUES") {
		return nil, p.errorf("missing VALUES")
	}
	if !p.acceptPunct("(") {
		return nil, p.errorf("expected '(' after VALUES")
	}
	if p.peekPunct(")") {
		return nil, p.errorf("empty VALUES list")
	}

	var values []Value
	for {
		v, err := p.literal()
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		if p.acceptPunct(",") {
			continue
		}
		if p.acceptPunct(")") {
			break
		}
		if p.atEOF() {
			return nil, p.errorf("missing closing ')'")
		}
		return nil, p.errorf("expected ',' or ')' in VALUES list, got %s", p.peek())
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	if len(columns) > 0 && len(columns) != len(values) {
		return nil, p.errorf("%d columns but %d values", len(columns), len(values))
	}

	return &InsertStmt{
		TableName: tableName,
		Columns:   columns,
		Values:    values,
	}, nil
}
