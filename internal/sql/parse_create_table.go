package sql

import "strings"

// parseCreateTable parses:
//
//	CREATE TABLE name (col TYPE, col TYPE, ...)
//
// The type keyword is kept as written (upper-cased); resolving it is the
// storage layer's job.
func parseCreateTable(p *parser) (Statement, error) {
	p.next() // CREATE
	p.stmt = "CREATE TABLE"
	if !p.acceptKeyword("TABLE") {
		return nil, p.errorf("expected TABLE after CREATE")
	}

	tableName, err := p.ident("table name")
	if err != nil {
		return nil, err
	}

	if !p.acceptPunct("(") {
		return nil, p.errorf("missing '('")
	}
	if p.peekPunct(")") {
		return nil, p.errorf("no column definitions")
	}

	var columns []ColumnDef
	for {
		colName, err := p.ident("column name")
		if err != nil {
			return nil, err
		}

		typeTok := p.peek()
		if typeTok.kind != tokIdent || reserved[strings.ToUpper(typeTok.text)] {
			return nil, p.errorf("missing type for column %q", colName)
		}
		p.next()

		columns = append(columns, ColumnDef{
			Name:     colName,
			TypeName: strings.ToUpper(typeTok.text),
		})

		if p.acceptPunct(",") {
			continue
		}
		if p.acceptPunct(")") {
			break
		}
		if p.atEOF() {
			return nil, p.errorf("missing ')'")
		}
		return nil, p.errorf("unexpected %s in definition of column %q", p.peek(), colName)
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}

	return &CreateTableStmt{
		TableName: tableName,
		Columns:   columns,
	}, nil
}
