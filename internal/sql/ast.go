package sql

// Statement is the common interface for all SQL statements. The set of
// implementations is closed to this package.
type Statement interface {
	stmtNode()
}

// CreateTableStmt represents a parsed CREATE TABLE statement.
type CreateTableStmt struct {
	TableName string
	Columns   []ColumnDef
}

// InsertStmt represents INSERT INTO t [(cols)] VALUES (vals).
// Columns is empty when the statement had no column list; Values are then
// in schema order.
type InsertStmt struct {
	TableName string
	Columns   []string
	Values    []Value
}

// SelectStmt represents SELECT cols|* FROM t [WHERE col = lit].
// Columns is nil for SELECT *.
type SelectStmt struct {
	TableName string
	Columns   []string
	Where     *WhereExpr
}

// AllColumns reports whether the statement selects every column.
func (s *SelectStmt) AllColumns() bool { return len(s.Columns) == 0 }

// WhereExpr is a single "column = literal" condition.
type WhereExpr struct {
	Column string
	Value  Value
}

func (*CreateTableStmt) stmtNode() {}
func (*InsertStmt) stmtNode()      {}
func (*SelectStmt) stmtNode()      {}
