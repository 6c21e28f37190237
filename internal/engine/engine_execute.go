package engine

import (
	"fmt"
	"time"

	"minirdb/internal/logging"
	"minirdb/internal/sql"
)

// Execute takes a parsed SQL Statement and executes it using the engine.
// Storage errors are returned unchanged.
func (e *DBEngine) Execute(stmt sql.Statement) (*Result, error) {
	start := time.Now()

	var (
		res *Result
		err error
	)
	switch s := stmt.(type) {
	case *sql.CreateTableStmt:
		err = e.store.CreateTable(s.TableName, s.Columns)
		res = &Result{Kind: KindCreateTable, Table: s.TableName}

	case *sql.InsertStmt:
		err = e.store.Insert(s.TableName, s.Columns, s.Values)
		res = &Result{Kind: KindInsert, Table: s.TableName}

	case *sql.SelectStmt:
		res = &Result{Kind: KindSelect, Table: s.TableName}
		res.Columns, res.Rows, err = e.store.Select(s.TableName, s.Columns, s.Where)

	default:
		return nil, fmt.Errorf("unsupported statement type %T", stmt)
	}

	if err != nil {
		logging.Debug("statement failed", "kind", res.Kind, "table", res.Table, "error", err)
		return nil, err
	}

	res.Status = StatusOK
	logging.Debug("statement executed",
		"kind", res.Kind,
		"table", res.Table,
		"rows", len(res.Rows),
		"duration", time.Since(start))
	return res, nil
}

// ExecuteSQL splits input into statements, then parses and executes them
// in order. It stops at the first failure and returns the results of the
// statements that completed before it.
func (e *DBEngine) ExecuteSQL(input string) ([]*Result, error) {
	var results []*Result
	for _, text := range sql.SplitStatements(input) {
		stmt, err := sql.Parse(text)
		if err != nil {
			return results, err
		}
		res, err := e.Execute(stmt)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
