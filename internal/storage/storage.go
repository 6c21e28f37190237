// Package storage defines the contract between the executor and a table
// store, together with the error taxonomy and the row checks every store
// shares.
//
// Stores are not safe for concurrent use by several processes: there is no
// locking on the data directory, and two writers appending to the same table
// may interleave. Callers that need that must serialise access themselves.
package storage

import "minirdb/internal/sql"

// Engine is a table store.
//
// Implementations:
//   - filestore: one schema file and one append-only row file per table
//   - memstore:  in-memory, for tests
type Engine interface {
	// CreateTable creates a new empty table. Column type names are resolved
	// with sql.ParseDataType.
	CreateTable(name string, cols []sql.ColumnDef) error

	// Insert appends one row. columns may be empty, in which case values
	// are taken in schema order. Either the full row is stored or nothing.
	Insert(name string, columns []string, values []sql.Value) error

	// Select scans the table in append order, keeps rows matching where
	// (nil = all rows) and projects them onto columns (nil = all columns).
	Select(name string, columns []string, where *sql.WhereExpr) ([]string, []sql.Row, error)

	// TableSchema returns the column definitions for a table.
	TableSchema(name string) ([]sql.Column, error)

	// ListTables returns the names of all tables, sorted.
	ListTables() ([]string, error)
}
