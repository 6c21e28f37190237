package engine

import (
	"fmt"

	"minirdb/internal/sql"
	"minirdb/internal/storage"
)

// DBEngine is the single dispatch point between parsed statements and a
// storage engine. It holds one store for its whole lifetime and keeps no
// other state.
type DBEngine struct {
	store storage.Engine
}

// New creates a new DBEngine bound to store.
func New(store storage.Engine) *DBEngine {
	return &DBEngine{store: store}
}

// ListTables returns the names of all tables in the storage engine.
func (e *DBEngine) ListTables() ([]string, error) {
	return e.store.ListTables()
}

// TableSchema returns the column definitions for a table.
func (e *DBEngine) TableSchema(name string) ([]sql.Column, error) {
	return e.store.TableSchema(name)
}

// Result is the uniform outcome of one statement. Columns and Rows are set
// for SELECT only.
type Result struct {
	Kind    string // "CREATE TABLE", "INSERT" or "SELECT"
	Table   string
	Status  string
	Columns []string
	Rows    []sql.Row
}

// IsQuery reports whether the result carries rows.
func (r *Result) IsQuery() bool {
	return r.Kind == KindSelect
}

// Records returns the rows as column name → value mappings. Column names
// in a result are unique, so no value is lost.
func (r *Result) Records() []map[string]sql.Value {
	out := make([]map[string]sql.Value, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := make(map[string]sql.Value, len(r.Columns))
		for i, c := range r.Columns {
			rec[c] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// String formats the acknowledgement, e.g. "INSERT users: ok".
func (r *Result) String() string {
	if r.IsQuery() {
		return fmt.Sprintf("%s %s: %d row(s)", r.Kind, r.Table, len(r.Rows))
	}
	return fmt.Sprintf("%s %s: %s", r.Kind, r.Table, r.Status)
}

const (
	KindCreateTable = "CREATE TABLE"
	KindInsert      = "INSERT"
	KindSelect      = "SELECT"

	StatusOK = "ok"
)
