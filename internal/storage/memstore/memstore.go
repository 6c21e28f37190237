package memstore

import (
	"sort"
	"sync"

	"minirdb/internal/sql"
	"minirdb/internal/storage"
)

type table struct {
	name string
	cols []sql.Column
	rows []sql.Row // stored rows, append order
}

type memEngine struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// New creates a new in-memory storage engine. It applies the same checks
// as the file store and is meant for tests.
func New() storage.Engine {
	return &memEngine{
		tables: make(map[string]*table),
	}
}

func (e *memEngine) CreateTable(name string, defs []sql.ColumnDef) error {
	if err := storage.ValidateTableName(name); err != nil {
		return err
	}
	cols, err := storage.ResolveColumns(name, defs)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.tables[name]; exists {
		return &storage.SchemaError{Table: name, Reason: "table already exists"}
	}

	e.tables[name] = &table{
		name: name,
		cols: cols,
		rows: make([]sql.Row, 0),
	}

	return nil
}

func (e *memEngine) Insert(name string, columns []string, values []sql.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.tables[name]
	if !ok {
		return &storage.NoSuchTableError{Table: name}
	}

	row, err := storage.BuildRow(name, t.cols, columns, values)
	if err != nil {
		return err
	}

	t.rows = append(t.rows, row)
	return nil
}

func (e *memEngine) Select(name string, columns []string, where *sql.WhereExpr) ([]string, []sql.Row, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.tables[name]
	if !ok {
		return nil, nil, &storage.NoSuchTableError{Table: name}
	}

	idx, names, err := storage.Projection(name, t.cols, columns)
	if err != nil {
		return nil, nil, err
	}
	match, err := storage.Matcher(name, t.cols, where)
	if err != nil {
		return nil, nil, err
	}

	// Project copies, so callers cannot mutate stored data.
	var out []sql.Row
	for _, r := range t.rows {
		if match(r) {
			out = append(out, storage.Project(r, idx))
		}
	}

	return names, out, nil
}

func (e *memEngine) TableSchema(name string) ([]sql.Column, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.tables[name]
	if !ok {
		return nil, &storage.NoSuchTableError{Table: name}
	}
	cols := make([]sql.Column, len(t.cols))
	copy(cols, t.cols)
	return cols, nil
}

func (e *memEngine) ListTables() ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.tables))
	for name := range e.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
