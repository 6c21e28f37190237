package filestore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"minirdb/internal/logging"
	"minirdb/internal/sql"
	"minirdb/internal/storage"
)

// FileEngine is a simple on-disk storage engine.
// It stores two files per table in the given directory: a JSON schema
// record and an append-only JSON Lines row file (see Schema for the
// layout). Every call opens and closes the files it needs; nothing is
// cached between calls.
type FileEngine struct {
	dir string
}

var _ storage.Engine = (*FileEngine)(nil)

// New creates a new FileEngine storing all tables in dir.
func New(dir string) (*FileEngine, error) {
	if dir == "" {
		return nil, fmt.Errorf("filestore: empty data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	return &FileEngine{dir: dir}, nil
}

// Dir returns the data directory.
func (e *FileEngine) Dir() string {
	return e.dir
}

// SchemaFile returns the base name of a table's schema record.
func SchemaFile(table string) string { return table + schemaSuffix }

// DataFile returns the base name of a table's row file.
func DataFile(table string) string { return table + dataSuffix }

func (e *FileEngine) schemaPath(name string) string {
	return filepath.Join(e.dir, SchemaFile(name))
}

func (e *FileEngine) dataPath(name string) string {
	return filepath.Join(e.dir, DataFile(name))
}

// CreateTable writes the schema record and an empty row file.
func (e *FileEngine) CreateTable(name string, defs []sql.ColumnDef) error {
	if err := storage.ValidateTableName(name); err != nil {
		return err
	}
	cols, err := storage.ResolveColumns(name, defs)
	if err != nil {
		return err
	}

	sch := newSchema(name, cols)
	b, err := encodeSchema(sch)
	if err != nil {
		return fmt.Errorf("filestore: encode schema: %w", err)
	}

	path := e.schemaPath(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return &storage.SchemaError{Table: name, Reason: "table already exists"}
		}
		return fmt.Errorf("filestore: create schema file: %w", err)
	}

	if err := writeSync(f, b); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("filestore: write schema: %w", err)
	}

	df, err := os.OpenFile(e.dataPath(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("filestore: create data file: %w", err)
	}
	if err := df.Close(); err != nil {
		return fmt.Errorf("filestore: close data file: %w", err)
	}

	logging.Debug("filestore: table created", "table", name, "id", sch.ID, "columns", len(cols))
	return nil
}

// Insert validates one row against the schema and appends it. The row is
// fsynced before Insert returns.
func (e *FileEngine) Insert(name string, columns []string, values []sql.Value) error {
	sch, err := e.loadSchema(name)
	if err != nil {
		return err
	}

	row, err := storage.BuildRow(name, sch.Columns, columns, values)
	if err != nil {
		return err
	}

	line, err := encodeRow(sch.Columns, row)
	if err != nil {
		return fmt.Errorf("filestore: encode row: %w", err)
	}

	// No O_CREATE: a schema without its data file is a damaged table.
	f, err := os.OpenFile(e.dataPath(name), os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("filestore: %w: data file of %q is missing", storage.ErrCorrupt, name)
		}
		return fmt.Errorf("filestore: open table for insert: %w", err)
	}
	size, err := checkTail(f)
	if err != nil {
		_ = f.Close()
		if errors.Is(err, storage.ErrCorrupt) {
			logging.Warn("filestore: refusing to append to torn row file", "table", name, "size", size)
		}
		return fmt.Errorf("filestore: table %q: %w", name, err)
	}
	if err := appendSync(f, size, line); err != nil {
		return fmt.Errorf("filestore: append row: %w", err)
	}

	logging.Debug("filestore: row appended", "table", name, "bytes", len(line))
	return nil
}

// Select reads the row file front to back, keeps rows matching where and
// projects them onto columns.
func (e *FileEngine) Select(name string, columns []string, where *sql.WhereExpr) ([]string, []sql.Row, error) {
	sch, err := e.loadSchema(name)
	if err != nil {
		return nil, nil, err
	}

	idx, names, err := storage.Projection(name, sch.Columns, columns)
	if err != nil {
		return nil, nil, err
	}
	match, err := storage.Matcher(name, sch.Columns, where)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(e.dataPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("filestore: %w: data file of %q is missing", storage.ErrCorrupt, name)
		}
		return nil, nil, fmt.Errorf("filestore: open table for scan: %w", err)
	}
	defer f.Close()

	var rows []sql.Row
	r := bufio.NewReader(f)
	lineNo := 0
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				row, derr := decodeRow(sch.Columns, trimmed)
				if derr != nil {
					return nil, nil, fmt.Errorf("filestore: table %q line %d: %w", name, lineNo, derr)
				}
				if match(row) {
					rows = append(rows, storage.Project(row, idx))
				}
			} else {
				logging.Warn("filestore: skipping blank row line", "table", name, "line", lineNo)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("filestore: read table %q: %w", name, err)
		}
	}

	return names, rows, nil
}

// TableSchema reads the schema record of the given table.
func (e *FileEngine) TableSchema(name string) ([]sql.Column, error) {
	sch, err := e.loadSchema(name)
	if err != nil {
		return nil, err
	}
	return sch.Columns, nil
}

// Describe returns the full schema record, including the table ID and
// checksum.
func (e *FileEngine) Describe(name string) (*Schema, error) {
	return e.loadSchema(name)
}

// ListTables returns all tables with a schema file in the directory.
func (e *FileEngine) ListTables() ([]string, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("filestore: list tables: %w", err)
	}

	var tables []string
	for _, ent := range entries {
		name := ent.Name()
		if ent.Type().IsRegular() && strings.HasSuffix(name, schemaSuffix) {
			tables = append(tables, strings.TrimSuffix(name, schemaSuffix))
		}
	}
	sort.Strings(tables)
	return tables, nil
}

func (e *FileEngine) loadSchema(name string) (*Schema, error) {
	if storage.ValidateTableName(name) != nil {
		return nil, &storage.NoSuchTableError{Table: name}
	}

	b, err := os.ReadFile(e.schemaPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &storage.NoSuchTableError{Table: name}
		}
		return nil, fmt.Errorf("filestore: read schema: %w", err)
	}

	sch, err := decodeSchema(name, b)
	if err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	return sch, nil
}

// checkTail returns the size of the row file and fails with ErrCorrupt when
// the last row is not newline-terminated.
func checkTail(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat row file: %w", err)
	}
	size := fi.Size()
	if size == 0 {
		return 0, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return size, fmt.Errorf("read row file tail: %w", err)
	}
	if last[0] != '\n' {
		return size, fmt.Errorf("%w: last row is not terminated", storage.ErrCorrupt)
	}
	return size, nil
}

// appendSync appends b at the end of f, syncs and closes it. On failure the
// file is truncated back to size so no partial row is left behind.
func appendSync(f *os.File, size int64, b []byte) error {
	if err := writeSync(f, b); err != nil {
		if terr := os.Truncate(f.Name(), size); terr != nil {
			logging.Error("filestore: rollback of partial append failed", "file", f.Name(), "size", size, "err", terr)
		}
		return err
	}
	return nil
}

// writeSync writes b in one call, syncs and closes f.
func writeSync(f *os.File, b []byte) error {
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
