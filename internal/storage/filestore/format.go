package filestore

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"minirdb/internal/sql"
	"minirdb/internal/storage"
)

const (
	schemaSuffix  = ".schema.json"
	dataSuffix    = ".data"
	schemaVersion = 1
)

// Schema is the persisted schema record of one table, stored as
// "<dir>/<table>.schema.json":
//
//	{
//	  "version": 1,
//	  "table": "users",
//	  "id": "5b0c…",
//	  "columns": [
//	    {"name": "id", "type": "INT"},
//	    {"name": "name", "type": "TEXT"}
//	  ],
//	  "checksum": "<blake3 of table, id and columns>"
//	}
//
// Rows live next to it in "<dir>/<table>.data", one JSON object per line,
// keys in schema order:
//
//	{"id":1,"name":"Alice"}
type Schema struct {
	Version  int          `json:"version"`
	Table    string       `json:"table"`
	ID       string       `json:"id"`
	Columns  []sql.Column `json:"columns"`
	Checksum string       `json:"checksum"`
}

func newSchema(table string, cols []sql.Column) *Schema {
	s := &Schema{
		Version: schemaVersion,
		Table:   table,
		ID:      uuid.NewString(),
		Columns: cols,
	}
	s.Checksum = s.computeChecksum()
	return s
}

func (s *Schema) computeChecksum() string {
	h := blake3.New()
	fmt.Fprintf(h, "%d\n%s\n%s\n", s.Version, s.Table, s.ID)
	for _, c := range s.Columns {
		fmt.Fprintf(h, "%s %s\n", c.Name, c.Type)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func encodeSchema(s *Schema) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// decodeSchema parses and verifies a schema record read from disk.
func decodeSchema(table string, b []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: schema of %q: %v", storage.ErrCorrupt, table, err)
	}
	if s.Version != schemaVersion {
		return nil, fmt.Errorf("%w: schema of %q: unsupported version %d", storage.ErrCorrupt, table, s.Version)
	}
	if s.Table != table {
		return nil, fmt.Errorf("%w: schema file of %q names table %q", storage.ErrCorrupt, table, s.Table)
	}
	if len(s.Columns) == 0 {
		return nil, fmt.Errorf("%w: schema of %q has no columns", storage.ErrCorrupt, table)
	}
	if s.Checksum != s.computeChecksum() {
		return nil, fmt.Errorf("%w: schema of %q: checksum mismatch", storage.ErrCorrupt, table)
	}
	return &s, nil
}

// encodeRow writes row as a single JSON object line with keys in schema
// order.
func encodeRow(cols []sql.Column, row sql.Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(row[i])
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// decodeRow parses one row line and checks it against the schema.
func decodeRow(cols []sql.Column, line []byte) (sql.Row, error) {
	var m map[string]sql.Value
	if err := json.Unmarshal(line, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCorrupt, err)
	}
	if len(m) != len(cols) {
		return nil, fmt.Errorf("%w: row has %d columns, schema has %d", storage.ErrCorrupt, len(m), len(cols))
	}

	row := make(sql.Row, len(cols))
	for i, c := range cols {
		v, ok := m[c.Name]
		if !ok {
			return nil, fmt.Errorf("%w: row is missing column %q", storage.ErrCorrupt, c.Name)
		}
		if v.Type != c.Type {
			return nil, fmt.Errorf("%w: column %q holds %v, schema says %v", storage.ErrCorrupt, c.Name, v.Type, c.Type)
		}
		row[i] = v
	}
	return row, nil
}
