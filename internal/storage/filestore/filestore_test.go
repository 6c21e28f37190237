package filestore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"minirdb/internal/sql"
	"minirdb/internal/storage"
)

var usersCols = []sql.ColumnDef{
	{Name: "id", TypeName: "INT"},
	{Name: "name", TypeName: "TEXT"},
}

func newUsers(t *testing.T) (*FileEngine, string) {
	t.Helper()
	dir := t.TempDir()

	fs, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := fs.CreateTable("users", usersCols); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	return fs, dir
}

func mustInsert(t *testing.T, fs *FileEngine, id int64, name string) {
	t.Helper()
	if err := fs.Insert("users", []string{"id", "name"}, []sql.Value{sql.IntValue(id), sql.TextValue(name)}); err != nil {
		t.Fatalf("Insert(%d, %q) failed: %v", id, name, err)
	}
}

// Basic: create table, verify files exist, read schema.
func TestFilestore_CreateTableAndSchema(t *testing.T) {
	fs, dir := newUsers(t)

	tables, err := fs.ListTables()
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 1 || tables[0] != "users" {
		t.Fatalf("unexpected tables: %v", tables)
	}

	schema, err := fs.TableSchema("users")
	if err != nil {
		t.Fatalf("TableSchema failed: %v", err)
	}
	if len(schema) != 2 ||
		schema[0] != (sql.Column{Name: "id", Type: sql.TypeInt}) ||
		schema[1] != (sql.Column{Name: "name", Type: sql.TypeText}) {
		t.Fatalf("unexpected schema: %v", schema)
	}

	for _, name := range []string{"users.schema.json", "users.data"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("file %s not created: %v", name, err)
		}
		if name == "users.data" && fi.Size() != 0 {
			t.Fatalf("expected empty data file, got %d bytes", fi.Size())
		}
	}
}

func TestFilestore_SchemaReloadsByteForByte(t *testing.T) {
	fs, dir := newUsers(t)

	raw, err := os.ReadFile(filepath.Join(dir, "users.schema.json"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	sch, err := fs.Describe("users")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if sch.ID == "" || len(sch.Checksum) != 64 {
		t.Fatalf("expected table id and blake3 checksum, got %+v", sch)
	}

	again, err := encodeSchema(sch)
	if err != nil {
		t.Fatalf("encodeSchema failed: %v", err)
	}
	if !bytes.Equal(raw, again) {
		t.Fatalf("schema did not round-trip:\n%s\nvs\n%s", raw, again)
	}
}

func TestFilestore_CreateTableErrors(t *testing.T) {
	fs, _ := newUsers(t)

	tests := []struct {
		name  string
		table string
		cols  []sql.ColumnDef
	}{
		{"already exists", "users", usersCols},
		{"unknown type", "t1", []sql.ColumnDef{{Name: "a", TypeName: "BLOB"}}},
		{"no columns", "t2", nil},
		{"duplicate column", "t3", []sql.ColumnDef{{Name: "a", TypeName: "INT"}, {Name: "a", TypeName: "TEXT"}}},
		{"bad table name", "../escape", usersCols},
		{"bad column name", "t4", []sql.ColumnDef{{Name: "a b", TypeName: "INT"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := fs.CreateTable(tc.table, tc.cols)
			var se *storage.SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SchemaError, got %T: %v", err, err)
			}
		})
	}

	tables, err := fs.ListTables()
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("failed creates must not leave tables behind, got %v", tables)
	}
}

// Insert → Select, in order, and the row file is JSON Lines.
func TestFilestore_InsertAndSelect(t *testing.T) {
	fs, dir := newUsers(t)

	mustInsert(t, fs, 1, "Alice")
	mustInsert(t, fs, 2, "Bob")
	// Reordered column list and a numeric string for the INT column.
	if err := fs.Insert("users", []string{"name", "id"}, []sql.Value{sql.TextValue("Carol"), sql.TextValue("3")}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	names, rows, err := fs.Select("users", nil, nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(names) != 2 || names[0] != "id" || names[1] != "name" {
		t.Fatalf("unexpected names: %v", names)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []string{"Alice", "Bob", "Carol"} {
		if !rows[i][0].Equal(sql.IntValue(int64(i+1))) || !rows[i][1].Equal(sql.TextValue(want)) {
			t.Fatalf("row %d: unexpected %v", i, rows[i])
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "users.data"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 || lines[0] != `{"id":1,"name":"Alice"}` {
		t.Fatalf("unexpected data file contents: %q", data)
	}
}

func TestFilestore_SelectWhereAndProjection(t *testing.T) {
	fs, _ := newUsers(t)
	mustInsert(t, fs, 1, "Alice")
	mustInsert(t, fs, 2, "Bob")
	mustInsert(t, fs, 3, "Bob")

	names, rows, err := fs.Select("users", []string{"id"}, &sql.WhereExpr{Column: "name", Value: sql.TextValue("Bob")})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(names) != 1 || names[0] != "id" {
		t.Fatalf("unexpected names: %v", names)
	}
	if len(rows) != 2 || rows[0][0].I64 != 2 || rows[1][0].I64 != 3 {
		t.Fatalf("unexpected rows: %v", rows)
	}

	// A text literal compares against INT columns after coercion.
	_, rows, err = fs.Select("users", nil, &sql.WhereExpr{Column: "id", Value: sql.TextValue("1")})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 || rows[0][1].S != "Alice" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	// Not an integer: nothing can match.
	_, rows, err = fs.Select("users", nil, &sql.WhereExpr{Column: "id", Value: sql.TextValue("one")})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}

func TestFilestore_InsertErrorsAppendNothing(t *testing.T) {
	fs, dir := newUsers(t)

	var tm *storage.TypeMismatchError
	err := fs.Insert("users", []string{"id", "name"}, []sql.Value{sql.TextValue("abc"), sql.TextValue("x")})
	if !errors.As(err, &tm) || tm.Column != "id" || tm.Want != sql.TypeInt {
		t.Fatalf("expected TypeMismatchError on id, got %v", err)
	}

	var uc *storage.UnknownColumnError
	err = fs.Insert("users", []string{"id", "email"}, []sql.Value{sql.IntValue(1), sql.TextValue("x")})
	if !errors.As(err, &uc) || uc.Column != "email" {
		t.Fatalf("expected UnknownColumnError on email, got %v", err)
	}

	var se *storage.SchemaError
	err = fs.Insert("users", []string{"id"}, []sql.Value{sql.IntValue(1)})
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError for missing column, got %v", err)
	}

	var nt *storage.NoSuchTableError
	err = fs.Insert("ghosts", []string{"id"}, []sql.Value{sql.IntValue(1)})
	if !errors.As(err, &nt) || !errors.Is(err, storage.ErrNoSuchTable) {
		t.Fatalf("expected NoSuchTableError, got %v", err)
	}

	fi, err := os.Stat(filepath.Join(dir, "users.data"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if fi.Size() != 0 {
		t.Fatalf("failed inserts must not append, data file has %d bytes", fi.Size())
	}
}

func TestFilestore_SelectErrors(t *testing.T) {
	fs, _ := newUsers(t)

	if _, _, err := fs.Select("ghosts", nil, nil); !errors.Is(err, storage.ErrNoSuchTable) {
		t.Fatalf("expected ErrNoSuchTable, got %v", err)
	}
	if _, _, err := fs.Select("users", []string{"email"}, nil); !errors.Is(err, storage.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn for projection, got %v", err)
	}
	where := &sql.WhereExpr{Column: "email", Value: sql.TextValue("x")}
	if _, _, err := fs.Select("users", nil, where); !errors.Is(err, storage.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn for WHERE, got %v", err)
	}
}

// State lives only in the directory: a second engine sees the same data.
func TestFilestore_ReopenSeesData(t *testing.T) {
	fs, dir := newUsers(t)
	mustInsert(t, fs, 1, "Alice")

	fs2, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, rows, err := fs2.Select("users", nil, nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 || rows[0][1].S != "Alice" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestFilestore_CorruptFiles(t *testing.T) {
	fs, dir := newUsers(t)
	mustInsert(t, fs, 1, "Alice")

	// Torn trailing write.
	f, err := os.OpenFile(filepath.Join(dir, "users.data"), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, err := f.WriteString(`{"id":2,"na`); err != nil {
		t.Fatalf("WriteString failed: %v", err)
	}
	f.Close()

	if _, _, err := fs.Select("users", nil, nil); !errors.Is(err, storage.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for torn row, got %v", err)
	}

	// Tampered schema.
	path := filepath.Join(dir, "users.schema.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	tampered := bytes.Replace(raw, []byte(`"TEXT"`), []byte(`"INT"`), 1)
	if err := os.WriteFile(path, tampered, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := fs.TableSchema("users"); !errors.Is(err, storage.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for tampered schema, got %v", err)
	}
}

func TestFilestore_SeparateDirsDoNotInterfere(t *testing.T) {
	a, _ := newUsers(t)
	b, _ := newUsers(t)

	mustInsert(t, a, 1, "Alice")

	_, rows, err := b.Select("users", nil, nil)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty table in second dir, got %v", rows)
	}
}

// A torn last row must block further appends instead of gluing the new row
// onto it.
func TestFilestore_InsertRefusesTornTail(t *testing.T) {
	fs, dir := newUsers(t)
	mustInsert(t, fs, 1, "Alice")

	path := filepath.Join(dir, "users.data")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open data file: %v", err)
	}
	if _, err := f.WriteString(`{"id":`); err != nil {
		t.Fatalf("write torn tail: %v", err)
	}
	f.Close()
	before, _ := os.ReadFile(path)

	err = fs.Insert("users", nil, []sql.Value{sql.IntValue(2), sql.TextValue("Bob")})
	if !errors.Is(err, storage.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on torn tail, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Fatalf("insert modified a torn file: %q -> %q", before, after)
	}
}

// A failed write is rolled back to the size recorded before the append.
func TestFilestore_AppendSyncRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.data")
	if err := os.WriteFile(path, []byte("{\"a\":1}\n{\"a\":"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	// Read-only handle: the write fails.
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := appendSync(f, 8, []byte("{\"a\":2}\n")); err == nil {
		t.Fatalf("expected write through a read-only handle to fail")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "{\"a\":1}\n" {
		t.Fatalf("expected file truncated to last full row, got %q", got)
	}
}
