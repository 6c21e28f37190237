package storage

import (
	"fmt"
	"regexp"

	"minirdb/internal/sql"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName rejects names that are not plain identifiers. Table
// names become file names, so this also keeps them inside the data
// directory.
func ValidateTableName(name string) error {
	if !identRe.MatchString(name) {
		return &SchemaError{Table: name, Reason: "invalid table name"}
	}
	return nil
}

// ResolveColumns checks a CREATE TABLE column list and resolves its type
// names.
func ResolveColumns(table string, defs []sql.ColumnDef) ([]sql.Column, error) {
	if len(defs) == 0 {
		return nil, &SchemaError{Table: table, Reason: "no columns"}
	}

	cols := make([]sql.Column, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if !identRe.MatchString(d.Name) {
			return nil, &SchemaError{Table: table, Reason: fmt.Sprintf("invalid column name %q", d.Name)}
		}
		if seen[d.Name] {
			return nil, &SchemaError{Table: table, Reason: fmt.Sprintf("duplicate column %q", d.Name)}
		}
		seen[d.Name] = true

		dt, ok := sql.ParseDataType(d.TypeName)
		if !ok {
			return nil, &SchemaError{
				Table:  table,
				Reason: fmt.Sprintf("unknown type %q for column %q", d.TypeName, d.Name),
			}
		}
		cols = append(cols, sql.Column{Name: d.Name, Type: dt})
	}
	return cols, nil
}

func columnIndex(schema []sql.Column) map[string]int {
	idx := make(map[string]int, len(schema))
	for i, c := range schema {
		idx[c.Name] = i
	}
	return idx
}

// ColumnNames returns the names of schema in order.
func ColumnNames(schema []sql.Column) []string {
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	return names
}

// BuildRow maps an INSERT's (columns, values) onto schema order and coerces
// every value to its declared type. Every schema column must be given
// exactly once. With no columns, values are taken in schema order.
func BuildRow(table string, schema []sql.Column, columns []string, values []sql.Value) (sql.Row, error) {
	if len(columns) == 0 {
		columns = ColumnNames(schema)
		if len(values) != len(columns) {
			return nil, &SchemaError{
				Table:  table,
				Reason: fmt.Sprintf("expected %d values, got %d", len(columns), len(values)),
			}
		}
	}
	if len(values) != len(columns) {
		return nil, &SchemaError{
			Table:  table,
			Reason: fmt.Sprintf("%d columns but %d values", len(columns), len(values)),
		}
	}

	colIndex := columnIndex(schema)
	out := make(sql.Row, len(schema))
	seen := make([]bool, len(schema))

	for i, name := range columns {
		pos, ok := colIndex[name]
		if !ok {
			return nil, &UnknownColumnError{Table: table, Column: name}
		}
		if seen[pos] {
			return nil, &SchemaError{Table: table, Reason: fmt.Sprintf("duplicate column %q in column list", name)}
		}
		seen[pos] = true

		v, err := values[i].Coerce(schema[pos].Type)
		if err != nil {
			return nil, &TypeMismatchError{Table: table, Column: name, Want: schema[pos].Type, Value: values[i]}
		}
		out[pos] = v
	}

	for i, s := range seen {
		if !s {
			return nil, &SchemaError{Table: table, Reason: fmt.Sprintf("no value provided for column %q", schema[i].Name)}
		}
	}

	return out, nil
}

// Projection resolves a SELECT column list (nil = all) to schema indexes.
// A column may appear only once, so result column names are unique.
func Projection(table string, schema []sql.Column, columns []string) ([]int, []string, error) {
	if len(columns) == 0 {
		idx := make([]int, len(schema))
		for i := range schema {
			idx[i] = i
		}
		return idx, ColumnNames(schema), nil
	}

	colIndex := columnIndex(schema)
	idx := make([]int, len(columns))
	seen := make(map[string]bool, len(columns))
	for i, name := range columns {
		pos, ok := colIndex[name]
		if !ok {
			return nil, nil, &UnknownColumnError{Table: table, Column: name}
		}
		if seen[name] {
			return nil, nil, &SchemaError{Table: table, Reason: fmt.Sprintf("duplicate column %q in select list", name)}
		}
		seen[name] = true
		idx[i] = pos
	}

	names := make([]string, len(columns))
	copy(names, columns)
	return idx, names, nil
}

// Matcher compiles a WHERE condition (nil = match all) into a predicate over
// stored rows. The literal is coerced to the column's type first; a literal
// that cannot be coerced matches nothing.
func Matcher(table string, schema []sql.Column, where *sql.WhereExpr) (func(sql.Row) bool, error) {
	if where == nil {
		return func(sql.Row) bool { return true }, nil
	}

	pos, ok := columnIndex(schema)[where.Column]
	if !ok {
		return nil, &UnknownColumnError{Table: table, Column: where.Column}
	}

	want, err := where.Value.Coerce(schema[pos].Type)
	if err != nil {
		return func(sql.Row) bool { return false }, nil
	}

	return func(r sql.Row) bool {
		return pos < len(r) && r[pos].Equal(want)
	}, nil
}

// Project returns the values of r at idx.
func Project(r sql.Row, idx []int) sql.Row {
	out := make(sql.Row, len(idx))
	for i, pos := range idx {
		out[i] = r[pos]
	}
	return out
}
