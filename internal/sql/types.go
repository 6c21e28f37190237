package sql

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DataType represents the logical type of a value in a column.
type DataType uint8

const (
	TypeInvalid DataType = iota
	TypeInt
	TypeText
)

// String returns the SQL keyword for the type.
func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeText:
		return "TEXT"
	default:
		return fmt.Sprintf("DataType(%d)", uint8(t))
	}
}

// MarshalText encodes the type as its SQL keyword.
func (t DataType) MarshalText() ([]byte, error) {
	if t != TypeInt && t != TypeText {
		return nil, fmt.Errorf("cannot encode %v", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts the same spellings as ParseDataType.
func (t *DataType) UnmarshalText(b []byte) error {
	dt, ok := ParseDataType(string(b))
	if !ok {
		return fmt.Errorf("unknown column type %q", string(b))
	}
	*t = dt
	return nil
}

// ParseDataType maps a column type keyword (case-insensitive) to a DataType.
func ParseDataType(name string) (DataType, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INT", "INTEGER":
		return TypeInt, true
	case "TEXT", "STRING", "VARCHAR":
		return TypeText, true
	default:
		return TypeInvalid, false
	}
}

// Value represents a single cell in a table (one column in one row).
// Only the field matching Type should be read; the other stays at its
// zero value.
type Value struct {
	Type DataType

	I64 int64  // for TypeInt
	S   string // for TypeText
}

// IntValue returns an INT value.
func IntValue(i int64) Value { return Value{Type: TypeInt, I64: i} }

// TextValue returns a TEXT value.
func TextValue(s string) Value { return Value{Type: TypeText, S: s} }

// String formats the value for display.
func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(v.I64, 10)
	case TypeText:
		return v.S
	default:
		return "NULL"
	}
}

// Equal reports whether a and b have the same type and payload.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeInt:
		return v.I64 == o.I64
	case TypeText:
		return v.S == o.S
	default:
		return false
	}
}

// Coerce converts v to the target type. TEXT that parses as a base-10
// integer becomes INT; INT becomes its decimal text.
func (v Value) Coerce(to DataType) (Value, error) {
	if v.Type == to {
		return v, nil
	}
	switch {
	case to == TypeInt && v.Type == TypeText:
		i, err := strconv.ParseInt(strings.TrimSpace(v.S), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%q is not an integer", v.S)
		}
		return IntValue(i), nil
	case to == TypeText && v.Type == TypeInt:
		return TextValue(strconv.FormatInt(v.I64, 10)), nil
	default:
		return Value{}, fmt.Errorf("cannot convert %v to %v", v.Type, to)
	}
}

// MarshalJSON encodes INT as a JSON number and TEXT as a JSON string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case TypeInt:
		return []byte(strconv.FormatInt(v.I64, 10)), nil
	case TypeText:
		return json.Marshal(v.S)
	default:
		return nil, fmt.Errorf("cannot encode value of type %v", v.Type)
	}
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Value) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}
	i, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("value %s is neither integer nor string", b)
	}
	*v = IntValue(i)
	return nil
}

// Row represents one record in a table: one Value per schema column, in
// schema order.
type Row []Value

// Column describes a resolved column of a stored table.
type Column struct {
	Name string   `json:"name"`
	Type DataType `json:"type"`
}

// ColumnDef is a column as written in CREATE TABLE. TypeName is kept as
// written so storage can reject unknown types.
type ColumnDef struct {
	Name     string
	TypeName string
}
