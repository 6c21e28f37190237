package storage

import (
	"errors"
	"fmt"

	"minirdb/internal/sql"
)

// Sentinel errors, one per error class. Every typed error below unwraps to
// exactly one of them.
var (
	ErrSchema        = errors.New("schema error")
	ErrNoSuchTable   = errors.New("no such table")
	ErrUnknownColumn = errors.New("unknown column")
	ErrTypeMismatch  = errors.New("type mismatch")
	// ErrCorrupt reports on-disk data that cannot be decoded.
	ErrCorrupt = errors.New("corrupt table data")
)

// SchemaError covers table redefinition and invalid table or column
// definitions.
type SchemaError struct {
	Table  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %q: %s", e.Table, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// NoSuchTableError reports an operation on a table that was never created.
type NoSuchTableError struct {
	Table string
}

func (e *NoSuchTableError) Error() string {
	return fmt.Sprintf("no such table %q", e.Table)
}

func (e *NoSuchTableError) Unwrap() error { return ErrNoSuchTable }

// UnknownColumnError reports a column reference absent from the schema.
type UnknownColumnError struct {
	Table  string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("table %q has no column %q", e.Table, e.Column)
}

func (e *UnknownColumnError) Unwrap() error { return ErrUnknownColumn }

// TypeMismatchError reports a value that cannot be coerced to its column's
// declared type.
type TypeMismatchError struct {
	Table  string
	Column string
	Want   sql.DataType
	Value  sql.Value
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("table %q column %q expects %v, got %v %q",
		e.Table, e.Column, e.Want, e.Value.Type, e.Value.String())
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
