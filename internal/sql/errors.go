package sql

import (
	"errors"
	"fmt"
)

// ErrParse is the class of every error returned by Parse.
var ErrParse = errors.New("parse error")

// ParseError describes malformed statement text.
type ParseError struct {
	Msg    string
	Offset int // byte offset into the trimmed statement, -1 if unknown
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
	}
	return "parse error: " + e.Msg
}

func (e *ParseError) Unwrap() error { return ErrParse }

func parseErrorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}
