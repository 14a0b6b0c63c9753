package record

import (
	"fmt"
	"strings"
)

// SchemaError means the header row cannot supply every required field.
// It is file-level: no row of the file is attempted.
type SchemaError struct {
	Missing []Field
	Present []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + joinFields(e.Missing)
}

// ParseError rejects a single row. Missing is set when required values were absent.
type ParseError struct {
	Line    int
	Reason  string
	Missing []Field
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func joinFields(fs []Field) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}

	return strings.Join(names, ", ")
}
