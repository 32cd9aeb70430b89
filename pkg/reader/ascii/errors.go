package ascii

import (
	"fmt"
	"strconv"
	"strings"
)

// maxListedRows limits the row numbers spelled out in ParseError.Error.
const maxListedRows = 10

// RowError describes why a single row was rejected.
type RowError struct {
	Line   int    // 1-based line number in the input
	Column int    // 0-based column, -1 when the row as a whole is wrong
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	msg := fmt.Sprintf("line %d", e.Line)
	if e.Column >= 0 {
		msg += fmt.Sprintf(", column %d", e.Column)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a file cannot be used. Either Cause is set
// (the file could not be decoded or read as delimited text) or RowErrors
// lists every rejected row.
type ParseError struct {
	Source    string
	RowErrors []*RowError
	Cause     error
}

func newRowsError(source string, rowErrs []*RowError) *ParseError {
	return &ParseError{Source: source, RowErrors: rowErrs}
}

// Rows returns the line numbers of all rejected rows.
func (e *ParseError) Rows() []int {
	rows := make([]int, len(e.RowErrors))
	for i, re := range e.RowErrors {
		rows[i] = re.Line
	}
	return rows
}

func (e *ParseError) Error() string {
	name := e.Source
	if name == "" {
		name = "input"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s cannot be read: %v", name, e.Cause)
	}

	rows := e.Rows()
	listed := make([]string, 0, maxListedRows)
	for i, r := range rows {
		if i == maxListedRows {
			listed = append(listed, "...")
			break
		}
		listed = append(listed, strconv.Itoa(r))
	}
	return fmt.Sprintf("%s contains errors in %d lines (%s)", name, len(rows), strings.Join(listed, ", "))
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
