package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn aborts normalization before any row is processed.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidDirectionCode marks a Wdir value outside the compass table.
	ErrInvalidDirectionCode = errors.New("invalid wind direction code")
	// ErrInvalidDate marks a (Year, Month, Day) triple that is not a calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrNumericCoercion marks a numeric cell that could not be parsed.
	ErrNumericCoercion = errors.New("numeric coercion failure")
	// ErrOutOfSeason marks a month outside November through April.
	ErrOutOfSeason = errors.New("month outside season")
)

// MissingColumnError lists every required column absent from the input header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// IssueKind names a row-scoped data problem.
type IssueKind string

const (
	IssueInvalidDirection IssueKind = "invalid_direction_code"
	IssueInvalidDate      IssueKind = "invalid_date"
	IssueNumericCoercion  IssueKind = "numeric_coercion_failure"
	IssueOutOfSeason      IssueKind = "out_of_season"
)

// IssueKinds lists every row issue kind in a stable order.
var IssueKinds = []IssueKind{
	IssueInvalidDirection,
	IssueInvalidDate,
	IssueNumericCoercion,
	IssueOutOfSeason,
}

func (k IssueKind) sentinel() error {
	switch k {
	case IssueInvalidDirection:
		return ErrInvalidDirectionCode
	case IssueInvalidDate:
		return ErrInvalidDate
	case IssueNumericCoercion:
		return ErrNumericCoercion
	case IssueOutOfSeason:
		return ErrOutOfSeason
	default:
		return nil
	}
}

// RowIssue is a non-fatal problem found in one input row. It never stops the
// rest of the batch from being normalized.
type RowIssue struct {
	Row    int       `json:"row"`
	Kind   IssueKind `json:"kind"`
	Column string    `json:"column"`
	Value  string    `json:"value"`
}

func (i RowIssue) Error() string {
	return fmt.Sprintf("row %d: %s: %s=%q", i.Row, i.Kind.sentinel(), i.Column, i.Value)
}

func (i RowIssue) Unwrap() error { return i.Kind.sentinel() }
