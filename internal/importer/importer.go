package importer

import (
	"errors"

	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

// Format names the container the rows were read from.
type Format string

const (
	FormatDelimited Format = "delimited"
	FormatXLSX      Format = "xlsx"
)

// ErrNoRowsAccepted is returned together with the full report when every row was rejected.
var ErrNoRowsAccepted = errors.New("no rows accepted")

// RowError is the diagnostic for one rejected row. Line is the 1-based physical
// line of the source file (or sheet row for xlsx).
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// AcceptedRow is a validated transaction with the line it was read from.
type AcceptedRow struct {
	Line int
	*transaction.Transaction
}

// Report is the outcome of ingesting one file. Accepted and Rejected are in file order.
type Report struct {
	Accepted  []AcceptedRow
	Rejected  []RowError
	Delimiter rune
	HasHeader bool
	Encoding  string
	Format    Format
}

// Rows is the number of non-blank data rows that were attempted.
func (r *Report) Rows() int {
	return len(r.Accepted) + len(r.Rejected)
}
