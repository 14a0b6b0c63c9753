package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	enc "github.com/MrJamesThe3rd/posrecon/internal/encoding"
	"github.com/MrJamesThe3rd/posrecon/internal/importer/record"
)

// headerThreshold is how many canonical fields the first row must name to be taken as a header.
const headerThreshold = 3

type Service struct {
	parser *record.Parser
	logger *slog.Logger
}

func NewService(parser *record.Parser, logger *slog.Logger) *Service {
	if parser == nil {
		parser = record.NewParser(nil, nil)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{parser: parser, logger: logger}
}

// IngestReader reads r fully and ingests it.
func (s *Service) IngestReader(r io.Reader) (*Report, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return s.Ingest(content)
}

// Ingest parses every row of a raw export. A *record.SchemaError aborts before any row
// is attempted; otherwise each bad row becomes a RowError and ingestion continues.
func (s *Service) Ingest(content []byte) (*Report, error) {
	var (
		report *Report
		rows   []sourceRow
		err    error
	)

	if isXLSX(content) {
		report = &Report{Format: FormatXLSX, Encoding: string(enc.UTF8)}

		rows, err = readSheet(content)
		if err != nil {
			return nil, err
		}
	} else {
		decoded, cs, err := enc.Decode(content)
		if err != nil {
			return nil, fmt.Errorf("detect encoding: %w", err)
		}

		report = &Report{Format: FormatDelimited, Encoding: string(cs), Delimiter: detectDelimiter(decoded)}

		rows, err = readDelimited(decoded, report.Delimiter)
		if err != nil {
			return nil, err
		}
	}

	if err := s.parseRows(report, rows); err != nil {
		return nil, err
	}

	s.logger.Info("ingested file",
		"format", report.Format,
		"encoding", report.Encoding,
		"header", report.HasHeader,
		"accepted", len(report.Accepted),
		"rejected", len(report.Rejected),
	)

	if len(report.Accepted) == 0 {
		return report, ErrNoRowsAccepted
	}

	return report, nil
}

// sourceRow is one non-blank record with the physical line it started on.
// parseErr is set when the delimited reader could not split the line.
type sourceRow struct {
	line     int
	cells    []string
	parseErr error
}

func (s *Service) parseRows(report *Report, rows []sourceRow) error {
	if len(rows) == 0 {
		return nil
	}

	cols := record.PositionalColumns()
	width := len(record.DefaultLayout)

	if first := rows[0]; first.parseErr == nil && s.parser.Recognized(first.cells) >= headerThreshold {
		resolved, err := s.parser.ResolveHeaders(trimCells(first.cells))
		if err != nil {
			return fmt.Errorf("resolve headers: %w", err)
		}

		cols = resolved
		width = len(first.cells)
		report.HasHeader = true
		rows = rows[1:]
	}

	for _, row := range rows {
		if row.parseErr != nil {
			report.Rejected = append(report.Rejected, RowError{Line: row.line, Reason: row.parseErr.Error()})
			continue
		}

		cells := row.cells
		if report.Format == FormatXLSX {
			cells = padCells(cells, width)
		}

		if len(cells) != width {
			report.Rejected = append(report.Rejected, RowError{
				Line:   row.line,
				Reason: fmt.Sprintf("expected %d columns, got %d", width, len(cells)),
			})

			continue
		}

		tx, err := s.parser.Parse(cols.Row(cells), row.line)
		if err != nil {
			report.Rejected = append(report.Rejected, RowError{Line: row.line, Reason: rowReason(err)})
			continue
		}

		report.Accepted = append(report.Accepted, AcceptedRow{Line: row.line, Transaction: tx})
	}

	return nil
}

func rowReason(err error) string {
	var pe *record.ParseError
	if errors.As(err, &pe) {
		return pe.Reason
	}

	return err.Error()
}

// detectDelimiter picks '|' when the first non-empty line contains one, ',' otherwise.
func detectDelimiter(content []byte) rune {
	for line := range strings.Lines(string(content)) {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.ContainsRune(line, '|') {
			return '|'
		}

		return ','
	}

	return ','
}

// readDelimited splits content one physical line at a time so a stray quote
// cannot swallow the lines after it. Pipe files carry no quoting; comma files
// honour quotes within a single line.
func readDelimited(content []byte, delim rune) ([]sourceRow, error) {
	var (
		rows []sourceRow
		n    int
	)

	for raw := range strings.Lines(string(content)) {
		n++

		text := strings.TrimRight(raw, "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		if delim == '|' {
			rows = append(rows, sourceRow{line: n, cells: strings.Split(text, "|")})
			continue
		}

		cells, err := splitQuoted(text, delim)
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, fmt.Errorf("read line %d: %w", n, err)
			}

			rows = append(rows, sourceRow{line: n, parseErr: pe.Err})

			continue
		}

		if blank(cells) {
			continue
		}

		rows = append(rows, sourceRow{line: n, cells: cells})
	}

	return rows, nil
}

func splitQuoted(text string, delim rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.Read()
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}

	return out
}

func padCells(cells []string, width int) []string {
	if len(cells) >= width {
		return cells
	}

	out := make([]string, width)
	copy(out, cells)

	return out
}
