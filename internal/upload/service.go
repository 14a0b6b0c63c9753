package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/posrecon/internal/importer"
	"github.com/MrJamesThe3rd/posrecon/internal/metrics"
	"github.com/MrJamesThe3rd/posrecon/internal/staging"
	"github.com/MrJamesThe3rd/posrecon/internal/status"
)

// Outcome of an upload as reported to clients.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusFailed         = "failed"
)

// ErrNothingStaged means rows were accepted but none could be written to the staging store.
var ErrNothingStaged = errors.New("no accepted rows could be staged")

type Ingester interface {
	Ingest(content []byte) (*importer.Report, error)
}

type Stager interface {
	InsertBatch(ctx context.Context, entries []staging.Entry) (int, []staging.WriteError)
}

type Result struct {
	Status        string
	Message       string
	Filename      string
	Report        *importer.Report
	Staged        int
	StageFailures []staging.WriteError
}

type Service struct {
	ingester Ingester
	stager   Stager
	tracker  *status.Tracker
	metrics  *metrics.Ingest
	logger   *slog.Logger
}

func NewService(ingester Ingester, stager Stager, tracker *status.Tracker, m *metrics.Ingest, logger *slog.Logger) *Service {
	if tracker == nil {
		tracker = status.NewTracker()
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{ingester: ingester, stager: stager, tracker: tracker, metrics: m, logger: logger}
}

// Upload ingests one file and stages its accepted rows. It never reconciles.
//
// A file-level schema problem returns a nil Result. When no row was accepted, or none
// could be staged, the Result is returned alongside the error so callers can show diagnostics.
func (s *Service) Upload(ctx context.Context, filename string, content []byte) (*Result, error) {
	done := s.tracker.Begin(status.StateIngesting)
	defer done()

	report, err := s.ingester.Ingest(content)
	if err != nil && !errors.Is(err, importer.ErrNoRowsAccepted) {
		s.metrics.ObserveUpload(StatusFailed, 0, 0, 0)
		return nil, err
	}

	res := &Result{Filename: filename, Report: report}

	if err != nil {
		res.Status = StatusFailed
		res.Message = fmt.Sprintf("no valid rows in %s: %d rejected", filename, len(report.Rejected))
		s.finish(res)

		return res, err
	}

	entries := make([]staging.Entry, len(report.Accepted))
	for i, row := range report.Accepted {
		entries[i] = staging.Entry{Tx: row.Transaction, Source: staging.Source{File: filename, Line: row.Line}}
	}

	res.Staged, res.StageFailures = s.stager.InsertBatch(ctx, entries)

	switch {
	case res.Staged == 0:
		res.Status = StatusFailed
		res.Message = fmt.Sprintf("%d rows accepted but none could be staged", len(entries))
		s.finish(res)

		return res, ErrNothingStaged
	case len(report.Rejected) > 0 || len(res.StageFailures) > 0:
		res.Status = StatusPartialSuccess
	default:
		res.Status = StatusSuccess
	}

	res.Message = fmt.Sprintf("staged %d of %d rows", res.Staged, report.Rows())
	s.finish(res)

	return res, nil
}

func (s *Service) finish(res *Result) {
	rejected := len(res.Report.Rejected)

	s.tracker.RecordUpload(res.Staged, rejected, len(res.StageFailures))
	s.metrics.ObserveUpload(res.Status, len(res.Report.Accepted), rejected, len(res.StageFailures))

	s.logger.Info("upload processed",
		"file", res.Filename,
		"status", res.Status,
		"staged", res.Staged,
		"rejected", rejected,
		"stage_failures", len(res.StageFailures),
	)
}
