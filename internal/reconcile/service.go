package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/posrecon/internal/staging"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=reconcile
type Staging interface {
	FetchUnreconciled(ctx context.Context, limit int) ([]staging.Record, error)
	MarkReconciled(ctx context.Context, ids []string) (int, error)
}

// Canonical opens the single store transaction a pass writes through.
type Canonical interface {
	BeginPass(ctx context.Context) (transaction.PassTx, error)
}

// Result counts the records of one pass. Synced records were committed to the
// canonical store; Errors were left unreconciled for the next pass.
type Result struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// CommitError means the whole pass was rolled back and nothing was reconciled.
type CommitError struct {
	Records int
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit pass of %d records: %v", e.Records, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

type Service struct {
	staging   Staging
	canonical Canonical
	logger    *slog.Logger
}

func NewService(st Staging, canonical Canonical, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{staging: st, canonical: canonical, logger: logger}
}

// Reconcile applies up to batchSize unreconciled staged records to the canonical store,
// matching on id_key, and marks the applied ones reconciled after the commit.
// Records that fail to transform or write stay unreconciled and are counted in Errors.
func (s *Service) Reconcile(ctx context.Context, batchSize int) (Result, error) {
	records, err := s.staging.FetchUnreconciled(ctx, batchSize)
	if err != nil {
		return Result{}, fmt.Errorf("fetch unreconciled: %w", err)
	}

	if len(records) == 0 {
		return Result{}, nil
	}

	ptx, err := s.canonical.BeginPass(ctx)
	if err != nil {
		return Result{}, err
	}

	committed := false

	defer func() {
		if !committed {
			_ = ptx.Rollback()
		}
	}()

	var (
		result  Result
		applied = make([]string, 0, len(records))
	)

	for _, rec := range records {
		tx, err := Transform(rec)
		if err != nil {
			s.logger.Warn("skipping staged record", "id", rec.ID, "error", err)
			result.Errors++

			continue
		}

		if err := upsert(ctx, ptx, tx); err != nil {
			s.logger.Error("applying staged record", "id", rec.ID, "id_key", tx.IDKey, "error", err)
			result.Errors++

			continue
		}

		applied = append(applied, rec.ID)
		result.Synced++
	}

	if err := ptx.Commit(); err != nil {
		return Result{Errors: len(records)}, &CommitError{Records: len(records), Err: err}
	}

	committed = true

	marked, err := s.staging.MarkReconciled(ctx, applied)
	if err != nil {
		// The rows are committed; the next pass re-applies them as updates.
		s.logger.Error("marking records reconciled", "count", len(applied), "error", err)
	} else if marked != len(applied) {
		s.logger.Warn("some records were already reconciled", "applied", len(applied), "marked", marked)
	}

	s.logger.Info("reconcile pass finished", "synced", result.Synced, "errors", result.Errors)

	return result, nil
}

// upsert matches on id_key only; the canonical row keeps its own identity.
func upsert(ctx context.Context, ptx transaction.PassTx, tx *transaction.Transaction) error {
	existing, err := ptx.GetByIDKey(ctx, tx.IDKey)
	if errors.Is(err, transaction.ErrNotFound) {
		return ptx.Create(ctx, tx)
	}

	if err != nil {
		return err
	}

	existing.Overwrite(tx)

	return ptx.Update(ctx, existing)
}
