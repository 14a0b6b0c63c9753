package transaction

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetByIDKey(ctx context.Context, idKey int64) (*Transaction, error)
	Count(ctx context.Context) (int64, error)

	// BeginPass opens the single canonical-store transaction used by one reconciliation pass.
	// It returns ErrPassLocked when another process is already running a pass.
	BeginPass(ctx context.Context) (PassTx, error)
}

// PassTx is the unit of work of a reconciliation pass. A failed Create or Update
// leaves the rest of the pass usable; only Commit decides the fate of the whole batch.
type PassTx interface {
	GetByIDKey(ctx context.Context, idKey int64) (*Transaction, error)
	Create(ctx context.Context, tx *Transaction) error
	Update(ctx context.Context, tx *Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, idKey int64) (*Transaction, error) {
	if idKey <= 0 {
		return nil, fmt.Errorf("invalid id_key %d", idKey)
	}

	return s.repo.GetByIDKey(ctx, idKey)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// BeginPass is exposed for the reconciler.
func (s *Service) BeginPass(ctx context.Context) (PassTx, error) {
	ptx, err := s.repo.BeginPass(ctx)
	if err != nil {
		if errors.Is(err, ErrPassLocked) {
			return nil, err
		}

		return nil, fmt.Errorf("begin pass: %w", err)
	}

	return ptx, nil
}
