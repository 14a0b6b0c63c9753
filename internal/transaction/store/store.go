package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"go.uber.org/multierr"

	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectColumns = `
	id, store_code, store_display_name, trans_date, trans_time, trans_no, till_no,
	discount_header, tax_header, net_sales_header_values, quantity, trans_type, id_key,
	tender, dm_load_date, dm_load_delta_id, source_system, store_region, terminal_type,
	is_duty_free, created_at, updated_at
`

// scanTransaction reads a row in selectColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var tender, region, terminal sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.StoreCode, &tx.StoreDisplayName, &tx.TransDate, &tx.TransTime, &tx.TransNo, &tx.TillNo,
		&tx.DiscountHeader, &tx.TaxHeader, &tx.NetSalesHeaderValues, &tx.Quantity, &tx.TransType, &tx.IDKey,
		&tender, &tx.DMLoadDate, &tx.DMLoadDeltaID, &tx.SourceSystem, &region, &terminal,
		&tx.DutyFree, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Tender = nullable(tender)
	tx.StoreRegion = nullable(region)
	tx.TerminalType = nullable(terminal)

	return &tx, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}

	return &ns.String
}

func getByIDKey(ctx context.Context, q querier, idKey int64) (*transaction.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM pos_transactions WHERE id_key = $1`

	tx, err := scanTransaction(q.QueryRowContext(ctx, query, idKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) GetByIDKey(ctx context.Context, idKey int64) (*transaction.Transaction, error) {
	return getByIDKey(ctx, s.db, idKey)
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pos_transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transactions: %w", err)
	}

	return n, nil
}

// passLockKey identifies the advisory lock that serializes reconciliation passes across processes.
func passLockKey() int64 {
	h := fnv.New64a()
	h.Write([]byte("posrecon:reconcile-pass"))

	return int64(h.Sum64())
}

type passTx struct {
	tx *sql.Tx
}

func (s *Store) BeginPass(ctx context.Context) (transaction.PassTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning pass tx: %w", err)
	}

	var locked bool
	if err := dbTx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1)", passLockKey()).Scan(&locked); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring pass lock: %w", err)
	}

	if !locked {
		dbTx.Rollback()
		return nil, transaction.ErrPassLocked
	}

	return &passTx{tx: dbTx}, nil
}

func (p *passTx) Commit() error   { return p.tx.Commit() }
func (p *passTx) Rollback() error { return p.tx.Rollback() }

func (p *passTx) GetByIDKey(ctx context.Context, idKey int64) (*transaction.Transaction, error) {
	return getByIDKey(ctx, p.tx, idKey)
}

func (p *passTx) Create(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO pos_transactions (
			store_code, store_display_name, trans_date, trans_time, trans_no, till_no,
			discount_header, tax_header, net_sales_header_values, quantity, trans_type, id_key,
			tender, dm_load_date, dm_load_delta_id, source_system, store_region, terminal_type,
			is_duty_free, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	return p.savepoint(ctx, func() error {
		err := p.tx.QueryRowContext(ctx, query,
			tx.StoreCode, tx.StoreDisplayName, tx.TransDate, tx.TransTime, tx.TransNo, tx.TillNo,
			tx.DiscountHeader, tx.TaxHeader, tx.NetSalesHeaderValues, tx.Quantity, tx.TransType, tx.IDKey,
			tx.Tender, tx.DMLoadDate, tx.DMLoadDeltaID, tx.SourceSystem, tx.StoreRegion, tx.TerminalType,
			tx.DutyFree,
		).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}

		return nil
	})
}

func (p *passTx) Update(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE pos_transactions
		SET store_code = $1, store_display_name = $2, trans_date = $3, trans_time = $4, trans_no = $5,
			till_no = $6, discount_header = $7, tax_header = $8, net_sales_header_values = $9,
			quantity = $10, trans_type = $11, tender = $12, dm_load_date = $13, dm_load_delta_id = $14,
			source_system = $15, store_region = $16, terminal_type = $17, is_duty_free = $18,
			updated_at = NOW()
		WHERE id_key = $19
		RETURNING updated_at
	`

	return p.savepoint(ctx, func() error {
		err := p.tx.QueryRowContext(ctx, query,
			tx.StoreCode, tx.StoreDisplayName, tx.TransDate, tx.TransTime, tx.TransNo,
			tx.TillNo, tx.DiscountHeader, tx.TaxHeader, tx.NetSalesHeaderValues,
			tx.Quantity, tx.TransType, tx.Tender, tx.DMLoadDate, tx.DMLoadDeltaID,
			tx.SourceSystem, tx.StoreRegion, tx.TerminalType, tx.DutyFree,
			tx.IDKey,
		).Scan(&tx.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return transaction.ErrNotFound
			}

			return fmt.Errorf("updating transaction: %w", err)
		}

		return nil
	})
}

// savepoint runs fn inside a SAVEPOINT. A failed statement aborts the whole Postgres
// transaction unless it is rolled back to the savepoint.
func (p *passTx) savepoint(ctx context.Context, fn func() error) error {
	if _, err := p.tx.ExecContext(ctx, "SAVEPOINT pass_record"); err != nil {
		return fmt.Errorf("creating savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := p.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT pass_record"); rbErr != nil {
			return multierr.Append(err, fmt.Errorf("rolling back to savepoint: %w", rbErr))
		}

		return err
	}

	if _, err := p.tx.ExecContext(ctx, "RELEASE SAVEPOINT pass_record"); err != nil {
		return fmt.Errorf("releasing savepoint: %w", err)
	}

	return nil
}
