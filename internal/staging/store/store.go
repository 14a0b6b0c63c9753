package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/posrecon/internal/staging"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

const (
	keySeq       = "posrecon:staging:seq"
	keyPending   = "posrecon:staging:pending"
	recordPrefix = "posrecon:staging:rec:"
)

// Conn hands out a live Redis client.
type Conn interface {
	Client(ctx context.Context) (*redis.Client, error)
	Ping(ctx context.Context) error
}

// Store keeps staged records as hashes and tracks the unreconciled ones in a
// sorted set scored by insertion sequence.
type Store struct {
	conn   Conn
	logger *slog.Logger
	now    func() time.Time
}

func New(conn Conn, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{conn: conn, logger: logger, now: time.Now}
}

func recordKey(id string) string {
	return recordPrefix + id
}

// Insert stages tx. Failures are logged and reported as false; they never panic or return an error.
func (s *Store) Insert(ctx context.Context, tx *transaction.Transaction, src staging.Source) bool {
	if err := s.insert(ctx, tx, src); err != nil {
		s.logger.Error("staging insert failed", "id_key", tx.IDKey, "file", src.File, "line", src.Line, "error", err)
		return false
	}

	return true
}

// InsertBatch stages every entry independently and returns the number staged and the failures.
func (s *Store) InsertBatch(ctx context.Context, entries []staging.Entry) (int, []staging.WriteError) {
	var (
		staged   int
		failures []staging.WriteError
	)

	for _, e := range entries {
		if err := s.insert(ctx, e.Tx, e.Source); err != nil {
			s.logger.Error("staging insert failed", "id_key", e.Tx.IDKey, "file", e.Source.File, "line", e.Source.Line, "error", err)
			failures = append(failures, staging.WriteError{IDKey: e.Tx.IDKey, Line: e.Source.Line, Err: err})

			continue
		}

		staged++
	}

	return staged, failures
}

func (s *Store) insert(ctx context.Context, tx *transaction.Transaction, src staging.Source) error {
	doc, err := json.Marshal(staging.FromTransaction(tx))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	client, err := s.conn.Client(ctx)
	if err != nil {
		return err
	}

	seq, err := client.Incr(ctx, keySeq).Result()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	id := uuid.NewString()

	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, recordKey(id), map[string]any{
			"doc":         doc,
			"reconciled":  "0",
			"seq":         seq,
			"staged_at":   s.now().UTC().Format(time.RFC3339Nano),
			"source_file": src.File,
			"source_line": src.Line,
		})
		pipe.ZAdd(ctx, keyPending, redis.Z{Score: float64(seq), Member: id})

		return nil
	})
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	return nil
}

// FetchUnreconciled returns up to limit unreconciled records in insertion order.
func (s *Store) FetchUnreconciled(ctx context.Context, limit int) ([]staging.Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	client, err := s.conn.Client(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := client.ZRange(ctx, keyPending, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))

	_, err = client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, recordKey(id))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load pending records: %w", err)
	}

	var (
		records = make([]staging.Record, 0, len(ids))
		orphans []any
	)

	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			s.logger.Warn("pending staging record has no body, dropping from pending set", "id", id)
			orphans = append(orphans, id)

			continue
		}

		records = append(records, s.decode(id, fields))
	}

	// Orphans stay out of the next fetch window.
	if len(orphans) > 0 {
		if err := client.ZRem(ctx, keyPending, orphans...).Err(); err != nil {
			s.logger.Warn("dropping orphaned pending ids", "count", len(orphans), "error", err)
		}
	}

	return records, nil
}

// decode never fails; an unreadable document yields a nil Doc for the caller to reject.
func (s *Store) decode(id string, fields map[string]string) staging.Record {
	rec := staging.Record{
		ID:         id,
		Reconciled: fields["reconciled"] == "1",
		Source:     staging.Source{File: fields["source_file"]},
	}

	rec.Seq, _ = strconv.ParseInt(fields["seq"], 10, 64)
	rec.Source.Line, _ = strconv.Atoi(fields["source_line"])
	rec.StagedAt, _ = time.Parse(time.RFC3339Nano, fields["staged_at"])

	dec := json.NewDecoder(bytes.NewReader([]byte(fields["doc"])))
	dec.UseNumber()

	var doc staging.Document
	if err := dec.Decode(&doc); err != nil {
		s.logger.Warn("undecodable staging document", "id", id, "error", err)
		return rec
	}

	rec.Doc = doc

	return rec
}

// MarkReconciled flags ids as reconciled and returns how many changed state.
// Unknown or already reconciled ids are skipped.
func (s *Store) MarkReconciled(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	client, err := s.conn.Client(ctx)
	if err != nil {
		return 0, err
	}

	removed := make([]*redis.IntCmd, len(ids))

	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			removed[i] = pipe.ZRem(ctx, keyPending, id)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear pending: %w", err)
	}

	var changed []string

	for i, cmd := range removed {
		if cmd.Val() > 0 {
			changed = append(changed, ids[i])
		}
	}

	if len(changed) == 0 {
		return 0, nil
	}

	stamp := s.now().UTC().Format(time.RFC3339Nano)

	_, err = client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range changed {
			pipe.HSet(ctx, recordKey(id), "reconciled", "1", "reconciled_at", stamp)
		}

		return nil
	})
	if err != nil {
		return len(changed), fmt.Errorf("flag reconciled: %w", err)
	}

	return len(changed), nil
}

// Pending is the number of records awaiting reconciliation.
func (s *Store) Pending(ctx context.Context) (int64, error) {
	client, err := s.conn.Client(ctx)
	if err != nil {
		return 0, err
	}

	n, err := client.ZCard(ctx, keyPending).Result()
	if err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}

	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}
