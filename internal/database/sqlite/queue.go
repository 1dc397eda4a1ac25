package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// LoadQueue returns every pending operation in enqueue order
func (s *Store) LoadQueue(ctx context.Context) ([]domain.PendingOperation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT queue_entry_id, target_record_id, op_type, resource, data, snapshot, enqueued_at
		FROM pending_operations
		ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryQueue, err)
	}
	defer rows.Close()

	var ops []domain.PendingOperation
	for rows.Next() {
		var (
			op                 domain.PendingOperation
			opType, enqueuedAt string
			data, snapshot     sql.NullString
		)
		if err := rows.Scan(&op.QueueEntryID, &op.TargetRecordID, &opType, &op.Resource, &data, &snapshot, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryQueue, err)
		}
		op.Type = domain.OperationType(opType)

		if op.Timestamp, err = time.Parse(time.RFC3339Nano, enqueuedAt); err != nil {
			return nil, fmt.Errorf("%s %s: %w", ErrMsgFailedToDecodeOp, op.QueueEntryID, err)
		}
		if op.Data, err = decodeRecord(data); err != nil {
			return nil, fmt.Errorf("%s %s: %w", ErrMsgFailedToDecodeOp, op.QueueEntryID, err)
		}
		if op.Snapshot, err = decodeRecord(snapshot); err != nil {
			return nil, fmt.Errorf("%s %s: %w", ErrMsgFailedToDecodeOp, op.QueueEntryID, err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryQueue, err)
	}
	return ops, nil
}

// AppendOperation persists op at the tail of the queue and raises the sync-pending flag
// in the same transaction
func (s *Store) AppendOperation(ctx context.Context, op domain.PendingOperation) error {
	data, err := encodeRecord(op.Data)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeOp, err)
	}
	snapshot, err := encodeRecord(op.Snapshot)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeOp, err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pending_operations
				(queue_entry_id, target_record_id, op_type, resource, data, snapshot, enqueued_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			op.QueueEntryID, op.TargetRecordID, string(op.Type), op.Resource, data, snapshot,
			op.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToWriteQueue, err)
		}
		return refreshSyncPending(ctx, tx)
	})
}

// RemoveOperations deletes the given queue entries and recomputes the sync-pending flag.
// Entries added after the caller's snapshot are untouched.
func (s *Store) RemoveOperations(ctx context.Context, queueEntryIDs []string) error {
	if len(queueEntryIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(queueEntryIDs)), ",")
	args := make([]any, len(queueEntryIDs))
	for i, id := range queueEntryIDs {
		args[i] = id
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		query := `DELETE FROM pending_operations WHERE queue_entry_id IN (` + placeholders + `)`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToWriteQueue, err)
		}
		return refreshSyncPending(ctx, tx)
	})
}

// ReplaceSnapshots rewrites the snapshot of each given queue entry in one transaction
func (s *Store) ReplaceSnapshots(ctx context.Context, snapshots map[string]domain.Record) error {
	if len(snapshots) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for id, snap := range snapshots {
			encoded, err := encodeRecord(snap)
			if err != nil {
				return fmt.Errorf("%s: %w", ErrMsgFailedToEncodeOp, err)
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE pending_operations SET snapshot = ? WHERE queue_entry_id = ?`, encoded, id); err != nil {
				return fmt.Errorf("%s: %w", ErrMsgFailedToWriteQueue, err)
			}
		}
		return nil
	})
}

// ClearQueue removes every pending operation
func (s *Store) ClearQueue(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_operations`); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToWriteQueue, err)
		}
		return refreshSyncPending(ctx, tx)
	})
}

// SyncPending reads the persisted has-pending-work flag
func (s *Store) SyncPending(ctx context.Context) (bool, error) {
	v, ok, err := s.GetState(ctx, StateKeySyncPending)
	if err != nil || !ok {
		return false, err
	}
	return strconv.ParseBool(v)
}

func refreshSyncPending(ctx context.Context, tx *sql.Tx) error {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_operations`).Scan(&n); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToWriteQueue, err)
	}
	if err := setState(ctx, tx, StateKeySyncPending, strconv.FormatBool(n > 0)); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToWriteState, err)
	}
	return nil
}

// LoadLedger returns the failure counts of every queue entry that has failed at least once
func (s *Store) LoadLedger(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT queue_entry_id, failures FROM failure_ledger`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryLedger, err)
	}
	defer rows.Close()

	ledger := make(map[string]int)
	for rows.Next() {
		var (
			id       string
			failures int
		)
		if err := rows.Scan(&id, &failures); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryLedger, err)
		}
		ledger[id] = failures
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryLedger, err)
	}
	return ledger, nil
}

// SaveLedger replaces the persisted ledger with the given counts; zero counts are dropped
func (s *Store) SaveLedger(ctx context.Context, ledger map[string]int) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM failure_ledger`); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToWriteLedger, err)
		}
		for id, failures := range ledger {
			if failures <= 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO failure_ledger (queue_entry_id, failures) VALUES (?, ?)`, id, failures); err != nil {
				return fmt.Errorf("%s: %w", ErrMsgFailedToWriteLedger, err)
			}
		}
		return nil
	})
}

func encodeRecord(r domain.Record) (sql.NullString, error) {
	if r == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodeRecord(s sql.NullString) (domain.Record, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var r domain.Record
	if err := json.Unmarshal([]byte(s.String), &r); err != nil {
		return nil, err
	}
	return r, nil
}
