package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/metrics"
	"github.com/osse101/TillSync_Go/internal/repository"
	"github.com/osse101/TillSync_Go/internal/validation"
)

// Queue is the durable FIFO of unconfirmed mutations
type Queue interface {
	Enqueue(ctx context.Context, op domain.PendingOperation) error
	DequeueConfirmed(ctx context.Context, queueEntryIDs []string) error
	All() []domain.PendingOperation
	HasPending(resource, targetRecordID string) bool
	RebaseSnapshots(ctx context.Context, resource, targetRecordID string, confirmedAt time.Time) (int, error)
	Clear(ctx context.Context) error
	Len() int
}

type queue struct {
	mu       sync.Mutex
	store    repository.QueueStore
	payloads validation.PayloadValidator
	validate *validator.Validate
	ops      []domain.PendingOperation
}

// New loads the persisted queue and returns it. payloads may be nil, in which
// case only structural validation is applied.
func New(ctx context.Context, store repository.QueueStore, payloads validation.PayloadValidator) (Queue, error) {
	ops, err := store.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoadQueue, err)
	}

	q := &queue{
		store:    store,
		payloads: payloads,
		validate: validator.New(),
		ops:      ops,
	}
	metrics.QueueDepth.Set(float64(len(ops)))
	logger.FromContext(ctx).Info(LogMsgQueueLoaded, "pending", len(ops))
	return q, nil
}

// Enqueue validates and appends an operation. It is persisted before it becomes visible to All.
func (q *queue) Enqueue(ctx context.Context, op domain.PendingOperation) error {
	log := logger.FromContext(ctx)

	if err := q.check(op); err != nil {
		log.Warn(LogMsgOperationInvalid, "resource", op.Resource, "type", op.Type, "error", err)
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, existing := range q.ops {
		if existing.QueueEntryID == op.QueueEntryID {
			return fmt.Errorf("%w: %s %s", domain.ErrInvalidOperation, ErrMsgDuplicateID, op.QueueEntryID)
		}
	}

	if err := q.store.AppendOperation(ctx, op); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgAppend, err)
	}
	q.ops = append(q.ops, op)

	metrics.OperationsEnqueued.WithLabelValues(op.Resource, string(op.Type)).Inc()
	metrics.QueueDepth.Set(float64(len(q.ops)))
	log.Info(LogMsgOperationQueued,
		"queue_entry_id", op.QueueEntryID,
		"target_record_id", op.TargetRecordID,
		"resource", op.Resource,
		"type", op.Type,
		"pending", len(q.ops))
	return nil
}

func (q *queue) check(op domain.PendingOperation) error {
	if err := q.validate.Struct(op); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOperation, err)
	}
	if q.payloads != nil {
		if err := q.payloads.ValidateOperation(op); err != nil {
			return err
		}
	}
	return nil
}

// DequeueConfirmed removes the given entries. Ids not in the queue are ignored,
// so operations appended after the caller's snapshot are never touched.
func (q *queue) DequeueConfirmed(ctx context.Context, queueEntryIDs []string) error {
	if len(queueEntryIDs) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.store.RemoveOperations(ctx, queueEntryIDs); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRemove, err)
	}

	remove := make(map[string]struct{}, len(queueEntryIDs))
	for _, id := range queueEntryIDs {
		remove[id] = struct{}{}
	}
	kept := q.ops[:0:0]
	for _, op := range q.ops {
		if _, ok := remove[op.QueueEntryID]; !ok {
			kept = append(kept, op)
		}
	}
	removed := len(q.ops) - len(kept)
	q.ops = kept

	metrics.QueueDepth.Set(float64(len(q.ops)))
	logger.FromContext(ctx).Info(LogMsgOperationsRemove, "removed", removed, "pending", len(q.ops))
	return nil
}

// All returns a copy of the queue in enqueue order
func (q *queue) All() []domain.PendingOperation {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.PendingOperation, len(q.ops))
	copy(out, q.ops)
	return out
}

// HasPending reports whether any queued operation writes the given record
func (q *queue) HasPending(resource, targetRecordID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, op := range q.ops {
		if op.Resource == resource && op.TargetRecordID == targetRecordID {
			return true
		}
	}
	return false
}

// RebaseSnapshots moves the snapshot time of every queued update to the record
// forward to confirmedAt. It is called after a write of this terminal to the
// record is confirmed, so the later updates are checked against that write
// instead of the pre-image they were queued with.
func (q *queue) RebaseSnapshots(ctx context.Context, resource, targetRecordID string, confirmedAt time.Time) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := make([]domain.PendingOperation, len(q.ops))
	copy(next, q.ops)
	changed := make(map[string]domain.Record)
	for i, op := range next {
		if op.Resource != resource || op.TargetRecordID != targetRecordID || !op.NeedsConflictCheck() {
			continue
		}
		rebased, ok := op.RebaseSnapshot(confirmedAt)
		if !ok {
			continue
		}
		next[i] = rebased
		changed[op.QueueEntryID] = rebased.Snapshot
	}
	if len(changed) == 0 {
		return 0, nil
	}

	if err := q.store.ReplaceSnapshots(ctx, changed); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgRebase, err)
	}
	q.ops = next

	logger.FromContext(ctx).Debug(LogMsgSnapshotsRebased,
		"resource", resource,
		"target_record_id", targetRecordID,
		"rebased", len(changed),
		"confirmed_at", confirmedAt)
	return len(changed), nil
}

// Clear empties the queue
func (q *queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.store.ClearQueue(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgClear, err)
	}
	q.ops = nil

	metrics.QueueDepth.Set(0)
	logger.FromContext(ctx).Info(LogMsgQueueCleared)
	return nil
}

// Len returns the number of queued operations
func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}
