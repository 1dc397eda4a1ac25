package syncengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/TillSync_Go/internal/conflict"
	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/metrics"
	"github.com/osse101/TillSync_Go/internal/mutation"
	"github.com/osse101/TillSync_Go/internal/queue"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// Connectivity is the engine's view of the connectivity monitor
type Connectivity interface {
	IsOnline() bool
	LastOnline() *time.Time
}

// Options tunes the drain loop
type Options struct {
	MaxAttempts      int
	AttemptsPerCycle int
	RetryBaseDelay   time.Duration
}

// DefaultOptions returns the production retry policy
func DefaultOptions() Options {
	return Options{
		MaxAttempts:      domain.MaxSyncAttempts,
		AttemptsPerCycle: domain.AttemptsPerCycle,
		RetryBaseDelay:   time.Second,
	}
}

// Engine drains the pending operation queue into the remote system of record.
// At most one drain runs at a time; operations are applied one by one in queue order.
type Engine struct {
	queue     queue.Queue
	ledger    repository.LedgerStore
	remote    repository.Remote
	sessions  repository.SessionProvider
	conflicts *conflict.Store
	conn      Connectivity
	bus       event.Bus
	opts      Options

	drainMu sync.Mutex

	mu          sync.RWMutex
	syncing     bool
	authPaused  bool
	needsLogin  bool
	lastSync    *time.Time
	lastSummary *domain.SyncSummary

	refreshWG sync.WaitGroup
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// NewEngine creates a sync engine. sessions may be nil when the remote uses a
// static credential; an auth failure then always requires a re-login.
func NewEngine(
	q queue.Queue,
	ledger repository.LedgerStore,
	remote repository.Remote,
	sessions repository.SessionProvider,
	conflicts *conflict.Store,
	conn Connectivity,
	bus event.Bus,
	opts Options,
) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = domain.MaxSyncAttempts
	}
	if opts.AttemptsPerCycle <= 0 {
		opts.AttemptsPerCycle = domain.AttemptsPerCycle
	}
	return &Engine{
		queue:     q,
		ledger:    ledger,
		remote:    remote,
		sessions:  sessions,
		conflicts: conflicts,
		conn:      conn,
		bus:       bus,
		opts:      opts,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Sync runs one drain cycle. It returns a summary with Ran=false when the
// cycle was skipped (offline, already draining, auth-paused or nothing queued).
func (e *Engine) Sync(ctx context.Context) (domain.SyncSummary, error) {
	log := logger.FromContext(ctx)
	start := e.now()

	if !e.conn.IsOnline() {
		return e.skip(ctx, domain.SkipReasonOffline), nil
	}
	if !e.drainMu.TryLock() {
		return e.skip(ctx, domain.SkipReasonInProgress), nil
	}
	defer e.drainMu.Unlock()

	if e.isAuthPaused() {
		return e.skip(ctx, domain.SkipReasonAuthPaused), nil
	}

	snapshot := e.queue.All()
	if len(snapshot) == 0 {
		return e.skip(ctx, domain.SkipReasonEmpty), nil
	}

	e.setSyncing(true)
	defer e.setSyncing(false)

	ledger, err := e.ledger.LoadLedger(ctx)
	if err != nil {
		log.Error(LogMsgLedgerLoadFailed, "error", err)
		return domain.SyncSummary{}, fmt.Errorf("%s: %w", ErrMsgLoadLedger, err)
	}

	log.Info(LogMsgDrainStarted, "pending", len(snapshot))

	summary := domain.SyncSummary{Ran: true}
	var remove []string
	// remote modification time of each record this cycle wrote
	confirmed := make(map[string]time.Time)

	for _, op := range snapshot {
		if ctx.Err() != nil {
			break
		}

		if at, ok := confirmed[recordKey(op)]; ok {
			op, _ = op.RebaseSnapshot(at)
		}

		if e.heldByConflict(op) {
			summary.Conflicts++
			continue
		}

		if op.NeedsConflictCheck() {
			conflicted, err := e.checkConflict(ctx, op)
			if domain.IsAuthError(err) {
				e.pauseForAuth(ctx, err)
				summary.AuthPaused = true
				break
			}
			if conflicted {
				summary.Conflicts++
				continue
			}
		}

		saved, err := e.applyWithRetry(ctx, op)
		switch {
		case err == nil:
			delete(ledger, op.QueueEntryID)
			remove = append(remove, op.QueueEntryID)
			summary.Succeeded++
			metrics.OperationsSynced.WithLabelValues(op.Resource).Inc()
			log.Info(LogMsgOperationSynced, "queue_entry_id", op.QueueEntryID, "resource", op.Resource, "type", op.Type)
			if at, ok := e.advanceSnapshots(ctx, op, saved); ok {
				confirmed[recordKey(op)] = at
			}

		case domain.IsAuthError(err):
			e.pauseForAuth(ctx, err)
			summary.AuthPaused = true

		case ctx.Err() != nil:
			// Shutdown between attempts; the operation is untouched and retried next run

		default:
			ledger[op.QueueEntryID]++
			count := ledger[op.QueueEntryID]
			metrics.OperationsFailed.WithLabelValues(op.Resource).Inc()

			if count >= e.opts.MaxAttempts {
				delete(ledger, op.QueueEntryID)
				remove = append(remove, op.QueueEntryID)
				summary.Quarantined++
				metrics.OperationsQuarantined.WithLabelValues(op.Resource).Inc()
				log.Error(LogMsgOperationQuarantined,
					"queue_entry_id", op.QueueEntryID,
					"resource", op.Resource,
					"type", op.Type,
					"attempts", count,
					"error", err)
				e.publish(ctx, event.NewQuarantinedEvent(op, count, err))
			} else {
				summary.Failed++
				log.Warn(LogMsgOperationFailed,
					"queue_entry_id", op.QueueEntryID,
					"resource", op.Resource,
					"failures", count,
					"error", err)
			}
		}

		if summary.AuthPaused {
			break
		}
	}

	// Persist bookkeeping even when shutting down mid-cycle
	persistCtx := context.WithoutCancel(ctx)
	if err := e.ledger.SaveLedger(persistCtx, ledger); err != nil {
		log.Error(LogMsgLedgerSaveFailed, "error", err)
		return summary, fmt.Errorf("%s: %w", ErrMsgSaveLedger, err)
	}
	if err := e.queue.DequeueConfirmed(persistCtx, remove); err != nil {
		return summary, fmt.Errorf("%s: %w", ErrMsgRemoveQueued, err)
	}

	summary.Remaining = e.queue.Len()
	elapsed := e.now().Sub(start)
	summary.Duration = domain.Duration(elapsed)
	metrics.SyncDuration.Observe(elapsed.Seconds())

	outcome := metrics.OutcomeCompleted
	if summary.Remaining > 0 || summary.Conflicts > 0 {
		outcome = metrics.OutcomePartial
	}
	metrics.DrainCycles.WithLabelValues(outcome).Inc()

	finished := e.now()
	e.mu.Lock()
	e.lastSync = &finished
	e.lastSummary = &summary
	e.mu.Unlock()

	log.Info(LogMsgDrainFinished,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"conflicts", summary.Conflicts,
		"quarantined", summary.Quarantined,
		"remaining", summary.Remaining,
		"auth_paused", summary.AuthPaused,
		"duration", elapsed)
	e.publish(ctx, event.NewSyncSummaryEvent(summary))

	return summary, nil
}

func (e *Engine) skip(ctx context.Context, reason string) domain.SyncSummary {
	metrics.DrainCycles.WithLabelValues(metrics.OutcomeSkipped).Inc()
	logger.FromContext(ctx).Debug(LogMsgDrainSkipped, "reason", reason)
	return domain.SyncSummary{SkipReason: reason, Remaining: e.queue.Len(), AuthPaused: e.isAuthPaused()}
}

// heldByConflict reports whether the operation, or an earlier update to the
// same record, is waiting for a human decision
func (e *Engine) heldByConflict(op domain.PendingOperation) bool {
	if e.conflicts.HasOperation(op.QueueEntryID) {
		return true
	}
	if !op.NeedsConflictCheck() {
		return false
	}
	_, pending := e.conflicts.Get(op.TargetRecordID)
	return pending
}

// checkConflict compares the remote modification time with the snapshot's.
// Only an auth error is returned; any other fetch failure skips the check.
func (e *Engine) checkConflict(ctx context.Context, op domain.PendingOperation) (bool, error) {
	snapshotAt, ok := op.SnapshotTime()
	if !ok {
		return false, nil
	}

	server, err := e.remote.Fetch(ctx, op.Resource, op.TargetRecordID)
	if err != nil {
		if domain.IsAuthError(err) {
			return false, err
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			logger.FromContext(ctx).Warn(LogMsgConflictCheckSkipped,
				"queue_entry_id", op.QueueEntryID, "resource", op.Resource, "error", err)
		}
		return false, nil
	}

	serverAt, ok := server.UpdatedAt()
	if !ok || !serverAt.After(snapshotAt) {
		return false, nil
	}

	c := domain.SyncConflict{
		ID:            op.TargetRecordID,
		Operation:     op,
		ServerVersion: server,
		Timestamp:     e.now().UTC(),
	}
	e.conflicts.Put(c)
	metrics.ConflictsDetected.WithLabelValues(op.Resource).Inc()
	logger.FromContext(ctx).Warn(LogMsgConflictDetected,
		"conflict_id", c.ID,
		"queue_entry_id", op.QueueEntryID,
		"resource", op.Resource,
		"snapshot_at", snapshotAt,
		"server_at", serverAt)
	e.publish(ctx, event.NewConflictDetectedEvent(c))
	return true, nil
}

// applyWithRetry makes up to AttemptsPerCycle attempts, waiting attempt×base
// between them. Auth errors and cancellation end the sequence immediately.
func (e *Engine) applyWithRetry(ctx context.Context, op domain.PendingOperation) (domain.Record, error) {
	var lastErr error
	for attempt := 1; attempt <= e.opts.AttemptsPerCycle; attempt++ {
		saved, err := e.apply(ctx, op)
		if err == nil || domain.IsAuthError(err) {
			return saved, err
		}
		lastErr = err

		logger.FromContext(ctx).Debug(LogMsgAttemptFailed,
			"queue_entry_id", op.QueueEntryID, "attempt", attempt, "error", lastErr)

		if attempt < e.opts.AttemptsPerCycle {
			if err := e.sleep(ctx, time.Duration(attempt)*e.opts.RetryBaseDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// apply performs one write and returns the remote's copy of the row, if any
func (e *Engine) apply(ctx context.Context, op domain.PendingOperation) (domain.Record, error) {
	return mutation.Send(ctx, e.remote, op)
}

// advanceSnapshots rebases the queued updates to a record once a write of this
// terminal to it is confirmed. The remote's modification time of the written
// row becomes their new snapshot time, so they are not held as conflicts
// caused by our own write. It returns that time when one was available.
func (e *Engine) advanceSnapshots(ctx context.Context, op domain.PendingOperation, saved domain.Record) (time.Time, bool) {
	if op.Type == domain.OperationDelete || op.Resource == domain.ResourceSales {
		return time.Time{}, false
	}
	at, ok := saved.UpdatedAt()
	if !ok {
		return time.Time{}, false
	}

	n, err := e.queue.RebaseSnapshots(context.WithoutCancel(ctx), op.Resource, op.TargetRecordID, at)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgRebaseFailed,
			"resource", op.Resource, "target_record_id", op.TargetRecordID, "error", err)
	} else if n > 0 {
		logger.FromContext(ctx).Debug(LogMsgSnapshotsRebased,
			"resource", op.Resource, "target_record_id", op.TargetRecordID, "rebased", n)
	}
	return at, true
}

func recordKey(op domain.PendingOperation) string {
	return op.Resource + "/" + op.TargetRecordID
}

func (e *Engine) publish(ctx context.Context, evt event.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ctx, evt); err != nil {
		logger.FromContext(ctx).Warn(LogMsgPublishFailed, "type", evt.Type, "error", err)
	}
}

func (e *Engine) setSyncing(v bool) {
	e.mu.Lock()
	e.syncing = v
	e.mu.Unlock()
}

func (e *Engine) isAuthPaused() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.authPaused
}

// Status returns a point-in-time view of the engine
func (e *Engine) Status(ctx context.Context) domain.SyncStatus {
	e.mu.RLock()
	status := domain.SyncStatus{
		Online:      e.conn.IsOnline(),
		LastOnline:  e.conn.LastOnline(),
		Syncing:     e.syncing,
		AuthPaused:  e.authPaused,
		NeedsLogin:  e.needsLogin,
		LastSync:    e.lastSync,
		LastSummary: e.lastSummary,
	}
	e.mu.RUnlock()

	status.Pending = e.queue.Len()
	status.Conflicts = e.conflicts.Len()

	ledger, err := e.ledger.LoadLedger(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgLedgerLoadFailed, "error", err)
	} else if len(ledger) > 0 {
		status.Failures = ledger
	}
	return status
}

// Conflicts lists the conflicts awaiting review
func (e *Engine) Conflicts() []domain.SyncConflict {
	return e.conflicts.List()
}

// Shutdown waits for a background session refresh to finish
func (e *Engine) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.refreshWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
