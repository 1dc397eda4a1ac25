package syncengine

import (
	"context"
	"fmt"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// ResolveConflict applies a human decision to a held conflict.
//
//   - server drops the local operation
//   - local writes the operation's original data
//   - merge writes mergedData
//
// A failed write leaves the conflict and its operation in place.
func (e *Engine) ResolveConflict(ctx context.Context, conflictID string, resolution domain.Resolution, mergedData domain.Record) error {
	if !resolution.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidResolution, resolution)
	}
	if resolution == domain.ResolutionMerge && len(mergedData) == 0 {
		return domain.ErrMergeDataRequired
	}

	// Serialize with the drain so the ledger and queue removal don't race
	e.drainMu.Lock()
	defer e.drainMu.Unlock()

	c, ok := e.conflicts.Get(conflictID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrConflictNotFound, conflictID)
	}

	if resolution != domain.ResolutionServer {
		if !e.conn.IsOnline() {
			return domain.ErrOffline
		}
		op := c.Operation
		if resolution == domain.ResolutionMerge {
			op.Data = mergedData.Clone()
		}
		saved, err := e.apply(ctx, op)
		if err != nil {
			if domain.IsAuthError(err) {
				e.pauseForAuth(ctx, err)
			}
			return fmt.Errorf("%s: %w", ErrMsgApplyResolve, err)
		}
		e.advanceSnapshots(ctx, op, saved)
	}

	if err := e.queue.DequeueConfirmed(ctx, []string{c.Operation.QueueEntryID}); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRemoveQueued, err)
	}
	e.conflicts.Remove(conflictID)
	e.clearLedgerEntry(ctx, c.Operation.QueueEntryID)

	logger.FromContext(ctx).Info(LogMsgConflictResolved,
		"conflict_id", conflictID,
		"resource", c.Operation.Resource,
		"resolution", resolution)
	e.publish(ctx, event.NewConflictResolvedEvent(c, resolution))
	return nil
}

func (e *Engine) clearLedgerEntry(ctx context.Context, queueEntryID string) {
	log := logger.FromContext(ctx)
	ledger, err := e.ledger.LoadLedger(ctx)
	if err != nil {
		log.Warn(LogMsgLedgerLoadFailed, "error", err)
		return
	}
	if _, ok := ledger[queueEntryID]; !ok {
		return
	}
	delete(ledger, queueEntryID)
	if err := e.ledger.SaveLedger(ctx, ledger); err != nil {
		log.Warn(LogMsgLedgerSaveFailed, "error", err)
	}
}
