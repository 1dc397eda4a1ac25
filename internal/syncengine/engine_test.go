package syncengine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
)

var errTransient = errors.New("connection reset")

func saleCreate() domain.PendingOperation {
	return domain.NewCreateOperation(domain.ResourceSales, domain.Record{
		"staff_id": "staff-1",
		"total":    float64(5000),
		"items":    []any{map[string]any{"product_id": "p1", "quantity": float64(1), "unit_price": float64(5000)}},
	})
}

func inventoryPatch(id string, snapshotAt string) domain.PendingOperation {
	var snapshot domain.Record
	if snapshotAt != "" {
		snapshot = domain.Record{"id": id, "updated_at": snapshotAt}
	}
	return domain.NewUpdateOperation(domain.ResourceInventory, id, domain.Record{"quantity": float64(7)}, snapshot)
}

func TestSync_AppliesQueueInOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// ARRANGE
	sale := h.enqueue(t, saleCreate())
	item := h.enqueue(t, domain.NewCreateOperation(domain.ResourceInventory, domain.Record{"name": "rice"}))
	patch := h.enqueue(t, inventoryPatch("inv-1", ""))
	del := h.enqueue(t, domain.NewDeleteOperation(domain.ResourceInventory, "inv-2"))

	// ACT
	summary, err := h.engine.Sync(ctx)

	// ASSERT
	require.NoError(t, err)
	assert.True(t, summary.Ran)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 0, summary.Remaining)
	assert.Equal(t, []string{
		"complete_sale:" + sale.TargetRecordID,
		"insert:inventory/" + item.TargetRecordID,
		"update:inventory/" + patch.TargetRecordID,
		"delete:inventory/" + del.TargetRecordID,
	}, h.remote.Calls())
	assert.Equal(t, 0, h.queue.Len())
	assert.Contains(t, h.bus.Types(), event.SyncCompleted)
}

func TestSync_SkipReasons(t *testing.T) {
	t.Run("offline", func(t *testing.T) {
		h := newHarness(t)
		h.enqueue(t, saleCreate())
		h.conn.online.Store(false)

		summary, err := h.engine.Sync(context.Background())

		require.NoError(t, err)
		assert.False(t, summary.Ran)
		assert.Equal(t, domain.SkipReasonOffline, summary.SkipReason)
		assert.Equal(t, 1, summary.Remaining)
		assert.Empty(t, h.remote.Calls())
	})

	t.Run("already draining", func(t *testing.T) {
		h := newHarness(t)
		h.enqueue(t, saleCreate())
		h.engine.drainMu.Lock()
		defer h.engine.drainMu.Unlock()

		summary, err := h.engine.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.SkipReasonInProgress, summary.SkipReason)
		assert.Empty(t, h.remote.Calls())
	})

	t.Run("empty queue", func(t *testing.T) {
		h := newHarness(t)

		summary, err := h.engine.Sync(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.SkipReasonEmpty, summary.SkipReason)
	})
}

func TestSync_RetriesWithLinearBackoff(t *testing.T) {
	h := newHarness(t)
	op := h.enqueue(t, saleCreate())
	h.remote.writeErr = func(_ string, n int) error {
		if n < 3 {
			return errTransient
		}
		return nil
	}

	summary, err := h.engine.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, h.delays)
	assert.Len(t, h.remote.Calls(), 3)
	assert.NotContains(t, h.ledger(t), op.QueueEntryID)
}

func TestSync_QuarantineOnFifthFailedCycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	op := h.enqueue(t, saleCreate())
	h.remote.writeErr = func(string, int) error { return errTransient }

	// ACT: four failing cycles keep the operation queued
	for cycle := 1; cycle <= 4; cycle++ {
		summary, err := h.engine.Sync(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Failed, "cycle %d", cycle)
		assert.Equal(t, cycle, h.ledger(t)[op.QueueEntryID])
		assert.Equal(t, 1, h.queue.Len())
	}

	// ACT: the fifth removes it
	summary, err := h.engine.Sync(ctx)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Quarantined)
	assert.Equal(t, 0, h.queue.Len())
	assert.Empty(t, h.ledger(t))
	assert.Len(t, h.remote.Calls(), 5*domain.AttemptsPerCycle)
	assert.Contains(t, h.bus.Types(), event.OperationQuarantined)
}

func TestSync_SuccessAfterFourFailuresClearsLedger(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	op := h.enqueue(t, saleCreate())

	failing := true
	h.remote.writeErr = func(string, int) error {
		if failing {
			return errTransient
		}
		return nil
	}
	for i := 0; i < 4; i++ {
		_, err := h.engine.Sync(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 4, h.ledger(t)[op.QueueEntryID])

	// ACT
	failing = false
	summary, err := h.engine.Sync(ctx)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, h.ledger(t))
	assert.Equal(t, 0, h.queue.Len())
}

func TestSync_ConflictDetection(t *testing.T) {
	const snapshotAt = "2024-03-01T10:00:00Z"

	tests := []struct {
		name         string
		snapshotAt   string
		remoteAt     string
		wantConflict bool
		wantFetch    bool
	}{
		{name: "remote newer", snapshotAt: snapshotAt, remoteAt: "2024-03-01T10:05:00Z", wantConflict: true, wantFetch: true},
		{name: "remote equal", snapshotAt: snapshotAt, remoteAt: snapshotAt, wantFetch: true},
		{name: "remote older", snapshotAt: snapshotAt, remoteAt: "2024-03-01T09:00:00Z", wantFetch: true},
		{name: "no snapshot", remoteAt: "2024-03-01T10:05:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.remote.put(domain.ResourceInventory, "inv-1", domain.Record{"id": "inv-1", "updated_at": tt.remoteAt})
			op := h.enqueue(t, inventoryPatch("inv-1", tt.snapshotAt))

			summary, err := h.engine.Sync(context.Background())

			require.NoError(t, err)
			calls := h.remote.Calls()
			assert.Equal(t, tt.wantFetch, len(calls) > 0 && calls[0] == "fetch:inventory/inv-1")
			if tt.wantConflict {
				assert.Equal(t, 1, summary.Conflicts)
				assert.Equal(t, 0, summary.Failed)
				assert.NotContains(t, calls, "update:inventory/inv-1")
				assert.Equal(t, 1, h.queue.Len())
				assert.True(t, h.conflicts.HasOperation(op.QueueEntryID))
				assert.Empty(t, h.ledger(t))
				assert.Contains(t, h.bus.Types(), event.ConflictDetected)
			} else {
				assert.Equal(t, 1, summary.Succeeded)
				assert.Contains(t, calls, "update:inventory/inv-1")
				assert.Equal(t, 0, h.conflicts.Len())
			}
		})
	}
}

// stampingClock returns a clock that advances one second per call, starting after base
func stampingClock(base time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestSync_OwnEarlierWriteIsNotConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// ARRANGE: two offline edits of a record last seen at T1
	const t1 = "2024-03-01T10:00:00Z"
	base, _ := time.Parse(time.RFC3339, t1)
	h.remote.stamp = stampingClock(base)
	h.remote.put(domain.ResourceInventory, "inv-1", domain.Record{"id": "inv-1", "updated_at": t1})
	h.enqueue(t, inventoryPatch("inv-1", t1))
	h.enqueue(t, inventoryPatch("inv-1", t1))

	// ACT
	summary, err := h.engine.Sync(ctx)

	// ASSERT: the second edit is checked against the first one's stamp, not T1
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Conflicts)
	assert.Equal(t, 0, h.queue.Len())
	assert.Equal(t, 0, h.conflicts.Len())
}

func TestSync_RebasedSnapshotSurvivesFailedCycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// ARRANGE: the first edit lands, the second fails every attempt this cycle
	const t1 = "2024-03-01T10:00:00Z"
	base, _ := time.Parse(time.RFC3339, t1)
	h.remote.stamp = stampingClock(base)
	h.remote.put(domain.ResourceInventory, "inv-1", domain.Record{"id": "inv-1", "updated_at": t1})
	h.enqueue(t, inventoryPatch("inv-1", t1))
	second := h.enqueue(t, inventoryPatch("inv-1", t1))
	h.remote.writeErr = func(call string, n int) error {
		if n >= 2 && n <= 4 {
			return errTransient
		}
		return nil
	}

	first, err := h.engine.Sync(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Succeeded)
	require.Equal(t, 1, first.Failed)

	at, ok := h.queue.All()[0].SnapshotTime()
	require.True(t, ok)
	assert.True(t, at.After(base), "queued snapshot moved to the confirmed write")

	// ACT
	summary, err := h.engine.Sync(ctx)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Conflicts)
	assert.False(t, h.conflicts.HasOperation(second.QueueEntryID))
	assert.Equal(t, 0, h.queue.Len())
}

func TestSync_ForeignWriteAfterOwnWriteStillConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// ARRANGE
	const t1 = "2024-03-01T10:00:00Z"
	base, _ := time.Parse(time.RFC3339, t1)
	h.remote.stamp = stampingClock(base)
	h.remote.put(domain.ResourceInventory, "inv-1", domain.Record{"id": "inv-1", "updated_at": t1})
	h.enqueue(t, inventoryPatch("inv-1", t1))
	second := h.enqueue(t, inventoryPatch("inv-1", t1))
	h.remote.writeErr = func(call string, n int) error {
		if n >= 2 && n <= 4 {
			return errTransient
		}
		return nil
	}
	_, err := h.engine.Sync(ctx)
	require.NoError(t, err)

	// another terminal edits the record between cycles
	h.remote.put(domain.ResourceInventory, "inv-1", domain.Record{"id": "inv-1", "updated_at": "2024-03-01T12:00:00Z"})

	// ACT
	summary, err := h.engine.Sync(ctx)

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Conflicts)
	assert.True(t, h.conflicts.HasOperation(second.QueueEntryID))
}

func TestSync_SalesUpdatesNeverConflictChecked(t *testing.T) {
	h := newHarness(t)
	h.remote.put(domain.ResourceSales, "sale-1", domain.Record{"id": "sale-1", "updated_at": "2030-01-01T00:00:00Z"})
	h.enqueue(t, domain.NewUpdateOperation(domain.ResourceSales, "sale-1",
		domain.Record{"note": "x"}, domain.Record{"updated_at": "2020-01-01T00:00:00Z"}))

	summary, err := h.engine.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, []string{"update:sales/sale-1"}, h.remote.Calls())
}

func TestSync_ConflictedOperationSkippedInLaterCycles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.remote.put(domain.ResourceInventory, "inv-1", domain.Record{"id": "inv-1", "updated_at": "2024-03-01T11:00:00Z"})
	h.enqueue(t, inventoryPatch("inv-1", "2024-03-01T10:00:00Z"))
	later := h.enqueue(t, inventoryPatch("inv-1", "2024-03-01T10:30:00Z"))

	_, err := h.engine.Sync(ctx)
	require.NoError(t, err)
	before := len(h.remote.Calls())

	// ACT
	summary, err := h.engine.Sync(ctx)

	// ASSERT: neither the held op nor the later update to the same record is touched
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Conflicts)
	assert.Len(t, h.remote.Calls(), before)
	assert.False(t, h.conflicts.HasOperation(later.QueueEntryID))
	assert.Equal(t, 2, h.queue.Len())
}

func TestSync_MissingRemoteRecordIsNotConflict(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, inventoryPatch("gone", "2024-03-01T10:00:00Z"))

	summary, err := h.engine.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Conflicts)
	assert.Contains(t, h.remote.Calls(), "update:inventory/gone")
}

func TestSync_FetchErrorSkipsCheck(t *testing.T) {
	h := newHarness(t)
	h.remote.fetchErr = errTransient
	h.enqueue(t, inventoryPatch("inv-1", "2024-03-01T10:00:00Z"))

	summary, err := h.engine.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
}

func TestSync_DeleteOfMissingRecordConfirms(t *testing.T) {
	h := newHarness(t)
	h.enqueue(t, domain.NewDeleteOperation(domain.ResourceInventory, "inv-9"))
	h.remote.writeErr = func(string, int) error { return domain.ErrRecordNotFound }

	summary, err := h.engine.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, h.queue.Len())
}

func TestSync_EnqueueDuringDrainIsKept(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.enqueue(t, saleCreate())

	var late domain.PendingOperation
	h.remote.onWrite = func(string) {
		if late.QueueEntryID == "" {
			late = saleCreate()
			require.NoError(t, h.queue.Enqueue(ctx, late))
		}
	}

	summary, err := h.engine.Sync(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Remaining)
	all := h.queue.All()
	require.Len(t, all, 1)
	assert.Equal(t, late.QueueEntryID, all[0].QueueEntryID)
}

func TestSync_ConfirmedOperationsNotResent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	op := h.enqueue(t, saleCreate())

	_, err := h.engine.Sync(ctx)
	require.NoError(t, err)
	_, err = h.engine.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"complete_sale:" + op.TargetRecordID}, h.remote.Calls())
}

func TestSync_CancelledContextStopsBetweenAttempts(t *testing.T) {
	h := newHarness(t)
	op := h.enqueue(t, saleCreate())
	h.remote.writeErr = func(string, int) error { return errTransient }

	ctx, cancel := context.WithCancel(context.Background())
	h.engine.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	summary, err := h.engine.Sync(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, h.remote.Calls(), 1)
	assert.NotContains(t, h.ledger(t), op.QueueEntryID)
	assert.Equal(t, 1, h.queue.Len())
}

func TestStatus_ReportsFailures(t *testing.T) {
	h := newHarness(t)
	op := h.enqueue(t, saleCreate())
	h.remote.writeErr = func(string, int) error { return fmt.Errorf("%w: 422", domain.ErrRemoteRejected) }

	_, err := h.engine.Sync(context.Background())
	require.NoError(t, err)

	status := h.engine.Status(context.Background())

	assert.True(t, status.Online)
	assert.Equal(t, 1, status.Pending)
	assert.Equal(t, 1, status.Failures[op.QueueEntryID])
	require.NotNil(t, status.LastSummary)
	assert.Equal(t, 1, status.LastSummary.Failed)
	assert.NotNil(t, status.LastSync)
}
