package conflict

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/metrics"
)

func newConflict(recordID string, at time.Time) domain.SyncConflict {
	op := domain.NewUpdateOperation(domain.ResourceInventory, recordID, domain.Record{"quantity": 1}, nil)
	return domain.SyncConflict{
		ID:            recordID,
		Operation:     op,
		ServerVersion: domain.Record{"id": recordID},
		Timestamp:     at,
	}
}

func TestStore_PutGetRemove(t *testing.T) {
	s := NewStore()
	c := newConflict("inv-1", time.Now())

	s.Put(c)

	got, ok := s.Get("inv-1")
	require.True(t, ok)
	assert.Equal(t, c.Operation.QueueEntryID, got.Operation.QueueEntryID)
	assert.True(t, s.HasOperation(c.Operation.QueueEntryID))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ConflictsPending))

	s.Remove("inv-1")

	_, ok = s.Get("inv-1")
	assert.False(t, ok)
	assert.False(t, s.HasOperation(c.Operation.QueueEntryID))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ConflictsPending))
}

func TestStore_LatestConflictReplacesEarlier(t *testing.T) {
	s := NewStore()
	now := time.Now()
	first := newConflict("inv-1", now)
	second := newConflict("inv-1", now.Add(time.Second))

	s.Put(first)
	s.Put(second)

	assert.Equal(t, 1, s.Len())
	got, _ := s.Get("inv-1")
	assert.Equal(t, second.Operation.QueueEntryID, got.Operation.QueueEntryID)
	assert.False(t, s.HasOperation(first.Operation.QueueEntryID))
}

func TestStore_ListOldestFirst(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.Put(newConflict("b", now.Add(time.Minute)))
	s.Put(newConflict("a", now))

	list := s.List()

	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}
