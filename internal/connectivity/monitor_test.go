package connectivity

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TillSync_Go/internal/database/sqlite"
	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
)

type fixedPending int

func (p fixedPending) Len() int { return int(p) }

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type recordingBus struct {
	mu    sync.Mutex
	types []event.Type
}

func (b *recordingBus) Publish(_ context.Context, e event.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types = append(b.types, e.Type)
	return nil
}

func (b *recordingBus) Subscribe(event.Type, event.Handler) {}

func (b *recordingBus) Types() []event.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]event.Type(nil), b.types...)
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMonitor_ReconnectTriggersSyncAfterDebounce(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	m := NewMonitor(newStore(t), fixedPending(2), bus, 20*time.Millisecond)
	t.Cleanup(m.Stop)

	var fired atomic.Int32
	m.OnReconnect(func(context.Context) { fired.Add(1) })

	// ACT
	m.Set(ctx, true)

	// ASSERT
	assert.True(t, m.IsOnline())
	assert.Equal(t, int32(0), fired.Load())
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []event.Type{event.ConnectivityOnline}, bus.Types())
}

func TestMonitor_OfflineBeforeDebounceCancels(t *testing.T) {
	ctx := context.Background()
	m := NewMonitor(newStore(t), fixedPending(1), nil, 50*time.Millisecond)

	var fired atomic.Int32
	m.OnReconnect(func(context.Context) { fired.Add(1) })

	m.Set(ctx, true)
	m.Set(ctx, false)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
	assert.False(t, m.IsOnline())
}

func TestMonitor_EmptyQueueSchedulesNothing(t *testing.T) {
	m := NewMonitor(newStore(t), fixedPending(0), nil, time.Millisecond)

	var fired atomic.Int32
	m.OnReconnect(func(context.Context) { fired.Add(1) })
	m.Set(context.Background(), true)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
}

func TestMonitor_RepeatedSignalIsNotTransition(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	m := NewMonitor(newStore(t), fixedPending(0), bus, time.Millisecond)

	m.Set(ctx, true)
	m.Set(ctx, true)
	m.Set(ctx, false)
	m.Set(ctx, false)

	assert.Equal(t, []event.Type{event.ConnectivityOnline, event.ConnectivityOffline}, bus.Types())
}

func TestMonitor_LastOnlinePersisted(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m := NewMonitor(store, fixedPending(0), nil, time.Millisecond)
	fixed := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	m.Set(ctx, true)
	m.Set(ctx, false)

	// ACT: a new monitor over the same store
	restored := NewMonitor(store, fixedPending(0), nil, time.Millisecond)
	restored.Load(ctx)

	// ASSERT
	require.NotNil(t, restored.LastOnline())
	assert.True(t, fixed.Equal(*restored.LastOnline()))
	assert.False(t, restored.IsOnline())
}

func TestMonitor_Probe(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		online bool
	}{
		{name: "reachable", online: true},
		{name: "auth rejection is reachable", err: domain.ErrUnauthorized, online: true},
		{name: "network error", err: errors.New("dial tcp: no route to host")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(newStore(t), fixedPending(0), nil, time.Millisecond)

			got := m.Probe(context.Background(), pingerFunc(func(context.Context) error { return tt.err }))

			assert.Equal(t, tt.online, got)
			assert.Equal(t, tt.online, m.IsOnline())
		})
	}
}
