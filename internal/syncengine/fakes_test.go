package syncengine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osse101/TillSync_Go/internal/conflict"
	"github.com/osse101/TillSync_Go/internal/database/sqlite"
	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/queue"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// fakeRemote records every call and lets a test decide each write's outcome
type fakeRemote struct {
	mu      sync.Mutex
	records map[string]domain.Record
	calls   []string
	data    []domain.Record

	// writeErr decides the outcome of a write; nil means success
	writeErr func(call string, n int) error
	fetchErr error
	onWrite  func(call string)

	// stamp, when set, makes updates behave like a real backend: the patch is
	// merged into the stored row and updated_at is set to stamp()
	stamp func() time.Time
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{records: make(map[string]domain.Record)}
}

func key(resource, id string) string { return resource + "/" + id }

func (f *fakeRemote) put(resource, id string, r domain.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[key(resource, id)] = r
}

func (f *fakeRemote) write(call string, data domain.Record) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.data = append(f.data, data)
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	decide := f.writeErr
	hook := f.onWrite
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if decide != nil {
		return decide(call, n)
	}
	return nil
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) LastData() domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.data) == 0 {
		return nil
	}
	return f.data[len(f.data)-1]
}

func (f *fakeRemote) Fetch(_ context.Context, resource, id string) (domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "fetch:"+key(resource, id))
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	r, ok := f.records[key(resource, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrRecordNotFound, key(resource, id))
	}
	return r, nil
}

func (f *fakeRemote) Insert(_ context.Context, resource string, data domain.Record) (domain.Record, error) {
	return data, f.write("insert:"+key(resource, data.ID()), data)
}

func (f *fakeRemote) Update(_ context.Context, resource, id string, patch domain.Record) (domain.Record, error) {
	if err := f.write("update:"+key(resource, id), patch); err != nil {
		return nil, err
	}
	if f.stamp == nil {
		return patch, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.records[key(resource, id)].Clone()
	if row == nil {
		row = domain.Record{domain.FieldID: id}
	}
	for k, v := range patch {
		row[k] = v
	}
	row[domain.FieldUpdatedAt] = f.stamp().Format(time.RFC3339Nano)
	f.records[key(resource, id)] = row
	return row.Clone(), nil
}

func (f *fakeRemote) Delete(_ context.Context, resource, id string) error {
	return f.write("delete:"+key(resource, id), nil)
}

func (f *fakeRemote) List(context.Context, string, repository.Filter) ([]domain.Record, error) {
	return nil, nil
}

func (f *fakeRemote) CompleteSale(_ context.Context, payload domain.Record) (domain.Record, error) {
	return payload, f.write("complete_sale:"+payload.ID(), payload)
}

func (f *fakeRemote) Ping(context.Context) error { return nil }

// fakeSessions blocks Refresh until the test releases it
type fakeSessions struct {
	release chan error
	calls   atomic.Int32
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{release: make(chan error, 1)}
}

func (s *fakeSessions) Session(context.Context) (domain.Session, error) {
	return domain.Session{AccessToken: "token"}, nil
}

func (s *fakeSessions) Refresh(ctx context.Context) (domain.Session, error) {
	s.calls.Add(1)
	select {
	case err := <-s.release:
		if err != nil {
			return domain.Session{}, err
		}
		return domain.Session{AccessToken: "fresh"}, nil
	case <-ctx.Done():
		return domain.Session{}, ctx.Err()
	}
}

type fakeConnectivity struct {
	online atomic.Bool
}

func (c *fakeConnectivity) IsOnline() bool         { return c.online.Load() }
func (c *fakeConnectivity) LastOnline() *time.Time { return nil }

// recordingBus captures published event types
type recordingBus struct {
	mu     sync.Mutex
	events []event.Event
}

func (b *recordingBus) Publish(_ context.Context, e event.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) Subscribe(event.Type, event.Handler) {}

func (b *recordingBus) Types() []event.Type {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Type, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	engine    *Engine
	queue     queue.Queue
	store     *sqlite.Store
	remote    *fakeRemote
	sessions  *fakeSessions
	conflicts *conflict.Store
	conn      *fakeConnectivity
	bus       *recordingBus
	delays    []time.Duration
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	q, err := queue.New(ctx, store, nil)
	require.NoError(t, err)

	h := &harness{
		queue:     q,
		store:     store,
		remote:    newFakeRemote(),
		sessions:  newFakeSessions(),
		conflicts: conflict.NewStore(),
		conn:      &fakeConnectivity{},
		bus:       &recordingBus{},
	}
	h.conn.online.Store(true)

	h.engine = NewEngine(q, store, h.remote, h.sessions, h.conflicts, h.conn, h.bus, DefaultOptions())
	h.engine.sleep = func(_ context.Context, d time.Duration) error {
		h.delays = append(h.delays, d)
		return nil
	}
	t.Cleanup(func() {
		select {
		case h.sessions.release <- nil:
		default:
		}
		_ = h.engine.Shutdown(context.Background())
	})
	return h
}

func (h *harness) enqueue(t *testing.T, op domain.PendingOperation) domain.PendingOperation {
	t.Helper()
	require.NoError(t, h.queue.Enqueue(context.Background(), op))
	return op
}

func (h *harness) ledger(t *testing.T) map[string]int {
	t.Helper()
	l, err := h.store.LoadLedger(context.Background())
	require.NoError(t, err)
	return l
}
