package mutation

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TillSync_Go/internal/database/sqlite"
	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/queue"
	"github.com/osse101/TillSync_Go/internal/repository"
	"github.com/osse101/TillSync_Go/internal/validation"
)

// MockRemote is a mock implementation of repository.Remote
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Fetch(ctx context.Context, resource, id string) (domain.Record, error) {
	args := m.Called(ctx, resource, id)
	r, _ := args.Get(0).(domain.Record)
	return r, args.Error(1)
}

func (m *MockRemote) Insert(ctx context.Context, resource string, data domain.Record) (domain.Record, error) {
	args := m.Called(ctx, resource, data)
	r, _ := args.Get(0).(domain.Record)
	return r, args.Error(1)
}

func (m *MockRemote) Update(ctx context.Context, resource, id string, patch domain.Record) (domain.Record, error) {
	args := m.Called(ctx, resource, id, patch)
	r, _ := args.Get(0).(domain.Record)
	return r, args.Error(1)
}

func (m *MockRemote) Delete(ctx context.Context, resource, id string) error {
	return m.Called(ctx, resource, id).Error(0)
}

func (m *MockRemote) List(ctx context.Context, resource string, filter repository.Filter) ([]domain.Record, error) {
	args := m.Called(ctx, resource, filter)
	r, _ := args.Get(0).([]domain.Record)
	return r, args.Error(1)
}

func (m *MockRemote) CompleteSale(ctx context.Context, payload domain.Record) (domain.Record, error) {
	args := m.Called(ctx, payload)
	r, _ := args.Get(0).(domain.Record)
	return r, args.Error(1)
}

func (m *MockRemote) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fakeConnectivity struct{ online atomic.Bool }

func (c *fakeConnectivity) IsOnline() bool { return c.online.Load() }

type fixture struct {
	svc    Service
	remote *MockRemote
	queue  queue.Queue
	conn   *fakeConnectivity
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	payloads, err := validation.NewPayloadValidator()
	require.NoError(t, err)
	q, err := queue.New(ctx, store, payloads)
	require.NoError(t, err)

	f := &fixture{remote: new(MockRemote), queue: q, conn: &fakeConnectivity{}}
	f.conn.online.Store(online)
	f.svc = NewService(f.remote, q, payloads, f.conn)
	return f
}

func saleData() domain.Record {
	return domain.Record{
		"staff_id": "staff-1",
		"total":    2500,
		"items":    []any{map[string]any{"product_id": "p-1", "quantity": 1, "unit_price": 2500}},
		"payments": []any{map[string]any{"method": domain.TenderCash, "amount": 2500}},
	}
}

func TestApply_OnlineSaleUsesTransactionalRoute(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	// ARRANGE
	f.remote.On("CompleteSale", ctx, mock.MatchedBy(func(p domain.Record) bool {
		return p["staff_id"] == "staff-1" && p.ID() != ""
	})).Return(domain.Record{"id": "sale-1", "total": 2500.0}, nil)

	// ACT
	res, err := f.svc.Apply(ctx, domain.MutationRequest{Type: domain.OperationCreate, Resource: domain.ResourceSales, Data: saleData()})

	// ASSERT
	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Equal(t, "sale-1", res.Record.ID())
	assert.NotEmpty(t, res.RecordID)
	assert.Equal(t, 0, f.queue.Len())
	f.remote.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	f.remote.AssertExpectations(t)
}

func TestApply_OfflineQueues(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.svc.Apply(context.Background(), domain.MutationRequest{
		Type:     domain.OperationUpdate,
		Resource: domain.ResourceInventory,
		RecordID: "inv-1",
		Data:     domain.Record{"quantity": 4},
		Snapshot: domain.Record{"id": "inv-1", "updated_at": "2024-03-01T10:00:00Z"},
	})

	require.NoError(t, err)
	assert.True(t, res.Queued)
	ops := f.queue.All()
	require.Len(t, ops, 1)
	assert.Equal(t, res.QueueEntryID, ops[0].QueueEntryID)
	assert.Equal(t, "inv-1", ops[0].TargetRecordID)
	_, ok := ops[0].SnapshotTime()
	assert.True(t, ok, "snapshot carried for the later conflict check")
	f.remote.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_DirectWriteFailureQueues(t *testing.T) {
	f := newFixture(t, true)
	f.remote.On("Insert", mock.Anything, domain.ResourceInventory, mock.Anything).Return(nil, errors.New("connection reset"))

	res, err := f.svc.Apply(context.Background(), domain.MutationRequest{
		Type:     domain.OperationCreate,
		Resource: domain.ResourceInventory,
		Data:     domain.Record{"name": "rice", "quantity": 10},
	})

	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Equal(t, 1, f.queue.Len())
}

func TestApply_QueuedChangeIsNotOvertaken(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	// ARRANGE: an offline edit is still waiting when the till comes back online
	_, err := f.svc.Apply(ctx, domain.MutationRequest{Type: domain.OperationUpdate, Resource: domain.ResourceInventory, RecordID: "inv-1", Data: domain.Record{"quantity": 4}})
	require.NoError(t, err)
	f.conn.online.Store(true)

	// ACT
	res, err := f.svc.Apply(ctx, domain.MutationRequest{Type: domain.OperationUpdate, Resource: domain.ResourceInventory, RecordID: "inv-1", Data: domain.Record{"quantity": 3}})

	// ASSERT
	require.NoError(t, err)
	assert.True(t, res.Queued)
	ops := f.queue.All()
	require.Len(t, ops, 2)
	assert.Equal(t, 3, ops[1].Data["quantity"])
	f.remote.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApply_DeleteOfMissingRecordConfirms(t *testing.T) {
	f := newFixture(t, true)
	f.remote.On("Delete", mock.Anything, domain.ResourceInventory, "inv-1").Return(domain.ErrRecordNotFound)

	res, err := f.svc.Apply(context.Background(), domain.MutationRequest{Type: domain.OperationDelete, Resource: domain.ResourceInventory, RecordID: "inv-1"})

	require.NoError(t, err)
	assert.False(t, res.Queued)
	assert.Equal(t, 0, f.queue.Len())
}

func TestApply_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.MutationRequest
		wantErr error
	}{
		{
			name:    "update without record id",
			req:     domain.MutationRequest{Type: domain.OperationUpdate, Resource: domain.ResourceInventory, Data: domain.Record{"quantity": 1}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown type",
			req:     domain.MutationRequest{Type: "upsert", Resource: domain.ResourceInventory, RecordID: "x", Data: domain.Record{"a": 1}},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "create without data",
			req:     domain.MutationRequest{Type: domain.OperationCreate, Resource: domain.ResourceInventory},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "sale without items",
			req:     domain.MutationRequest{Type: domain.OperationCreate, Resource: domain.ResourceSales, Data: domain.Record{"staff_id": "s", "total": 10}},
			wantErr: domain.ErrInvalidOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)

			_, err := f.svc.Apply(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, f.queue.Len())
			assert.Empty(t, f.remote.Calls)
		})
	}
}

func TestSend_UnknownType(t *testing.T) {
	op := domain.NewDeleteOperation(domain.ResourceInventory, "inv-1")
	op.Type = "upsert"

	_, err := Send(context.Background(), new(MockRemote), op)

	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}
