package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/TillSync_Go/internal/domain"
)

type stubQueue []domain.PendingOperation

func (q stubQueue) All() []domain.PendingOperation { return q }

func resolveRouter(engine SyncEngine) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/sync/conflicts/{id}/resolve", HandleResolveConflict(engine))
	return r
}

func TestHandleSyncStatus(t *testing.T) {
	engine := &MockSyncEngine{}
	engine.On("Status", mock.Anything).Return(domain.SyncStatus{Online: true, Pending: 3, AuthPaused: true})

	w := httptest.NewRecorder()
	HandleSyncStatus(engine).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":3`)
	assert.Contains(t, w.Body.String(), `"auth_paused":true`)
}

func TestHandleSyncNow(t *testing.T) {
	engine := &MockSyncEngine{}
	engine.On("Sync", mock.Anything).Return(domain.SyncSummary{SkipReason: domain.SkipReasonOffline}, nil)

	w := httptest.NewRecorder()
	HandleSyncNow(engine).ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/sync", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skip_reason":"offline"`)

	failing := &MockSyncEngine{}
	failing.On("Sync", mock.Anything).Return(domain.SyncSummary{}, errors.New("disk full"))

	w = httptest.NewRecorder()
	HandleSyncNow(failing).ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/sync", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk full")
}

func TestHandleListQueueAndConflicts(t *testing.T) {
	op := domain.NewCreateOperation(domain.ResourceSales, domain.Record{"total": 100})

	w := httptest.NewRecorder()
	HandleListQueue(stubQueue{op}).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/queue", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), op.QueueEntryID)

	engine := &MockSyncEngine{}
	engine.On("Conflicts").Return([]domain.SyncConflict{{ID: "inv-1", Timestamp: time.Now()}})

	w = httptest.NewRecorder()
	HandleListConflicts(engine).ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sync/conflicts", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"inv-1"`)
}

func TestHandleResolveConflict(t *testing.T) {
	t.Run("Server Wins", func(t *testing.T) {
		engine := &MockSyncEngine{}
		engine.On("ResolveConflict", mock.Anything, "inv-1", domain.ResolutionServer, domain.Record(nil)).Return(nil)

		w := postJSON(t, resolveRouter(engine), "/api/v1/sync/conflicts/inv-1/resolve",
			map[string]string{"resolution": "server"})

		assert.Equal(t, http.StatusOK, w.Code)
		engine.AssertExpectations(t)
	})

	t.Run("Merge Needs Data", func(t *testing.T) {
		engine := &MockSyncEngine{}

		w := postJSON(t, resolveRouter(engine), "/api/v1/sync/conflicts/inv-1/resolve",
			map[string]string{"resolution": "merge"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		engine.AssertNotCalled(t, "ResolveConflict", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown Resolution", func(t *testing.T) {
		w := postJSON(t, resolveRouter(&MockSyncEngine{}), "/api/v1/sync/conflicts/inv-1/resolve",
			map[string]string{"resolution": "newest"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidResolution)
	})

	t.Run("Offline Local", func(t *testing.T) {
		engine := &MockSyncEngine{}
		engine.On("ResolveConflict", mock.Anything, "inv-1", domain.ResolutionLocal, domain.Record(nil)).Return(domain.ErrOffline)

		w := postJSON(t, resolveRouter(engine), "/api/v1/sync/conflicts/inv-1/resolve",
			map[string]string{"resolution": "local"})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		engine := &MockSyncEngine{}
		engine.On("ResolveConflict", mock.Anything, "gone", domain.ResolutionServer, domain.Record(nil)).
			Return(domain.ErrConflictNotFound)

		w := postJSON(t, resolveRouter(engine), "/api/v1/sync/conflicts/gone/resolve",
			map[string]string{"resolution": "server"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
