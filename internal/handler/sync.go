package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// SyncEngine is the part of the sync engine the till UI drives
type SyncEngine interface {
	Sync(ctx context.Context) (domain.SyncSummary, error)
	Status(ctx context.Context) domain.SyncStatus
	Conflicts() []domain.SyncConflict
	ResolveConflict(ctx context.Context, conflictID string, resolution domain.Resolution, mergedData domain.Record) error
	ResumeAfterLogin(ctx context.Context)
}

// PendingLister lists the queued operations
type PendingLister interface {
	All() []domain.PendingOperation
}

// QueueResponse lists the operations waiting to sync
type QueueResponse struct {
	Count      int                       `json:"count"`
	Operations []domain.PendingOperation `json:"operations"`
}

// ConflictsResponse lists the conflicts awaiting review
type ConflictsResponse struct {
	Count     int                   `json:"count"`
	Conflicts []domain.SyncConflict `json:"conflicts"`
}

// ResolveConflictRequest carries the human decision for one conflict
type ResolveConflictRequest struct {
	Resolution domain.Resolution `json:"resolution" validate:"required,resolution"`
	MergedData domain.Record     `json:"merged_data,omitempty" validate:"required_if=Resolution merge"`
}

// HandleSyncStatus reports engine state for the status bar
// @Summary Sync status
// @Tags sync
// @Produce json
// @Success 200 {object} domain.SyncStatus
// @Router /api/v1/sync/status [get]
func HandleSyncStatus(engine SyncEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, engine.Status(r.Context()))
	}
}

// HandleSyncNow runs a drain cycle and returns its summary. A skipped cycle
// (offline, paused, already running) is still a 200 with the skip reason.
// @Summary Sync now
// @Tags sync
// @Produce json
// @Success 200 {object} domain.SyncSummary
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sync [post]
func HandleSyncNow(engine SyncEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info(LogMsgManualSync)

		summary, err := engine.Sync(r.Context())
		if err != nil {
			respondServiceError(w, r, "sync", err)
			return
		}
		respondJSON(w, http.StatusOK, summary)
	}
}

// HandleListQueue lists the operations waiting to sync
// @Summary List pending operations
// @Tags sync
// @Produce json
// @Success 200 {object} QueueResponse
// @Router /api/v1/sync/queue [get]
func HandleListQueue(q PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ops := q.All()
		respondJSON(w, http.StatusOK, QueueResponse{Count: len(ops), Operations: ops})
	}
}

// HandleListConflicts lists the conflicts awaiting review
// @Summary List conflicts
// @Tags sync
// @Produce json
// @Success 200 {object} ConflictsResponse
// @Router /api/v1/sync/conflicts [get]
func HandleListConflicts(engine SyncEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conflicts := engine.Conflicts()
		respondJSON(w, http.StatusOK, ConflictsResponse{Count: len(conflicts), Conflicts: conflicts})
	}
}

// HandleResolveConflict applies the decision for the conflict named in the path
// @Summary Resolve conflict
// @Tags sync
// @Accept json
// @Produce json
// @Param id path string true "Conflict ID"
// @Param request body ResolveConflictRequest true "Resolution"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/v1/sync/conflicts/{id}/resolve [post]
func HandleResolveConflict(engine SyncEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req ResolveConflictRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Resolve conflict"); err != nil {
			return
		}

		if err := engine.ResolveConflict(r.Context(), id, req.Resolution, req.MergedData); err != nil {
			respondServiceError(w, r, "resolve conflict", err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConflictResolved})
	}
}
