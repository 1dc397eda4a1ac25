package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// bufferPool reduces allocations during JSON encoding
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	// Encode first so an encoding failure can still become a 500
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		http.Error(w, ErrMsgGenericServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error(LogMsgWriteFailed, "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs err and writes the status mapped from its domain error
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, msg := mapServiceError(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgRequestFailed, "operation", opName, "error", err)
	} else {
		log.Warn(LogMsgRequestFailed, "operation", opName, "error", err, "status", status)
	}
	respondError(w, status, msg)
}

// mapServiceError converts domain errors into HTTP status codes and user-facing messages
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrShiftAlreadyOpen):
		return http.StatusConflict, ErrMsgShiftAlreadyOpen
	case errors.Is(err, domain.ErrNoActiveShift):
		return http.StatusNotFound, ErrMsgNoActiveShift
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, ErrMsgInvalidTransition
	case errors.Is(err, domain.ErrShiftClosed):
		return http.StatusConflict, ErrMsgShiftClosed
	case errors.Is(err, domain.ErrConflictNotFound):
		return http.StatusNotFound, ErrMsgConflictNotFound
	case errors.Is(err, domain.ErrInvalidResolution):
		return http.StatusBadRequest, ErrMsgInvalidResolution
	case errors.Is(err, domain.ErrMergeDataRequired):
		return http.StatusBadRequest, ErrMsgMergeDataRequired
	case errors.Is(err, domain.ErrInvalidOpeningCash), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrInvalidOperation):
		return http.StatusUnprocessableEntity, ErrMsgInvalidOperationErr
	case errors.Is(err, domain.ErrReconcileFailed):
		return http.StatusServiceUnavailable, ErrMsgReconcileFailed
	case errors.Is(err, domain.ErrOffline):
		return http.StatusServiceUnavailable, ErrMsgOffline
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrMsgUnauthorized
	case errors.Is(err, domain.ErrRemoteRejected):
		return http.StatusBadGateway, ErrMsgRemoteRejected
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, ErrMsgRecordNotFound
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
