package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// ConnectivitySetter receives the environment's online/offline signal
type ConnectivitySetter interface {
	Set(ctx context.Context, online bool)
}

// SessionSetter installs a renewed user session
type SessionSetter interface {
	SetSession(ctx context.Context, session domain.Session, refreshToken string)
}

// ConnectivityRequest is the OS/network hook's report
type ConnectivityRequest struct {
	Online *bool `json:"online" validate:"required"`
}

// SessionRenewedRequest carries the credentials of a fresh sign-in
type SessionRenewedRequest struct {
	AccessToken  string    `json:"access_token" validate:"required"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id,omitempty" validate:"max=100"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HandleSetConnectivity feeds the connectivity monitor
// @Summary Report connectivity
// @Tags connectivity
// @Accept json
// @Produce json
// @Param request body ConnectivityRequest true "Online state"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/connectivity [post]
func HandleSetConnectivity(monitor ConnectivitySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConnectivityRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Set connectivity"); err != nil {
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgConnectivitySet, "online", *req.Online)
		// The reconnect trigger outlives this request
		monitor.Set(context.WithoutCancel(r.Context()), *req.Online)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConnectivityUpdated})
	}
}

// HandleSessionRenewed installs the new session and lifts an auth pause
// @Summary Session renewed
// @Description Install the session from an interactive sign-in and resume a paused sync
// @Tags connectivity
// @Accept json
// @Produce json
// @Param request body SessionRenewedRequest true "New session"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/session/renewed [post]
func HandleSessionRenewed(sessions SessionSetter, engine SyncEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SessionRenewedRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Session renewed"); err != nil {
			return
		}

		sessions.SetSession(r.Context(), domain.Session{
			AccessToken: req.AccessToken,
			UserID:      req.UserID,
			ExpiresAt:   req.ExpiresAt,
		}, req.RefreshToken)
		engine.ResumeAfterLogin(r.Context())

		logger.FromContext(r.Context()).Info(LogMsgSessionRenewed, "user_id", req.UserID)
		respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgSessionRenewed})
	}
}
