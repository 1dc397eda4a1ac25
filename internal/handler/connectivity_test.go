package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/TillSync_Go/internal/domain"
)

type recordingMonitor struct {
	calls []bool
}

func (m *recordingMonitor) Set(_ context.Context, online bool) { m.calls = append(m.calls, online) }

type recordingSessions struct {
	session domain.Session
	refresh string
}

func (s *recordingSessions) SetSession(_ context.Context, session domain.Session, refreshToken string) {
	s.session = session
	s.refresh = refreshToken
}

func TestHandleSetConnectivity(t *testing.T) {
	monitor := &recordingMonitor{}

	w := postJSON(t, HandleSetConnectivity(monitor), "/api/v1/connectivity", map[string]bool{"online": false})
	assert.Equal(t, http.StatusOK, w.Code)

	// online is required so a missing field is not read as offline
	w = postJSON(t, HandleSetConnectivity(monitor), "/api/v1/connectivity", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []bool{false}, monitor.calls)
}

func TestHandleSessionRenewed(t *testing.T) {
	sessions := &recordingSessions{}
	engine := &MockSyncEngine{}
	engine.On("ResumeAfterLogin", mock.Anything).Return()
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	w := postJSON(t, HandleSessionRenewed(sessions, engine), "/api/v1/session/renewed", SessionRenewedRequest{
		AccessToken: "new-token", RefreshToken: "r2", UserID: "u1", ExpiresAt: expires,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new-token", sessions.session.AccessToken)
	assert.True(t, expires.Equal(sessions.session.ExpiresAt))
	assert.Equal(t, "r2", sessions.refresh)
	engine.AssertExpectations(t)

	w = postJSON(t, HandleSessionRenewed(sessions, &MockSyncEngine{}), "/api/v1/session/renewed", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
