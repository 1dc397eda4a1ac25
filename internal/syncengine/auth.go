package syncengine

import (
	"context"

	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/metrics"
)

// pauseForAuth enters the auth-paused state and starts one background refresh.
// Repeated failures while already paused are ignored.
func (e *Engine) pauseForAuth(ctx context.Context, cause error) {
	e.mu.Lock()
	if e.authPaused {
		e.mu.Unlock()
		return
	}
	e.authPaused = true
	e.needsLogin = false
	e.mu.Unlock()

	metrics.AuthPauses.Inc()
	logger.FromContext(ctx).Warn(LogMsgAuthPaused, "error", cause)
	e.publish(ctx, event.NewAuthPausedEvent(cause.Error()))

	refreshCtx := context.WithoutCancel(ctx)
	e.refreshWG.Add(1)
	go func() {
		defer e.refreshWG.Done()
		e.refreshSession(refreshCtx)
	}()
}

func (e *Engine) refreshSession(ctx context.Context) {
	log := logger.FromContext(ctx)

	if e.sessions == nil {
		e.requireLogin(ctx, "no session provider")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if _, err := e.sessions.Refresh(ctx); err != nil {
		log.Warn(LogMsgRefreshFailed, "error", err)
		e.requireLogin(ctx, err.Error())
		return
	}

	e.mu.Lock()
	e.authPaused = false
	e.needsLogin = false
	e.mu.Unlock()

	log.Info(LogMsgRefreshSucceeded)
	e.publish(ctx, event.NewAuthResumedEvent())
}

func (e *Engine) requireLogin(ctx context.Context, reason string) {
	e.mu.Lock()
	e.needsLogin = true
	e.mu.Unlock()
	e.publish(ctx, event.NewReauthRequiredEvent(reason))
}

// ResumeAfterLogin clears the auth pause once the user has signed in again
func (e *Engine) ResumeAfterLogin(ctx context.Context) {
	e.mu.Lock()
	wasPaused := e.authPaused
	e.authPaused = false
	e.needsLogin = false
	e.mu.Unlock()

	if wasPaused {
		logger.FromContext(ctx).Info(LogMsgResumedAfterLogin)
		e.publish(ctx, event.NewAuthResumedEvent())
	}
}
