package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/metrics"
	"github.com/osse101/TillSync_Go/internal/repository"
)

const stateKeyLastOnline = "last_online"

// Log messages
const (
	LogMsgOnline           = "Connectivity restored"
	LogMsgOffline          = "Connectivity lost"
	LogMsgSyncScheduled    = "Sync scheduled after reconnect"
	LogMsgSyncCancelled    = "Pending reconnect sync cancelled"
	LogMsgPersistFailed    = "Failed to persist last-online timestamp"
	LogMsgLoadFailed       = "Failed to load last-online timestamp"
	LogMsgPublishFailed    = "Failed to publish connectivity notice"
	LogMsgProbeUnreachable = "Remote probe failed"
)

// PendingCounter reports how many operations await sync
type PendingCounter interface {
	Len() int
}

// Pinger checks reachability of the remote
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor tracks whether the remote is reachable and wakes the sync engine
// shortly after the terminal comes back online
type Monitor struct {
	mu         sync.Mutex
	online     bool
	lastOnline *time.Time
	timer      *time.Timer

	state    repository.StateStore
	pending  PendingCounter
	bus      event.Bus
	debounce time.Duration
	trigger  func(ctx context.Context)
	now      func() time.Time
}

// NewMonitor creates a monitor that starts offline
func NewMonitor(state repository.StateStore, pending PendingCounter, bus event.Bus, debounce time.Duration) *Monitor {
	return &Monitor{
		state:    state,
		pending:  pending,
		bus:      bus,
		debounce: debounce,
		now:      time.Now,
	}
}

// OnReconnect sets the callback run after the debounce delay when the
// terminal comes back online with work queued
func (m *Monitor) OnReconnect(fn func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trigger = fn
}

// Load restores the persisted last-online timestamp
func (m *Monitor) Load(ctx context.Context) {
	raw, ok, err := m.state.GetState(ctx, stateKeyLastOnline)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgLoadFailed, "error", err)
		return
	}
	if !ok {
		return
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgLoadFailed, "error", err)
		return
	}

	m.mu.Lock()
	m.lastOnline = &t
	m.mu.Unlock()
}

// IsOnline reports the current state
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// LastOnline returns the last time the terminal was seen online
func (m *Monitor) LastOnline() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastOnline == nil {
		return nil
	}
	t := *m.lastOnline
	return &t
}

// Set records an environment signal. Only transitions publish notices; every
// online signal refreshes the last-online timestamp.
func (m *Monitor) Set(ctx context.Context, online bool) {
	log := logger.FromContext(ctx)
	now := m.now().UTC()

	m.mu.Lock()
	changed := m.online != online
	m.online = online
	if online {
		m.lastOnline = &now
	}
	lastOnline := m.lastOnline

	if changed && !online && m.timer != nil {
		m.timer.Stop()
		m.timer = nil
		log.Debug(LogMsgSyncCancelled)
	}
	scheduled := false
	if changed && online && m.trigger != nil && m.pending.Len() > 0 {
		m.schedule(ctx)
		scheduled = true
	}
	m.mu.Unlock()

	if online {
		if err := m.state.SetState(ctx, stateKeyLastOnline, now.Format(time.RFC3339Nano)); err != nil {
			log.Warn(LogMsgPersistFailed, "error", err)
		}
	}
	if !changed {
		return
	}

	if online {
		metrics.Online.Set(1)
		log.Info(LogMsgOnline, "sync_scheduled", scheduled)
	} else {
		metrics.Online.Set(0)
		log.Warn(LogMsgOffline)
	}

	payload := domain.ConnectivityPayload{Online: online}
	if lastOnline != nil {
		payload.LastOnline = *lastOnline
	}
	if m.bus != nil {
		if err := m.bus.Publish(ctx, event.NewConnectivityEvent(payload)); err != nil {
			log.Warn(LogMsgPublishFailed, "error", err)
		}
	}
}

// schedule arms the debounced trigger. Caller holds mu.
func (m *Monitor) schedule(ctx context.Context) {
	if m.timer != nil {
		m.timer.Stop()
	}
	trigger := m.trigger
	triggerCtx := context.WithoutCancel(ctx)

	var t *time.Timer
	t = time.AfterFunc(m.debounce, func() {
		m.mu.Lock()
		current := m.timer == t
		if current {
			m.timer = nil
		}
		m.mu.Unlock()
		if current {
			trigger(triggerCtx)
		}
	})
	m.timer = t
	logger.FromContext(ctx).Debug(LogMsgSyncScheduled, "delay", m.debounce)
}

// Probe pings the remote and records the result. An auth rejection still
// proves the remote is reachable.
func (m *Monitor) Probe(ctx context.Context, p Pinger) bool {
	err := p.Ping(ctx)
	online := err == nil || domain.IsAuthError(err)
	if !online {
		logger.FromContext(ctx).Debug(LogMsgProbeUnreachable, "error", err)
	}
	m.Set(ctx, online)
	return online
}

// Stop cancels any pending reconnect trigger
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
