package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/TillSync_Go/internal/connectivity"
	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/repository"
	"github.com/osse101/TillSync_Go/internal/scheduler"
	"github.com/osse101/TillSync_Go/internal/server"
	"github.com/osse101/TillSync_Go/internal/sse"
	"github.com/osse101/TillSync_Go/internal/syncengine"
	"github.com/osse101/TillSync_Go/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	Pool               *worker.Pool
	Monitor            *connectivity.Monitor
	Engine             *syncengine.Engine
	Hub                *sse.Hub
	ResilientPublisher *event.ResilientPublisher
	Remote             RemoteComponents
	Local              repository.LocalStore
}

// GracefulShutdown stops the components in dependency order:
// 1. HTTP server (stop accepting new requests)
// 2. Scheduler, worker pool and reconnect timer (no new drains)
// 3. Sync engine (wait for a pending session refresh)
// 4. Notice stream and event publisher (flush pending events)
// 5. Remote connections and the local store
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Pool != nil {
		c.Pool.Stop()
	}
	if c.Monitor != nil {
		c.Monitor.Stop()
	}

	if c.Engine != nil {
		if err := c.Engine.Shutdown(ctx); err != nil {
			slog.Error(LogMsgEngineShutdownFailed, "error", err)
		}
	}

	if c.Hub != nil {
		c.Hub.Stop()
	}

	if c.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := c.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	c.Remote.Close()

	if c.Local != nil {
		if err := c.Local.Close(); err != nil {
			slog.Error(LogMsgLocalStoreCloseFailed, "error", err)
		}
	}

	slog.Info(LogMsgServerStopped)
}
