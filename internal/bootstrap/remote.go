package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/TillSync_Go/internal/auth"
	"github.com/osse101/TillSync_Go/internal/config"
	"github.com/osse101/TillSync_Go/internal/database"
	"github.com/osse101/TillSync_Go/internal/database/postgres"
	"github.com/osse101/TillSync_Go/internal/remote"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// RemoteComponents is the system of record selected by REMOTE_MODE
type RemoteComponents struct {
	Remote repository.Remote
	// Sessions is nil for the Postgres remote, which authenticates with its connection string
	Sessions *auth.Client
	Pool     *pgxpool.Pool
}

// SessionProvider returns the sessions as the engine's interface, keeping a
// nil client a nil interface
func (rc RemoteComponents) SessionProvider() repository.SessionProvider {
	if rc.Sessions == nil {
		return nil
	}
	return rc.Sessions
}

// Close releases the remote's connections
func (rc RemoteComponents) Close() {
	if rc.Pool != nil {
		rc.Pool.Close()
	}
}

// SetupRemote builds the remote backend for the configured mode. A Postgres
// remote that cannot be reached at boot still returns a lazily connecting
// pool so the terminal starts offline.
func SetupRemote(ctx context.Context, cfg *config.Config) (RemoteComponents, error) {
	switch cfg.RemoteMode {
	case config.RemoteModeREST:
		sessions := auth.NewClient(cfg.RemoteURL, cfg.RemoteGatewayKey, cfg.AuthRefreshToken)
		slog.Info(LogMsgRemoteREST, "url", cfg.RemoteURL)
		return RemoteComponents{
			Remote:   remote.NewClient(cfg.RemoteURL, cfg.RemoteGatewayKey, sessions),
			Sessions: sessions,
		}, nil

	case config.RemoteModePostgres:
		if err := postgres.Migrate(ctx, cfg.RemoteDBURL); err != nil {
			slog.Warn(LogMsgMigrationFailed, "error", err)
		}
		pool, err := database.NewPool(ctx, cfg.RemoteDBURL, database.DefaultPoolConfig())
		if err != nil {
			return RemoteComponents{}, fmt.Errorf("%s: %w", ErrMsgRemotePool, err)
		}
		slog.Info(LogMsgRemotePostgres)
		return RemoteComponents{
			Remote: postgres.NewRemote(pool),
			Pool:   pool,
		}, nil
	}

	return RemoteComponents{}, fmt.Errorf("%s: %q", ErrMsgUnknownRemoteMode, cfg.RemoteMode)
}
