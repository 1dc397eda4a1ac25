package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/TillSync_Go/internal/logger"
)

// PoolConfig sizes the connection pool to the system-of-record database
type PoolConfig struct {
	MaxConns int
	MaxIdle  time.Duration
	MaxLife  time.Duration
}

// DefaultPoolConfig is sized for one terminal: a drain and a few UI reads at a time
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns: DefaultMaxConnections,
		MaxIdle:  DefaultMaxIdleTime,
		MaxLife:  DefaultMaxLifetime,
	}
}

// NewPool creates a new PostgreSQL connection pool
func NewPool(ctx context.Context, connString string, cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToParseConnString, err)
	}

	maxConns := cfg.MaxConns
	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	if maxConns < DefaultMinConnections {
		maxConns = DefaultMinConnections
	}
	config.MaxConns = int32(maxConns)
	config.MinConns = DefaultMinConnections
	config.MaxConnLifetime = cfg.MaxLife
	config.MaxConnIdleTime = cfg.MaxIdle

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreatePool, err)
	}

	// An unreachable remote is expected on an offline terminal, so a failed
	// ping is reported but the lazily-connecting pool is still returned.
	if err := pool.Ping(ctx); err != nil {
		logger.FromContext(ctx).Warn(LogMsgRemoteDatabaseUnreachable, "error", err)
		return pool, nil
	}

	logger.FromContext(ctx).Info(LogMsgSuccessfullyConnectedToDatabase)
	return pool, nil
}
