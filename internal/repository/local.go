package repository

import (
	"context"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// QueueStore persists the ordered pending operation list together with the
// derived sync-pending flag
type QueueStore interface {
	LoadQueue(ctx context.Context) ([]domain.PendingOperation, error)
	AppendOperation(ctx context.Context, op domain.PendingOperation) error
	RemoveOperations(ctx context.Context, queueEntryIDs []string) error
	ReplaceSnapshots(ctx context.Context, snapshots map[string]domain.Record) error
	ClearQueue(ctx context.Context) error
	SyncPending(ctx context.Context) (bool, error)
}

// LedgerStore persists consecutive failure counts keyed by queue entry id
type LedgerStore interface {
	LoadLedger(ctx context.Context) (map[string]int, error)
	SaveLedger(ctx context.Context, ledger map[string]int) error
}

// StateStore is a small key/value store for terminal state that must survive restarts
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool, error)
	SetState(ctx context.Context, key, value string) error
	DeleteState(ctx context.Context, key string) error
}

// LocalStore is the full durable local state of a terminal
type LocalStore interface {
	QueueStore
	LedgerStore
	StateStore
	Ping(ctx context.Context) error
	Close() error
}
