package repository

import (
	"context"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// Remote is the system of record as consumed by the sync engine and the
// shift manager. Implementations wrap domain.ErrUnauthorized for credential
// failures and domain.ErrRecordNotFound for missing rows.
type Remote interface {
	Fetch(ctx context.Context, resource, id string) (domain.Record, error)
	Insert(ctx context.Context, resource string, data domain.Record) (domain.Record, error)
	Update(ctx context.Context, resource, id string, patch domain.Record) (domain.Record, error)
	Delete(ctx context.Context, resource, id string) error
	List(ctx context.Context, resource string, filter Filter) ([]domain.Record, error)
	// CompleteSale runs the transactional sale endpoint (sale row, payments,
	// stock movements) for a sales create.
	CompleteSale(ctx context.Context, payload domain.Record) (domain.Record, error)
	Ping(ctx context.Context) error
}

// SessionProvider exposes the current user session and refreshes it
type SessionProvider interface {
	Session(ctx context.Context) (domain.Session, error)
	Refresh(ctx context.Context) (domain.Session, error)
}

// FilterOp is a comparison used in a list filter
type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpGte FilterOp = "gte"
	OpLte FilterOp = "lte"
	OpIn  FilterOp = "in"
)

// Condition is one predicate of a list filter
type Condition struct {
	Field string
	Op    FilterOp
	Value any
}

// Filter narrows a List call. Conditions are ANDed.
type Filter struct {
	Conditions []Condition
	OrderBy    string
	Descending bool
	Limit      int
}

// Where appends a condition and returns the filter for chaining
func (f Filter) Where(field string, op FilterOp, value any) Filter {
	f.Conditions = append(append([]Condition(nil), f.Conditions...), Condition{Field: field, Op: op, Value: value})
	return f
}
