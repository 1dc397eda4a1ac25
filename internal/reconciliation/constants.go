package reconciliation

import (
	"context"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// Log messages
const (
	LogMsgLegacyFallback = "No shift-linked sales, using staff/time-window fallback"
	LogMsgReconciled     = "Shift reconciled"
)

// Error messages
const (
	ErrMsgListShiftSales = "failed to list shift sales"
	ErrMsgListStaffSales = "failed to list staff sales"
)

// SalesReader is the read side of the remote used for reconciliation
type SalesReader interface {
	List(ctx context.Context, resource string, filter repository.Filter) ([]domain.Record, error)
}
