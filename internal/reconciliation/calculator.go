package reconciliation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// Thresholds decide when a variance raises an alert
type Thresholds struct {
	Alert domain.Amount
	High  domain.Amount
}

// DefaultThresholds returns the stock alert thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		Alert: domain.DefaultVarianceAlertThreshold,
		High:  domain.DefaultVarianceHighThreshold,
	}
}

// Input identifies the shift being closed and the counted drawer
type Input struct {
	ShiftID           string
	StaffID           string
	StartTime         *time.Time
	ActualCashCounted domain.Amount
}

// Calculator computes expected tender totals and the cash variance of a shift
type Calculator struct {
	sales      SalesReader
	thresholds Thresholds
	// legacyCutoff limits the staff/time-window fallback to shifts started
	// before it. Nil leaves the fallback always available.
	legacyCutoff *time.Time
	now          func() time.Time
}

// NewCalculator creates a reconciliation calculator
func NewCalculator(sales SalesReader, thresholds Thresholds, legacyCutoff *time.Time) *Calculator {
	return &Calculator{
		sales:        sales,
		thresholds:   thresholds,
		legacyCutoff: legacyCutoff,
		now:          time.Now,
	}
}

// Reconcile reads the shift's confirmed remote sales and computes its close figures
func (c *Calculator) Reconcile(ctx context.Context, in Input) (domain.ReconciliationResult, error) {
	log := logger.FromContext(ctx)

	sales, legacy, err := c.loadSales(ctx, in)
	if err != nil {
		return domain.ReconciliationResult{}, err
	}
	if legacy {
		log.Warn(LogMsgLegacyFallback, "shift_id", in.ShiftID, "staff_id", in.StaffID, "sales", len(sales))
	}

	result := Compute(sales, in.ActualCashCounted, c.thresholds)
	result.UsedLegacyFallback = legacy
	if result.Alert != nil {
		result.Alert.ShiftID = in.ShiftID
		result.Alert.StaffID = in.StaffID
	}

	log.Info(LogMsgReconciled,
		"shift_id", in.ShiftID,
		"sales", result.SaleCount,
		"expected_cash", result.ExpectedCashTotal,
		"actual_cash", result.ActualCashCounted,
		"variance", result.Variance)
	return result, nil
}

func (c *Calculator) loadSales(ctx context.Context, in Input) ([]domain.Sale, bool, error) {
	byShift := repository.Filter{}.Where(domain.FieldSaleShiftID, repository.OpEq, in.ShiftID)
	records, err := c.sales.List(ctx, domain.ResourceSales, byShift)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", ErrMsgListShiftSales, err)
	}
	if len(records) > 0 || !c.legacyAllowed(in.StartTime) {
		sales, err := domain.SalesFromRecords(records)
		return sales, false, err
	}

	byWindow := repository.Filter{}.
		Where(domain.FieldSaleStaffID, repository.OpEq, in.StaffID).
		Where(domain.FieldCreatedAt, repository.OpGte, in.StartTime.UTC().Format(time.RFC3339Nano)).
		Where(domain.FieldCreatedAt, repository.OpLte, c.now().UTC().Format(time.RFC3339Nano))
	records, err = c.sales.List(ctx, domain.ResourceSales, byWindow)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", ErrMsgListStaffSales, err)
	}
	sales, err := domain.SalesFromRecords(records)
	return sales, len(sales) > 0, err
}

func (c *Calculator) legacyAllowed(start *time.Time) bool {
	if start == nil || start.IsZero() {
		return false
	}
	return c.legacyCutoff == nil || start.Before(*c.legacyCutoff)
}

// Compute aggregates sales by tender and derives the variance against counted cash.
// A sale with no payment breakdown counts entirely as cash.
func Compute(sales []domain.Sale, actualCash domain.Amount, thresholds Thresholds) domain.ReconciliationResult {
	result := domain.ReconciliationResult{
		SaleCount:         len(sales),
		ActualCashCounted: actualCash,
	}

	for _, sale := range sales {
		result.ExpectedSalesTotal += sale.Total

		if len(sale.Payments) == 0 {
			result.ExpectedCashTotal += sale.Total
			continue
		}
		for _, p := range sale.Payments {
			switch strings.ToLower(p.Method) {
			case domain.TenderCash:
				result.ExpectedCashTotal += p.Amount
			case domain.TenderPos:
				result.ExpectedPosTotal += p.Amount
			case domain.TenderTransfer:
				result.ExpectedTransferTotal += p.Amount
			default:
				result.ExpectedOtherTotal += p.Amount
			}
		}
	}

	result.Variance = actualCash - result.ExpectedCashTotal
	result.Shortage = result.Variance < 0

	if abs := result.Variance.Abs(); abs > thresholds.Alert {
		severity := domain.SeverityMedium
		if abs > thresholds.High {
			severity = domain.SeverityHigh
		}
		result.Alert = &domain.VarianceAlert{
			Expected: result.ExpectedCashTotal,
			Actual:   actualCash,
			Variance: result.Variance,
			Severity: severity,
		}
	}
	return result
}
