package reconciliation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// MockSalesReader is a mock implementation of SalesReader
type MockSalesReader struct {
	mock.Mock
}

func (m *MockSalesReader) List(ctx context.Context, resource string, filter repository.Filter) ([]domain.Record, error) {
	args := m.Called(ctx, resource, filter)
	records, _ := args.Get(0).([]domain.Record)
	return records, args.Error(1)
}

func byShift(f repository.Filter) bool {
	return len(f.Conditions) == 1 && f.Conditions[0].Field == domain.FieldSaleShiftID
}

func byWindow(f repository.Filter) bool {
	return len(f.Conditions) == 3 && f.Conditions[0].Field == domain.FieldSaleStaffID
}

// tenSplit is one ₦10,000 sale paid 6,000 cash, 3,000 pos and 1,000 transfer
func tenSplit() []domain.Sale {
	return []domain.Sale{{
		ID:      "sale-1",
		StaffID: "staff-1",
		Total:   10000,
		Payments: []domain.TenderPayment{
			{Method: domain.TenderCash, Amount: 6000},
			{Method: domain.TenderPos, Amount: 3000},
			{Method: domain.TenderTransfer, Amount: 1000},
		},
	}}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		sales        []domain.Sale
		actual       domain.Amount
		wantCash     domain.Amount
		wantVariance domain.Amount
		wantSeverity domain.Severity
		wantShortage bool
	}{
		{
			name:         "small shortage recorded without alert",
			sales:        tenSplit(),
			actual:       5500,
			wantCash:     6000,
			wantVariance: -500,
			wantShortage: true,
		},
		{
			name:         "overage above threshold is medium",
			sales:        tenSplit(),
			actual:       8200,
			wantCash:     6000,
			wantVariance: 2200,
			wantSeverity: domain.SeverityMedium,
		},
		{
			name:         "large shortage is high",
			sales:        tenSplit(),
			actual:       0,
			wantCash:     6000,
			wantVariance: -6000,
			wantSeverity: domain.SeverityHigh,
			wantShortage: true,
		},
		{
			name:         "exactly at threshold does not alert",
			sales:        tenSplit(),
			actual:       7000,
			wantCash:     6000,
			wantVariance: 1000,
		},
		{
			name:         "sale without breakdown counts as cash",
			sales:        []domain.Sale{{ID: "s", Total: 2500}},
			actual:       2500,
			wantCash:     2500,
			wantVariance: 0,
		},
		{
			name:         "no sales",
			actual:       0,
			wantCash:     0,
			wantVariance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Compute(tt.sales, tt.actual, DefaultThresholds())

			assert.Equal(t, tt.wantCash, result.ExpectedCashTotal)
			assert.Equal(t, tt.wantVariance, result.Variance)
			assert.Equal(t, tt.wantShortage, result.Shortage)
			if tt.wantSeverity == "" {
				assert.Nil(t, result.Alert)
			} else {
				require.NotNil(t, result.Alert)
				assert.Equal(t, tt.wantSeverity, result.Alert.Severity)
				assert.Equal(t, tt.wantVariance, result.Alert.Variance)
			}
		})
	}
}

func TestCompute_TenderBuckets(t *testing.T) {
	sales := append(tenSplit(),
		domain.Sale{ID: "s2", Total: 500},
		domain.Sale{ID: "s3", Total: 700, Payments: []domain.TenderPayment{{Method: "voucher", Amount: 700}}},
	)

	result := Compute(sales, 6500, DefaultThresholds())

	assert.Equal(t, 3, result.SaleCount)
	assert.Equal(t, domain.Amount(11200), result.ExpectedSalesTotal)
	assert.Equal(t, domain.Amount(6500), result.ExpectedCashTotal)
	assert.Equal(t, domain.Amount(3000), result.ExpectedPosTotal)
	assert.Equal(t, domain.Amount(1000), result.ExpectedTransferTotal)
	assert.Equal(t, domain.Amount(700), result.ExpectedOtherTotal)
}

func TestReconcile_ShiftLinkedSales(t *testing.T) {
	ctx := context.Background()
	reader := new(MockSalesReader)
	reader.On("List", ctx, domain.ResourceSales, mock.MatchedBy(byShift)).Return([]domain.Record{
		{"id": "sale-1", "staff_id": "staff-1", "total": "10000.00", "payments": []any{
			map[string]any{"method": "cash", "amount": 6000.0},
			map[string]any{"method": "POS", "amount": 3000.0},
			map[string]any{"method": "transfer", "amount": 1000.0},
		}},
	}, nil)

	calc := NewCalculator(reader, DefaultThresholds(), nil)
	start := time.Now().Add(-time.Hour)

	// ACT
	result, err := calc.Reconcile(ctx, Input{ShiftID: "shift-1", StaffID: "staff-1", StartTime: &start, ActualCashCounted: 8200})

	// ASSERT
	require.NoError(t, err)
	assert.False(t, result.UsedLegacyFallback)
	assert.Equal(t, domain.Amount(10000), result.ExpectedSalesTotal)
	assert.Equal(t, domain.Amount(3000), result.ExpectedPosTotal)
	require.NotNil(t, result.Alert)
	assert.Equal(t, "shift-1", result.Alert.ShiftID)
	assert.Equal(t, "staff-1", result.Alert.StaffID)
	reader.AssertNumberOfCalls(t, "List", 1)
}

func TestReconcile_LegacyFallback(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

	t.Run("used when no linked sales", func(t *testing.T) {
		reader := new(MockSalesReader)
		reader.On("List", ctx, domain.ResourceSales, mock.MatchedBy(byShift)).Return([]domain.Record{}, nil)
		reader.On("List", ctx, domain.ResourceSales, mock.MatchedBy(byWindow)).Return([]domain.Record{
			{"id": "old", "staff_id": "staff-1", "total": 1200},
		}, nil)

		calc := NewCalculator(reader, DefaultThresholds(), nil)
		result, err := calc.Reconcile(ctx, Input{ShiftID: "shift-1", StaffID: "staff-1", StartTime: &start, ActualCashCounted: 1200})

		require.NoError(t, err)
		assert.True(t, result.UsedLegacyFallback)
		assert.Equal(t, domain.Amount(1200), result.ExpectedCashTotal)
	})

	t.Run("disabled for shifts after cutoff", func(t *testing.T) {
		reader := new(MockSalesReader)
		reader.On("List", ctx, domain.ResourceSales, mock.MatchedBy(byShift)).Return([]domain.Record{}, nil)

		cutoff := start.Add(-time.Hour)
		calc := NewCalculator(reader, DefaultThresholds(), &cutoff)
		result, err := calc.Reconcile(ctx, Input{ShiftID: "shift-1", StaffID: "staff-1", StartTime: &start})

		require.NoError(t, err)
		assert.False(t, result.UsedLegacyFallback)
		assert.Equal(t, 0, result.SaleCount)
		reader.AssertNumberOfCalls(t, "List", 1)
	})

	t.Run("skipped without start time", func(t *testing.T) {
		reader := new(MockSalesReader)
		reader.On("List", ctx, domain.ResourceSales, mock.MatchedBy(byShift)).Return([]domain.Record{}, nil)

		calc := NewCalculator(reader, DefaultThresholds(), nil)
		_, err := calc.Reconcile(ctx, Input{ShiftID: "shift-1", StaffID: "staff-1"})

		require.NoError(t, err)
		reader.AssertNumberOfCalls(t, "List", 1)
	})
}

func TestReconcile_ListError(t *testing.T) {
	ctx := context.Background()
	reader := new(MockSalesReader)
	reader.On("List", ctx, domain.ResourceSales, mock.Anything).Return(nil, domain.ErrUnauthorized)

	calc := NewCalculator(reader, DefaultThresholds(), nil)
	_, err := calc.Reconcile(ctx, Input{ShiftID: "s"})

	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}
