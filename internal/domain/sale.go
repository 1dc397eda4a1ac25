package domain

import "time"

// Tender method names as recorded on sale payments
const (
	TenderCash     = "cash"
	TenderPos      = "pos"
	TenderTransfer = "transfer"
)

// TenderPayment is one leg of a sale's payment breakdown
type TenderPayment struct {
	Method string `json:"method"`
	Amount Amount `json:"amount"`
}

// Sale is the confirmed remote read model of a completed sale
type Sale struct {
	ID        string          `json:"id"`
	ShiftID   *string         `json:"shift_id,omitempty"`
	StaffID   string          `json:"staff_id"`
	Total     Amount          `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Payments  []TenderPayment `json:"payments,omitempty"`
}

// SalesFromRecords decodes remote sale rows
func SalesFromRecords(records []Record) ([]Sale, error) {
	sales := make([]Sale, 0, len(records))
	for _, r := range records {
		var s Sale
		if err := r.Decode(&s); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

// Severity of a cash variance alert
type Severity string

const (
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// VarianceAlert is raised when counted cash diverges from the expectation
type VarianceAlert struct {
	ShiftID  string   `json:"shift_id"`
	StaffID  string   `json:"staff_id"`
	Expected Amount   `json:"expected"`
	Actual   Amount   `json:"actual"`
	Variance Amount   `json:"variance"`
	Severity Severity `json:"severity"`
}

// ReconciliationResult is the tender breakdown and variance of a shift close
type ReconciliationResult struct {
	SaleCount             int            `json:"sale_count"`
	UsedLegacyFallback    bool           `json:"used_legacy_fallback"`
	ExpectedSalesTotal    Amount         `json:"expected_sales_total"`
	ExpectedCashTotal     Amount         `json:"expected_cash_total"`
	ExpectedPosTotal      Amount         `json:"expected_pos_total"`
	ExpectedTransferTotal Amount         `json:"expected_transfer_total"`
	ExpectedOtherTotal    Amount         `json:"expected_other_total"`
	ActualCashCounted     Amount         `json:"actual_cash_counted"`
	Variance              Amount         `json:"variance"`
	Shortage              bool           `json:"shortage"`
	Alert                 *VarianceAlert `json:"alert,omitempty"`
}
