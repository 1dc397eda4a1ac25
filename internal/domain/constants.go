package domain

// Resource names understood by the remote system of record
const (
	ResourceSales     = "sales"
	ResourceShifts    = "shifts"
	ResourceInventory = "inventory"
)

// Record field names shared by every remote collection
const (
	FieldID        = "id"
	FieldUpdatedAt = "updated_at"
	FieldCreatedAt = "created_at"
)

// Sale record field names
const (
	FieldSaleShiftID  = "shift_id"
	FieldSaleStaffID  = "staff_id"
	FieldSaleTotal    = "total"
	FieldSalePayments = "payments"
	FieldPayMethod    = "method"
	FieldPayAmount    = "amount"
)

// Shift record field names
const (
	FieldShiftStaffID               = "staff_id"
	FieldShiftType                  = "shift_type"
	FieldShiftStatus                = "status"
	FieldShiftStartTime             = "start_time"
	FieldShiftEndTime               = "end_time"
	FieldShiftPausedAt              = "paused_at"
	FieldShiftOpeningCash           = "opening_cash"
	FieldShiftActualCashCounted     = "actual_cash_counted"
	FieldShiftExpectedCashTotal     = "expected_cash_total"
	FieldShiftExpectedPosTotal      = "expected_pos_total"
	FieldShiftExpectedTransferTotal = "expected_transfer_total"
	FieldShiftExpectedSalesTotal    = "expected_sales_total"
	FieldShiftCashVariance          = "cash_variance"
	FieldShiftNotes                 = "notes"
	FieldShiftVarianceReason        = "variance_reason"
)

// Sync engine limits
const (
	// MaxSyncAttempts is the number of consecutive failed drain cycles after which
	// an operation is quarantined.
	MaxSyncAttempts = 5

	// AttemptsPerCycle is the number of write attempts made for one operation in a
	// single drain cycle.
	AttemptsPerCycle = 3
)

// Reconciliation thresholds (currency-unit agnostic)
const (
	DefaultVarianceAlertThreshold = 1000
	DefaultVarianceHighThreshold  = 5000
)
