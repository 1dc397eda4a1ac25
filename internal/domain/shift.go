package domain

import "time"

// ShiftStatus is the lifecycle state of a staff shift
type ShiftStatus string

const (
	ShiftActive ShiftStatus = "active"
	ShiftPaused ShiftStatus = "paused"
	ShiftClosed ShiftStatus = "closed"
)

// ShiftType is derived from the local time of day a shift starts
type ShiftType string

const (
	ShiftMorning   ShiftType = "morning"
	ShiftAfternoon ShiftType = "afternoon"
	ShiftEvening   ShiftType = "evening"
	ShiftNight     ShiftType = "night"
)

// ShiftTypeAt buckets a start time: morning [05,12), afternoon [12,17),
// evening [17,22), night otherwise
func ShiftTypeAt(t time.Time) ShiftType {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return ShiftMorning
	case h >= 12 && h < 17:
		return ShiftAfternoon
	case h >= 17 && h < 22:
		return ShiftEvening
	default:
		return ShiftNight
	}
}

// StaffShift is a bounded duty session for one staff member
type StaffShift struct {
	ID                    string      `json:"id"`
	StaffID               string      `json:"staff_id"`
	ShiftType             ShiftType   `json:"shift_type"`
	Status                ShiftStatus `json:"status"`
	StartTime             time.Time   `json:"start_time"`
	EndTime               *time.Time  `json:"end_time,omitempty"`
	PausedAt              *time.Time  `json:"paused_at,omitempty"`
	OpeningCash           Amount      `json:"opening_cash"`
	ActualCashCounted     *Amount     `json:"actual_cash_counted,omitempty"`
	ExpectedCashTotal     *Amount     `json:"expected_cash_total,omitempty"`
	ExpectedPosTotal      *Amount     `json:"expected_pos_total,omitempty"`
	ExpectedTransferTotal *Amount     `json:"expected_transfer_total,omitempty"`
	ExpectedSalesTotal    *Amount     `json:"expected_sales_total,omitempty"`
	CashVariance          *Amount     `json:"cash_variance,omitempty"`
	Notes                 *string     `json:"notes,omitempty"`
	VarianceReason        *string     `json:"variance_reason,omitempty"`
	UpdatedAt             *time.Time  `json:"updated_at,omitempty"`
}

// IsOpen reports whether the shift is active or paused
func (s StaffShift) IsOpen() bool {
	return s.Status == ShiftActive || s.Status == ShiftPaused
}

// CanPause reports whether pause is legal from the current state
func (s StaffShift) CanPause() bool {
	return s.Status == ShiftActive
}

// CanResume reports whether resume is legal from the current state
func (s StaffShift) CanResume() bool {
	return s.Status == ShiftPaused
}

// CanEnd reports whether end is legal from the current state
func (s StaffShift) CanEnd() bool {
	return s.IsOpen()
}

// ShiftFromRecord decodes a remote shift row
func ShiftFromRecord(r Record) (StaffShift, error) {
	var s StaffShift
	err := r.Decode(&s)
	return s, err
}

// EndShiftInput carries the close-out figures entered by staff
type EndShiftInput struct {
	StaffID           string  `json:"staff_id" validate:"required"`
	ActualCashCounted Amount  `json:"actual_cash_counted" validate:"min=0"`
	Notes             *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	VarianceReason    *string `json:"variance_reason,omitempty" validate:"omitempty,max=500"`
}

// EndShiftResult is what a close reports back to the caller
type EndShiftResult struct {
	Shift          StaffShift            `json:"shift"`
	Queued         bool                  `json:"queued"`
	Reconciliation *ReconciliationResult `json:"reconciliation,omitempty"`
}

// ShiftMutationResult reports a start/pause/resume outcome
type ShiftMutationResult struct {
	Shift  StaffShift `json:"shift"`
	Queued bool       `json:"queued"`
}
