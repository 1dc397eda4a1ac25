package domain

import "time"

// ConnectivityPayload is carried by connectivity.* events
type ConnectivityPayload struct {
	Online     bool      `json:"online"`
	LastOnline time.Time `json:"last_online"`
	Message    string    `json:"message"`
}

// SyncCompletedPayload is carried by sync.completed and sync.partial events
type SyncCompletedPayload struct {
	Summary SyncSummary `json:"summary"`
	Message string      `json:"message"`
}

// OperationQuarantinedPayload is carried by sync.operation_quarantined events
type OperationQuarantinedPayload struct {
	Operation PendingOperation `json:"operation"`
	Attempts  int              `json:"attempts"`
	LastError string           `json:"last_error"`
	Message   string           `json:"message"`
}

// ConflictPayload is carried by sync.conflict_* events
type ConflictPayload struct {
	ConflictID string     `json:"conflict_id"`
	Resource   string     `json:"resource"`
	Resolution Resolution `json:"resolution,omitempty"`
	Message    string     `json:"message"`
}

// AuthPayload is carried by sync.auth_* and sync.reauth_required events
type AuthPayload struct {
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// VarianceAlertPayload is carried by shift.variance_alert events
type VarianceAlertPayload struct {
	Alert   VarianceAlert `json:"alert"`
	Message string        `json:"message"`
}
