package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Remote errors
	ErrMsgUnauthorized   = "unauthorized"
	ErrMsgRecordNotFound = "record not found"
	ErrMsgRemoteRejected = "remote rejected write"
	ErrMsgOffline        = "terminal is offline"

	// Shift errors
	ErrMsgShiftAlreadyOpen   = "staff member already has an open shift"
	ErrMsgNoActiveShift      = "no open shift for staff member"
	ErrMsgInvalidTransition  = "invalid shift transition"
	ErrMsgShiftClosed        = "shift is already closed"
	ErrMsgInvalidOpeningCash = "opening cash must not be negative"
	ErrMsgReconcileFailed    = "shift could not be reconciled against confirmed sales"

	// Conflict errors
	ErrMsgConflictNotFound  = "conflict not found"
	ErrMsgInvalidResolution = "invalid conflict resolution"
	ErrMsgMergeDataRequired = "merge resolution requires merged data"

	// Input errors
	ErrMsgInvalidInput     = "invalid input"
	ErrMsgInvalidOperation = "invalid pending operation"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// ErrUnauthorized carries the authentication/authorization failure signature.
	// Any remote adapter must wrap it so the sync engine can pause on it.
	ErrUnauthorized   = errors.New(ErrMsgUnauthorized)
	ErrRecordNotFound = errors.New(ErrMsgRecordNotFound)
	ErrRemoteRejected = errors.New(ErrMsgRemoteRejected)
	ErrOffline        = errors.New(ErrMsgOffline)

	ErrShiftAlreadyOpen   = errors.New(ErrMsgShiftAlreadyOpen)
	ErrNoActiveShift      = errors.New(ErrMsgNoActiveShift)
	ErrInvalidTransition  = errors.New(ErrMsgInvalidTransition)
	ErrShiftClosed        = errors.New(ErrMsgShiftClosed)
	ErrInvalidOpeningCash = errors.New(ErrMsgInvalidOpeningCash)
	// ErrReconcileFailed leaves the shift open so the close can be retried
	ErrReconcileFailed = errors.New(ErrMsgReconcileFailed)

	ErrConflictNotFound  = errors.New(ErrMsgConflictNotFound)
	ErrInvalidResolution = errors.New(ErrMsgInvalidResolution)
	ErrMergeDataRequired = errors.New(ErrMsgMergeDataRequired)

	ErrInvalidInput     = errors.New(ErrMsgInvalidInput)
	ErrInvalidOperation = errors.New(ErrMsgInvalidOperation)
)

// IsAuthError reports whether err carries the authentication failure signature.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
