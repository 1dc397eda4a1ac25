package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"

	// Service error messages
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgShiftAlreadyOpen    = "This staff member already has an open shift"
	ErrMsgNoActiveShift       = "No open shift for this staff member"
	ErrMsgInvalidTransition   = "That shift action is not allowed right now"
	ErrMsgShiftClosed         = "This shift is already closed"
	ErrMsgConflictNotFound    = "Conflict not found"
	ErrMsgInvalidResolution   = "Resolution must be server, local or merge"
	ErrMsgMergeDataRequired   = "A merge resolution needs the merged record"
	ErrMsgOffline             = "The till is offline. Try again once it reconnects."
	ErrMsgUnauthorized        = "Your session has expired. Please sign in again."
	ErrMsgRemoteRejected      = "The server rejected the change"
	ErrMsgRecordNotFound      = "Record not found"
	ErrMsgInvalidInputError   = "Invalid input"
	ErrMsgInvalidOperationErr = "The change could not be saved because it is malformed"
	ErrMsgReconcileFailed     = "Could not check today's sales for this shift. The shift is still open; try closing it again."
)

// Success messages for API responses
const (
	MsgConnectivityUpdated = "Connectivity updated"
	MsgSessionRenewed      = "Session renewed; sync resumed"
	MsgConflictResolved    = "Conflict resolved"
)

// Log messages
const (
	LogMsgRequestFailed   = "Request failed"
	LogMsgReadinessFailed = "Readiness check failed"
	LogMsgEncodeFailed    = "Failed to encode JSON response"
	LogMsgWriteFailed     = "Failed to write response buffer"
	LogMsgSessionRenewed  = "Session renewed by the till UI"
	LogMsgManualSync      = "Manual sync requested"
	LogMsgConnectivitySet = "Connectivity signal received"
)
