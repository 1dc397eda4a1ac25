package shift

// Local state keys
const (
	stateKeyActiveShiftPrefix = "active_shift:"
)

// Transition kinds, used as metric labels
const (
	KindStart  = "start"
	KindPause  = "pause"
	KindResume = "resume"
	KindEnd    = "end"
)

// Log messages
const (
	LogMsgShiftStarted        = "Shift started"
	LogMsgShiftPaused         = "Shift paused"
	LogMsgShiftResumed        = "Shift resumed"
	LogMsgShiftEnded          = "Shift ended"
	LogMsgRemoteLookupFailed  = "Remote open-shift lookup failed, relying on local snapshot"
	LogMsgReconcileFailed     = "Reconciliation failed, shift left open"
	LogMsgSnapshotWriteFailed = "Failed to persist active shift snapshot"
	LogMsgVarianceAlert       = "Cash variance above threshold"
)

// Error messages
const (
	ErrMsgLoadSnapshot = "failed to load active shift snapshot"
	ErrMsgEncodeShift  = "failed to encode shift"
	ErrMsgWriteShift   = "failed to record shift change"
)
