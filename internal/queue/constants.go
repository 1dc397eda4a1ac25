package queue

// Log messages
const (
	LogMsgQueueLoaded      = "Pending operation queue loaded"
	LogMsgOperationQueued  = "Operation queued"
	LogMsgOperationsRemove = "Confirmed operations removed from queue"
	LogMsgQueueCleared     = "Pending operation queue cleared"
	LogMsgOperationInvalid = "Rejected invalid operation"
	LogMsgSnapshotsRebased = "Queued snapshots moved to confirmed write"
)

// Error messages
const (
	ErrMsgLoadQueue   = "failed to load pending operations"
	ErrMsgAppend      = "failed to persist pending operation"
	ErrMsgRemove      = "failed to remove confirmed operations"
	ErrMsgClear       = "failed to clear pending operations"
	ErrMsgDuplicateID = "queue entry id already queued"
	ErrMsgRebase      = "failed to rebase queued snapshots"
)
