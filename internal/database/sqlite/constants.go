package sqlite

// Driver and file settings
const (
	DriverName   = "sqlite"
	MigrationDir = "migrations"
)

// State keys owned by the store itself
const (
	StateKeySyncPending = "sync_pending"
)

// Error Messages
const (
	ErrMsgFailedToOpen        = "failed to open local store"
	ErrMsgFailedToMigrate     = "failed to migrate local store"
	ErrMsgFailedToBeginTx     = "failed to begin local transaction"
	ErrMsgFailedToCommitTx    = "failed to commit local transaction"
	ErrMsgFailedToEncodeOp    = "failed to encode pending operation"
	ErrMsgFailedToDecodeOp    = "failed to decode pending operation"
	ErrMsgFailedToQueryQueue  = "failed to query pending operations"
	ErrMsgFailedToWriteQueue  = "failed to write pending operations"
	ErrMsgFailedToQueryLedger = "failed to query failure ledger"
	ErrMsgFailedToWriteLedger = "failed to write failure ledger"
	ErrMsgFailedToReadState   = "failed to read terminal state"
	ErrMsgFailedToWriteState  = "failed to write terminal state"
)

// Log Messages
const (
	LogMsgOpened           = "Local store opened"
	LogMsgMigrationApplied = "Local store migration applied"
	LogMsgRollbackFailed   = "Failed to rollback local transaction"
)
