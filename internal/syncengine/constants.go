package syncengine

import "time"

// Log messages
const (
	LogMsgDrainSkipped         = "Sync drain skipped"
	LogMsgDrainStarted         = "Sync drain started"
	LogMsgDrainFinished        = "Sync drain finished"
	LogMsgOperationSynced      = "Operation synced"
	LogMsgAttemptFailed        = "Sync attempt failed"
	LogMsgOperationFailed      = "Operation failed this cycle, left queued"
	LogMsgOperationQuarantined = "Operation quarantined after repeated failures"
	LogMsgConflictDetected     = "Remote record changed since snapshot, holding for review"
	LogMsgConflictCheckSkipped = "Could not fetch remote record, skipping conflict check"
	LogMsgConflictResolved     = "Conflict resolved"
	LogMsgAuthPaused           = "Authentication failure, sync paused"
	LogMsgRefreshSucceeded     = "Session refreshed, sync resumed"
	LogMsgRefreshFailed        = "Session refresh failed, re-login required"
	LogMsgResumedAfterLogin    = "Sync resumed after re-login"
	LogMsgPublishFailed        = "Failed to publish sync notice"
	LogMsgLedgerLoadFailed     = "Failed to load failure ledger"
	LogMsgLedgerSaveFailed     = "Failed to persist failure ledger"
	LogMsgSnapshotsRebased     = "Later queued updates rebased on confirmed write"
	LogMsgRebaseFailed         = "Failed to rebase queued updates on confirmed write"
)

// Error messages
const (
	ErrMsgLoadLedger   = "failed to load failure ledger"
	ErrMsgSaveLedger   = "failed to save failure ledger"
	ErrMsgRemoveQueued = "failed to remove synced operations"
	ErrMsgApplyResolve = "failed to apply conflict resolution"
)

// refreshTimeout bounds the background session refresh
const refreshTimeout = 30 * time.Second
