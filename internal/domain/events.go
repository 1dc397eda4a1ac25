package domain

// Event type constants used across the application for event bus subscriptions,
// user-visible notices and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "sync.completed")
const (
	// EventTypeConnectivityOnline is published when the terminal regains reachability
	EventTypeConnectivityOnline = "connectivity.online"

	// EventTypeConnectivityOffline is published when the terminal loses reachability
	EventTypeConnectivityOffline = "connectivity.offline"

	// EventTypeSyncCompleted is published when a drain cycle emptied every queued operation it saw
	EventTypeSyncCompleted = "sync.completed"

	// EventTypeSyncPartial is published when a drain cycle left operations queued
	EventTypeSyncPartial = "sync.partial"

	// EventTypeOperationQuarantined is published when an operation is dropped after its retry ceiling
	EventTypeOperationQuarantined = "sync.operation_quarantined"

	// EventTypeConflictDetected is published when an update is moved into the conflict store
	EventTypeConflictDetected = "sync.conflict_detected"

	// EventTypeConflictResolved is published when a conflict is resolved
	EventTypeConflictResolved = "sync.conflict_resolved"

	// EventTypeAuthPaused is published when an auth failure pauses the sync engine
	EventTypeAuthPaused = "sync.auth_paused"

	// EventTypeAuthResumed is published when a refresh or re-login clears the pause
	EventTypeAuthResumed = "sync.auth_resumed"

	// EventTypeReauthRequired is published when the background refresh failed
	EventTypeReauthRequired = "sync.reauth_required"

	// EventTypeVarianceAlert is published when a shift close exceeds the variance threshold
	EventTypeVarianceAlert = "shift.variance_alert"
)
