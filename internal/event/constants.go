package event

import (
	"time"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// Event schema versioning
const (
	// EventSchemaVersion is the current event schema version
	EventSchemaVersion = "1.0"
)

// Notice event types
const (
	ConnectivityOnline   Type = domain.EventTypeConnectivityOnline
	ConnectivityOffline  Type = domain.EventTypeConnectivityOffline
	SyncCompleted        Type = domain.EventTypeSyncCompleted
	SyncPartial          Type = domain.EventTypeSyncPartial
	OperationQuarantined Type = domain.EventTypeOperationQuarantined
	ConflictDetected     Type = domain.EventTypeConflictDetected
	ConflictResolved     Type = domain.EventTypeConflictResolved
	AuthPaused           Type = domain.EventTypeAuthPaused
	AuthResumed          Type = domain.EventTypeAuthResumed
	ReauthRequired       Type = domain.EventTypeReauthRequired
	VarianceAlert        Type = domain.EventTypeVarianceAlert
)

// NoticeTypes lists every user-visible notice, in the order the UI documents them
var NoticeTypes = []Type{
	ConnectivityOnline,
	ConnectivityOffline,
	SyncCompleted,
	SyncPartial,
	OperationQuarantined,
	ConflictDetected,
	ConflictResolved,
	AuthPaused,
	AuthResumed,
	ReauthRequired,
	VarianceAlert,
}

// Retry configuration constants
const (
	// RetryQueueBufferSize is the buffer size for the retry queue
	RetryQueueBufferSize = 1000
)

// Dead letter file configuration
const (
	// DeadLetterFilePermissions is the file permission mode for dead-letter files
	DeadLetterFilePermissions = 0644
)

// Log message constants
const (
	LogMsgEventPublishFailed    = "Event publish failed, queuing for retry"
	LogMsgRetryQueueFull        = "Retry queue full, event dropped to dead-letter"
	LogMsgDeadLetterWriteFailed = "Failed to write to dead letter"
	LogMsgEventRetryExhausted   = "Event retry exhausted, writing to dead-letter"
	LogMsgEventRetryFailed      = "Event retry failed, scheduling next attempt"
	LogMsgEventRetrySucceeded   = "Event retry succeeded"
	LogMsgQueueDrainedShutdown  = "Drained retry queue during shutdown"
	LogMsgShutdownTimeout       = "Resilient publisher shutdown timed out"
	LogMsgEventDeadLettered     = "Event dead-lettered"

	// Log message for handler errors
	LogMsgHandlerErrorFormat = "encountered %d errors while handling event %s: %v"
)

// CalculateRetryDelay calculates the exponential backoff delay for retry attempts.
// Formula: baseDelay * 2^(attempt-1), so 2s, 4s, 8s, 16s, 32s with the defaults.
func CalculateRetryDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return baseDelay * time.Duration(1<<(attempt-1))
}
