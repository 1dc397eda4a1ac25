package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Sync metric names
const (
	MetricNameQueueDepth           = "tillsync_queue_depth"
	MetricNameOperationsEnqueued   = "tillsync_operations_enqueued_total"
	MetricNameDrainCycles          = "tillsync_drain_cycles_total"
	MetricNameOperationsSynced     = "tillsync_operations_synced_total"
	MetricNameOperationsFailed     = "tillsync_operations_failed_total"
	MetricNameOperationsQuarantine = "tillsync_operations_quarantined_total"
	MetricNameConflictsDetected    = "tillsync_conflicts_detected_total"
	MetricNameConflictsPending     = "tillsync_conflicts_pending"
	MetricNameAuthPauses           = "tillsync_auth_pauses_total"
	MetricNameSyncDuration         = "tillsync_sync_duration_seconds"
	MetricNameOnline               = "tillsync_online"
	MetricNameVarianceAlerts       = "tillsync_variance_alerts_total"
	MetricNameShiftTransitions     = "tillsync_shift_transitions_total"
	MetricNameMutations            = "tillsync_mutations_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Sync metric help text
const (
	HelpTextQueueDepth           = "Number of pending operations waiting to sync"
	HelpTextOperationsEnqueued   = "Total number of operations enqueued"
	HelpTextDrainCycles          = "Total number of sync drain cycles by outcome"
	HelpTextOperationsSynced     = "Total number of operations confirmed by the remote"
	HelpTextOperationsFailed     = "Total number of operations that exhausted a cycle's attempts"
	HelpTextOperationsQuarantine = "Total number of operations dropped after the retry ceiling"
	HelpTextConflictsDetected    = "Total number of conflicts detected"
	HelpTextConflictsPending     = "Number of conflicts waiting for a decision"
	HelpTextAuthPauses           = "Total number of times sync paused on an auth failure"
	HelpTextSyncDuration         = "Duration of sync drain cycles in seconds"
	HelpTextOnline               = "1 when the terminal considers itself online"
	HelpTextVarianceAlerts       = "Total number of cash variance alerts by severity"
	HelpTextShiftTransitions     = "Total number of shift transitions by kind and path"
	HelpTextMutations            = "Total number of screen changes by resource and whether they were confirmed or queued"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelResource = "resource"
	LabelOutcome  = "outcome"
	LabelSeverity = "severity"
	LabelKind     = "kind"
	LabelQueued   = "queued"
)

// Drain cycle outcomes
const (
	OutcomeCompleted = "completed"
	OutcomePartial   = "partial"
	OutcomeSkipped   = "skipped"
)

// Mutation outcomes
const (
	OutcomeConfirmed = "confirmed"
	OutcomeQueued    = "queued"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// SyncDurationBuckets covers drains from a single fast write to a long backlog
// with retries (100ms to 10m).
var SyncDurationBuckets = []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgMetricsRecorded = "Metrics recorded for event"
)
