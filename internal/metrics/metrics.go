package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Sync Metrics
var (
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameQueueDepth,
			Help: HelpTextQueueDepth,
		},
	)

	OperationsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOperationsEnqueued,
			Help: HelpTextOperationsEnqueued,
		},
		[]string{LabelResource, LabelType},
	)

	DrainCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDrainCycles,
			Help: HelpTextDrainCycles,
		},
		[]string{LabelOutcome},
	)

	OperationsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOperationsSynced,
			Help: HelpTextOperationsSynced,
		},
		[]string{LabelResource},
	)

	OperationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOperationsFailed,
			Help: HelpTextOperationsFailed,
		},
		[]string{LabelResource},
	)

	OperationsQuarantined = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOperationsQuarantine,
			Help: HelpTextOperationsQuarantine,
		},
		[]string{LabelResource},
	)

	ConflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameConflictsDetected,
			Help: HelpTextConflictsDetected,
		},
		[]string{LabelResource},
	)

	ConflictsPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameConflictsPending,
			Help: HelpTextConflictsPending,
		},
	)

	AuthPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameAuthPauses,
			Help: HelpTextAuthPauses,
		},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameSyncDuration,
			Help:    HelpTextSyncDuration,
			Buckets: SyncDurationBuckets,
		},
	)

	Online = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameOnline,
			Help: HelpTextOnline,
		},
	)
)

// Shift Metrics
var (
	VarianceAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameVarianceAlerts,
			Help: HelpTextVarianceAlerts,
		},
		[]string{LabelSeverity},
	)

	ShiftTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameShiftTransitions,
			Help: HelpTextShiftTransitions,
		},
		[]string{LabelKind, LabelQueued},
	)

	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMutations,
			Help: HelpTextMutations,
		},
		[]string{LabelResource, LabelOutcome},
	)
)
