package metrics

import (
	"context"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// EventMetricsCollector subscribes to notice events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all notice events
func (e *EventMetricsCollector) Register(bus event.Bus) {
	event.SubscribeAll(bus, event.NoticeTypes, e.HandleEvent)
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.ConnectivityOnline:
		Online.Set(1)
	case event.ConnectivityOffline:
		Online.Set(0)
	case event.VarianceAlert:
		payload, err := event.DecodePayload[domain.VarianceAlertPayload](evt.Payload)
		if err != nil {
			EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
			return err
		}
		VarianceAlerts.WithLabelValues(string(payload.Alert.Severity)).Inc()
	}

	logger.FromContext(ctx).Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
