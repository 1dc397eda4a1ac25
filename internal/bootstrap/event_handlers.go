package bootstrap

import (
	"context"
	"log/slog"

	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/metrics"
	"github.com/osse101/TillSync_Go/internal/sse"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus event.Bus
	Hub      *sse.Hub
}

// RegisterEventHandlers subscribes the metrics collector and the notice
// stream to every user-visible event.
func RegisterEventHandlers(ctx context.Context, deps EventHandlerDependencies) {
	metrics.NewEventMetricsCollector().Register(deps.EventBus)
	slog.Info(LogMsgMetricsCollectorRegistered)

	sse.NewSubscriber(deps.Hub, deps.EventBus).Subscribe(ctx)
	slog.Info(LogMsgNoticeStreamSubscribed)
}
