package sse

import (
	"context"

	"github.com/osse101/TillSync_Go/internal/event"
	"github.com/osse101/TillSync_Go/internal/logger"
)

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{
		hub: hub,
		bus: bus,
	}
}

// Subscribe forwards every user-visible notice to connected clients
func (s *Subscriber) Subscribe(ctx context.Context) {
	event.SubscribeAll(s.bus, event.NoticeTypes, s.handleNotice)
	logger.FromContext(ctx).Info(LogMsgSubscriberRegistered, "types", event.NoticeTypes)
}

// handleNotice never fails the publisher: a dropped notice is logged and the
// underlying state is still readable through the status endpoints
func (s *Subscriber) handleNotice(ctx context.Context, evt event.Event) error {
	if !s.hub.Broadcast(string(evt.Type), evt.Payload) {
		logger.FromContext(ctx).Warn(LogMsgEventDropped, "event_type", evt.Type)
		return nil
	}
	logger.FromContext(ctx).Debug(LogMsgEventBroadcast, "event_type", evt.Type)
	return nil
}
