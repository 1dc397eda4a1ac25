package sse

import (
	"time"

	"github.com/osse101/TillSync_Go/internal/domain"
)

// Buffer sizes
const (
	// BroadcastBufferSize is the buffer size for the broadcast channel
	BroadcastBufferSize = 100

	// ClientEventBuffer is the buffer size for each client's event channel
	ClientEventBuffer = 50

	// ClientChannelBuffer is the buffer size for register/unregister channels
	ClientChannelBuffer = 10
)

// SSE connection settings
const (
	// KeepaliveInterval is how often to send keepalive pings
	KeepaliveInterval = 30 * time.Second
)

// Stream-level event types, beside the notice types forwarded from the bus
const (
	EventTypeConnected = "connected"
	EventTypeKeepalive = "keepalive"
)

// StateGroups maps the notices that describe terminal state to the group
// whose latest notice is replayed to newly connected screens
var StateGroups = map[string]string{
	domain.EventTypeConnectivityOnline:  "connectivity",
	domain.EventTypeConnectivityOffline: "connectivity",
	domain.EventTypeAuthPaused:          "session",
	domain.EventTypeAuthResumed:         "session",
	domain.EventTypeReauthRequired:      "session",
}

// Log messages
const (
	LogMsgClientConnected      = "SSE client connected"
	LogMsgClientDisconnected   = "SSE client disconnected"
	LogMsgEventBroadcast       = "Broadcasting notice"
	LogMsgEventDropped         = "SSE broadcast buffer full, notice dropped"
	LogMsgWriteError           = "Failed to write SSE event"
	LogMsgSubscriberRegistered = "SSE subscriber registered for notice types"
)
