package transport

import (
	"github.com/yourorg/inventory-dashboard/internal/model"
)

// ConnState is the observable connection state. Callers never see raw
// socket transitions, only these discrete states.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// FrameHandler receives every decoded frame from the stream
type FrameHandler func(model.Frame)

// StateHandler receives connection state transitions
type StateHandler func(ConnState)

// Client is the notification stream transport. A real socket-backed
// implementation and a deterministic test double both satisfy it; the
// implementation is selected at construction.
type Client interface {
	// Connect opens the connection. Idempotent: connecting while
	// already connected is a no-op.
	Connect() error

	// Disconnect deliberately closes the connection, suppresses any
	// pending reconnection and releases timers and sockets.
	Disconnect()

	// Send emits a fire-and-forget message. When not connected it
	// drops the message with a logged warning and returns nil.
	Send(event string, payload any) error

	// State returns the current observable connection state.
	State() ConnState

	// OnFrame registers the single frame handler. Must be called
	// before Connect.
	OnFrame(FrameHandler)

	// OnStateChange registers the single state handler.
	OnStateChange(StateHandler)
}
