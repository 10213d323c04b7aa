package transport

import (
	"encoding/json"
	"sync"

	"github.com/yourorg/inventory-dashboard/internal/model"
)

// FakeClient is a deterministic in-memory transport for tests and
// demos. It satisfies Client and records every Send; Push delivers a
// frame to the registered handler the same way a live read would.
type FakeClient struct {
	mu           sync.Mutex
	state        ConnState
	sent         []model.Frame
	frameHandler FrameHandler
	stateHandler StateHandler
}

// NewFakeClient builds a disconnected fake transport
func NewFakeClient() *FakeClient {
	return &FakeClient{state: StateDisconnected}
}

// Connect transitions straight to connected
func (c *FakeClient) Connect() error {
	c.mu.Lock()
	handler := c.stateHandler
	c.state = StateConnected
	c.mu.Unlock()
	if handler != nil {
		handler(StateConnected)
	}
	return nil
}

// Disconnect transitions straight to disconnected
func (c *FakeClient) Disconnect() {
	c.mu.Lock()
	handler := c.stateHandler
	c.state = StateDisconnected
	c.mu.Unlock()
	if handler != nil {
		handler(StateDisconnected)
	}
}

// Send records the frame while connected and silently drops it otherwise
func (c *FakeClient) Send(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnected {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	c.sent = append(c.sent, model.Frame{Event: event, Data: data})
	return nil
}

// State returns the current state
func (c *FakeClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnFrame registers the frame handler
func (c *FakeClient) OnFrame(h FrameHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frameHandler = h
}

// OnStateChange registers the state handler
func (c *FakeClient) OnStateChange(h StateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateHandler = h
}

// Push delivers a frame to the handler as if it had arrived over the
// wire.
func (c *FakeClient) Push(frame model.Frame) {
	c.mu.Lock()
	handler := c.frameHandler
	c.mu.Unlock()
	if handler != nil {
		handler(frame)
	}
}

// Sent returns a copy of all frames recorded by Send
func (c *FakeClient) Sent() []model.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Frame, len(c.sent))
	copy(out, c.sent)
	return out
}
