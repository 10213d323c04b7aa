package transport

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/auth"
	"github.com/yourorg/inventory-dashboard/internal/config"
	"github.com/yourorg/inventory-dashboard/internal/metrics"
	"github.com/yourorg/inventory-dashboard/internal/model"
)

// Conn is the subset of the websocket connection the client uses.
// *websocket.Conn satisfies it; tests substitute their own.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(int, []byte) error
	SetWriteDeadline(time.Time) error
	Close() error
}

// DialFunc opens a connection to the stream endpoint
type DialFunc func(url string) (Conn, error)

func gorillaDial(endpoint string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// WSClient maintains at most one live stream connection per
// (company, user) identity. Abnormal closes trigger bounded
// exponential-backoff reconnection; a deliberate Disconnect suppresses
// it. After the attempt budget is exhausted the client settles in a
// terminal disconnected state instead of retrying forever.
type WSClient struct {
	endpoint     string
	maxAttempts  int
	writeTimeout time.Duration

	dial    DialFunc
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	writeMu    sync.Mutex
	conn       Conn
	state      ConnState
	attempts   int
	deliberate bool
	timer      *time.Timer
	policy     *backoff.ExponentialBackOff

	frameHandler FrameHandler
	stateHandler StateHandler
}

// NewWSClient builds the socket-backed transport. A nil dial falls back
// to the gorilla dialer.
func NewWSClient(cfg config.StreamConfig, identity auth.Identity, dial DialFunc, m *metrics.Metrics, logger *zap.Logger) *WSClient {
	if dial == nil {
		dial = gorillaDial
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.BaseReconnectDelay
	policy.MaxInterval = cfg.MaxReconnectDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	policy.Reset()

	endpoint := cfg.URL
	if u, err := url.Parse(cfg.URL); err == nil {
		q := u.Query()
		q.Set("companyId", identity.CompanyID)
		q.Set("userId", identity.UserID)
		u.RawQuery = q.Encode()
		endpoint = u.String()
	}

	return &WSClient{
		endpoint:     endpoint,
		maxAttempts:  cfg.MaxReconnectAttempts,
		writeTimeout: cfg.WriteTimeout,
		dial:         dial,
		logger:       logger,
		metrics:      m,
		state:        StateDisconnected,
		policy:       policy,
	}
}

// OnFrame registers the frame handler, replacing any previous one
func (c *WSClient) OnFrame(h FrameHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frameHandler = h
}

// OnStateChange registers the state handler, replacing any previous one
func (c *WSClient) OnStateChange(h StateHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateHandler = h
}

// State returns the current connection state
func (c *WSClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect opens the stream connection. Calling it while connected or
// while a connection attempt is in flight is a no-op.
func (c *WSClient) Connect() error {
	c.mu.Lock()
	if c.state == StateConnected || c.state == StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.deliberate = false
	c.attempts = 0
	c.policy.Reset()
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	return c.establish()
}

// establish dials once, and on failure hands over to the reconnect
// scheduler. The first error is returned so the caller can log it, but
// recovery no longer depends on the caller.
func (c *WSClient) establish() error {
	conn, err := c.dial(c.endpoint)

	c.mu.Lock()
	if c.deliberate {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return nil
	}
	if err != nil {
		c.logger.Warn("stream connection failed", zap.Error(err))
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	c.conn = conn
	c.attempts = 0
	c.policy.Reset()
	c.setStateLocked(StateConnected)
	c.mu.Unlock()

	c.logger.Info("stream connected")
	go c.readPump(conn)
	return nil
}

// readPump drains the connection until it closes, decoding each frame
// and handing it to the registered handler. Abnormal closes feed the
// reconnect policy.
func (c *WSClient) readPump(conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn != conn {
				// A newer connection replaced this one.
				c.mu.Unlock()
				return
			}
			c.conn = nil
			if c.deliberate {
				c.mu.Unlock()
				return
			}
			c.logger.Warn("stream closed abnormally", zap.Error(err))
			c.setStateLocked(StateConnecting)
			c.scheduleReconnectLocked()
			c.mu.Unlock()
			return
		}

		var frame model.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("dropping undecodable stream frame", zap.Error(err))
			c.metrics.EventDropped()
			continue
		}

		c.mu.Lock()
		handler := c.frameHandler
		c.mu.Unlock()
		if handler != nil {
			handler(frame)
		}
	}
}

// scheduleReconnectLocked arms the backoff timer for the next attempt.
// Caller holds the lock. When the attempt budget is spent the client
// goes terminally disconnected.
func (c *WSClient) scheduleReconnectLocked() {
	if c.attempts >= c.maxAttempts {
		c.logger.Error("stream reconnect attempts exhausted",
			zap.Int("attempts", c.attempts))
		c.setStateLocked(StateDisconnected)
		return
	}

	c.attempts++
	delay := c.policy.NextBackOff()
	c.metrics.ReconnectAttempt()
	c.logger.Info("scheduling stream reconnect",
		zap.Int("attempt", c.attempts),
		zap.Duration("delay", delay))

	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		if c.deliberate {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		c.establish()
	})
}

// Disconnect deliberately closes the connection. It cancels any pending
// reconnect timer and suppresses further reconnection until the next
// Connect call.
func (c *WSClient) Disconnect() {
	c.mu.Lock()
	c.deliberate = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	conn := c.conn
	c.conn = nil
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.logger.Info("stream disconnected")
}

// Send emits a fire-and-forget message on the stream. While not
// connected the message is dropped with a warning; callers own any
// idempotent resend.
func (c *WSClient) Send(event string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		c.logger.Warn("dropping outbound message, stream not connected",
			zap.String("event", event))
		c.metrics.SendDropped()
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	frame, err := json.Marshal(model.Frame{Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	// The websocket connection allows one writer at a time; writeMu
	// serializes concurrent Send callers across the deadline and the
	// write itself.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Warn("stream write failed", zap.String("event", event), zap.Error(err))
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}

// setStateLocked updates the state and notifies the handler. Caller
// holds the lock; the notification is dispatched without it.
func (c *WSClient) setStateLocked(state ConnState) {
	if c.state == state {
		return
	}
	c.state = state
	if c.stateHandler != nil {
		go c.stateHandler(state)
	}
}
