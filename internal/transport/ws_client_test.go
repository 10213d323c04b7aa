package transport

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/auth"
	"github.com/yourorg/inventory-dashboard/internal/config"
	"github.com/yourorg/inventory-dashboard/internal/model"
)

func streamConfig(maxAttempts int) config.StreamConfig {
	return config.StreamConfig{
		URL:                  "ws://localhost/ws",
		BaseReconnectDelay:   time.Millisecond,
		MaxReconnectDelay:    5 * time.Millisecond,
		MaxReconnectAttempts: maxAttempts,
		WriteTimeout:         time.Second,
	}
}

type fakeConn struct {
	frames chan []byte
	closed chan struct{}
	once   sync.Once

	mu    sync.Mutex
	wrote [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-c.frames:
		return 1, data, nil
	case <-c.closed:
		return 0, nil, errors.New("connection reset")
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wrote = append(c.wrote, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.wrote))
	copy(out, c.wrote)
	return out
}

// countingDialer fails every dial and counts attempts
type countingDialer struct {
	mu    sync.Mutex
	calls int
}

func (d *countingDialer) dial(string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return nil, errors.New("connection refused")
}

func (d *countingDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestWSClientReconnectBound(t *testing.T) {
	dialer := &countingDialer{}
	c := NewWSClient(streamConfig(3), auth.Identity{}, dialer.dial, nil, zap.NewNop())

	assert.Error(t, c.Connect())

	// One initial dial plus exactly maxReconnectAttempts retries, then
	// a terminal disconnected state.
	require.Eventually(t, func() bool {
		return c.State() == StateDisconnected
	}, time.Second, time.Millisecond)

	assert.Equal(t, 4, dialer.count())

	// No further attempts after going terminal.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 4, dialer.count())
}

func TestWSClientConnectIdempotent(t *testing.T) {
	conn := newFakeConn()
	dials := 0
	dial := func(string) (Conn, error) {
		dials++
		return conn, nil
	}
	c := NewWSClient(streamConfig(3), auth.Identity{}, dial, nil, zap.NewNop())

	require.NoError(t, c.Connect())
	require.NoError(t, c.Connect())
	require.NoError(t, c.Connect())

	assert.Equal(t, 1, dials)
	assert.Equal(t, StateConnected, c.State())
	c.Disconnect()
}

func TestWSClientReconnectsAfterAbnormalClose(t *testing.T) {
	var mu sync.Mutex
	conns := []*fakeConn{}
	dial := func(string) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		conn := newFakeConn()
		conns = append(conns, conn)
		return conn, nil
	}
	c := NewWSClient(streamConfig(5), auth.Identity{}, dial, nil, zap.NewNop())
	require.NoError(t, c.Connect())

	mu.Lock()
	first := conns[0]
	mu.Unlock()

	// Abnormal close: the read pump sees an error it did not ask for.
	first.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(conns) == 2 && c.State() == StateConnected
	}, time.Second, time.Millisecond)

	c.Disconnect()
}

func TestWSClientDeliberateDisconnectSuppressesReconnect(t *testing.T) {
	var mu sync.Mutex
	dials := 0
	dial := func(string) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		return newFakeConn(), nil
	}
	c := NewWSClient(streamConfig(5), auth.Identity{}, dial, nil, zap.NewNop())
	require.NoError(t, c.Connect())

	c.Disconnect()
	assert.Equal(t, StateDisconnected, c.State())

	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, dials, "deliberate close must not trigger reconnection")
	mu.Unlock()
}

func TestWSClientDeliversFrames(t *testing.T) {
	conn := newFakeConn()
	c := NewWSClient(streamConfig(3), auth.Identity{}, func(string) (Conn, error) { return conn, nil }, nil, zap.NewNop())

	received := make(chan model.Frame, 1)
	c.OnFrame(func(f model.Frame) { received <- f })
	require.NoError(t, c.Connect())

	conn.frames <- []byte(`{"event":"new_notification","data":{"notification":{"id":"n1"}}}`)

	select {
	case f := <-received:
		assert.Equal(t, "new_notification", f.Event)
	case <-time.After(time.Second):
		t.Fatal("frame was not delivered")
	}
	c.Disconnect()
}

func TestWSClientDropsUndecodableFrames(t *testing.T) {
	conn := newFakeConn()
	c := NewWSClient(streamConfig(3), auth.Identity{}, func(string) (Conn, error) { return conn, nil }, nil, zap.NewNop())

	received := make(chan model.Frame, 2)
	c.OnFrame(func(f model.Frame) { received <- f })
	require.NoError(t, c.Connect())

	conn.frames <- []byte(`{notjson`)
	conn.frames <- []byte(`{"event":"new_notification","data":{}}`)

	select {
	case f := <-received:
		// Only the well-formed frame arrives; the pump survived the bad one.
		assert.Equal(t, "new_notification", f.Event)
	case <-time.After(time.Second):
		t.Fatal("frame was not delivered")
	}
	c.Disconnect()
}

func TestWSClientSendWhileDisconnectedIsNoop(t *testing.T) {
	dialer := &countingDialer{}
	c := NewWSClient(streamConfig(0), auth.Identity{}, dialer.dial, nil, zap.NewNop())

	assert.NoError(t, c.Send("company-updated", map[string]string{"id": "c1"}))
}

func TestWSClientSendWritesFrame(t *testing.T) {
	conn := newFakeConn()
	c := NewWSClient(streamConfig(3), auth.Identity{}, func(string) (Conn, error) { return conn, nil }, nil, zap.NewNop())
	require.NoError(t, c.Connect())

	require.NoError(t, c.Send("company-updated", map[string]string{"id": "c1"}))

	wrote := conn.written()
	require.Len(t, wrote, 1)
	var frame model.Frame
	require.NoError(t, json.Unmarshal(wrote[0], &frame))
	assert.Equal(t, "company-updated", frame.Event)
	assert.JSONEq(t, `{"id":"c1"}`, string(frame.Data))
	c.Disconnect()
}

// overlapConn flags any two writes whose execution overlaps in time,
// which the underlying websocket connection forbids.
type overlapConn struct {
	*fakeConn
	writers int32
	overlap int32
}

func (c *overlapConn) WriteMessage(msgType int, data []byte) error {
	if atomic.AddInt32(&c.writers, 1) > 1 {
		atomic.StoreInt32(&c.overlap, 1)
	}
	time.Sleep(100 * time.Microsecond)
	atomic.AddInt32(&c.writers, -1)
	return c.fakeConn.WriteMessage(msgType, data)
}

func TestWSClientConcurrentSendsAreSerialized(t *testing.T) {
	conn := &overlapConn{fakeConn: newFakeConn()}
	c := NewWSClient(streamConfig(3), auth.Identity{}, func(string) (Conn, error) { return conn, nil }, nil, zap.NewNop())
	require.NoError(t, c.Connect())

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, c.Send("company-updated", map[string]int{"n": n}))
		}(i)
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&conn.overlap), "writes must never overlap")
	assert.Len(t, conn.written(), 64)
	c.Disconnect()
}

func TestWSClientEndpointCarriesIdentity(t *testing.T) {
	var dialed string
	dial := func(endpoint string) (Conn, error) {
		dialed = endpoint
		return newFakeConn(), nil
	}
	c := NewWSClient(streamConfig(3), auth.Identity{CompanyID: "c7", UserID: "u9"}, dial, nil, zap.NewNop())
	require.NoError(t, c.Connect())

	assert.Contains(t, dialed, "companyId=c7")
	assert.Contains(t, dialed, "userId=u9")
	c.Disconnect()
}

func TestWSClientConnectAgainAfterTerminal(t *testing.T) {
	dialer := &countingDialer{}
	c := NewWSClient(streamConfig(1), auth.Identity{}, dialer.dial, nil, zap.NewNop())

	assert.Error(t, c.Connect())
	require.Eventually(t, func() bool {
		return c.State() == StateDisconnected && dialer.count() == 2
	}, time.Second, time.Millisecond)

	// A fresh Connect call resets the attempt budget.
	assert.Error(t, c.Connect())
	require.Eventually(t, func() bool {
		return dialer.count() == 4
	}, time.Second, time.Millisecond)
}
