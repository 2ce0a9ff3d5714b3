package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport implements Transport over a WebSocket connection.
type WebSocketTransport struct {
	conn   *websocket.Conn
	config WebSocketConfig

	recv   chan json.RawMessage
	done   chan struct{}
	wmu    sync.Mutex
	mu     sync.Mutex
	closed bool
}

// WebSocketConfig holds WebSocket transport configuration.
type WebSocketConfig struct {
	Config // Embed base config

	// WriteTimeout for write operations.
	WriteTimeout time.Duration

	// PingInterval for protocol-level keepalive pings (0 = disabled).
	// This is distinct from application-level liveness probing: it keeps
	// the TCP path open but exercises nothing above the socket.
	PingInterval time.Duration
}

// DefaultWebSocketConfig returns configuration with sensible defaults.
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		Config:       DefaultConfig(),
		WriteTimeout: 10 * time.Second,
	}
}

// DialWebSocket connects to a WebSocket endpoint and returns a transport
// over the connection.
func DialWebSocket(ctx context.Context, endpoint string, header http.Header, cfg WebSocketConfig) (*WebSocketTransport, error) {
	cfg.Config.applyDefaults()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWebSocketConfig().WriteTimeout
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	conn.SetReadLimit(int64(cfg.MaxFrameSize))

	t := &WebSocketTransport{
		conn:   conn,
		config: cfg,
		recv:   make(chan json.RawMessage, cfg.RecvBufferSize),
		done:   make(chan struct{}),
	}

	go t.readLoop()
	if cfg.PingInterval > 0 {
		go t.pingLoop()
	}
	return t, nil
}

// Recv returns the channel of incoming frames.
func (t *WebSocketTransport) Recv() <-chan json.RawMessage {
	return t.recv
}

// Send marshals and writes one frame.
func (t *WebSocketTransport) Send(msg interface{}) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

// Close initiates shutdown. Idempotent.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.done)
	t.mu.Unlock()

	t.wmu.Lock()
	t.conn.SetWriteDeadline(time.Now().Add(time.Second))
	t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	t.wmu.Unlock()

	return t.conn.Close()
}

// readLoop reads frames and forwards them to recv.
func (t *WebSocketTransport) readLoop() {
	defer close(t.recv)

	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(data) == 0 {
			continue
		}

		select {
		case t.recv <- json.RawMessage(data):
		case <-t.done:
			return
		}
	}
}

// pingLoop sends protocol-level pings at the configured interval.
func (t *WebSocketTransport) pingLoop() {
	ticker := time.NewTicker(t.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.wmu.Lock()
			t.conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
			err := t.conn.WriteMessage(websocket.PingMessage, nil)
			t.wmu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
