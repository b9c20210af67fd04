// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/murphyproxy/resource-proxy/pkg/logging"
	"github.com/murphyproxy/resource-proxy/pkg/retry"
)

// keepAliveInterval is the ping cadence used to detect a dead
// connection faster than TCP keepalive would.
const keepAliveInterval = 30 * time.Second

// WebSocketTransport carries wire-codec frames as binary WebSocket
// messages. Read-loop/write-serialization/keepalive-ping structure
// adapted from the teacher's WebSocketServer (handleIncomingMessages,
// keepAlive), turned from a server accepting browser connections into
// a client dialing out to the master daemon.
type WebSocketTransport struct {
	masterAddress string
	dialTimeout   time.Duration
	backoff       retry.BackoffStrategy
	logger        logging.Logger
	onDisconnect  DisconnectFunc

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	frames chan []byte
	readErr chan error

	cancelReadLoop context.CancelFunc
}

// Config configures a WebSocketTransport.
type Config struct {
	MasterAddress string
	DialTimeout   time.Duration
	Backoff       retry.BackoffStrategy
	Logger        logging.Logger

	// OnDisconnect is invoked once when the connection is lost, after
	// a successful Dial.
	OnDisconnect DisconnectFunc
}

// New creates a WebSocketTransport. Dial must be called before Send
// or Receive.
func New(cfg Config) *WebSocketTransport {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	backoff := cfg.Backoff
	if backoff == nil {
		backoff = retry.NewExponentialBackoff()
	}

	return &WebSocketTransport{
		masterAddress: cfg.MasterAddress,
		dialTimeout:   cfg.DialTimeout,
		backoff:       backoff,
		logger:        logger,
		onDisconnect:  cfg.OnDisconnect,
		frames:        make(chan []byte, 64),
		readErr:       make(chan error, 1),
	}
}

// Dial connects to the master, retrying with backoff until it
// succeeds or ctx is done.
func (t *WebSocketTransport) Dial(ctx context.Context) error {
	url, err := resolveWebSocketURL(t.masterAddress)
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{HandshakeTimeout: t.dialTimeout}

	err = retry.DialWithBackoff(ctx, t.backoff, func(dialCtx context.Context) error {
		conn, _, dialErr := dialer.DialContext(dialCtx, url, nil)
		if dialErr != nil {
			if !retry.IsRetryableDialError(dialCtx, dialErr) {
				return backoffGiveUp{dialErr}
			}
			t.logger.Warn("transport dial failed, retrying", "master_address", t.masterAddress, "error", dialErr)
			return dialErr
		}

		t.mu.Lock()
		t.conn = conn
		t.closed = false
		t.mu.Unlock()
		return nil
	})
	if err != nil {
		if giveUp, ok := err.(backoffGiveUp); ok {
			return giveUp.err
		}
		return err
	}

	readCtx, cancel := context.WithCancel(context.Background())
	t.cancelReadLoop = cancel
	go t.readLoop(readCtx)
	go t.keepAlive(readCtx)

	t.logger.Info("transport connected", "master_address", t.masterAddress)
	return nil
}

// backoffGiveUp wraps a non-retryable dial error. DialWithBackoff's
// loop does not inspect it and goes on as its backoff allows; Dial
// unwraps it when it is the error the loop returns.
type backoffGiveUp struct{ err error }

func (g backoffGiveUp) Error() string { return g.err.Error() }

// Send writes one frame as a binary WebSocket message.
func (t *WebSocketTransport) Send(ctx context.Context, frame []byte) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if closed || conn == nil {
		return ErrClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	return conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Receive returns the next complete frame read from the master.
func (t *WebSocketTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case frame, ok := <-t.frames:
		if !ok {
			return nil, ErrClosed
		}
		return frame, nil
	case err := <-t.readErr:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readLoop pulls frames off the connection until it errors or ctx is
// canceled, fanning each complete message into t.frames.
func (t *WebSocketTransport) readLoop(ctx context.Context) {
	for {
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()
		if conn == nil {
			return
		}

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			t.handleDisconnect(err)
			return
		}
		if msgType != websocket.BinaryMessage {
			t.logger.Warn("transport received non-binary frame, dropping", "message_type", msgType)
			continue
		}

		select {
		case t.frames <- data:
		case <-ctx.Done():
			return
		}
	}
}

// keepAlive pings the master periodically so a half-open connection
// is detected without waiting on a stalled request-response cycle.
func (t *WebSocketTransport) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.mu.Lock()
			conn := t.conn
			closed := t.closed
			t.mu.Unlock()
			if closed || conn == nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.handleDisconnect(err)
				return
			}
		}
	}
}

func (t *WebSocketTransport) handleDisconnect(err error) {
	t.mu.Lock()
	alreadyClosed := t.closed
	t.closed = true
	t.mu.Unlock()

	if alreadyClosed {
		return
	}

	t.logger.Warn("transport disconnected", "master_address", t.masterAddress, "error", err)

	select {
	case t.readErr <- fmt.Errorf("transport: %w", err):
	default:
	}

	if t.onDisconnect != nil {
		t.onDisconnect()
	}
}

// Close closes the underlying connection. Safe to call more than once
// and safe to call before Dial.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	alreadyClosed := t.closed
	t.closed = true
	t.mu.Unlock()

	if t.cancelReadLoop != nil {
		t.cancelReadLoop()
	}

	if conn == nil || alreadyClosed {
		return nil
	}
	return conn.Close()
}
