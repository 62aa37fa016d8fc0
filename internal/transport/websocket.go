package transport

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/protocol"
)

// closeGracePeriod bounds how long a close frame write may take.
const closeGracePeriod = time.Second

// Compile-time verification that WebSocket implements protocol.Conn.
var _ protocol.Conn = (*WebSocket)(nil)

// WebSocketOptions configures a WebSocket connection.
type WebSocketOptions struct {
	// PingInterval enables keepalive pings. The peer must answer within
	// two intervals or the connection fails. Zero disables pings.
	PingInterval time.Duration

	// ReadLimit caps the size of one inbound message in bytes. Zero
	// leaves the gorilla default (unlimited).
	ReadLimit int64

	// WriteTimeout bounds one outbound message write. Zero means no limit.
	WriteTimeout time.Duration
}

// WebSocket is a protocol.Conn over a gorilla websocket connection.
type WebSocket struct {
	log  *slog.Logger
	conn *websocket.Conn
	opts WebSocketOptions

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewWebSocket wraps an established connection and starts the keepalive
// loop when PingInterval is set.
func NewWebSocket(log *slog.Logger, conn *websocket.Conn, opts WebSocketOptions) *WebSocket {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ws := &WebSocket{
		log:  log.With("component", "websocket", "remote", conn.RemoteAddr().String()),
		conn: conn,
		opts: opts,
		done: make(chan struct{}),
	}

	if opts.ReadLimit > 0 {
		conn.SetReadLimit(opts.ReadLimit)
	}

	if opts.PingInterval > 0 {
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(ws.pongWait()))
		})

		go ws.pingLoop()
	}

	return ws
}

// ReceiveText blocks until the next data frame arrives. Binary frames are
// accepted and treated as text.
func (ws *WebSocket) ReceiveText(ctx context.Context) (string, error) {
	if ws.opts.PingInterval > 0 {
		if err := ws.conn.SetReadDeadline(time.Now().Add(ws.pongWait())); err != nil {
			return "", classify("receive", err)
		}
	}

	// Unblock the read when ctx is cancelled.
	stop := context.AfterFunc(ctx, func() {
		_ = ws.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, data, err := ws.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		return "", classify("receive", err)
	}

	return string(data), nil
}

// SendText writes one text frame.
func (ws *WebSocket) SendText(ctx context.Context, text string) error {
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()

	deadline := time.Time{}
	if ws.opts.WriteTimeout > 0 {
		deadline = time.Now().Add(ws.opts.WriteTimeout)
	}

	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	if err := ws.conn.SetWriteDeadline(deadline); err != nil {
		return classify("send", err)
	}

	if err := ws.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return classify("send", err)
	}

	return nil
}

// Close sends a normal close frame and closes the connection. It is safe
// to call more than once.
func (ws *WebSocket) Close() error {
	ws.closeOnce.Do(func() {
		close(ws.done)

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := ws.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod)); err != nil {
			ws.log.Debug("Could not send close frame", "error", err)
		}

		ws.closeErr = ws.conn.Close()
	})

	return ws.closeErr
}

func (ws *WebSocket) pongWait() time.Duration {
	return 2 * ws.opts.PingInterval
}

// pingLoop sends keepalive pings. WriteControl is safe to call
// concurrently with the session's writes.
func (ws *WebSocket) pingLoop() {
	ticker := time.NewTicker(ws.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ws.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(ws.opts.PingInterval)
			if err := ws.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				ws.log.Debug("Keepalive ping failed", "error", err)

				return
			}
		}
	}
}

// classify maps a websocket or net error onto the dispatch taxonomy.
func classify(op string, err error) error {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
		websocket.CloseAbnormalClosure,
	) {
		return fmt.Errorf("%w: %v", errors.ErrTransportDisconnect, err)
	}

	if stderrors.Is(err, io.EOF) ||
		stderrors.Is(err, net.ErrClosed) ||
		stderrors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("%w: %v", errors.ErrTransportDisconnect, err)
	}

	return &errors.TransportFailure{Op: op, Err: err}
}
