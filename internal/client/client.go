package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/protocol"
	"github.com/wagiedev/wstools-go/internal/transport"
)

// defaultHandshakeTimeout bounds the WebSocket opening handshake.
const defaultHandshakeTimeout = 10 * time.Second

// Options configures a Client.
type Options struct {
	// Logger is the slog logger for client output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// Header is sent with the opening handshake.
	Header http.Header

	// HandshakeTimeout bounds the opening handshake. Zero selects 10s.
	HandshakeTimeout time.Duration

	// ReadLimit caps the size of one response in bytes. Zero means unlimited.
	ReadLimit int64
}

// Client calls tools over one WebSocket connection.
//
// A connection carries one request at a time; concurrent calls are
// serialized. Clients are single-use: after Close, dial a new one.
type Client struct {
	log  *slog.Logger
	conn *transport.WebSocket

	// mu serializes round trips.
	mu     sync.Mutex
	closed atomic.Bool
}

// Dial opens a connection to the WebSocket endpoint at url.
func Dial(ctx context.Context, url string, opts *Options) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	log = log.With("component", "client")

	handshake := opts.HandshakeTimeout
	if handshake <= 0 {
		handshake = defaultHandshakeTimeout
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshake,
	}

	conn, resp, err := dialer.DialContext(ctx, url, opts.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		if resp != nil {
			return nil, &errors.TransportFailure{Op: "dial", Err: fmt.Errorf("%w (status %s)", err, resp.Status)}
		}

		return nil, &errors.TransportFailure{Op: "dial", Err: err}
	}

	log.Debug("Connected", "url", url)

	return &Client{
		log:  log,
		conn: transport.NewWebSocket(log, conn, transport.WebSocketOptions{ReadLimit: opts.ReadLimit}),
	}, nil
}

// Call invokes fn with nested arguments and returns its result. A tool
// failure reported by the server is returned as a *protocol.RemoteError.
func (c *Client) Call(ctx context.Context, fn string, params map[string]any) (any, error) {
	data, err := json.Marshal(protocol.NewRequest(fn, params))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.Do(ctx, data)
	if err != nil {
		return nil, err
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return resp.Result, nil
}

// Do sends one raw request envelope and decodes the reply.
func (c *Client) Do(ctx context.Context, request []byte) (protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return protocol.Response{}, errors.ErrClientClosed
	}

	if err := c.conn.SendText(ctx, string(request)); err != nil {
		return protocol.Response{}, err
	}

	text, err := c.conn.ReceiveText(ctx)
	if err != nil {
		return protocol.Response{}, err
	}

	var resp protocol.Response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return protocol.Response{}, &errors.DecodeError{Err: err}
	}

	c.log.Debug("Call completed", "failed", resp.Failed())

	return resp, nil
}

// Close sends a close frame and releases the connection, failing a call
// in flight. It is safe to call more than once.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	return c.conn.Close()
}
