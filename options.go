package wstools

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wagiedev/wstools-go/internal/config"
)

// ServerOptions configures a Server. Use the With* options rather than
// building one directly.
type ServerOptions = config.Options

// Option configures ServerOptions using the functional options pattern.
type Option func(*ServerOptions)

// applyOptions applies opts on top of the defaults.
func applyOptions(opts []Option) *ServerOptions {
	options := config.Default()
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WithLogger sets the logger.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *ServerOptions) {
		o.Logger = logger
	}
}

// WithMaxConnections caps concurrently served persistent connections.
// Zero means unbounded. The default is 1024.
func WithMaxConnections(n int) Option {
	return func(o *ServerOptions) {
		o.MaxConnections = n
	}
}

// WithInvokeTimeout bounds one tool invocation. Zero disables the deadline.
func WithInvokeTimeout(d time.Duration) Option {
	return func(o *ServerOptions) {
		o.InvokeTimeout = d
	}
}

// WithPingInterval sets the WebSocket keepalive interval. Zero disables pings.
func WithPingInterval(d time.Duration) Option {
	return func(o *ServerOptions) {
		o.PingInterval = d
	}
}

// WithReadLimit caps the size of one inbound message in bytes.
func WithReadLimit(n int64) Option {
	return func(o *ServerOptions) {
		o.ReadLimit = n
	}
}

// WithWriteTimeout bounds one outbound message write.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *ServerOptions) {
		o.WriteTimeout = d
	}
}

// WithShutdownTimeout bounds graceful shutdown when the serving context ends.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *ServerOptions) {
		o.ShutdownTimeout = d
	}
}

// WithMCP mounts or removes the MCP endpoint at /mcp. It is mounted by default.
func WithMCP(enabled bool) Option {
	return func(o *ServerOptions) {
		o.MCP = enabled
	}
}

// WithCheckOrigin decides whether a WebSocket upgrade is allowed.
// By default every origin is accepted.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(o *ServerOptions) {
		o.CheckOrigin = check
	}
}
