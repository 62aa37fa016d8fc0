// Package config provides configuration types for the tool server.
package config

import (
	"log/slog"
	"net/http"
	"time"
)

// Defaults applied by Default.
const (
	DefaultMaxConnections  = 1024
	DefaultInvokeTimeout   = 30 * time.Second
	DefaultPingInterval    = 30 * time.Second
	DefaultReadLimit       = 1 << 20
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Options configures the tool server.
type Options struct {
	// Logger is the slog logger for server output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// MaxConnections caps concurrently served connections across all
	// transports. Zero means unbounded.
	MaxConnections int

	// InvokeTimeout bounds one tool invocation. Zero disables the deadline.
	InvokeTimeout time.Duration

	// PingInterval is the WebSocket keepalive interval. Zero disables pings.
	PingInterval time.Duration

	// ReadLimit caps the size of one inbound message in bytes.
	// Zero means unlimited.
	ReadLimit int64

	// WriteTimeout bounds one outbound message write. Zero means no limit.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration

	// MCP mounts the Model Context Protocol endpoint at /mcp.
	MCP bool

	// CheckOrigin decides whether a WebSocket upgrade is allowed.
	// If nil, every origin is accepted.
	CheckOrigin func(r *http.Request) bool
}

// Default returns Options with every default applied.
func Default() *Options {
	return &Options{
		MaxConnections:  DefaultMaxConnections,
		InvokeTimeout:   DefaultInvokeTimeout,
		PingInterval:    DefaultPingInterval,
		ReadLimit:       DefaultReadLimit,
		WriteTimeout:    DefaultWriteTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
		MCP:             true,
	}
}
