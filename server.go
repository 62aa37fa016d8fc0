package wstools

import (
	"context"
	"net"
	"net/http"

	"github.com/wagiedev/wstools-go/internal/server"
)

// Version is the server version reported by /healthz and to MCP clients.
const Version = server.Version

// Server serves one registry over every transport.
type Server struct {
	impl *server.Server
}

// NewServer creates a server for registry and freezes the registry.
func NewServer(registry *Registry, opts ...Option) *Server {
	return &Server{impl: server.New(registry, applyOptions(opts))}
}

// Handler returns the HTTP handler serving /ws, /call, /tools, /healthz
// and /mcp, for mounting on an existing HTTP server.
func (s *Server) Handler() http.Handler {
	return s.impl.Handler()
}

// ListenAndServe serves HTTP and WebSocket on addr and newline-delimited
// JSON on tcpAddr until ctx is cancelled. Either address may be empty.
func (s *Server) ListenAndServe(ctx context.Context, addr, tcpAddr string) error {
	return s.impl.ListenAndServe(ctx, addr, tcpAddr)
}

// Serve is ListenAndServe on existing listeners. Either may be nil.
func (s *Server) Serve(ctx context.Context, httpLn, streamLn net.Listener) error {
	return s.impl.Serve(ctx, httpLn, streamLn)
}

// Shutdown closes every connection and waits for sessions to end.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.impl.Shutdown(ctx)
}

// ActiveConnections returns the number of open persistent connections.
func (s *Server) ActiveConnections() int64 {
	return s.impl.ActiveConnections()
}
