package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/wagiedev/wstools-go/internal/config"
	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/mcp"
	"github.com/wagiedev/wstools-go/internal/protocol"
	"github.com/wagiedev/wstools-go/internal/tool"
	"github.com/wagiedev/wstools-go/internal/transport"
)

const (
	// Name is reported to MCP clients.
	Name = "wstools"
	// Version is reported to MCP clients and by /healthz.
	Version = "0.3.0"
)

// acceptRetryDelay is the pause after a temporary accept error.
const acceptRetryDelay = 5 * time.Millisecond

// Server accepts connections and runs one session per connection.
type Server struct {
	log      *slog.Logger
	opts     *config.Options
	registry *tool.Registry
	handler  *protocol.Handler
	upgrader websocket.Upgrader
	router   *mux.Router
	http     *http.Server
	sem      *semaphore.Weighted

	// sessions run under baseCtx; Shutdown cancels it.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	closed    bool
	listeners []net.Listener
	wg        sync.WaitGroup

	done         chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error

	active atomic.Int64
}

// New creates a server for registry and freezes the registry.
// A nil opts selects config.Default().
func New(registry *tool.Registry, opts *config.Options) *Server {
	if opts == nil {
		opts = config.Default()
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	registry.Freeze()

	baseCtx, cancel := context.WithCancel(context.Background())

	s := &Server{
		log:      log.With("component", "server"),
		opts:     opts,
		registry: registry,
		handler:  protocol.NewHandler(log, registry, opts.InvokeTimeout),
		baseCtx:  baseCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	if opts.MaxConnections > 0 {
		s.sem = semaphore.NewWeighted(int64(opts.MaxConnections))
	}

	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	s.upgrader = websocket.Upgrader{CheckOrigin: checkOrigin}
	s.router = s.routes()
	s.http = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", s.serveWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/call", s.serveCall).Methods(http.MethodPost)
	r.HandleFunc("/call/{tool}", s.serveCall).Methods(http.MethodPost)
	r.HandleFunc("/tools", s.serveTools).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.serveHealth).Methods(http.MethodGet)

	if s.opts.MCP {
		mcpServer := mcp.NewServer(s.log, s.handler, Name, Version)
		r.Handle("/mcp", mcp.HTTPHandler(mcpServer))
	}

	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Dispatcher returns the request handler shared by all transports.
func (s *Server) Dispatcher() *protocol.Handler {
	return s.handler
}

// ActiveConnections returns the number of open persistent connections.
func (s *Server) ActiveConnections() int64 {
	return s.active.Load()
}

// ListenAndServe listens on addr (HTTP and WebSocket) and tcpAddr
// (newline-delimited JSON) and serves until ctx is cancelled or Shutdown
// is called. Either address may be empty.
func (s *Server) ListenAndServe(ctx context.Context, addr, tcpAddr string) error {
	var httpLn, streamLn net.Listener

	if addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}

		httpLn = ln
	}

	if tcpAddr != "" {
		ln, err := net.Listen("tcp", tcpAddr)
		if err != nil {
			if httpLn != nil {
				_ = httpLn.Close()
			}

			return fmt.Errorf("listen %s: %w", tcpAddr, err)
		}

		streamLn = ln
	}

	return s.Serve(ctx, httpLn, streamLn)
}

// Serve serves HTTP on httpLn and newline-delimited JSON on streamLn until
// ctx is cancelled or Shutdown is called. Either listener may be nil.
// Cancelling ctx shuts the server down gracefully.
func (s *Server) Serve(ctx context.Context, httpLn, streamLn net.Listener) error {
	if httpLn == nil && streamLn == nil {
		return fmt.Errorf("server: no listeners")
	}

	g, gctx := errgroup.WithContext(ctx)

	if httpLn != nil {
		s.log.Info("Serving HTTP and WebSocket", "addr", httpLn.Addr().String(), "tools", s.registry.Len())

		g.Go(func() error {
			if err := s.http.Serve(httpLn); !stderrors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}

			return nil
		})
	}

	if streamLn != nil {
		if !s.addListener(streamLn) {
			return errors.ErrServerClosed
		}

		s.log.Info("Serving newline-delimited JSON", "addr", streamLn.Addr().String())

		g.Go(func() error {
			return s.acceptStreams(streamLn)
		})
	}

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.done:
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown stops accepting connections, closes every open session and
// waits for them to finish or for ctx to expire. It is safe to call more
// than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.log.Debug("Shutting down server")

		s.mu.Lock()
		s.closed = true
		listeners := s.listeners
		s.listeners = nil
		s.mu.Unlock()

		close(s.done)

		for _, ln := range listeners {
			_ = ln.Close()
		}

		s.cancel()

		errs := []error{s.http.Shutdown(ctx)}

		finished := make(chan struct{})

		go func() {
			s.wg.Wait()
			close(finished)
		}()

		select {
		case <-finished:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("waiting for sessions: %w", ctx.Err()))
		}

		s.shutdownErr = stderrors.Join(errs...)

		s.log.Info("Server stopped")
	})

	return s.shutdownErr
}

func (s *Server) addListener(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		_ = ln.Close()

		return false
	}

	s.listeners = append(s.listeners, ln)

	return true
}

// track registers a session with the shutdown wait group. It fails once
// Shutdown has started.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.wg.Add(1)

	return true
}

// acquire takes a connection slot without blocking.
func (s *Server) acquire() bool {
	if s.sem == nil {
		return true
	}

	return s.sem.TryAcquire(1)
}

func (s *Server) release() {
	if s.sem != nil {
		s.sem.Release(1)
	}
}

// runSession serves one connection to completion. Errors stay with the
// connection.
func (s *Server) runSession(id, remote string, conn protocol.Conn) {
	s.active.Add(1)
	defer s.active.Add(-1)

	log := s.log.With("remote", remote)
	session := protocol.NewSession(log, id, conn, s.handler)

	if err := session.Serve(s.baseCtx); err != nil {
		log.Debug("Connection ended with error", "conn_id", id, "error", err)
	}
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.acquire() {
		s.log.Warn("Refusing WebSocket connection", "remote", r.RemoteAddr, "error", errors.ErrConnectionLimit)
		http.Error(w, errors.ErrConnectionLimit.Error(), http.StatusServiceUnavailable)

		return
	}
	defer s.release()

	if !s.track() {
		http.Error(w, errors.ErrServerClosed.Error(), http.StatusServiceUnavailable)

		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)

		return
	}

	id := ulid.Make().String()
	ws := transport.NewWebSocket(s.log.With("conn_id", id), conn, transport.WebSocketOptions{
		PingInterval: s.opts.PingInterval,
		ReadLimit:    s.opts.ReadLimit,
		WriteTimeout: s.opts.WriteTimeout,
	})

	s.runSession(id, r.RemoteAddr, ws)
}

func (s *Server) acceptStreams(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() || stderrors.Is(err, net.ErrClosed) {
				return nil
			}

			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				s.log.Warn("Temporary accept error", "error", err)
				time.Sleep(acceptRetryDelay)

				continue
			}

			return fmt.Errorf("accept: %w", err)
		}

		if !s.acquire() {
			s.log.Warn("Refusing stream connection", "remote", conn.RemoteAddr().String(), "error", errors.ErrConnectionLimit)
			_ = conn.Close()

			continue
		}

		if !s.track() {
			s.release()
			_ = conn.Close()

			return nil
		}

		go func() {
			defer s.wg.Done()
			defer s.release()

			id := ulid.Make().String()
			stream := transport.NewStream(s.log.With("conn_id", id), conn, int(s.opts.ReadLimit))

			s.runSession(id, conn.RemoteAddr().String(), stream)
		}()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}
