package protocol

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/wagiedev/wstools-go/internal/errors"
)

// Conn is one accepted transport connection carrying text messages.
//
// ReceiveText blocks until the next message arrives. Both methods return an
// error wrapping errors.ErrTransportDisconnect when the peer has gone away.
type Conn interface {
	ReceiveText(ctx context.Context) (string, error)
	SendText(ctx context.Context, text string) error
	Close() error
}

// State is the lifecycle state of a Session.
type State int32

const (
	// StateAccepting is the state before Serve is called.
	StateAccepting State = iota
	// StateOpen is the state while the receive loop runs.
	StateOpen
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAccepting:
		return "accepting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Session serves requests on one connection.
//
// Requests are processed strictly in order: the next message is not read
// until the response to the current one has been sent. Per-request failures
// are answered with an error envelope and never end the session.
type Session struct {
	id      string
	conn    Conn
	handler *Handler
	log     *slog.Logger

	state    atomic.Int32
	requests atomic.Int64
}

// NewSession creates a session in StateAccepting.
func NewSession(log *slog.Logger, id string, conn Conn, handler *Handler) *Session {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{
		id:      id,
		conn:    conn,
		handler: handler,
		log:     log.With("component", "session", "conn_id", id),
	}
}

// ID returns the connection identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Requests returns the number of requests answered so far.
func (s *Session) Requests() int64 {
	return s.requests.Load()
}

// Serve runs the receive/dispatch/send loop until the peer disconnects, the
// transport fails or ctx is cancelled. The connection is closed on return.
//
// A clean disconnect and cancellation return nil. Transport I/O errors
// return a *errors.TransportFailure.
func (s *Session) Serve(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateAccepting), int32(StateOpen)) {
		return fmt.Errorf("session %s: serve called in state %s", s.id, s.State())
	}

	s.log.Debug("Session opened")

	err := s.loop(ctx)
	s.close()

	if err != nil {
		s.log.Warn("Session closed by transport failure", "error", err, "requests", s.Requests())

		return err
	}

	s.log.Debug("Session closed", "requests", s.Requests())

	return nil
}

func (s *Session) loop(ctx context.Context) error {
	for {
		text, err := s.conn.ReceiveText(ctx)
		if err != nil {
			return s.terminal(ctx, "receive", err)
		}

		resp := s.handler.Handle(ctx, []byte(text))

		if err := s.conn.SendText(ctx, string(Marshal(resp))); err != nil {
			return s.terminal(ctx, "send", err)
		}

		s.requests.Add(1)
	}
}

// terminal classifies the error that ended the loop.
func (s *Session) terminal(ctx context.Context, op string, err error) error {
	if stderrors.Is(err, errors.ErrTransportDisconnect) {
		s.log.Debug("Peer disconnected", "op", op)

		return nil
	}

	if ctx.Err() != nil {
		s.log.Debug("Session context cancelled", "op", op)

		return nil
	}

	var failure *errors.TransportFailure
	if stderrors.As(err, &failure) {
		return failure
	}

	return &errors.TransportFailure{Op: op, Err: err}
}

func (s *Session) close() {
	s.state.Store(int32(StateClosed))

	if err := s.conn.Close(); err != nil {
		s.log.Debug("Error closing connection", "error", err)
	}
}
