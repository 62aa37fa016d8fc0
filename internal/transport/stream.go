package transport

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/protocol"
)

// DefaultMaxLineSize is the largest message a Stream accepts when no read
// limit is configured.
const DefaultMaxLineSize = 1024 * 1024

// Compile-time verification that Stream implements protocol.Conn.
var _ protocol.Conn = (*Stream)(nil)

// Stream is a protocol.Conn carrying newline-delimited JSON over a
// net.Conn. Blank lines are skipped.
type Stream struct {
	log     *slog.Logger
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps conn. maxLineSize caps one message; zero selects
// DefaultMaxLineSize.
func NewStream(log *slog.Logger, conn net.Conn, maxLineSize int) *Stream {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)

	return &Stream{
		log:     log.With("component", "stream", "remote", conn.RemoteAddr().String()),
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(conn),
	}
}

// ReceiveText returns the next non-blank line without its terminator.
func (s *Stream) ReceiveText(ctx context.Context) (string, error) {
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		return string(line), nil
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	err := s.scanner.Err()
	if err == nil {
		return "", fmt.Errorf("%w: %v", errors.ErrTransportDisconnect, io.EOF)
	}

	s.log.Debug("Stream read failed", "error", err)

	return "", classifyStream("receive", err)
}

// SendText writes text followed by a newline.
func (s *Stream) SendText(ctx context.Context, text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return classifyStream("send", err)
	}

	if _, err := s.writer.WriteString(text); err != nil {
		return classifyStream("send", err)
	}

	if err := s.writer.WriteByte('\n'); err != nil {
		return classifyStream("send", err)
	}

	if err := s.writer.Flush(); err != nil {
		return classifyStream("send", err)
	}

	return nil
}

// Close closes the underlying connection. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})

	return s.closeErr
}

func classifyStream(op string, err error) error {
	if stderrors.Is(err, io.EOF) ||
		stderrors.Is(err, net.ErrClosed) ||
		stderrors.Is(err, io.ErrClosedPipe) {
		return fmt.Errorf("%w: %v", errors.ErrTransportDisconnect, err)
	}

	return &errors.TransportFailure{Op: op, Err: err}
}
