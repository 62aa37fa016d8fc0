package protocol

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/tool"
)

// Handler runs single requests against a registry.
//
// Handle never fails: every error becomes an error envelope. A Handler is
// safe for concurrent use by many sessions.
type Handler struct {
	log      *slog.Logger
	registry *tool.Registry
	timeout  time.Duration
}

// NewHandler creates a handler. A timeout of zero disables the
// per-invocation deadline.
func NewHandler(log *slog.Logger, registry *tool.Registry, timeout time.Duration) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Handler{
		log:      log.With("component", "dispatch"),
		registry: registry,
		timeout:  timeout,
	}
}

// Registry returns the registry requests are resolved against.
func (h *Handler) Registry() *tool.Registry {
	return h.registry
}

// Handle decodes raw and dispatches it.
func (h *Handler) Handle(ctx context.Context, raw []byte) Response {
	req, err := DecodeRequest(raw)
	if err != nil {
		h.log.Debug("Rejected malformed request", "error", err, "bytes", len(raw))

		return Failure(err)
	}

	return h.Dispatch(ctx, req)
}

// Dispatch resolves, binds and invokes a decoded request.
func (h *Handler) Dispatch(ctx context.Context, req *Request) Response {
	d, err := h.registry.Lookup(req.Func)
	if err != nil {
		h.log.Debug("Unknown tool requested", "tool", req.Func)

		return Failure(err)
	}

	args, err := Bind(req, d)
	if err != nil {
		h.log.Debug("Failed to bind arguments", "tool", d.Name(), "error", err)

		return Failure(err)
	}

	start := time.Now()

	result, err := h.invoke(ctx, d, args)
	if err != nil {
		h.log.Warn("Tool call failed",
			"tool", d.Name(),
			"duration", time.Since(start),
			"error", err,
		)

		return Failure(err)
	}

	h.log.Debug("Tool call completed", "tool", d.Name(), "duration", time.Since(start))

	return Success(result)
}

type outcome struct {
	result any
	err    error
}

// invoke runs the tool in its own goroutine so a stuck tool cannot hold the
// session past its deadline. Panics are reported as tool failures.
func (h *Handler) invoke(ctx context.Context, d *tool.Descriptor, args tool.Args) (any, error) {
	invokeCtx, cancel := h.withTimeout(ctx)
	defer cancel()

	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool %s panicked: %v", d.Name(), r)}
			}
		}()

		result, err := d.Invoke(invokeCtx, args)
		done <- outcome{result: result, err: err}
	}()

	select {
	case o := <-done:
		if o.err == nil {
			return o.result, nil
		}

		if h.timedOut(ctx, invokeCtx) {
			return nil, &errors.InvocationTimeoutError{Tool: d.Name(), Timeout: h.timeout}
		}

		return nil, &errors.ToolExecutionError{Tool: d.Name(), Err: o.err}
	case <-invokeCtx.Done():
		if h.timedOut(ctx, invokeCtx) {
			return nil, &errors.InvocationTimeoutError{Tool: d.Name(), Timeout: h.timeout}
		}

		return nil, &errors.ToolExecutionError{Tool: d.Name(), Err: invokeCtx.Err()}
	}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, h.timeout)
}

// timedOut reports whether the invocation deadline fired while the caller's
// own context is still live.
func (h *Handler) timedOut(parent, invokeCtx context.Context) bool {
	return h.timeout > 0 &&
		parent.Err() == nil &&
		stderrors.Is(invokeCtx.Err(), context.DeadlineExceeded)
}
