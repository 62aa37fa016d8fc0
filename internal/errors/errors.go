package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DispatchError is the base interface for all tool-dispatch errors.
//
// The Error text of a DispatchError is exactly what is placed in the
// "error" field of a response envelope.
type DispatchError interface {
	error
	IsDispatchError() bool
}

// Compile-time verification that all error types implement DispatchError.
var (
	_ DispatchError = (*DecodeError)(nil)
	_ DispatchError = (*UnknownToolError)(nil)
	_ DispatchError = (*MissingParameterError)(nil)
	_ DispatchError = (*TypeMismatchError)(nil)
	_ DispatchError = (*ToolExecutionError)(nil)
	_ DispatchError = (*InvocationTimeoutError)(nil)
	_ DispatchError = (*DuplicateToolError)(nil)
	_ DispatchError = (*TransportFailure)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrTransportDisconnect indicates the peer closed the connection.
	// It is terminal for the connection and is never sent to the peer.
	ErrTransportDisconnect = errors.New("transport disconnected")

	// ErrUnknownTool indicates a lookup for a name that is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateTool indicates a second registration under an existing name.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrEmptyToolName indicates a descriptor without a name.
	ErrEmptyToolName = errors.New("tool name is empty")

	// ErrNilHandler indicates a descriptor without a callable.
	ErrNilHandler = errors.New("tool handler is nil")

	// ErrRegistryFrozen indicates a registration after serving started.
	ErrRegistryFrozen = errors.New("registry is frozen: register tools before serving")

	// ErrServerClosed indicates the acceptor has been shut down.
	ErrServerClosed = errors.New("server closed")

	// ErrConnectionLimit indicates a connection was refused because the
	// acceptor is at its concurrent connection cap.
	ErrConnectionLimit = errors.New("connection limit reached")

	// ErrClientClosed indicates a call on a client after Close.
	ErrClientClosed = errors.New("client closed")
)

// DecodeError indicates the inbound payload was not a JSON object.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "invalid JSON"
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDispatchError implements DispatchError.
func (e *DecodeError) IsDispatchError() bool { return true }

// UnknownToolError indicates the requested function is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "Unknown function"
}

func (e *UnknownToolError) Unwrap() error {
	return ErrUnknownTool
}

// IsDispatchError implements DispatchError.
func (e *UnknownToolError) IsDispatchError() bool { return true }

// MissingParameterError indicates a required parameter had no value and no default.
type MissingParameterError struct {
	Tool  string
	Param string
}

func (e *MissingParameterError) Error() string {
	return "missing required parameter: " + e.Param
}

// IsDispatchError implements DispatchError.
func (e *MissingParameterError) IsDispatchError() bool { return true }

// TypeMismatchError indicates a parameter value does not match its declared type.
type TypeMismatchError struct {
	Tool     string
	Param    string
	Expected string
	Got      string
	Err      error
}

func (e *TypeMismatchError) Error() string {
	if e.Expected == "" && e.Err != nil {
		return fmt.Sprintf("parameter %q: %v", e.Param, e.Err)
	}

	return fmt.Sprintf("parameter %q: expected %s, got %s", e.Param, e.Expected, e.Got)
}

func (e *TypeMismatchError) Unwrap() error {
	return e.Err
}

// IsDispatchError implements DispatchError.
func (e *TypeMismatchError) IsDispatchError() bool { return true }

// ToolExecutionError indicates the invoked tool itself failed.
// The message of the underlying error is surfaced verbatim.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	if e.Err == nil {
		return "tool " + e.Tool + " failed"
	}

	return e.Err.Error()
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// IsDispatchError implements DispatchError.
func (e *ToolExecutionError) IsDispatchError() bool { return true }

// InvocationTimeoutError indicates a tool did not finish within the
// per-invocation deadline. The call may be retried.
type InvocationTimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e *InvocationTimeoutError) Error() string {
	return fmt.Sprintf("tool %s timed out after %s (retryable)", e.Tool, e.Timeout)
}

func (e *InvocationTimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// Retryable reports that a timed out call may be sent again.
func (e *InvocationTimeoutError) Retryable() bool { return true }

// IsDispatchError implements DispatchError.
func (e *InvocationTimeoutError) IsDispatchError() bool { return true }

// DuplicateToolError indicates a registration collided with an existing name.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("%v: %s", ErrDuplicateTool, e.Name)
}

func (e *DuplicateToolError) Unwrap() error {
	return ErrDuplicateTool
}

// IsDispatchError implements DispatchError.
func (e *DuplicateToolError) IsDispatchError() bool { return true }

// TransportFailure indicates an unexpected I/O error on a connection.
// It is terminal for that connection only.
type TransportFailure struct {
	Op  string
	Err error
}

func (e *TransportFailure) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}

// IsDispatchError implements DispatchError.
func (e *TransportFailure) IsDispatchError() bool { return true }

// IsRetryable reports whether err carries a retryable dispatch failure.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}

	return false
}
