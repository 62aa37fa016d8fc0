package wstools

import (
	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/protocol"
)

// Re-export error types from internal package

// DispatchError is implemented by every error the server reports.
type DispatchError = errors.DispatchError

// DecodeError indicates a request payload that is not a JSON object.
type DecodeError = errors.DecodeError

// UnknownToolError indicates a request for an unregistered tool.
type UnknownToolError = errors.UnknownToolError

// MissingParameterError indicates a required parameter was not supplied.
type MissingParameterError = errors.MissingParameterError

// TypeMismatchError indicates an argument of the wrong JSON type.
type TypeMismatchError = errors.TypeMismatchError

// ToolExecutionError wraps an error returned or panicked by a tool.
type ToolExecutionError = errors.ToolExecutionError

// InvocationTimeoutError indicates a tool did not finish in time.
type InvocationTimeoutError = errors.InvocationTimeoutError

// DuplicateToolError indicates a second registration under one name.
type DuplicateToolError = errors.DuplicateToolError

// TransportFailure indicates a connection failed other than by a clean close.
type TransportFailure = errors.TransportFailure

// RemoteError is an error message received by a Client.
type RemoteError = protocol.RemoteError

// Re-export sentinel errors from internal package.
var (
	// ErrTransportDisconnect indicates the peer closed the connection.
	ErrTransportDisconnect = errors.ErrTransportDisconnect

	// ErrUnknownTool matches every UnknownToolError.
	ErrUnknownTool = errors.ErrUnknownTool

	// ErrDuplicateTool matches every DuplicateToolError.
	ErrDuplicateTool = errors.ErrDuplicateTool

	// ErrRegistryFrozen indicates a registration after serving started.
	ErrRegistryFrozen = errors.ErrRegistryFrozen

	// ErrServerClosed indicates the server has been shut down.
	ErrServerClosed = errors.ErrServerClosed

	// ErrConnectionLimit indicates a connection refused at the cap.
	ErrConnectionLimit = errors.ErrConnectionLimit

	// ErrClientClosed indicates a call on a closed client.
	ErrClientClosed = errors.ErrClientClosed
)

// IsRetryable reports whether err marks a call that may be retried.
func IsRetryable(err error) bool {
	return errors.IsRetryable(err)
}
