package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeError(t *testing.T) {
	root := errors.New("unexpected end of JSON input")
	err := &DecodeError{Err: root}

	require.Equal(t, "invalid JSON", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsDispatchError())
}

func TestUnknownToolError(t *testing.T) {
	err := &UnknownToolError{Name: "nope"}

	require.Equal(t, "Unknown function", err.Error())
	require.ErrorIs(t, err, ErrUnknownTool)
	require.True(t, err.IsDispatchError())
}

func TestMissingParameterError(t *testing.T) {
	err := &MissingParameterError{Tool: "greeting", Param: "name"}

	require.Equal(t, "missing required parameter: name", err.Error())
	require.True(t, err.IsDispatchError())
}

func TestTypeMismatchError(t *testing.T) {
	t.Run("expected and got", func(t *testing.T) {
		err := &TypeMismatchError{Param: "top_k", Expected: "integer", Got: "string"}

		require.Equal(t, `parameter "top_k": expected integer, got string`, err.Error())
		require.NoError(t, err.Unwrap())
	})

	t.Run("schema failure", func(t *testing.T) {
		root := errors.New("does not match pattern")
		err := &TypeMismatchError{Param: "city_code", Err: root}

		require.Equal(t, `parameter "city_code": does not match pattern`, err.Error())
		require.ErrorIs(t, err, root)
	})
}

func TestToolExecutionError(t *testing.T) {
	root := errors.New("upstream returned 502")
	err := &ToolExecutionError{Tool: "weather", Err: root}

	require.Equal(t, "upstream returned 502", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsDispatchError())

	require.Equal(t, "tool weather failed", (&ToolExecutionError{Tool: "weather"}).Error())
}

func TestInvocationTimeoutError(t *testing.T) {
	err := &InvocationTimeoutError{Tool: "weather", Timeout: 2 * time.Second}

	require.Equal(t, "tool weather timed out after 2s (retryable)", err.Error())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, err.Retryable())
	require.True(t, IsRetryable(fmt.Errorf("wrapped: %w", err)))
	require.False(t, IsRetryable(errors.New("plain")))
}

func TestDuplicateToolError(t *testing.T) {
	err := &DuplicateToolError{Name: "greeting"}

	require.Equal(t, "tool already registered: greeting", err.Error())
	require.ErrorIs(t, err, ErrDuplicateTool)
}

func TestTransportFailure(t *testing.T) {
	root := errors.New("connection reset by peer")
	err := &TransportFailure{Op: "receive", Err: root}

	require.Equal(t, "transport failure during receive: connection reset by peer", err.Error())
	require.ErrorIs(t, err, root)

	var df DispatchError
	require.True(t, errors.As(fmt.Errorf("session: %w", err), &df))
}
