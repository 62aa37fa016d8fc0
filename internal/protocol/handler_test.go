package protocol

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/tool"
)

func TestHandler_Handle(t *testing.T) {
	h := NewHandler(nil, testRegistry(t), 0)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"flat success", `{"func":"greeting","name":"Ada"}`, `{"result":"Hello, Ada!"}`},
		{"nested success", `{"func":"greeting","params":{"name":"Ada"}}`, `{"result":"Hello, Ada!"}`},
		{"null result", `{"func":"nothing"}`, `{"result":null}`},
		{"malformed", `not-json`, `{"error":"invalid JSON"}`},
		{"non-object", `[1]`, `{"error":"invalid JSON"}`},
		{"unknown tool", `{"func":"nope"}`, `{"error":"Unknown function"}`},
		{"missing func", `{"name":"Ada"}`, `{"error":"Unknown function"}`},
		{"missing parameter", `{"func":"greeting"}`, `{"error":"missing required parameter: name"}`},
		{"tool error verbatim", `{"func":"fail"}`, `{"error":"division by zero"}`},
		{"tool panic", `{"func":"boom"}`, `{"error":"tool boom panicked: kaboom"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.Handle(context.Background(), []byte(tt.payload))
			require.JSONEq(t, tt.want, string(Marshal(resp)))
		})
	}
}

func TestHandler_ErrorTypes(t *testing.T) {
	h := NewHandler(nil, testRegistry(t), 0)

	resp := h.Handle(context.Background(), []byte(`{"func":"fail"}`))

	var execErr *errors.ToolExecutionError
	require.True(t, stderrors.As(resp.Err, &execErr))
	require.Equal(t, "fail", execErr.Tool)

	resp = h.Handle(context.Background(), []byte(`{"func":"nope"}`))
	require.ErrorIs(t, resp.Err, errors.ErrUnknownTool)
}

func slowRegistry(t *testing.T) *tool.Registry {
	t.Helper()

	reg := tool.NewRegistry()

	require.NoError(t, reg.RegisterFunc("cooperative", "", nil,
		func(ctx context.Context, _ tool.Args) (any, error) {
			<-ctx.Done()

			return nil, ctx.Err()
		},
	))

	require.NoError(t, reg.RegisterFunc("stubborn", "", nil,
		func(context.Context, tool.Args) (any, error) {
			time.Sleep(500 * time.Millisecond)

			return "late", nil
		},
	))

	return reg
}

func TestHandler_Timeout(t *testing.T) {
	h := NewHandler(nil, slowRegistry(t), 20*time.Millisecond)

	for _, name := range []string{"cooperative", "stubborn"} {
		t.Run(name, func(t *testing.T) {
			resp := h.Handle(context.Background(), []byte(`{"func":"`+name+`"}`))
			require.True(t, resp.Failed())

			var timeout *errors.InvocationTimeoutError
			require.True(t, stderrors.As(resp.Err, &timeout))
			require.True(t, errors.IsRetryable(resp.Err))
			require.ErrorIs(t, resp.Err, context.DeadlineExceeded)
			require.JSONEq(t,
				`{"error":"tool `+name+` timed out after 20ms (retryable)"}`,
				string(Marshal(resp)),
			)
		})
	}
}

func TestHandler_CallerCancellation(t *testing.T) {
	h := NewHandler(nil, slowRegistry(t), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := h.Handle(ctx, []byte(`{"func":"cooperative"}`))
	require.True(t, resp.Failed())
	require.False(t, errors.IsRetryable(resp.Err))
	require.ErrorIs(t, resp.Err, context.Canceled)
}
