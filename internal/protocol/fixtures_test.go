package protocol

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/tool"
)

// fakeConn is an in-memory Conn. Closing in simulates a peer disconnect.
type fakeConn struct {
	in      chan string
	out     chan string
	recvErr error
	sendErr error
	closed  atomic.Bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:  make(chan string, 16),
		out: make(chan string, 16),
	}
}

func (c *fakeConn) ReceiveText(ctx context.Context) (string, error) {
	if c.recvErr != nil {
		return "", c.recvErr
	}

	select {
	case msg, ok := <-c.in:
		if !ok {
			return "", errors.ErrTransportDisconnect
		}

		return msg, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *fakeConn) SendText(_ context.Context, text string) error {
	if c.sendErr != nil {
		return c.sendErr
	}

	c.out <- text

	return nil
}

func (c *fakeConn) Close() error {
	c.closed.Store(true)

	return nil
}

// next returns the next message the session sent.
func (c *fakeConn) next(t *testing.T) string {
	t.Helper()

	select {
	case msg := <-c.out:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")

		return ""
	}
}

// testRegistry holds the tools used across the package tests.
func testRegistry(t *testing.T) *tool.Registry {
	t.Helper()

	reg := tool.NewRegistry()

	require.NoError(t, reg.RegisterFunc("greeting", "Greets someone",
		[]tool.Param{tool.Required("name", tool.TypeString)},
		func(_ context.Context, args tool.Args) (any, error) {
			return fmt.Sprintf("Hello, %s!", args.String("name")), nil
		},
	))

	require.NoError(t, reg.RegisterFunc("retrieve", "Similarity search",
		[]tool.Param{
			tool.Required("question", tool.TypeString),
			tool.Optional("top_k", tool.TypeInteger, 5),
			tool.Optional("store", tool.TypeString, "url"),
			tool.Optional("filters", tool.TypeObject, map[string]any{"lang": "en"}),
		},
		func(_ context.Context, args tool.Args) (any, error) {
			return map[string]any(args), nil
		},
	))

	require.NoError(t, reg.RegisterFunc("fail", "Always fails", nil,
		func(context.Context, tool.Args) (any, error) {
			return nil, fmt.Errorf("division by zero")
		},
	))

	require.NoError(t, reg.RegisterFunc("boom", "Panics", nil,
		func(context.Context, tool.Args) (any, error) {
			panic("kaboom")
		},
	))

	require.NoError(t, reg.RegisterFunc("nothing", "Returns null", nil,
		func(context.Context, tool.Args) (any, error) {
			return nil, nil
		},
	))

	reg.Freeze()

	return reg
}
