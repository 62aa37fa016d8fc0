package wstools

import (
	"context"

	"github.com/wagiedev/wstools-go/internal/client"
)

// Client calls tools on a server over one WebSocket connection.
//
// A connection carries one request at a time; concurrent calls on one
// Client wait for each other. Clients are single-use: after Close, dial
// a new one.
//
// Example usage:
//
//	c, err := wstools.Dial(ctx, "ws://localhost:8765/ws", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	result, err := c.Call(ctx, "reverse", map[string]any{"text": "abc"})
type Client interface {
	// Call invokes fn with nested arguments and returns its result.
	// A failure reported by the server is returned as a *RemoteError.
	Call(ctx context.Context, fn string, params map[string]any) (any, error)

	// Do sends one raw request envelope and returns the decoded reply.
	// The error is only set when the round trip itself fails.
	Do(ctx context.Context, request []byte) (Response, error)

	// Close terminates the connection. Safe to call multiple times.
	Close() error
}

// DialOptions configures Dial. A nil *DialOptions selects the defaults.
type DialOptions = client.Options

// Dial connects to the WebSocket endpoint at url, e.g.
// "ws://localhost:8765/ws".
func Dial(ctx context.Context, url string, opts *DialOptions) (Client, error) {
	c, err := client.Dial(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	return c, nil
}
