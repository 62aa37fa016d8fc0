package wstools

import (
	"context"
	"fmt"
)

// WithClient manages client lifecycle with automatic cleanup.
//
// It dials url, runs fn with the connected client and closes the client
// when fn returns. The error of fn is returned unchanged; a failure to
// close is logged and never overrides it.
func WithClient(ctx context.Context, url string, fn func(Client) error, opts *DialOptions) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	c, err := Dial(ctx, url, opts)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			log := NopLogger()
			if opts != nil && opts.Logger != nil {
				log = opts.Logger
			}

			log.Warn("failed to close client", "error", closeErr)
		}
	}()

	return fn(c)
}
