package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wagiedev/wstools-go/internal/client"
	"github.com/wagiedev/wstools-go/internal/protocol"
)

// DefaultWebSocketURL is the endpoint of a local server with default settings.
const DefaultWebSocketURL = "ws://localhost:8765/ws"

// NewCallCommand builds "wstools call".
func NewCallCommand() *cobra.Command {
	var (
		url     string
		timeout time.Duration
		flat    bool
	)

	cmd := &cobra.Command{
		Use:   "call <tool> [key=value...]",
		Short: "Call one tool and print the response envelope",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := ParseArgs(args[1:])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			return runCall(ctx, cmd, url, args[0], params, flat)
		},
	}

	cmd.Flags().StringVar(&url, "url", DefaultWebSocketURL, "WebSocket endpoint of the server")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")
	cmd.Flags().BoolVar(&flat, "flat", false, "Send arguments as top-level fields instead of under params")

	return cmd
}

func runCall(ctx context.Context, cmd *cobra.Command, url, fn string, params map[string]any, flat bool) error {
	c, err := client.Dial(ctx, url, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	request := map[string]any{protocol.FieldFunc: fn, protocol.FieldParams: params}

	if flat {
		request = map[string]any{protocol.FieldFunc: fn}
		for k, v := range params {
			request[k] = v
		}
	}

	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.Do(ctx, data)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(protocol.Marshal(resp)))

	if resp.Failed() {
		return fmt.Errorf("%s failed: %w", fn, resp.Err)
	}

	return nil
}

// ParseArgs turns key=value pairs into tool arguments. A value that
// parses as JSON keeps its JSON type; any other value is a string.
func ParseArgs(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", pair)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}

		params[key] = value
	}

	return params, nil
}
