package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/wstools-go/internal/protocol"
	"github.com/wagiedev/wstools-go/internal/tool"
)

// NewServer builds an MCP server offering every tool in the handler's
// registry.
func NewServer(log *slog.Logger, handler *protocol.Handler, name, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)

	for _, d := range handler.Registry().List() {
		server.AddTool(NewTool(d), toolHandler(log, handler, d.Name()))
	}

	return server
}

// HTTPHandler serves server over the streamable HTTP transport.
func HTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

// NewTool converts a descriptor to an MCP tool definition.
func NewTool(d *tool.Descriptor) *mcp.Tool {
	return &mcp.Tool{
		Name:        d.Name(),
		Description: d.Description(),
		InputSchema: d.InputSchema(),
	}
}

func toolHandler(log *slog.Logger, handler *protocol.Handler, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := ParseArguments(req)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		resp := handler.Dispatch(ctx, protocol.NewRequest(name, args))
		if resp.Failed() {
			if log != nil {
				log.Debug("MCP tool call failed", "tool", name, "error", resp.Err)
			}

			return ErrorResult(resp.Err.Error()), nil
		}

		return ValueResult(resp.Result)
	}
}

// ValueResult renders a tool result as text content. Strings are passed
// through; every other value is JSON-encoded.
func ValueResult(value any) (*mcp.CallToolResult, error) {
	if s, ok := value.(string); ok {
		return TextResult(s), nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}

	return TextResult(string(data)), nil
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult indicating an error.
func ErrorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	if args == nil {
		args = make(map[string]any)
	}

	return args, nil
}
