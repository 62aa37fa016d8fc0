// Package mcp exposes a tool registry as a Model Context Protocol server.
//
// Every registered tool becomes an MCP tool with the input schema derived
// from its declared parameters. Calls run through the same dispatch handler
// as the WebSocket protocol, so binding rules and error texts are identical;
// failures come back as error results rather than protocol errors.
package mcp
