// Package server implements the connection acceptor.
//
// A Server serves one tool registry over several transports at once:
//
//	GET  /ws           WebSocket, one JSON envelope per text frame
//	POST /call         one-shot dispatch of a request envelope
//	POST /call/{tool}  one-shot dispatch with the tool name in the path
//	GET  /tools        tool listing
//	GET  /healthz      liveness and connection count
//	     /mcp          Model Context Protocol (streamable HTTP), optional
//
// plus newline-delimited JSON on a raw TCP listener. Each persistent
// connection runs its own protocol.Session; a failing connection never
// affects the others. The number of concurrent persistent connections is
// capped by Options.MaxConnections.
package server
