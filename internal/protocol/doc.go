// Package protocol implements the tool-dispatch wire protocol.
//
// A peer sends one JSON object per request and receives one JSON object per
// response. Requests name the tool in "func" and carry arguments either
// nested under "params" or as sibling top-level fields:
//
//	{"func": "greeting", "params": {"name": "Ada"}}
//	{"func": "greeting", "name": "Ada"}
//
// Responses carry exactly one of "result" or "error":
//
//	{"result": "Hello, Ada!"}
//	{"error": "Unknown function"}
//
// The package provides:
//   - DecodeRequest and Response, the envelope codec
//   - Bind, which maps a request onto a tool's declared parameters
//   - Handler, which runs one request end to end and never fails
//   - Session, the per-connection receive/dispatch/send loop
//
// Example usage:
//
//	handler := protocol.NewHandler(log, registry, 30*time.Second)
//	session := protocol.NewSession(log, connID, conn, handler)
//
//	// Blocks until the peer disconnects or ctx is cancelled
//	err := session.Serve(ctx)
package protocol
