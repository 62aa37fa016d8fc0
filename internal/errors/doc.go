// Package errors defines the error taxonomy of the tool-dispatch protocol.
//
// Per-request errors (decode, unknown tool, binding, tool execution, timeout)
// are recovered by the dispatcher and turned into response envelopes. Transport
// errors end a single connection. All error types support unwrapping and can
// be checked with errors.Is and errors.As.
package errors
