// Package transport adapts network connections to protocol.Conn.
//
// Two transports are provided:
//   - WebSocket: one text frame per message, over gorilla/websocket
//   - Stream: newline-delimited JSON over any net.Conn (raw TCP)
//
// Both map a clean peer close to errors.ErrTransportDisconnect and every
// other I/O error to *errors.TransportFailure.
package transport
