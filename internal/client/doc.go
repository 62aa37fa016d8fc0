// Package client implements a WebSocket client for the tool server.
//
// A Client sends request envelopes and decodes the reply of each one. It
// is what the wstools call command and the integration tests use to talk
// to a running server.
package client
