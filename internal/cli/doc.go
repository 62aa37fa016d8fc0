// Package cli implements the wstools command line.
//
// # Commands
//
//	wstools serve                      run the tool server
//	wstools call <tool> key=value...   call one tool over WebSocket
//	wstools tools                      list the tools of a running server
//
// serve reads wstools.yaml from ".", "./config" or "$HOME/.wstools"
// (or the file named by --config). Environment variables prefixed with
// WSTOOLS_ and command line flags override file values:
//
//	WSTOOLS_SERVER_ADDR=:9000 wstools serve --sets demo,text
//
// # Call Arguments
//
// Each key=value argument becomes one tool parameter. Values that parse
// as JSON keep their type; anything else is sent as a string:
//
//	wstools call rag_query query="cancel order" top_k=2
//	wstools call test path='{"start":"a"}' test1=x test2='["a","b"]'
package cli
