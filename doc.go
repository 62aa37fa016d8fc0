// Package wstools serves Go functions as remotely callable tools over
// WebSocket, HTTP, newline-delimited TCP and MCP.
//
// A request is a JSON object naming the tool in "func" and carrying its
// arguments either under "params" or as sibling fields:
//
//	{"func": "greeting", "params": {"name": "Ada"}}
//	{"func": "greeting", "name": "Ada"}
//
// Every request gets exactly one reply, {"result": ...} or {"error": "..."}.
//
// # Serving Tools
//
// Register tools on a Registry, then serve it:
//
//	reg := wstools.NewRegistry()
//	err := reg.RegisterFunc("greeting", "Greets someone",
//	    []wstools.Param{wstools.Required("name", wstools.TypeString)},
//	    func(ctx context.Context, args wstools.Args) (any, error) {
//	        return fmt.Sprintf("Hello, %s!", args.String("name")), nil
//	    },
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := wstools.NewServer(reg,
//	    wstools.WithLogger(slog.Default()),
//	    wstools.WithInvokeTimeout(10*time.Second),
//	)
//
//	err = srv.ListenAndServe(ctx, ":8765", "")
//
// NewServer freezes the registry; tools cannot be added afterwards.
//
// # Calling Tools
//
// WithClient dials a server, runs a callback and closes the connection:
//
//	err := wstools.WithClient(ctx, "ws://localhost:8765/ws", func(c wstools.Client) error {
//	    result, err := c.Call(ctx, "greeting", map[string]any{"name": "Ada"})
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(result)
//	    return nil
//	}, nil)
//
// # Error Handling
//
// Errors returned by a tool are sent to the caller verbatim. Binding and
// lookup failures are typed:
//
//	if missing, ok := errors.AsType[*wstools.MissingParameterError](err); ok {
//	    fmt.Println("missing", missing.Param)
//	}
//
// A tool that outlives the invocation timeout yields an
// InvocationTimeoutError, which IsRetryable reports as retryable.
package wstools
