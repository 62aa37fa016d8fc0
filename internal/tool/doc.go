// Package tool implements tool descriptors and the tool registry.
//
// A Descriptor pairs a tool name with an explicit, ordered parameter schema
// and a Handler. Binding is data-driven from that schema; nothing inspects
// handler signatures at call time.
//
// The Registry is constructed explicitly and filled during startup:
//
//	reg := tool.NewRegistry()
//	err := reg.RegisterFunc("greeting", "Greets someone",
//	    []tool.Param{tool.Required("name", tool.TypeString)},
//	    func(ctx context.Context, args tool.Args) (any, error) {
//	        return "Hello, " + args.String("name") + "!", nil
//	    },
//	)
//	reg.Freeze()
package tool
