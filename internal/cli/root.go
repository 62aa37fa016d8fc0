package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the wstools command tree. Each call gets its own
// viper instance so commands can be built repeatedly in tests.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "wstools",
		Short: "Serve and call JSON tools over WebSocket",
		Long: `wstools serves a registry of named tools over WebSocket, HTTP,
newline-delimited TCP and MCP, and calls them from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default: wstools.yaml in ., ./config or $HOME/.wstools)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")

	bindFlag(v, "log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag(v, "log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(NewServeCommand(v))
	rootCmd.AddCommand(NewCallCommand())
	rootCmd.AddCommand(NewToolsCommand())

	return rootCmd
}

// Execute runs the root command with ctx and exits non-zero on error.
func Execute(ctx context.Context) {
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	return cmd.ExecuteContext(ctx)
}
