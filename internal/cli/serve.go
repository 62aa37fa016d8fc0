package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wagiedev/wstools-go/internal/config"
	"github.com/wagiedev/wstools-go/internal/server"
	"github.com/wagiedev/wstools-go/internal/tools"
)

// NewServeCommand builds "wstools serve".
func NewServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tool server",
		Long: `Run the tool server until interrupted.

Endpoints: GET /ws (WebSocket), POST /call, POST /call/{tool}, GET /tools,
GET /healthz and /mcp on --addr; newline-delimited JSON on --tcp-addr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			return runServe(cmd, v, configPath)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "HTTP and WebSocket listen address (default :8765)")
	flags.String("tcp-addr", "", "Newline-delimited JSON listen address (disabled when empty)")
	flags.Int("max-connections", 0, "Cap on concurrent connections, 0 for unbounded (default 1024)")
	flags.Duration("invoke-timeout", 0, "Per-call tool timeout (default 30s)")
	flags.Duration("ping-interval", 0, "WebSocket keepalive interval (default 30s)")
	flags.Int64("read-limit", 0, "Maximum inbound message size in bytes (default 1MiB)")
	flags.Bool("mcp", true, "Mount the MCP endpoint at /mcp")
	flags.StringSlice("sets", nil, "Tool sets to register: demo, text, vector, rag, url, sql (default all)")
	flags.String("seed-file", "", "url store seed file (.json or .yaml)")
	flags.String("redis-addr", "", "Persist RAG documents in Redis at this address")
	flags.String("sql-dsn", "", "Run sql_query against this PostgreSQL DSN")
	flags.String("weather-url", "", "Base URL of the weather service")

	for key, name := range map[string]string{
		"server.addr":            "addr",
		"server.tcp_addr":        "tcp-addr",
		"server.max_connections": "max-connections",
		"server.invoke_timeout":  "invoke-timeout",
		"server.ping_interval":   "ping-interval",
		"server.read_limit":      "read-limit",
		"server.mcp":             "mcp",
		"tools.sets":             "sets",
		"rag.seed_file":          "seed-file",
		"rag.redis_addr":         "redis-addr",
		"sql.dsn":                "sql-dsn",
		"weather.base_url":       "weather-url",
	} {
		bindFlag(v, key, flags.Lookup(name))
	}

	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper, configPath string) error {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}

	log, err := cfg.Log.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, closeTools, err := tools.Build(ctx, log, cfg)
	if err != nil {
		return fmt.Errorf("build tools: %w", err)
	}

	defer func() {
		if err := closeTools(); err != nil {
			log.Warn("Failed to close tool backends", "error", err)
		}
	}()

	opts := config.Default()
	opts.Logger = log
	cfg.Apply(opts)

	srv := server.New(registry, opts)

	log.Info("Starting wstools", "version", server.Version, "tools", registry.Names())

	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.TCPAddr)
}

// bindFlag ties a viper key to a flag. Flags override the environment and
// the config file only when set on the command line.
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}
