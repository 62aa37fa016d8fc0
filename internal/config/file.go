package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. WSTOOLS_SERVER_ADDR.
const EnvPrefix = "WSTOOLS"

// File is the configuration of the wstools binary, loaded from
// wstools.yaml, the environment and flags.
type File struct {
	Server  ServerFile  `mapstructure:"server"`
	Log     LogFile     `mapstructure:"log"`
	Tools   ToolsFile   `mapstructure:"tools"`
	Weather WeatherFile `mapstructure:"weather"`
	RAG     RAGFile     `mapstructure:"rag"`
	SQL     SQLFile     `mapstructure:"sql"`
}

// ServerFile holds the acceptor settings.
type ServerFile struct {
	Addr           string        `mapstructure:"addr"`
	TCPAddr        string        `mapstructure:"tcp_addr"`
	MaxConnections int           `mapstructure:"max_connections"`
	InvokeTimeout  time.Duration `mapstructure:"invoke_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	MCP            bool          `mapstructure:"mcp"`
}

// LogFile holds the logging settings.
type LogFile struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ToolsFile selects the tool sets to register.
type ToolsFile struct {
	Sets []string `mapstructure:"sets"`
}

// WeatherFile configures the weather tool.
type WeatherFile struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RAGFile configures the vector store behind the retrieval tools.
type RAGFile struct {
	SeedFile    string `mapstructure:"seed_file"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

// SQLFile configures the sql_query tool. An empty DSN selects the mock
// executor.
type SQLFile struct {
	DSN string `mapstructure:"dsn"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8765")
	v.SetDefault("server.tcp_addr", "")
	v.SetDefault("server.max_connections", DefaultMaxConnections)
	v.SetDefault("server.invoke_timeout", DefaultInvokeTimeout)
	v.SetDefault("server.ping_interval", DefaultPingInterval)
	v.SetDefault("server.read_limit", DefaultReadLimit)
	v.SetDefault("server.mcp", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("tools.sets", []string{"demo", "text", "vector", "rag", "url", "sql"})

	v.SetDefault("weather.base_url", "http://d1.weather.com.cn")
	v.SetDefault("weather.timeout", 10*time.Second)

	v.SetDefault("rag.seed_file", "")
	v.SetDefault("rag.redis_addr", "")
	v.SetDefault("rag.redis_prefix", "wstools:rag")

	v.SetDefault("sql.dsn", "")
}

// Load reads configuration into a File.
//
// When path is empty, wstools.yaml is searched in ".", "./config" and
// "$HOME/.wstools"; a missing file is not an error. Environment variables
// with EnvPrefix override file values.
func Load(v *viper.Viper, path string) (*File, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wstools")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.wstools")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Validate checks value ranges.
func (f *File) Validate() error {
	var problems []string

	if f.Server.Addr == "" && f.Server.TCPAddr == "" {
		problems = append(problems, "one of server.addr or server.tcp_addr must be set")
	}

	if f.Server.MaxConnections < 0 {
		problems = append(problems, "server.max_connections must not be negative")
	}

	if f.Server.InvokeTimeout < 0 || f.Server.PingInterval < 0 {
		problems = append(problems, "server durations must not be negative")
	}

	if f.Server.ReadLimit < 0 {
		problems = append(problems, "server.read_limit must not be negative")
	}

	if _, err := parseLevel(f.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}

	if f.Log.Format != "text" && f.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("log.format must be text or json, got %q", f.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}

// Apply copies the server settings onto o.
func (f *File) Apply(o *Options) {
	o.MaxConnections = f.Server.MaxConnections
	o.InvokeTimeout = f.Server.InvokeTimeout
	o.PingInterval = f.Server.PingInterval
	o.ReadLimit = f.Server.ReadLimit
	o.MCP = f.Server.MCP
}

// Logger builds the slog logger described by the log settings.
func (l LogFile) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	switch l.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", l.Format)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}

	return level, nil
}
