package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/config"
	"github.com/wagiedev/wstools-go/internal/server"
	"github.com/wagiedev/wstools-go/internal/tool"
)

func TestParseArgs(t *testing.T) {
	got, err := ParseArgs([]string{"name=Ada", "count=3", "ok=true", `tags=["a","b"]`, "path={}", "empty=", "eq=a=b"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":  "Ada",
		"count": float64(3),
		"ok":    true,
		"tags":  []any{"a", "b"},
		"path":  map[string]any{},
		"empty": "",
		"eq":    "a=b",
	}, got)
}

func TestParseArgs_Invalid(t *testing.T) {
	for _, arg := range []string{"name", "=value"} {
		_, err := ParseArgs([]string{arg})
		require.Error(t, err, arg)
	}
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := tool.NewRegistry()

	require.NoError(t, reg.RegisterFunc("greeting", "Greets someone",
		[]tool.Param{
			tool.Required("name", tool.TypeString),
			tool.Optional("punctuation", tool.TypeString, "!"),
		},
		func(_ context.Context, args tool.Args) (any, error) {
			return fmt.Sprintf("Hello, %s%s", args.String("name"), args.String("punctuation")), nil
		},
	))

	opts := config.Default()
	opts.PingInterval = 0
	opts.MCP = false

	srv := server.New(reg, opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestCall(t *testing.T) {
	ts := startServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nested", []string{"call", "greeting", "name=Ada", "--url", wsURL(ts)}, `{"result":"Hello, Ada!"}`},
		{"flat", []string{"call", "greeting", "name=Bo", "punctuation=?", "--flat", "--url", wsURL(ts)}, `{"result":"Hello, Bo?"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			require.NoError(t, run(context.Background(), tt.args, &stdout, &stderr))
			require.Equal(t, tt.want, strings.TrimSpace(stdout.String()))
		})
	}
}

func TestCall_Failure(t *testing.T) {
	ts := startServer(t)

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"call", "nope", "--url", wsURL(ts)}, &stdout, &stderr)
	require.ErrorContains(t, err, "nope failed: Unknown function")
	require.Equal(t, `{"error":"Unknown function"}`, strings.TrimSpace(stdout.String()))
}

func TestCall_DialError(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"call", "greeting", "--url", "ws://127.0.0.1:1/ws", "--timeout", "2s"}, &stdout, &stderr)
	require.Error(t, err)
	require.Empty(t, stdout.String())
}

func TestTools(t *testing.T) {
	ts := startServer(t)

	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"tools", "--url", ts.URL}, &stdout, &stderr))

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "greeting")
	assert.Contains(t, lines[1], "name:string punctuation:string=\"!\"")
	assert.Contains(t, lines[1], "Greets someone")
}

func TestTools_JSON(t *testing.T) {
	ts := startServer(t)

	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"tools", "--json", "--url", ts.URL + "/"}, &stdout, &stderr))

	var infos []tool.Info
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &infos))
	require.Len(t, infos, 1)
	require.Equal(t, "greeting", infos[0].Name)
	require.Len(t, infos[0].Parameters, 2)
}

func TestServe_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"serve", "--log-level", "loud"}, &stdout, &stderr)
	require.ErrorContains(t, err, "invalid configuration")
}

func TestServe_MissingConfigFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"serve", "--config", t.TempDir() + "/missing.yaml"}, &stdout, &stderr)
	require.ErrorContains(t, err, "read config file")
}

func TestServe_UnknownToolSet(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"serve", "--sets", "demo,bogus", "--addr", "127.0.0.1:0"}, &stdout, &stderr)
	require.ErrorContains(t, err, `unknown tool set "bogus"`)
}
