package wstools

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/config"
)

func TestApplyOptions_Defaults(t *testing.T) {
	require.Equal(t, config.Default(), applyOptions(nil))
}

func TestApplyOptions(t *testing.T) {
	logger := slog.Default()
	check := func(*http.Request) bool { return false }

	opts := applyOptions([]Option{
		WithLogger(logger),
		WithMaxConnections(0),
		WithInvokeTimeout(time.Second),
		WithPingInterval(2 * time.Second),
		WithReadLimit(64),
		WithWriteTimeout(3 * time.Second),
		WithShutdownTimeout(4 * time.Second),
		WithMCP(false),
		WithCheckOrigin(check),
	})

	require.Same(t, logger, opts.Logger)
	require.Zero(t, opts.MaxConnections)
	require.Equal(t, time.Second, opts.InvokeTimeout)
	require.Equal(t, 2*time.Second, opts.PingInterval)
	require.Equal(t, int64(64), opts.ReadLimit)
	require.Equal(t, 3*time.Second, opts.WriteTimeout)
	require.Equal(t, 4*time.Second, opts.ShutdownTimeout)
	require.False(t, opts.MCP)
	require.False(t, opts.CheckOrigin(nil))
}

func TestNopLogger(t *testing.T) {
	log := NopLogger()
	require.NotNil(t, log)

	log.Info("discarded")
}
