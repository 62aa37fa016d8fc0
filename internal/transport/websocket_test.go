package transport

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/errors"
)

// wsPair starts a server that hands its side of each connection to
// serverSide, and returns a dialed client connection.
func wsPair(t *testing.T, opts WebSocketOptions, serverSide func(*WebSocket)) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		serverSide(NewWebSocket(nil, conn, opts))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestWebSocket_RoundTrip(t *testing.T) {
	client := wsPair(t, WebSocketOptions{}, func(ws *WebSocket) {
		defer ws.Close()

		for {
			text, err := ws.ReceiveText(context.Background())
			if err != nil {
				return
			}

			if err := ws.SendText(context.Background(), "echo:"+text); err != nil {
				return
			}
		}
	})

	for _, msg := range []string{`{"func":"a"}`, `second`} {
		require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(msg)))

		typ, data, err := client.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.TextMessage, typ)
		require.Equal(t, "echo:"+msg, string(data))
	}
}

func TestWebSocket_PeerCloseIsDisconnect(t *testing.T) {
	result := make(chan error, 1)

	client := wsPair(t, WebSocketOptions{}, func(ws *WebSocket) {
		defer ws.Close()

		_, err := ws.ReceiveText(context.Background())
		result <- err
	})

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	require.NoError(t, client.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)))

	select {
	case err := <-result:
		require.ErrorIs(t, err, errors.ErrTransportDisconnect)
	case <-time.After(2 * time.Second):
		t.Fatal("ReceiveText did not return")
	}
}

func TestWebSocket_ReadLimit(t *testing.T) {
	result := make(chan error, 1)

	client := wsPair(t, WebSocketOptions{ReadLimit: 16}, func(ws *WebSocket) {
		defer ws.Close()

		_, err := ws.ReceiveText(context.Background())
		result <- err
	})

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 64))))

	select {
	case err := <-result:
		var failure *errors.TransportFailure
		require.True(t, stderrors.As(err, &failure))
		require.ErrorIs(t, err, websocket.ErrReadLimit)
	case <-time.After(2 * time.Second):
		t.Fatal("ReceiveText did not return")
	}
}

func TestWebSocket_ContextCancelUnblocksReceive(t *testing.T) {
	result := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())

	wsPair(t, WebSocketOptions{}, func(ws *WebSocket) {
		defer ws.Close()

		_, err := ws.ReceiveText(ctx)
		result <- err
	})

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ReceiveText did not return")
	}
}

func TestWebSocket_Keepalive(t *testing.T) {
	release := make(chan struct{})

	client := wsPair(t, WebSocketOptions{PingInterval: 10 * time.Millisecond}, func(ws *WebSocket) {
		defer ws.Close()
		<-release
	})
	defer close(release)

	var pings atomic.Int32

	client.SetPingHandler(func(data string) error {
		pings.Add(1)

		return client.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool { return pings.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestWebSocket_CloseIsIdempotent(t *testing.T) {
	result := make(chan error, 2)

	client := wsPair(t, WebSocketOptions{}, func(ws *WebSocket) {
		result <- ws.Close()
		result <- ws.Close()
	})

	require.NoError(t, <-result)
	require.NoError(t, <-result)

	_, _, err := client.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}
