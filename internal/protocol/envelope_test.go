package protocol

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/wstools-go/internal/errors"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantFunc   string
		wantNested bool
		wantArgs   map[string]any
	}{
		{
			name:       "nested params",
			payload:    `{"func":"greeting","params":{"name":"Ada"}}`,
			wantFunc:   "greeting",
			wantNested: true,
			wantArgs:   map[string]any{"name": "Ada"},
		},
		{
			name:     "flat arguments",
			payload:  `{"func":"greeting","name":"Ada"}`,
			wantFunc: "greeting",
			wantArgs: map[string]any{"name": "Ada"},
		},
		{
			name:     "params that is not an object falls back to flat",
			payload:  `{"func":"echo","params":"raw","name":"Ada"}`,
			wantFunc: "echo",
			wantArgs: map[string]any{"params": "raw", "name": "Ada"},
		},
		{
			name:     "missing func",
			payload:  `{"name":"Ada"}`,
			wantFunc: "",
			wantArgs: map[string]any{"name": "Ada"},
		},
		{
			name:     "func is not a string",
			payload:  `{"func":42}`,
			wantFunc: "",
			wantArgs: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeRequest([]byte(tt.payload))
			require.NoError(t, err)
			require.Equal(t, tt.wantFunc, req.Func)
			require.Equal(t, tt.wantNested, req.Nested())
			require.Equal(t, tt.wantArgs, req.Arguments())
		})
	}
}

func TestDecodeRequest_Invalid(t *testing.T) {
	for _, payload := range []string{`not-json`, `{"func":`, `[1,2]`, `"greeting"`, `null`, ``} {
		t.Run(payload, func(t *testing.T) {
			_, err := DecodeRequest([]byte(payload))

			var decodeErr *errors.DecodeError
			require.True(t, stderrors.As(err, &decodeErr))
			require.Equal(t, "invalid JSON", err.Error())
		})
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"string result", Success("Hello, Ada!"), `{"result":"Hello, Ada!"}`},
		{"null result", Success(nil), `{"result":null}`},
		{"object result", Success(map[string]any{"ok": true}), `{"result":{"ok":true}}`},
		{"error", Failure(&errors.UnknownToolError{Name: "x"}), `{"error":"Unknown function"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeResponse(tt.resp)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(data))

			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))
			require.Len(t, fields, 1, "exactly one of result or error")
		})
	}
}

func TestMarshal_UnencodableResult(t *testing.T) {
	data := Marshal(Success(make(chan int)))

	var fields map[string]string
	require.NoError(t, json.Unmarshal(data, &fields))
	require.Contains(t, fields["error"], "result is not JSON-encodable")
}

func TestResponse_UnmarshalJSON(t *testing.T) {
	var ok Response
	require.NoError(t, json.Unmarshal([]byte(`{"result":[1,"a"]}`), &ok))
	require.False(t, ok.Failed())
	require.Equal(t, []any{float64(1), "a"}, ok.Result)

	var failed Response
	require.NoError(t, json.Unmarshal([]byte(`{"error":"Unknown function"}`), &failed))
	require.True(t, failed.Failed())

	var remote *RemoteError
	require.True(t, stderrors.As(failed.Err, &remote))
	require.Equal(t, "Unknown function", remote.Message)

	var empty Response
	require.Error(t, json.Unmarshal([]byte(`{}`), &empty))
}

func TestRequest_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewRequest("greeting", map[string]any{"name": "Ada"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"func":"greeting","params":{"name":"Ada"}}`, string(data))

	data, err = json.Marshal(NewRequest("ping", nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"func":"ping","params":{}}`, string(data))

	req, err := DecodeRequest([]byte(`{"func":"greeting","name":"Bo"}`))
	require.NoError(t, err)

	data, err = json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"func":"greeting","name":"Bo"}`, string(data))
}
