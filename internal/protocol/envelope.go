package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/tool"
)

const (
	// FieldFunc carries the tool name.
	FieldFunc = "func"
	// FieldParams carries nested arguments.
	FieldParams = "params"
)

// Request is a decoded request envelope.
type Request struct {
	// Func is the requested tool name. Empty when the field is missing or
	// not a string.
	Func string

	params map[string]any
	fields map[string]any
}

// NewRequest builds a request for fn with nested arguments.
func NewRequest(fn string, params map[string]any) *Request {
	if params == nil {
		params = map[string]any{}
	}

	return &Request{
		Func:   fn,
		params: params,
		fields: map[string]any{FieldFunc: fn, FieldParams: params},
	}
}

// DecodeRequest parses a request envelope.
//
// The payload must be a JSON object; anything else is a DecodeError.
func DecodeRequest(data []byte) (*Request, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &errors.DecodeError{Err: err}
	}

	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, &errors.DecodeError{
			Err: fmt.Errorf("payload is %s, not an object", tool.KindOf(raw)),
		}
	}

	req := &Request{fields: fields}
	req.Func, _ = fields[FieldFunc].(string)

	// A params field is only treated as nested arguments when it is an object.
	if params, ok := fields[FieldParams].(map[string]any); ok {
		req.params = params
	}

	return req, nil
}

// MarshalJSON implements json.Marshaler. It encodes every field the
// request was built or decoded with.
func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.fields)
}

// Nested reports whether the request carries its arguments under "params".
func (r *Request) Nested() bool {
	return r.params != nil
}

// Arguments returns the argument source of the request: the nested params
// object when present, otherwise every top-level field except "func".
func (r *Request) Arguments() map[string]any {
	if r.params != nil {
		return r.params
	}

	args := make(map[string]any, len(r.fields))

	for k, v := range r.fields {
		if k == FieldFunc {
			continue
		}

		args[k] = v
	}

	return args
}

// Response is a response envelope. It encodes as {"result": ...} when Err
// is nil and as {"error": "..."} otherwise; never both.
type Response struct {
	Result any
	Err    error
}

// Success wraps a tool result.
func Success(result any) Response {
	return Response{Result: result}
}

// Failure wraps a dispatch error.
func Failure(err error) Response {
	return Response{Err: err}
}

// Failed reports whether the response carries an error.
func (r Response) Failed() bool {
	return r.Err != nil
}

type resultEnvelope struct {
	Result any `json:"result"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// MarshalJSON implements json.Marshaler.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(errorEnvelope{Error: r.Err.Error()})
	}

	return json.Marshal(resultEnvelope{Result: r.Result})
}

// UnmarshalJSON implements json.Unmarshaler. An error field becomes a
// RemoteError.
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if msg, ok := raw["error"]; ok {
		var text string
		if err := json.Unmarshal(msg, &text); err != nil {
			return fmt.Errorf("decode error field: %w", err)
		}

		*r = Response{Err: &RemoteError{Message: text}}

		return nil
	}

	result, ok := raw["result"]
	if !ok {
		return fmt.Errorf("response has neither result nor error")
	}

	var value any
	if err := json.Unmarshal(result, &value); err != nil {
		return fmt.Errorf("decode result field: %w", err)
	}

	*r = Response{Result: value}

	return nil
}

// RemoteError is an error message received from a peer.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// EncodeResponse serializes a response envelope.
func EncodeResponse(resp Response) ([]byte, error) {
	return json.Marshal(resp)
}

// Marshal serializes a response envelope. A result that cannot be encoded
// is replaced by an error envelope, so the peer always gets a reply.
func Marshal(resp Response) []byte {
	data, err := EncodeResponse(resp)
	if err == nil {
		return data
	}

	data, _ = EncodeResponse(Failure(fmt.Errorf("result is not JSON-encodable: %w", err)))

	return data
}
