package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wagiedev/wstools-go/internal/errors"
	"github.com/wagiedev/wstools-go/internal/protocol"
	"github.com/wagiedev/wstools-go/internal/tool"
)

// serveCall dispatches one request envelope. On /call/{tool} the tool name
// comes from the path and the body carries only arguments.
func (s *Server) serveCall(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		status := http.StatusBadRequest

		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}

		writeEnvelope(w, status, protocol.Failure(&errors.DecodeError{Err: err}))

		return
	}

	name, fromPath := mux.Vars(r)["tool"]

	var resp protocol.Response

	switch {
	case !fromPath:
		resp = s.handler.Handle(r.Context(), body)
	case len(bytes.TrimSpace(body)) == 0:
		resp = s.handler.Dispatch(r.Context(), protocol.NewRequest(name, nil))
	default:
		req, err := protocol.DecodeRequest(body)
		if err != nil {
			resp = protocol.Failure(err)

			break
		}

		req.Func = name
		resp = s.handler.Dispatch(r.Context(), req)
	}

	writeEnvelope(w, StatusFor(resp.Err), resp)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	reader := io.Reader(r.Body)
	if s.opts.ReadLimit > 0 {
		reader = http.MaxBytesReader(w, r.Body, s.opts.ReadLimit)
	}

	return io.ReadAll(reader)
}

func (s *Server) serveTools(w http.ResponseWriter, _ *http.Request) {
	descriptors := s.registry.List()

	infos := make([]tool.Info, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, d.Info())
	}

	writeJSON(w, http.StatusOK, infos)
}

// Health is the body of GET /healthz.
type Health struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Tools       int    `json:"tools"`
	Connections int64  `json:"connections"`
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{
		Status:      "ok",
		Version:     Version,
		Tools:       s.registry.Len(),
		Connections: s.ActiveConnections(),
	})
}

// StatusFor maps a dispatch error to an HTTP status code.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		toolErr     *errors.ToolExecutionError
		decodeErr   *errors.DecodeError
		missingErr  *errors.MissingParameterError
		mismatchErr *errors.TypeMismatchError
		timeoutErr  *errors.InvocationTimeoutError
	)

	switch {
	case stderrors.As(err, &toolErr):
		// A tool's own failure is a server error whatever it wraps.
		return http.StatusInternalServerError
	case stderrors.As(err, &decodeErr),
		stderrors.As(err, &missingErr),
		stderrors.As(err, &mismatchErr):
		return http.StatusBadRequest
	case stderrors.Is(err, errors.ErrUnknownTool):
		return http.StatusNotFound
	case stderrors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeEnvelope(w http.ResponseWriter, status int, resp protocol.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(protocol.Marshal(resp))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
