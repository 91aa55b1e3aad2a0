package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

type ErrorKind string

const (
	ConnectionFailure      ErrorKind = "ConnectionFailure"
	PreviewFailure         ErrorKind = "PreviewFailure"
	ModelGenerationFailure ErrorKind = "ModelGenerationFailure"
	ValidationFailure      ErrorKind = "ValidationFailure"
)

var errorKinds = map[ErrorKind]struct {
	status int
	prefix string
}{
	ConnectionFailure:      {http.StatusBadRequest, "Connection failed"},
	PreviewFailure:         {http.StatusBadRequest, "Preview failed"},
	ModelGenerationFailure: {http.StatusInternalServerError, "Model generation failed"},
	ValidationFailure:      {http.StatusUnprocessableEntity, "Invalid request"},
}

// RequestError is the client-facing error body. Detail carries the
// underlying failure message verbatim.
type RequestError struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (e *RequestError) Error() string {
	return e.Detail
}

func newRequestError(kind ErrorKind, err error) *RequestError {
	return &RequestError{
		Kind:   kind,
		Detail: fmt.Sprintf("%s: %v", errorKinds[kind].prefix, err),
	}
}

func renderError(w http.ResponseWriter, logger *slog.Logger, kind ErrorKind, err error) {
	reqErr := newRequestError(kind, err)
	logger.Warn("request failed", "kind", kind, "error", err)
	writeJSON(w, errorKinds[kind].status, reqErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
