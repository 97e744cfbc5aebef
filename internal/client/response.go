package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Messages returned in the envelope for failures that never reached the
// backend or could not be understood.
const (
	NetworkErrorMessage   = "Network error occurred"
	MalformedBodyMessage  = "Malformed response body"
	StaleSessionMessage   = "Session changed during request"
	invalidRequestMessage = "Invalid request"
)

// ErrorKind classifies a failed Response. It is empty on success.
type ErrorKind string

const (
	// KindNetwork covers DNS failures, refused connections, timeouts and
	// cancelled contexts.
	KindNetwork ErrorKind = "network"
	// KindHTTP is a non-2xx response from the backend.
	KindHTTP ErrorKind = "http"
	// KindDecode is a 2xx response whose body was not valid JSON for the
	// expected type.
	KindDecode ErrorKind = "decode"
	// KindRequest is a request that could not be built from caller input.
	KindRequest ErrorKind = "request"
	// KindStale is a response to a request sent with a token that has since
	// been replaced or cleared.
	KindStale ErrorKind = "stale"
)

// Response is the envelope every call resolves to. Exactly one of Data and
// Error is set; Status is always set, using 500 when no HTTP status exists.
type Response[T any] struct {
	Data   *T        `json:"data,omitempty"`
	Error  string    `json:"error,omitempty"`
	Status int       `json:"status"`
	Kind   ErrorKind `json:"kind,omitempty"`
}

func (r Response[T]) OK() bool {
	return len(r.Error) == 0
}

// Err returns the failure as a Go error, or nil on success.
func (r Response[T]) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{
		Kind:    r.Kind,
		Status:  r.Status,
		Message: r.Error,
	}
}

// Error is the error form of a failed Response.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func success[T any](data *T, status int) Response[T] {
	if data == nil {
		data = new(T)
	}
	return Response[T]{
		Data:   data,
		Status: status,
	}
}

func failure[T any](kind ErrorKind, message string, status int) Response[T] {
	return Response[T]{
		Error:  message,
		Status: status,
		Kind:   kind,
	}
}

func networkFailure[T any]() Response[T] {
	return failure[T](KindNetwork, NetworkErrorMessage, http.StatusInternalServerError)
}

func requestFailure[T any](err error) Response[T] {
	return failure[T](KindRequest, fmt.Sprintf("%s: %v", invalidRequestMessage, err), http.StatusInternalServerError)
}

// decodeResponse turns a received HTTP response into an envelope. The body
// is parsed defensively: an empty 2xx body is a success with zero data and
// a body that is not JSON never escapes as a panic or transport error.
func decodeResponse[T any](status int, body []byte) Response[T] {

	trimmed := bytes.TrimSpace(body)

	if status >= 200 && status <= 299 {
		var data T

		if len(trimmed) == 0 {
			return success(&data, status)
		}

		if err := json.Unmarshal(trimmed, &data); err != nil {
			return failure[T](KindDecode, MalformedBodyMessage, status)
		}

		return success(&data, status)
	}

	return failure[T](KindHTTP, errorMessage(trimmed, status), status)
}

// errorFields are checked in order for a server supplied error message.
var errorFields = []string{"message", "detail", "error"}

func errorMessage(body []byte, status int) string {
	var payload map[string]any

	if err := json.Unmarshal(body, &payload); err == nil {
		for _, field := range errorFields {
			if message, ok := payload[field].(string); ok && len(message) > 0 {
				return message
			}
		}
	}

	return fmt.Sprintf("Request failed with status %d", status)
}
