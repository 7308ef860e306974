package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTooManyRedirects is returned when a redirect chain exceeds the
// client's bound.
var ErrTooManyRedirects = errors.New("too many redirects")

// TransportError is a non-2xx response. Message prefers the human
// readable error_message of a JSON body over the status text.
type TransportError struct {
	URL        string
	StatusCode int
	Status     string
	Body       []byte
	Message    string
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, e.URL)
}

// NewTransportError builds a TransportError for a response.
func NewTransportError(url string, statusCode int, body []byte) *TransportError {
	status := http.StatusText(statusCode)
	msg := ErrorMessage(body)
	if msg == "" {
		msg = status
	}
	return &TransportError{
		URL:        url,
		StatusCode: statusCode,
		Status:     status,
		Body:       body,
		Message:    msg,
	}
}

// NoContentError is a 2xx response with an empty body where content was
// required.
type NoContentError struct {
	URL string
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("no content received from %s", e.URL)
}

type errorEnvelope struct {
	ErrorMessage string `json:"error_message"`
}

// ErrorMessage returns the error_message field of a JSON body, or "" when
// the body is not JSON or carries none.
func ErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if !strings.HasPrefix(trimmed, "{") {
		return ""
	}
	var env errorEnvelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return ""
	}
	return env.ErrorMessage
}

// StatusCode extracts the HTTP status of a TransportError anywhere in the
// chain, or 0.
func StatusCode(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
