package playground

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrTransport marks failures where no response reached the client.
	ErrTransport = errors.New("transport error")
	// ErrServer marks non-success statuses with a decodable message.
	ErrServer = errors.New("server error")
	// ErrDecode marks response bodies that did not match the expected shape.
	ErrDecode = errors.New("decode error")
	// ErrInvalidInput marks requests that could not be built.
	ErrInvalidInput = errors.New("invalid input")
)

// Error is the uniform failure returned by every client operation. Kind is
// one of the sentinel markers above and is matched by errors.Is.
type Error struct {
	Kind       error
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	parts := make([]string, 0, 4)
	if op := strings.TrimSpace(e.Op); op != "" {
		parts = append(parts, op)
	}
	if e.Kind != nil {
		parts = append(parts, e.Kind.Error())
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("http %d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	detail := strings.Join(parts, ": ")
	if e.Err != nil {
		return detail + ": " + e.Err.Error()
	}
	return detail
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func newError(kind error, op string, status int, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, StatusCode: status, Message: message, Err: err}
}

// UserMessage returns the text to show a user for err. Server messages are
// passed through verbatim; everything else falls back to the error string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && errors.Is(apiErr.Kind, ErrServer) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return err.Error()
}

// Retryable reports whether repeating the same request could succeed.
// Transport failures and 5xx responses qualify; malformed input or bodies
// and 4xx rejections do not.
func Retryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch {
	case errors.Is(apiErr.Kind, ErrTransport):
		return true
	case errors.Is(apiErr.Kind, ErrServer):
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}
