package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrValidation matches 400 and 422 responses.
	ErrValidation = errors.New("api: validation failed")
	// ErrUnauthorized matches 401 responses.
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrForbidden matches 403 responses.
	ErrForbidden = errors.New("api: forbidden")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("api: not found")
	// ErrConflict matches 409 responses.
	ErrConflict = errors.New("api: conflict")
	// ErrTooManyRequests matches 429 responses.
	ErrTooManyRequests = errors.New("api: too many requests")
	// ErrServer matches 5xx responses.
	ErrServer = errors.New("api: server error")
	// ErrDecode is returned when a 2xx body does not decode into the target.
	ErrDecode = errors.New("api: decode response")
)

// Error is a non-2xx response. Message and Code come from the backend's
// JSON error body when present.
type Error struct {
	Status  int
	Code    string
	Message string
	Method  string
	Path    string
	Body    []byte
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s (%s)", e.Method, e.Path, e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// Is maps the status code onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrTooManyRequests:
		return e.Status == http.StatusTooManyRequests
	case ErrServer:
		return e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    json.RawMessage `json:"code"`
}

func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Status: status, Method: method, Path: path, Body: body}

	var parsed errorBody
	if len(body) > 0 && json.Unmarshal(body, &parsed) == nil {
		e.Message = strings.TrimSpace(parsed.Message)
		if e.Message == "" {
			e.Message = strings.TrimSpace(parsed.Error)
		}
		e.Code = rawCode(parsed.Code)
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// rawCode accepts both "CODE" and 1234 forms.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
