package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidPayload    = errors.New("invalid payload")
	ErrEmptyPayload      = errors.New("empty payload")
)

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

// Error returns the backend's message, or "HTTP error! Status: N" when the
// response body carried none.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
