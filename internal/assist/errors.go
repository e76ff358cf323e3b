package assist

import (
	"errors"
	"net/http"
)

var (
	// ErrUnavailable means no provider is configured.
	ErrUnavailable = errors.New("assistant unavailable")
	// ErrAssist is a failed provider call. Callers may retry.
	ErrAssist       = errors.New("assistant request failed")
	ErrInvalidInput = errors.New("invalid assistant input")
)

// MapHTTPStatus converts assist errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrAssist):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
