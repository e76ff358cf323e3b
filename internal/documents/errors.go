package documents

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/flipbook/internal/content"
	"github.com/JaimeStill/flipbook/internal/store"
	"github.com/JaimeStill/flipbook/internal/thumbnail"
)

// Domain errors for document operations.
var (
	ErrStoreUnavailable   = errors.New("document store unavailable")
	ErrThumbnailFailed    = errors.New("thumbnail generation failed")
	ErrNotFound           = errors.New("document not found")
	ErrStoreWrite         = errors.New("document store write failed")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrBookmarkOutOfRange = errors.New("bookmarked page out of range")
	ErrFileTooLarge       = errors.New("file exceeds maximum upload size")
	ErrInvalidFile        = errors.New("invalid file")
)

// MapHTTPStatus converts domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidDocument),
		errors.Is(err, ErrBookmarkOutOfRange),
		errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrThumbnailFailed),
		errors.Is(err, content.ErrUndecodable):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// IsAborted reports whether err comes from a caller that went away. Aborts are
// expected and never surfaced.
func IsAborted(err error) bool {
	return errors.Is(err, thumbnail.ErrAborted) || errors.Is(err, context.Canceled)
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case errors.Is(err, store.ErrWrite):
		return fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}
	return err
}
