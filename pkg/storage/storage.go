// Package storage persists document blobs outside the metadata database.
// The filesystem implementation keeps each blob as a file under a base directory.
package storage

import (
	"context"
	"errors"

	"github.com/JaimeStill/flipbook/pkg/lifecycle"
)

var (
	ErrNotFound         = errors.New("storage: key not found")
	ErrPermissionDenied = errors.New("storage: permission denied")
	// ErrInvalidKey covers empty keys and keys that escape the base path.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// System stores and retrieves immutable blobs by key.
type System interface {
	// Store writes data at key, replacing any existing blob atomically.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the blob at key or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob at key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a readable blob is stored at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Start registers base directory creation with the coordinator.
	Start(lc *lifecycle.Coordinator) error
}
