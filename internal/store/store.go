// Package store is the durable half of the document library: PDF blobs in
// blob storage, per-document metadata in a versioned SQL schema.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/JaimeStill/flipbook/pkg/patch"
)

var (
	ErrNotFound = errors.New("store: record not found")
	// ErrWrite covers failed durable writes, including storage exhaustion.
	ErrWrite = errors.New("store: write failed")
	// ErrUnavailable means no local store exists in this environment.
	ErrUnavailable = errors.New("store: unavailable")
)

// Record is one persisted document. Data is populated only by Get.
type Record struct {
	ID             int64
	Name           string
	StorageKey     string
	SizeBytes      int64
	PageCount      int
	ThumbnailURL   string
	BookmarkedPage *int
	ZoomLevel      *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Data           []byte
}

// NewRecord holds everything needed to persist a document. The id is assigned by the store.
type NewRecord struct {
	Name         string
	Data         []byte
	PageCount    int
	ThumbnailURL string
}

// Patch merges into an existing record. A nil Name leaves the name untouched.
type Patch struct {
	Name           *string
	BookmarkedPage patch.Field[int]
	ZoomLevel      patch.Field[float64]
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && !p.BookmarkedPage.IsSet() && !p.ZoomLevel.IsSet()
}

// System is the object store adapter consumed by the document repository.
type System interface {
	// Available reports whether a durable store exists at all.
	Available() bool

	// Open connects and applies pending schema migrations. It is idempotent
	// and safe for concurrent callers; every other method calls it implicitly.
	Open(ctx context.Context) error

	// GetAll returns every record without blob data, ordered by id.
	GetAll(ctx context.Context) ([]Record, error)

	// Get returns the record with its blob data, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Record, error)

	// Add persists a new document and returns its id.
	Add(ctx context.Context, rec NewRecord) (int64, error)

	// Update merges p into the record and returns it without blob data.
	Update(ctx context.Context, id int64, p Patch) (*Record, error)

	// Delete removes the record and its blob. Missing ids are not an error.
	Delete(ctx context.Context, id int64) error
}
