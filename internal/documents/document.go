// Package documents is the document library: an in-memory mirror of every stored
// PDF kept consistent with the durable store, plus the HTTP surface over it.
package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/flipbook/internal/store"
	"github.com/JaimeStill/flipbook/pkg/patch"
)

// Viewer zoom bounds.
const (
	MinZoom = 0.5
	MaxZoom = 2.0
)

// Document is a stored PDF and its metadata. Data is only populated by GetByID.
type Document struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	SizeBytes      int64     `json:"size_bytes"`
	PageCount      int       `json:"page_count"`
	ThumbnailURL   string    `json:"thumbnail_url"`
	BookmarkedPage *int      `json:"bookmarked_page,omitempty"`
	ZoomLevel      *float64  `json:"zoom_level,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Data           []byte    `json:"-"`
}

// Library is a snapshot of the mirror. Available is false when the process has
// no durable store; Documents is then empty.
type Library struct {
	Available bool       `json:"available"`
	Documents []Document `json:"documents"`
}

// CreateCommand contains the data required to create a new document.
type CreateCommand struct {
	Name string
	Data []byte
}

// UpdateCommand is a sparse update. Omitted fields are untouched and an explicit
// JSON null clears the field. Name cannot be cleared.
type UpdateCommand struct {
	Name           patch.Field[string]  `json:"name,omitzero"`
	BookmarkedPage patch.Field[int]     `json:"bookmarked_page,omitzero"`
	ZoomLevel      patch.Field[float64] `json:"zoom_level,omitzero"`
}

// Validate checks the values the command writes.
func (c UpdateCommand) Validate() error {
	if c.Name.IsSet() {
		if c.Name.IsClear() || strings.TrimSpace(*c.Name.Value()) == "" {
			return fmt.Errorf("%w: name must not be empty", ErrInvalidDocument)
		}
	}

	if v := c.BookmarkedPage.Value(); v != nil && *v < 1 {
		return fmt.Errorf("%w: bookmarked_page must be at least 1", ErrInvalidDocument)
	}

	if v := c.ZoomLevel.Value(); v != nil && (*v < MinZoom || *v > MaxZoom) {
		return fmt.Errorf("%w: zoom_level must be between %.1f and %.1f", ErrInvalidDocument, MinZoom, MaxZoom)
	}

	return nil
}

func (c UpdateCommand) toPatch() store.Patch {
	p := store.Patch{
		BookmarkedPage: c.BookmarkedPage,
		ZoomLevel:      c.ZoomLevel,
	}
	if v := c.Name.Value(); v != nil {
		name := strings.TrimSpace(*v)
		p.Name = &name
	}
	return p
}

func fromRecord(rec *store.Record) Document {
	return Document{
		ID:             rec.ID,
		Name:           rec.Name,
		SizeBytes:      rec.SizeBytes,
		PageCount:      rec.PageCount,
		ThumbnailURL:   rec.ThumbnailURL,
		BookmarkedPage: rec.BookmarkedPage,
		ZoomLevel:      rec.ZoomLevel,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		Data:           rec.Data,
	}
}
