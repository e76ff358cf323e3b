package documents

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/flipbook/internal/store"
	"github.com/JaimeStill/flipbook/internal/thumbnail"
)

type repo struct {
	store  store.System
	thumbs thumbnail.Generator
	logger *slog.Logger

	// mu serializes each mutation with the refresh that follows it.
	mu sync.Mutex

	mirrorMu sync.RWMutex
	mirror   Library
}

// New creates a document repository over the store and thumbnail generator.
func New(st store.System, thumbs thumbnail.Generator, logger *slog.Logger) System {
	return &repo{
		store:  st,
		thumbs: thumbs,
		logger: logger.With("system", "documents"),
		mirror: Library{Available: st.Available(), Documents: []Document{}},
	}
}

func (r *repo) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.store.Available() {
		r.logger.Warn("document store unavailable, library will be empty")
		return nil
	}

	if err := r.store.Open(ctx); err != nil {
		return mapStoreError(err)
	}
	if err := r.refresh(ctx); err != nil {
		return err
	}

	r.logger.Info("document library loaded", "documents", len(r.mirror.Documents))
	return nil
}

func (r *repo) List() Library {
	r.mirrorMu.RLock()
	defer r.mirrorMu.RUnlock()

	return Library{
		Available: r.mirror.Available,
		Documents: slices.Clone(r.mirror.Documents),
	}
}

func (r *repo) Find(id int64) (*Document, bool) {
	r.mirrorMu.RLock()
	defer r.mirrorMu.RUnlock()

	i, ok := r.indexOf(id)
	if !ok {
		return nil, false
	}
	doc := r.mirror.Documents[i]
	return &doc, true
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if !r.store.Available() {
		return nil, ErrStoreUnavailable
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidDocument)
	}
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: document has no data", ErrInvalidDocument)
	}

	thumb, err := r.thumbs.Generate(ctx, cmd.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrThumbnailFailed, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.store.Add(ctx, store.NewRecord{
		Name:         name,
		Data:         cmd.Data,
		PageCount:    thumb.PageCount,
		ThumbnailURL: thumb.DataURI,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	if err := r.refresh(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("refresh after create failed, patching mirror", "id", id, "error", err)
		r.upsert(r.created(context.WithoutCancel(ctx), id, name, thumb, len(cmd.Data)))
	}

	doc, ok := r.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: created document %d missing after refresh", ErrStoreWrite, id)
	}

	r.logger.Info("document created", "id", id, "name", name, "pages", thumb.PageCount, "size", len(cmd.Data))
	return doc, nil
}

func (r *repo) GetByID(ctx context.Context, id int64) (*Document, error) {
	if !r.store.Available() {
		return nil, ErrStoreUnavailable
	}

	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	doc := fromRecord(rec)
	return &doc, nil
}

func (r *repo) Update(ctx context.Context, id int64, cmd UpdateCommand) (*Document, error) {
	if !r.store.Available() {
		return nil, ErrStoreUnavailable
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.store.Update(ctx, id, cmd.toPatch())
	if err != nil {
		return nil, mapStoreError(err)
	}

	if err := r.refresh(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("refresh after update failed, patching mirror", "id", id, "error", err)
		r.upsert(fromRecord(rec))
	}

	doc := fromRecord(rec)
	r.logger.Info("document updated", "id", id)
	return &doc, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	if !r.store.Available() {
		return ErrStoreUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}

	if err := r.refresh(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn("refresh after delete failed, patching mirror", "id", id, "error", err)
		r.remove(id)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

// refresh replaces the mirror with the store contents. Callers hold mu.
func (r *repo) refresh(ctx context.Context) error {
	records, err := r.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh library: %w", mapStoreError(err))
	}

	docs := make([]Document, 0, len(records))
	for i := range records {
		doc := fromRecord(&records[i])
		doc.Data = nil
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(a, b Document) int {
		return cmp.Compare(a.ID, b.ID)
	})

	r.mirrorMu.Lock()
	r.mirror = Library{Available: true, Documents: docs}
	r.mirrorMu.Unlock()

	return nil
}

// created rebuilds the mirror entry for a record Add just committed. The
// stored row is preferred; when it cannot be read, the entry is assembled from
// the values that were written.
func (r *repo) created(ctx context.Context, id int64, name string, thumb *thumbnail.Thumbnail, size int) Document {
	if rec, err := r.store.Get(ctx, id); err == nil {
		return fromRecord(rec)
	}

	now := time.Now().UTC()
	return Document{
		ID:           id,
		Name:         name,
		SizeBytes:    int64(size),
		PageCount:    thumb.PageCount,
		ThumbnailURL: thumb.DataURI,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// upsert inserts or replaces a single mirror entry, keeping id order.
func (r *repo) upsert(doc Document) {
	doc.Data = nil

	r.mirrorMu.Lock()
	defer r.mirrorMu.Unlock()

	docs := slices.Clone(r.mirror.Documents)
	if i, ok := r.indexOf(doc.ID); ok {
		docs[i] = doc
	} else {
		docs = slices.Insert(docs, i, doc)
	}
	r.mirror = Library{Available: true, Documents: docs}
}

func (r *repo) remove(id int64) {
	r.mirrorMu.Lock()
	defer r.mirrorMu.Unlock()

	i, ok := r.indexOf(id)
	if !ok {
		return
	}
	r.mirror = Library{
		Available: true,
		Documents: slices.Delete(slices.Clone(r.mirror.Documents), i, i+1),
	}
}

// indexOf locates id in the sorted mirror. Callers hold mirrorMu.
func (r *repo) indexOf(id int64) (int, bool) {
	return slices.BinarySearchFunc(r.mirror.Documents, id, func(d Document, id int64) int {
		return cmp.Compare(d.ID, id)
	})
}
