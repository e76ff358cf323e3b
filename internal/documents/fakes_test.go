package documents_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/JaimeStill/flipbook/internal/store"
	"github.com/JaimeStill/flipbook/internal/thumbnail"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// memStore is an in-memory store.System.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]store.Record

	unavailable bool
	addErr      error
	getAllErr   error
	getAllCalls int
	getErr      error

	// failGetAll fails that many upcoming GetAll calls with errTransient.
	failGetAll int
}

var errTransient = errors.New("transient read failure")

func newMemStore() *memStore {
	return &memStore{records: map[int64]store.Record{}}
}

func (m *memStore) Available() bool { return !m.unavailable }

func (m *memStore) Open(ctx context.Context) error {
	if m.unavailable {
		return store.ErrUnavailable
	}
	return nil
}

func (m *memStore) GetAll(ctx context.Context) ([]store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getAllCalls++
	if m.getAllErr != nil {
		return nil, m.getAllErr
	}
	if m.failGetAll > 0 {
		m.failGetAll--
		return nil, errTransient
	}

	out := make([]store.Record, 0, len(m.records))
	for _, rec := range m.records {
		rec.Data = nil
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStore) Get(ctx context.Context, id int64) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &rec, nil
}

func (m *memStore) Add(ctx context.Context, rec store.NewRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addErr != nil {
		return 0, m.addErr
	}

	m.nextID++
	now := time.Now()
	m.records[m.nextID] = store.Record{
		ID:           m.nextID,
		Name:         rec.Name,
		SizeBytes:    int64(len(rec.Data)),
		PageCount:    rec.PageCount,
		ThumbnailURL: rec.ThumbnailURL,
		CreatedAt:    now,
		UpdatedAt:    now,
		Data:         append([]byte(nil), rec.Data...),
	}
	return m.nextID, nil
}

func (m *memStore) Update(ctx context.Context, id int64, p store.Patch) (*store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Name != nil {
		rec.Name = *p.Name
	}
	rec.BookmarkedPage = p.BookmarkedPage.Apply(rec.BookmarkedPage)
	rec.ZoomLevel = p.ZoomLevel.Apply(rec.ZoomLevel)
	rec.UpdatedAt = time.Now()
	m.records[id] = rec

	rec.Data = nil
	return &rec, nil
}

func (m *memStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

// failNextGetAll makes the next n GetAll calls return errTransient.
func (m *memStore) failNextGetAll(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGetAll = n
}

func (m *memStore) ids() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]int64, 0, len(m.records))
	for id := range m.records {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// fakeThumbs returns a fixed thumbnail or a fixed error.
type fakeThumbs struct {
	pages int
	err   error
}

func (f *fakeThumbs) Generate(ctx context.Context, data []byte) (*thumbnail.Thumbnail, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(data) == 0 {
		return nil, errors.New("empty")
	}
	pages := f.pages
	if pages == 0 {
		pages = 1
	}
	return &thumbnail.Thumbnail{DataURI: "data:image/png;base64,AAAA", PageCount: pages}, nil
}
