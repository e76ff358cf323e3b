package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/flipbook/pkg/database"
	"github.com/JaimeStill/flipbook/pkg/repository"
	"github.com/JaimeStill/flipbook/pkg/storage"
)

const columns = `id, name, storage_key, size_bytes, page_count, thumbnail_url,
	bookmarked_page, zoom_level, created_at, updated_at`

type migrateFunc func(ctx context.Context, conn *sql.DB, dialect database.Dialect, logger *slog.Logger) error

type sqlStore struct {
	db      database.System
	blobs   storage.System
	logger  *slog.Logger
	now     func() time.Time
	migrate migrateFunc

	mu       sync.Mutex
	migrated bool
}

// New creates a store over db for metadata and blobs for PDF bytes.
func New(db database.System, blobs storage.System, logger *slog.Logger) System {
	return &sqlStore{
		db:      db,
		blobs:   blobs,
		logger:  logger.With("system", "store"),
		now:     time.Now,
		migrate: Migrate,
	}
}

func (s *sqlStore) Available() bool {
	return true
}

func (s *sqlStore) Open(ctx context.Context) error {
	_, err := s.open(ctx)
	return err
}

func (s *sqlStore) open(ctx context.Context) (*sql.DB, error) {
	conn, err := s.db.Open(ctx)
	if err != nil {
		if errors.Is(err, database.ErrDisabled) {
			return nil, ErrUnavailable
		}
		return nil, fmt.Errorf("open store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.migrated {
		if err := s.migrate(ctx, conn, s.db.Dialect(), s.logger); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		s.migrated = true
		s.logger.Info("store schema ready")
	}

	return conn, nil
}

// bind adapts ? placeholders to the connection dialect.
func (s *sqlStore) bind(query string) string {
	if s.db.Dialect() == database.Postgres {
		return repository.Rebind(query)
	}
	return query
}

func (s *sqlStore) GetAll(ctx context.Context) ([]Record, error) {
	conn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	q := s.bind(`SELECT ` + columns + ` FROM documents ORDER BY id`)
	records, err := repository.QueryMany(ctx, conn, q, nil, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return records, nil
}

func (s *sqlStore) Get(ctx context.Context, id int64) (*Record, error) {
	conn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.find(ctx, conn, id)
	if err != nil {
		return nil, err
	}

	data, err := s.blobs.Retrieve(ctx, rec.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, s.missingBlob(ctx, conn, rec)
		}
		return nil, fmt.Errorf("retrieve blob %s: %w", rec.StorageKey, err)
	}
	rec.Data = data

	return rec, nil
}

// missingBlob resolves a blob that vanished after its row was read. A Delete
// committing in between removes the row first, so the record is simply gone. A
// row that outlives its blob cannot be served either and reads as not found.
func (s *sqlStore) missingBlob(ctx context.Context, q repository.Querier, rec *Record) error {
	if _, err := s.find(ctx, q, rec.ID); err == nil {
		s.logger.Error("document blob missing", "id", rec.ID, "storage_key", rec.StorageKey)
	}
	return fmt.Errorf("%w: document %d", ErrNotFound, rec.ID)
}

func (s *sqlStore) find(ctx context.Context, q repository.Querier, id int64) (*Record, error) {
	query := s.bind(`SELECT ` + columns + ` FROM documents WHERE id = ?`)
	rec, err := repository.QueryOne(ctx, q, query, []any{id}, scanRecord)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query document: %w", err)
	}
	return &rec, nil
}

func (s *sqlStore) Add(ctx context.Context, rec NewRecord) (int64, error) {
	conn, err := s.open(ctx)
	if err != nil {
		return 0, err
	}

	key := storageKey(uuid.New())
	if err := s.blobs.Store(ctx, key, rec.Data); err != nil {
		return 0, fmt.Errorf("%w: store blob: %v", ErrWrite, err)
	}

	ts := s.now().UnixMilli()
	q := s.bind(`INSERT INTO documents (name, storage_key, size_bytes, page_count, thumbnail_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	id, err := repository.WithTx(ctx, conn, func(tx *sql.Tx) (int64, error) {
		var id int64
		err := tx.QueryRowContext(ctx, q,
			rec.Name, key, len(rec.Data), rec.PageCount, rec.ThumbnailURL, ts, ts,
		).Scan(&id)
		return id, err
	})

	if err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Error("cleanup failed after insert error", "storage_key", key, "error", delErr)
		}
		return 0, fmt.Errorf("%w: insert document: %v", ErrWrite, err)
	}

	s.logger.Info("document stored", "id", id, "name", rec.Name, "storage_key", key)
	return id, nil
}

func (s *sqlStore) Update(ctx context.Context, id int64, p Patch) (*Record, error) {
	conn, err := s.open(ctx)
	if err != nil {
		return nil, err
	}

	if p.Empty() {
		return s.find(ctx, conn, id)
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.BookmarkedPage.IsSet() {
		sets = append(sets, "bookmarked_page = ?")
		args = append(args, nullable(p.BookmarkedPage.Value()))
	}
	if p.ZoomLevel.IsSet() {
		sets = append(sets, "zoom_level = ?")
		args = append(args, nullable(p.ZoomLevel.Value()))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.now().UnixMilli(), id)

	q := s.bind(`UPDATE documents SET ` + strings.Join(sets, ", ") + ` WHERE id = ? RETURNING ` + columns)

	rec, err := repository.WithTx(ctx, conn, func(tx *sql.Tx) (Record, error) {
		return repository.QueryOne(ctx, tx, q, args, scanRecord)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: update document: %v", ErrWrite, err)
	}

	return &rec, nil
}

func (s *sqlStore) Delete(ctx context.Context, id int64) error {
	conn, err := s.open(ctx)
	if err != nil {
		return err
	}

	selectKey := s.bind(`SELECT storage_key FROM documents WHERE id = ?`)
	deleteRow := s.bind(`DELETE FROM documents WHERE id = ?`)

	key, err := repository.WithTx(ctx, conn, func(tx *sql.Tx) (string, error) {
		var key string
		if err := tx.QueryRowContext(ctx, selectKey, id).Scan(&key); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", nil
			}
			return "", err
		}
		return key, repository.ExecExpectOne(ctx, tx, deleteRow, id)
	})
	if err != nil {
		return fmt.Errorf("%w: delete document: %v", ErrWrite, err)
	}

	if key == "" {
		return nil
	}

	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Error("blob cleanup failed", "storage_key", key, "error", err)
	}

	s.logger.Info("document removed", "id", id)
	return nil
}

// nullable turns a nil pointer into an untyped nil argument.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func storageKey(id uuid.UUID) string {
	return fmt.Sprintf("documents/%s.pdf", id)
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		rec       Record
		thumbnail sql.NullString
		bookmark  sql.NullInt64
		zoom      sql.NullFloat64
		created   int64
		updated   int64
	)

	err := s.Scan(
		&rec.ID, &rec.Name, &rec.StorageKey, &rec.SizeBytes, &rec.PageCount,
		&thumbnail, &bookmark, &zoom, &created, &updated,
	)
	if err != nil {
		return Record{}, err
	}

	rec.ThumbnailURL = thumbnail.String
	if bookmark.Valid {
		page := int(bookmark.Int64)
		rec.BookmarkedPage = &page
	}
	if zoom.Valid {
		level := zoom.Float64
		rec.ZoomLevel = &level
	}
	rec.CreatedAt = time.UnixMilli(created)
	rec.UpdatedAt = time.UnixMilli(updated)

	return rec, nil
}
