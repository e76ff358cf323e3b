package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/JaimeStill/flipbook/internal/documents"
	"github.com/JaimeStill/flipbook/internal/pdftest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recorder captures Create calls; names listed in fail are rejected.
type recorder struct {
	documents.System
	mu      sync.Mutex
	created []string
	fail    map[string]error
}

func (r *recorder) Create(ctx context.Context, cmd documents.CreateCommand) (*documents.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fail[cmd.Name]; ok {
		return nil, err
	}
	r.created = append(r.created, cmd.Name)
	return &documents.Document{ID: int64(len(r.created)), Name: cmd.Name}, nil
}

func writeFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.pdf"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dir
}

func TestImporter_Run(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"a.pdf":      pdftest.Document("a"),
		"B.PDF":      pdftest.Document("b"),
		"notes.txt":  []byte("ignored"),
		"fake.pdf":   []byte("not really a pdf"),
		"broken.pdf": pdftest.Document("c"),
		"huge.pdf":   pdftest.Document(strings.Repeat("x", 4096)),
	})

	rec := &recorder{fail: map[string]error{"broken": documents.ErrThumbnailFailed}}
	imp := &Importer{Docs: rec, MaxSize: 2048, Workers: 3, Logger: testLogger()}

	report, err := imp.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(report.Imported) != 2 {
		t.Errorf("Imported = %q, want a.pdf and B.PDF", report.Imported)
	}
	if len(report.Skipped) != 1 || filepath.Base(report.Skipped[0]) != "fake.pdf" {
		t.Errorf("Skipped = %q, want fake.pdf", report.Skipped)
	}
	if len(report.Failed) != 2 {
		t.Fatalf("Failed = %v, want broken.pdf and huge.pdf", report.Failed)
	}
	if !errors.Is(report.Failed[filepath.Join(dir, "broken.pdf")], documents.ErrThumbnailFailed) {
		t.Errorf("broken.pdf error = %v", report.Failed[filepath.Join(dir, "broken.pdf")])
	}
	if !errors.Is(report.Failed[filepath.Join(dir, "huge.pdf")], documents.ErrFileTooLarge) {
		t.Errorf("huge.pdf error = %v", report.Failed[filepath.Join(dir, "huge.pdf")])
	}
}

func TestImporter_Run_Cancelled(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"a.pdf": pdftest.Document("a")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	imp := &Importer{Docs: &recorder{}, Workers: 1, Logger: testLogger()}
	if _, err := imp.Run(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestImporter_Run_MissingDir(t *testing.T) {
	imp := &Importer{Docs: &recorder{}, Logger: testLogger()}
	if _, err := imp.Run(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Run() error = nil, want error")
	}
}
