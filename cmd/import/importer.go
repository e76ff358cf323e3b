package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/flipbook/internal/content"
	"github.com/JaimeStill/flipbook/internal/documents"
)

// Importer creates library documents from PDF files on disk.
type Importer struct {
	Docs    documents.System
	MaxSize int64
	Workers int
	Logger  *slog.Logger
}

// Report lists the outcome per file path.
type Report struct {
	Imported []string
	Skipped  []string
	Failed   map[string]error
}

// Run imports every *.pdf file directly inside dir. Per-file failures are
// collected in the report; only a cancelled context or an unreadable
// directory fails the run.
func (imp *Importer) Run(ctx context.Context, dir string) (*Report, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	report := &Report{Failed: map[string]error{}}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(imp.Workers, 1))

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			skipped, err := imp.importFile(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case documents.IsAborted(err):
				return err
			case err != nil:
				imp.Logger.Warn("import failed", "path", path, "error", err)
				report.Failed[path] = err
			case skipped:
				report.Skipped = append(report.Skipped, path)
			default:
				report.Imported = append(report.Imported, path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	slices.Sort(report.Imported)
	slices.Sort(report.Skipped)
	return report, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) (skipped bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if imp.MaxSize > 0 && info.Size() > imp.MaxSize {
		return false, fmt.Errorf("%w: %d bytes", documents.ErrFileTooLarge, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !content.IsPDF(data) {
		return true, nil
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc, err := imp.Docs.Create(ctx, documents.CreateCommand{Name: name, Data: data})
	if err != nil {
		return false, err
	}

	imp.Logger.Info("document imported", "id", doc.ID, "name", doc.Name, "pages", doc.PageCount)
	return false, nil
}
