// Package thumbnail renders the first page of a PDF into a small PNG data URI.
package thumbnail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"
)

// Thumbnail is the page-1 preview of a document plus facts learned while decoding it.
type Thumbnail struct {
	DataURI   string
	PageCount int
}

// Generator produces thumbnails. Implementations are stateless and safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, data []byte) (*Thumbnail, error)
}

type generator struct {
	cfg    Config
	raster Rasterizer
	logger *slog.Logger
}

// New creates a Generator that rasterizes through ImageMagick.
func New(cfg *Config, logger *slog.Logger) Generator {
	return NewWithRasterizer(cfg, ImageMagick(cfg), logger)
}

// NewWithRasterizer creates a Generator over a custom rasterizer.
func NewWithRasterizer(cfg *Config, raster Rasterizer, logger *slog.Logger) Generator {
	return &generator{
		cfg:    *cfg,
		raster: raster,
		logger: logger.With("system", "thumbnail"),
	}
}

func (g *generator) Generate(ctx context.Context, data []byte) (*Thumbnail, error) {
	if ctx.Err() != nil {
		return nil, ErrAborted
	}

	pages, err := PageCount(data)
	if err != nil {
		return nil, err
	}

	type result struct {
		png []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		raw, err := g.render(data)
		if err != nil {
			done <- result{err: err}
			return
		}
		scaled, err := Scale(raw, g.cfg.Scale, g.cfg.MaxWidth)
		done <- result{png: scaled, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Debug("thumbnail generation aborted")
		return nil, ErrAborted
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &Thumbnail{
			DataURI:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.png),
			PageCount: pages,
		}, nil
	}
}

func (g *generator) render(data []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "flipbook-thumb-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	raw, err := g.raster.Rasterize(path, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return raw, nil
}

// PageCount validates data as a PDF and returns its page count.
func PageCount(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty input", ErrDecode)
	}

	count, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if count < 1 {
		return 0, fmt.Errorf("%w: document has no pages", ErrDecode)
	}
	return count, nil
}

// Scale decodes an encoded image, resizes it by factor, caps the width at
// maxWidth when positive, and re-encodes it as PNG.
func Scale(raw []byte, factor float64, maxWidth int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: decode raster: %v", ErrRender, err)
	}

	w, h := scaledSize(src.Bounds().Dx(), src.Bounds().Dy(), factor, maxWidth)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("%w: encode png: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func scaledSize(w, h int, factor float64, maxWidth int) (int, int) {
	fw := float64(w) * factor
	fh := float64(h) * factor

	if maxWidth > 0 && fw > float64(maxWidth) {
		fh = fh * float64(maxWidth) / fw
		fw = float64(maxWidth)
	}

	return max(1, int(math.Round(fw))), max(1, int(math.Round(fh)))
}
