package thumbnail

import (
	"fmt"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	dcimage "github.com/JaimeStill/document-context/pkg/image"
)

// Rasterizer renders one page of a PDF file on disk to encoded PNG bytes.
type Rasterizer interface {
	Rasterize(path string, page int) ([]byte, error)
}

type imageMagick struct {
	cfg config.ImageConfig
}

// ImageMagick returns the document-context ImageMagick rasterizer.
func ImageMagick(cfg *Config) Rasterizer {
	return &imageMagick{
		cfg: config.ImageConfig{
			Format: "png",
			DPI:    cfg.DPI,
			Options: map[string]any{
				"background": cfg.Background,
			},
		},
	}
}

func (m *imageMagick) Rasterize(path string, pageNum int) ([]byte, error) {
	doc, err := document.OpenPDF(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	page, err := doc.ExtractPage(pageNum)
	if err != nil {
		return nil, fmt.Errorf("extract page %d: %w", pageNum, err)
	}

	renderer, err := dcimage.NewImageMagickRenderer(m.cfg)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	return page.ToImage(renderer, nil)
}
