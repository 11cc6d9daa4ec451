package ocr

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is the render resolution for recognition
const DefaultDPI = 300

// FitzRenderer renders PDF pages to PNG with MuPDF
type FitzRenderer struct{}

// RenderPages returns one PNG per page. Pages that fail to render are skipped.
func (FitzRenderer) RenderPages(ctx context.Context, path string, dpi float64) ([][]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var pages [][]byte
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		img, err := doc.ImagePNG(n, dpi)
		if err != nil {
			continue
		}
		pages = append(pages, img)
	}
	return pages, nil
}
