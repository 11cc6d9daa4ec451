// Package ocr reads scanned PDFs: it renders each page, optionally cleans the
// image with ImageMagick and runs tesseract over it.
package ocr

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

// ErrNoPages is returned when no page of the document could be rendered
var ErrNoPages = errors.New("ocr: no pages rendered")

// PageRenderer turns a PDF into page images
type PageRenderer interface {
	RenderPages(ctx context.Context, path string, dpi float64) ([][]byte, error)
}

// Recognizer reads the text lines of one page image
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]string, error)
}

// Engine chains rendering, preprocessing and recognition
type Engine struct {
	renderer     PageRenderer
	preprocessor *Preprocessor
	recognizer   Recognizer
	dpi          float64
	logger       *zap.Logger
}

// NewEngine builds the default engine from configuration: go-fitz rendering
// and the tesseract CLI
func NewEngine(cfg models.OCRConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewEngineWith(FitzRenderer{}, NewPreprocessor(cfg.Preprocess, logger), NewTesseractOCR(cfg.Language, logger), cfg.DPI, logger)
}

// NewEngineWith builds an engine from explicit parts
func NewEngineWith(renderer PageRenderer, pre *Preprocessor, rec Recognizer, dpi float64, logger *zap.Logger) *Engine {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pre == nil {
		pre = NewPreprocessor(false, logger)
	}
	return &Engine{renderer: renderer, preprocessor: pre, recognizer: rec, dpi: dpi, logger: logger}
}

// ReadLines recognizes every page of the PDF at path, in page order. Pages
// that fail recognition are logged and skipped.
func (e *Engine) ReadLines(ctx context.Context, path string) ([]string, error) {
	pages, err := e.renderer.RenderPages(ctx, path, e.dpi)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	var lines []string
	for i, img := range pages {
		img = e.preprocessor.Process(ctx, img)
		pageLines, err := e.recognizer.Recognize(ctx, img)
		if err != nil {
			e.logger.Warn("OCR failed for page", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		lines = append(lines, pageLines...)
	}

	e.logger.Debug("OCR finished", zap.String("path", path), zap.Int("pages", len(pages)), zap.Int("lines", len(lines)))
	return lines, nil
}
