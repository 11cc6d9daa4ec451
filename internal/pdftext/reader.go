// Package pdftext turns a PDF into the normalized line sequence the
// extractor works on, falling back to OCR for scanned documents.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

// DefaultMinChars is the text layer size below which a PDF is treated as scanned
const DefaultMinChars = 30

// TextExtractor returns the text of every page of a PDF
type TextExtractor interface {
	PageTexts(path string) ([]string, error)
}

// OCR recognizes the lines of a scanned PDF
type OCR interface {
	ReadLines(ctx context.Context, path string) ([]string, error)
}

// FitzText reads the text layer with MuPDF
type FitzText struct{}

// PageTexts implements TextExtractor
func (FitzText) PageTexts(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("fitz open: %w", err)
	}
	defer doc.Close()

	texts := make([]string, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("fitz page %d: %w", n+1, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// RowText reads the text layer row by row with ledongthuc/pdf. It copes with
// some files MuPDF refuses to open.
type RowText struct{}

// PageTexts implements TextExtractor
func (RowText) PageTexts(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdf open: %w", err)
	}
	defer f.Close()

	texts := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("pdf page %d: %w", i, err)
		}
		var sb strings.Builder
		for _, row := range rows {
			for j, word := range row.Content {
				if j > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
		texts = append(texts, sb.String())
	}
	return texts, nil
}

// Reader produces the line sequence of a PDF
type Reader struct {
	text     []TextExtractor
	ocr      OCR
	minChars int
	logger   *zap.Logger
}

// NewReader creates a reader that tries the text extractors in order and
// falls back to ocr when the text layer has fewer than minChars characters.
// ocr may be nil.
func NewReader(ocr OCR, minChars int, logger *zap.Logger, text ...TextExtractor) *Reader {
	if len(text) == 0 {
		text = []TextExtractor{FitzText{}, RowText{}}
	}
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{text: text, ocr: ocr, minChars: minChars, logger: logger}
}

// ReadLines never fails: unreadable files give an empty sequence
func (r *Reader) ReadLines(ctx context.Context, path string) (models.Lines, models.Source) {
	lines := r.textLines(path)
	if len(lines) > 0 && CharCount(lines) >= r.minChars {
		r.logger.Info("Read PDF text layer", zap.String("path", path), zap.Int("lines", len(lines)))
		return lines, models.SourceText
	}

	if r.ocr == nil {
		r.logger.Warn("PDF has no usable text and OCR is disabled", zap.String("path", path))
		return models.Lines{}, models.SourceOCR
	}

	raw, err := r.ocr.ReadLines(ctx, path)
	if err != nil {
		r.logger.Error("OCR failed", zap.String("path", path), zap.Error(err))
		return models.Lines{}, models.SourceOCR
	}
	lines = Normalize(raw)
	r.logger.Info("Read PDF with OCR", zap.String("path", path), zap.Int("lines", len(lines)))
	return lines, models.SourceOCR
}

// textLines returns the lines of the first extractor that opens the file
func (r *Reader) textLines(path string) models.Lines {
	for _, te := range r.text {
		pages, err := te.PageTexts(path)
		if err != nil {
			r.logger.Debug("Text extractor failed", zap.String("path", path), zap.Error(err))
			continue
		}
		var lines models.Lines
		for _, p := range pages {
			lines = append(lines, SplitLines(p)...)
		}
		return lines
	}
	return nil
}
