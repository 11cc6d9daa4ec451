package extractor

import (
	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/internal/config"
	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/ocr"
	"github.com/facturaIA/factura-extractor-ar/internal/pdftext"
	"github.com/facturaIA/factura-extractor-ar/internal/vendors"
)

// NewLineReader wires both text layer readers and, unless the OCR engine is
// "none", the tesseract fallback
func NewLineReader(cfg models.OCRConfig, logger *zap.Logger) *pdftext.Reader {
	var engine pdftext.OCR
	if cfg.Engine != "none" {
		engine = ocr.NewEngine(cfg, logger)
	}
	return pdftext.NewReader(engine, cfg.MinChars, logger, pdftext.FitzText{}, pdftext.RowText{})
}

// NewFromConfig loads the vendors file and builds an extractor with the
// default vendor registry
func NewFromConfig(cfg *models.Config, logger *zap.Logger) (*Extractor, error) {
	vendorCfg, err := config.LoadVendors(cfg.Extraction.VendorsFile)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("Vendors file loaded",
			zap.String("path", cfg.Extraction.VendorsFile),
			zap.Int("name_sets", len(vendorCfg.Names)),
			zap.Int("cuits", len(vendorCfg.CUITs)),
		)
	}
	return New(NewLineReader(cfg.OCR, logger), vendors.NewDefaultRegistry(), vendorCfg, cfg.Extraction, logger), nil
}
