// Package extractor runs the invoice extraction pipeline: it reads the PDF
// lines, locates header and party data, dispatches the totals block to the
// vendor handler and normalizes the tax lines.
package extractor

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/services"
	"github.com/facturaIA/factura-extractor-ar/internal/vendors"
)

// ErrNoReader is returned by Extract when the extractor has no line reader
var ErrNoReader = errors.New("extractor: no line reader configured")

// LineReader turns a PDF into normalized lines. Failures yield empty lines.
type LineReader interface {
	ReadLines(ctx context.Context, path string) (models.Lines, models.Source)
}

// Extractor is safe for concurrent use: every call builds its own record.
type Extractor struct {
	reader     LineReader
	registry   *vendors.Registry
	vendorCfg  models.VendorConfig
	validator  *services.TotalsValidator
	normalizer *services.TaxNormalizer
	payload    *services.PayloadBuilder
	logger     *zap.Logger
}

// New creates an extractor. A nil registry uses the built-in vendors and a
// nil logger discards output.
func New(reader LineReader, registry *vendors.Registry, vendorCfg models.VendorConfig, cfg models.ExtractionConfig, logger *zap.Logger) *Extractor {
	if registry == nil {
		registry = vendors.NewDefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	normalizer := services.NewTaxNormalizer()
	return &Extractor{
		reader:     reader,
		registry:   registry,
		vendorCfg:  vendorCfg,
		validator:  services.NewTotalsValidatorWithTolerance(cfg.Tolerance),
		normalizer: normalizer,
		payload:    services.NewPayloadBuilder(normalizer, cfg.PreferClientCUIT),
		logger:     logger,
	}
}

// Vendors lists the tags with a dedicated handler
func (e *Extractor) Vendors() []string {
	return e.registry.Tags()
}

// Extract reads the PDF at path and runs the pipeline over its lines. hint,
// when not empty, forces the vendor.
func (e *Extractor) Extract(ctx context.Context, path, hint string) (*models.Result, error) {
	if e.reader == nil {
		return nil, ErrNoReader
	}

	lines, source := e.reader.ReadLines(ctx, path)
	res := e.ExtractLines(hint, lines, source)
	res.Record.File = filepath.Base(path)

	e.logger.Info("Invoice extracted",
		zap.String("file", res.Record.File),
		zap.String("source", string(source)),
		zap.String("vendor", res.Record.Debug.Vendor),
		zap.Int("lines", len(lines)),
		zap.Int("warnings", len(res.Record.Warnings)),
	)
	return res, nil
}

// ExtractLines runs the pipeline over an already read line sequence
func (e *Extractor) ExtractLines(hint string, lines models.Lines, source models.Source) *models.Result {
	rec := models.NewRecord()
	rec.Source = source
	rec.Debug.LinesCount = len(lines)

	for _, s := range e.stages(hint) {
		rec = s(lines, rec)
	}

	for _, w := range rec.Warnings {
		e.logger.Debug("Extraction warning", zap.String("vendor", rec.Debug.Vendor), zap.String("warning", w))
	}

	return &models.Result{Record: rec, Payload: e.payload.Build(rec)}
}

// stage takes the line sequence and the record so far and returns the
// updated record. Stages never modify the record they receive.
type stage func(models.Lines, models.Record) models.Record

func (e *Extractor) stages(hint string) []stage {
	return []stage{
		e.headerStage,
		e.vendorStage(hint),
		e.partiesStage,
		e.cuitVendorStage,
		e.totalsStage,
		e.reconcileStage,
		e.normalizeStage,
	}
}

func (e *Extractor) headerStage(lines models.Lines, rec models.Record) models.Record {
	rec.Header = ExtractHeader(lines)
	return rec
}

func (e *Extractor) vendorStage(hint string) stage {
	return func(lines models.Lines, rec models.Record) models.Record {
		if v := VendorByName(hint, lines, e.vendorCfg); v != "" {
			rec.Debug.Vendor = v
		}
		return rec
	}
}

func (e *Extractor) partiesStage(lines models.Lines, rec models.Record) models.Record {
	rec.Parties = ExtractParties(lines, e.registry.Namer(rec.Debug.Vendor))
	return rec
}

// cuitVendorStage resolves vendors that only the emisor CUIT identifies
func (e *Extractor) cuitVendorStage(lines models.Lines, rec models.Record) models.Record {
	if rec.Debug.Vendor != models.UnknownVendor {
		return rec
	}
	v := VendorByCUIT(rec.CUITProveedor, e.vendorCfg)
	if v == "" {
		return rec
	}
	rec.Debug.Vendor = v
	if rec.Proveedor == "" {
		if n := e.registry.Namer(v); n != nil {
			rec.Proveedor = n.ProviderName(lines[:min(len(lines), providerScanLines)])
			if rec.Proveedor == "" {
				rec.Proveedor = n.LegalName()
			}
		}
	}
	return rec
}

func (e *Extractor) totalsStage(lines models.Lines, rec models.Record) models.Record {
	rec.Totals = e.registry.Resolve(rec.Debug.Vendor).ExtractTotals(lines)
	return rec
}

func (e *Extractor) reconcileStage(_ models.Lines, rec models.Record) models.Record {
	totals, warnings := e.validator.Reconcile(rec.Totals)
	rec.Totals = totals
	return rec.WithWarnings(warnings...)
}

func (e *Extractor) normalizeStage(_ models.Lines, rec models.Record) models.Record {
	schema, warnings := e.normalizer.Normalize(rec.Totals)
	rec.TributosNormalizados = schema
	return rec.WithWarnings(warnings...)
}
