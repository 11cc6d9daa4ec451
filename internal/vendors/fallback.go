package vendors

import (
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

const (
	fallbackTail = 150
	fallbackSpan = 9
)

var fallbackPercepcion = []string{"PERC", "PERCEP", "IIBB", "INGRESOS BRUTOS", "ARBA", "AGIP"}

// Fallback scans generic labels for invoices of vendors without a handler
type Fallback struct{}

// ExtractTotals implements Handler
func (Fallback) ExtractTotals(lines models.Lines) models.Totals {
	tl := tail(lines, fallbackTail)
	out := models.Totals{
		IVADetalle:          []models.IVAItem{},
		PercepcionesDetalle: []models.PercepcionItem{},
	}

	for i, line := range tl {
		up := strings.ToUpper(line)

		if out.Subtotal == nil && strings.Contains(up, "SUBTOTAL") {
			out.Subtotal = amountNear(tl, i, fallbackSpan)
		}

		if strings.Contains(up, "IVA") {
			if v := amountNear(tl, i, fallbackSpan); v != nil {
				out.IVA = accumulate(out.IVA, *v)
				out.IVADetalle = append(out.IVADetalle, models.IVAItem{Monto: *v})
			}
		}

		if containsAny(up, fallbackPercepcion) {
			if v := amountNear(tl, i, fallbackSpan); v != nil {
				out.PercepcionesTotal = accumulate(out.PercepcionesTotal, *v)
				out.PercepcionesDetalle = append(out.PercepcionesDetalle, models.PercepcionItem{Desc: line, Monto: *v})
			}
		}

		// SUBTOTAL lines match too; a later TOTAL label overrides them.
		if strings.Contains(up, "TOTAL") {
			if v := amountNear(tl, i, fallbackSpan); v != nil {
				out.Total = v
			}
		}
	}

	out.IVA = round2Ptr(out.IVA)
	out.PercepcionesTotal = round2Ptr(out.PercepcionesTotal)
	return synthesizeTotal(out)
}
