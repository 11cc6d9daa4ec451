package vendors

import (
	"regexp"
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/patterns"
)

// PirelliTag identifies Pirelli Neumáticos S.A.I.C.
const PirelliTag = "PIRELLI"

const (
	pirelliTail = 120
	pirelliSpan = 6
)

var (
	pirelliName = regexp.MustCompile(`(?i)PIRELLI\s+NEUM[AÁ]TICOS?\s*S\.?A\.?I\.?C\.?`)

	pirelliPercepcion = []string{"IIBB", "PERC", "RG DGI", "DN B70", "NEUQUEN", "RÍO NEG", "RIO NEG"}
)

// Pirelli prints each total on a labelled line with the amount on the same
// line or a few lines below.
type Pirelli struct{}

// ExtractTotals implements Handler
func (Pirelli) ExtractTotals(lines models.Lines) models.Totals {
	tl := tail(lines, pirelliTail)
	out := models.Totals{
		IVADetalle:          []models.IVAItem{},
		PercepcionesDetalle: []models.PercepcionItem{},
	}

	for i, line := range tl {
		up := strings.ToUpper(line)

		if strings.Contains(up, "SUBTOTAL") && out.Subtotal == nil {
			out.Subtotal = amountNear(tl, i, pirelliSpan)
		}

		if strings.Contains(up, "IVA") {
			var rate *string
			if m := patterns.IVARate.FindStringSubmatch(line); m != nil {
				rate = models.String(strings.ReplaceAll(m[1], ",", "."))
			}
			if v := amountNear(tl, i, pirelliSpan); v != nil {
				out.IVA = accumulate(out.IVA, *v)
				out.IVADetalle = append(out.IVADetalle, models.IVAItem{Alicuota: rate, Monto: *v})
			}
		}

		if containsAny(up, pirelliPercepcion) {
			if v := amountNear(tl, i, pirelliSpan); v != nil {
				out.PercepcionesTotal = accumulate(out.PercepcionesTotal, *v)
				out.PercepcionesDetalle = append(out.PercepcionesDetalle, models.PercepcionItem{Desc: line, Monto: *v})
			}
		}

		if strings.Contains(up, "IMPORTE TOTAL") || patterns.TotalWord.MatchString(up) {
			if v := amountNear(tl, i, pirelliSpan); v != nil {
				out.Total = v
			}
		}
	}

	out.IVA = round2Ptr(out.IVA)
	out.PercepcionesTotal = round2Ptr(out.PercepcionesTotal)
	return synthesizeTotal(out)
}

// ProviderName implements ProviderNamer
func (Pirelli) ProviderName(head models.Lines) string {
	return firstHeadMatch(head, pirelliName)
}

// LegalName implements ProviderNamer
func (Pirelli) LegalName() string {
	return "PIRELLI NEUMÁTICOS S.A.I.C"
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
