package vendors

import (
	"regexp"
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
	"github.com/facturaIA/factura-extractor-ar/internal/patterns"
)

// GuerriniTag identifies Guerrini Neumáticos S.A.
const GuerriniTag = "GUERRINI"

const guerriniWindow = 60

var guerriniName = regexp.MustCompile(`(?i)GUERRINI\s+NEUM[AÁ]TICOS?\s*S\.?A\.?`)

// Guerrini prints the totals as a column of bare amounts under the last
// SUBTOTAL label: subtotal, IVA 21%, percepción IIBB, total.
type Guerrini struct{}

// ExtractTotals implements Handler
func (Guerrini) ExtractTotals(lines models.Lines) models.Totals {
	out := models.Totals{
		IVADetalle:          []models.IVAItem{},
		PercepcionesDetalle: []models.PercepcionItem{},
	}

	idx := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if patterns.Subtotal.MatchString(strings.ToUpper(lines[i])) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return out
	}

	window := lines[idx:min(len(lines), idx+guerriniWindow)]
	values := make([]float64, 0, 4)
	for _, l := range window {
		if !patterns.NumPure.MatchString(l) {
			continue
		}
		if v, ok := numparse.Parse(l); ok {
			values = append(values, v)
			if len(values) == 4 {
				break
			}
		}
	}
	if len(values) < 2 {
		return out
	}

	out.Subtotal = models.Float(values[0])
	out.IVA = models.Float(values[1])
	out.IVADetalle = []models.IVAItem{{Alicuota: models.String("21.00"), Monto: values[1]}}

	perc := 0.0
	if len(values) >= 3 {
		perc = values[2]
		out.PercepcionesDetalle = []models.PercepcionItem{{Desc: "PERCEP. IIBB", Monto: perc}}
	}
	out.PercepcionesTotal = models.Float(perc)

	if len(values) >= 4 {
		out.Total = models.Float(values[3])
	} else {
		out.Total = models.Float(numparse.Round2(values[0] + values[1] + perc))
	}
	return out
}

// ProviderName implements ProviderNamer
func (Guerrini) ProviderName(head models.Lines) string {
	return firstHeadMatch(head, guerriniName)
}

// LegalName implements ProviderNamer
func (Guerrini) LegalName() string {
	return "GUERRINI NEUMATICOS S.A."
}
