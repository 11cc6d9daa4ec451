package services

import (
	"math"
	"regexp"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
	"github.com/facturaIA/factura-extractor-ar/internal/patterns"
)

var (
	dayFirstDate  = regexp.MustCompile(`^(\d{2})[/\-.](\d{2})[/\-.](\d{4})\b`)
	yearFirstDate = regexp.MustCompile(`^(\d{4})[/\-](\d{2})[/\-](\d{2})\b`)
)

// PayloadBuilder assembles the compact payload from a finished record
type PayloadBuilder struct {
	normalizer       *TaxNormalizer
	preferClientCUIT bool
}

// NewPayloadBuilder creates a builder. When preferClientCUIT is set the
// payload carries the receptor's CUIT instead of the emisor's.
func NewPayloadBuilder(normalizer *TaxNormalizer, preferClientCUIT bool) *PayloadBuilder {
	if normalizer == nil {
		normalizer = NewTaxNormalizer()
	}
	return &PayloadBuilder{normalizer: normalizer, preferClientCUIT: preferClientCUIT}
}

// Build derives the payload from r. r.TributosNormalizados must already be set.
func (b *PayloadBuilder) Build(r models.Record) models.Payload {
	cuit := r.CUITProveedor
	if b.preferClientCUIT {
		cuit = r.CUITCliente
	}

	p := models.Payload{
		Numero:       r.Numero,
		Fecha:        ISODate(r.Fecha),
		CUIT:         patterns.Digits(cuit),
		Total:        numparse.Round2(models.Value(r.Total)),
		IVA:          b.normalizer.IVABuckets(r.Totals),
		Percepciones: models.Amounts{},
		Retenciones:  models.Amounts{},
	}
	if p.IVA == nil {
		p.IVA = models.Amounts{}
	}

	for _, e := range r.TributosNormalizados {
		if e.Amount == nil || *e.Amount == 0 {
			continue
		}
		a := models.Amount{Key: e.Key, Value: *e.Amount}
		if models.IsRetencion(e.Key) {
			p.Retenciones = append(p.Retenciones, a)
		} else {
			p.Percepciones = append(p.Percepciones, a)
		}
	}

	if r.Subtotal != nil {
		p.Subtotal = numparse.Round2(*r.Subtotal)
	} else {
		p.Subtotal = EstimateSubtotal(p.Total, p.IVA, p.Percepciones)
	}
	return p
}

// EstimateSubtotal computes total - IVA - percepciones for invoices that do
// not print a subtotal
func EstimateSubtotal(total float64, iva, percepciones models.Amounts) float64 {
	sub := total - iva.Sum() - percepciones.Sum()
	if math.Abs(sub) < 1e-9 {
		return 0
	}
	return numparse.Round2(sub)
}

// ISODate rewrites dd/mm/yyyy, dd-mm-yyyy, dd.mm.yyyy, yyyy-mm-dd and
// yyyy/mm/dd as YYYY-MM-DD. Anything else is returned unchanged.
func ISODate(s string) string {
	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	if m := yearFirstDate.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return s
}
