package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
)

// DefaultTolerance is the absolute difference accepted between the printed
// total and subtotal + IVA + percepciones
const DefaultTolerance = 0.05

// WarningTotalEstimated is added when the total had to be computed
const WarningTotalEstimated = "TOTAL estimado = SUBTOTAL + IVA + PERCEPCIONES"

// TotalsValidator checks that the extracted totals add up
type TotalsValidator struct {
	tolerance float64 // absolute, in currency units
}

// NewTotalsValidator creates a validator with the default 0.05 tolerance
func NewTotalsValidator() *TotalsValidator {
	return &TotalsValidator{tolerance: DefaultTolerance}
}

// NewTotalsValidatorWithTolerance creates a validator with a custom tolerance.
// Non-positive values fall back to the default.
func NewTotalsValidatorWithTolerance(tolerance float64) *TotalsValidator {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &TotalsValidator{tolerance: tolerance}
}

// Reconcile returns the totals with a missing total filled in, and the
// warnings produced. A total that does not match is reported, never corrected.
func (v *TotalsValidator) Reconcile(t models.Totals) (models.Totals, []string) {
	computed := numparse.Round2(models.Value(t.Subtotal) + models.Value(t.IVA) + models.Value(t.PercepcionesTotal))

	if t.Total == nil {
		t.Total = models.Float(computed)
		return t, []string{WarningTotalEstimated}
	}

	if math.Abs(*t.Total-computed) > v.tolerance {
		return t, []string{fmt.Sprintf("Diferencia contable: total(%s) != subtotal+iva+percepciones(%s)",
			formatAmount(*t.Total), formatAmount(computed))}
	}
	return t, nil
}

// formatAmount prints amounts the way they are shown to reviewers: shortest
// form, always with a decimal part ("126.0", "96.8")
func formatAmount(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
