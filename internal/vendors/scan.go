package vendors

import (
	"regexp"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
	"github.com/facturaIA/factura-extractor-ar/internal/patterns"
)

// tail returns the last n lines
func tail(lines models.Lines, n int) models.Lines {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// amountNear returns the first parseable amount on lines[i] or on one of the
// span lines after it. Nothing stops the scan at the next label.
func amountNear(lines models.Lines, i, span int) *float64 {
	end := min(len(lines), i+span+1)
	for j := i; j < end; j++ {
		tok, ok := patterns.FirstAmount(lines[j])
		if !ok {
			continue
		}
		if v, ok := numparse.Parse(tok); ok {
			return &v
		}
	}
	return nil
}

// firstHeadMatch returns the first trimmed line of head matching re
func firstHeadMatch(head models.Lines, re *regexp.Regexp) string {
	for _, l := range head {
		if re.MatchString(l) {
			return l
		}
	}
	return ""
}

// accumulate adds v to the running total, starting from nil
func accumulate(total *float64, v float64) *float64 {
	return models.Float(models.Value(total) + v)
}

// round2Ptr rounds a present amount and leaves nil alone
func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return models.Float(numparse.Round2(*v))
}

// synthesizeTotal fills a missing total from its parts once a subtotal is known
func synthesizeTotal(t models.Totals) models.Totals {
	if t.Total == nil && t.Subtotal != nil {
		t.Total = models.Float(numparse.Round2(*t.Subtotal + models.Value(t.IVA) + models.Value(t.PercepcionesTotal)))
	}
	return t
}
