package extractor

import (
	"unicode"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/patterns"
	"github.com/facturaIA/factura-extractor-ar/internal/vendors"
)

const (
	providerScanLines = 80
	clientNameLookback = 5
)

type cuitHit struct {
	line int
	cuit string
}

// ExtractParties finds emisor and receptor. The first CUIT printed belongs to
// the emisor and the last different one to the receptor. namer may be nil
// when the vendor is unknown, in which case no provider name is resolved.
func ExtractParties(lines models.Lines, namer vendors.ProviderNamer) models.Parties {
	var p models.Parties

	var hits []cuitHit
	for i, line := range lines {
		for _, m := range patterns.CUIT.FindAllString(line, -1) {
			hits = append(hits, cuitHit{line: i, cuit: m})
		}
	}

	if len(hits) > 0 {
		p.CUITProveedor = hits[0].cuit

		var last *cuitHit
		for i := range hits {
			if hits[i].cuit != p.CUITProveedor {
				last = &hits[i]
			}
		}
		if last != nil {
			p.CUITCliente = last.cuit
			p.Cliente = clientName(lines, last.line)
		}
	}

	if namer != nil {
		p.Proveedor = namer.ProviderName(lines[:min(len(lines), providerScanLines)])
		if p.Proveedor == "" {
			p.Proveedor = namer.LegalName()
		}
	}
	return p
}

// clientName looks at the receptor's CUIT line and the lines above it
func clientName(lines models.Lines, idx int) string {
	for j := max(0, idx-clientNameLookback); j <= idx; j++ {
		cand := lines[j]
		if patterns.ClientHint.MatchString(cand) || isUpper(cand) {
			return cand
		}
	}
	return ""
}

// isUpper reports whether s has at least one letter and no lower-case ones
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			cased = true
		}
	}
	return cased
}
