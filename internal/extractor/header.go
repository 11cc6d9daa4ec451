package extractor

import (
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/patterns"
)

const tipoScanLines = 200

// ExtractHeader reads comprobante type, number, date, CAE and CAE expiry
func ExtractHeader(lines models.Lines) models.Header {
	var h models.Header

	// "Factura X" settles the type; a bare letter line is only a candidate.
	for _, line := range lines[:min(len(lines), tipoScanLines)] {
		if m := patterns.FacturaTipo.FindStringSubmatch(line); m != nil {
			h.Tipo = strings.ToUpper(m[1])
			break
		}
		if s := strings.TrimSpace(line); patterns.TipoSolo.MatchString(s) {
			h.Tipo = strings.ToUpper(s)
		}
	}

	// Later occurrences win; footers reprint the number.
	for _, line := range lines {
		if m := patterns.NumeroFactura.FindString(line); m != "" {
			h.Numero = m
		}
	}

	for _, line := range lines {
		if m := patterns.Fecha.FindString(line); m != "" {
			h.Fecha = m
			break
		}
	}

	for i, line := range lines {
		up := strings.ToUpper(line)
		if !strings.Contains(up, "CAE") {
			continue
		}
		if m := patterns.CAE.FindString(line); m != "" {
			h.CAE = m
		} else if m := patterns.CAE.FindString(strings.ReplaceAll(line, "CAE", "")); m != "" {
			h.CAE = m
		}
		if strings.Contains(up, "VTO") || strings.Contains(up, "VENC") {
			if d := dateNear(lines, i); d != "" {
				h.CAEVto = d
			}
		}
	}
	return h
}

// dateNear returns the first date on lines[i] or the two lines after it
func dateNear(lines models.Lines, i int) string {
	for j := i; j < min(len(lines), i+3); j++ {
		if m := patterns.Fecha.FindString(lines[j]); m != "" {
			return m
		}
	}
	return ""
}
