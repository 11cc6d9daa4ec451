// Package patterns holds the regular expressions shared by the extraction stages.
package patterns

import "regexp"

var (
	// CUIT matches a fiscal identifier: 2 digits, 7 or 8 digits, check digit
	CUIT = regexp.MustCompile(`\b\d{2}[- ]?\d{7,8}[- ]?\d\b`)

	// Fecha matches dd/mm/yy[yy] with / - or . and yyyy-mm-dd or yyyy/mm/dd,
	// each with an optional hh:mm:ss suffix
	Fecha = regexp.MustCompile(`\b(?:\d{2}[/\-.]\d{2}[/\-.]\d{2,4}|\d{4}[/\-]\d{2}[/\-]\d{2})(?:\s+\d{1,2}:\d{1,2}:\d{1,2})?\b`)

	// NumeroFactura matches a punto de venta + comprobante number: nnnn-nnnnnnnn
	NumeroFactura = regexp.MustCompile(`\b\d{4}-\d{8}\b`)

	// CAE matches a 14 digit authorization code
	CAE = regexp.MustCompile(`\b\d{14}\b`)

	// NumPure matches a line that is only an amount with two decimals
	NumPure = regexp.MustCompile(`^\s*-?\s*\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})\s*$`)

	// NumAny finds an amount with two decimals anywhere in a line
	NumAny = regexp.MustCompile(`-?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})|-?\d+(?:[.,]\d{2})`)

	// FacturaTipo captures the letter of "Factura A", "FACTURA B", ...
	FacturaTipo = regexp.MustCompile(`(?i)\bFactura\s*([ABC])\b`)

	// TipoSolo matches a line that is just the comprobante letter
	TipoSolo = regexp.MustCompile(`(?i)^[ABC]$`)

	// IVARate captures the percentage printed next to "IVA", e.g. "IVA 21%" or "IVA 10,5"
	IVARate = regexp.MustCompile(`(?i)IVA\s*(\d{1,2}(?:[.,]\d{1,2})?)`)

	// Subtotal matches the SUBTOTAL label as a whole word
	Subtotal = regexp.MustCompile(`\bSUBTOTAL\b`)

	// TotalWord matches TOTAL as a whole word
	TotalWord = regexp.MustCompile(`\bTOTAL\b`)

	// ClientHint matches lines that usually carry the receptor's name
	ClientHint = regexp.MustCompile(`(?i)(ALVAREZ|NEUM[AÁ]TIC|S\.A\.|SRL|RESPONSABLE|CLIENTE)`)

	nonDigits = regexp.MustCompile(`\D`)
)

// FirstAmount returns the amount token on a line, preferring a whole-line
// amount over one embedded in text
func FirstAmount(line string) (string, bool) {
	if m := NumPure.FindString(line); m != "" {
		return m, true
	}
	if m := NumAny.FindString(line); m != "" {
		return m, true
	}
	return "", false
}

// Digits strips every non-digit character
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}
