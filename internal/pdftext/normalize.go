package pdftext

import (
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

// NormalizeLine replaces non-breaking spaces, collapses whitespace runs and trims
func NormalizeLine(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Normalize normalizes every line and drops the empty ones
func Normalize(raw []string) models.Lines {
	lines := make(models.Lines, 0, len(raw))
	for _, l := range raw {
		if n := NormalizeLine(l); n != "" {
			lines = append(lines, n)
		}
	}
	return lines
}

// SplitLines splits page text into normalized lines
func SplitLines(text string) models.Lines {
	return Normalize(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// CharCount is the total number of characters over all lines
func CharCount(lines models.Lines) int {
	n := 0
	for _, l := range lines {
		n += len([]rune(l))
	}
	return n
}
