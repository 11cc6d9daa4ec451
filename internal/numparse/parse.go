// Package numparse reads amounts printed with Argentine or US separator
// conventions.
package numparse

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	nonNumeric      = regexp.MustCompile(`[^0-9,.\-]`)
	trailingDecimal = regexp.MustCompile(`[.,]\d{2}$`)
	dotGrouping     = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+$`)
)

// Parse converts a token such as "$ 1.234,56" or "1,234.56" into a float.
// ok is false when the token holds no usable number.
func Parse(s string) (v float64, ok bool) {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = nonNumeric.ReplaceAllString(s, "")

	// A separator followed by exactly two trailing digits is the decimal point.
	if trailingDecimal.MatchString(s) {
		if s[len(s)-3] == ',' {
			return convert(latin(s))
		}
		return convert(strings.ReplaceAll(s, ",", ""))
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && !hasDot:
		return convert(strings.ReplaceAll(s, ",", ""))
	case hasDot && !hasComma:
		// "1.234" and "12.345.678" are thousands grouping, not decimals.
		if dotGrouping.MatchString(s) {
			return convert(strings.ReplaceAll(s, ".", ""))
		}
		if v, ok := convert(s); ok {
			return v, true
		}
		return convert(strings.ReplaceAll(s, ".", ""))
	case hasComma && hasDot:
		if strings.LastIndexAny(s, ".,") == strings.LastIndex(s, ",") {
			return convert(latin(s))
		}
		return convert(strings.ReplaceAll(s, ",", ""))
	}
	return convert(s)
}

// MustParse is Parse for callers that treat a missing number as zero
func MustParse(s string) float64 {
	v, _ := Parse(s)
	return v
}

// Round2 rounds half away from zero to two decimals
func Round2(f float64) float64 {
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}

// Fixed2 formats f with exactly two decimals
func Fixed2(f float64) string {
	return decimal.NewFromFloat(f).StringFixed(2)
}

// latin turns "1.234,56" into "1234.56"
func latin(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
}

func convert(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v, _ := d.Float64()
	return v, true
}
