// Package render serializes the payload as JSON, key=value text or INI, and
// parses each form back.
package render

import (
	"fmt"
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/numparse"
)

// Format names an output serialization
type Format string

const (
	FormatJSON Format = "json"
	FormatKV   Format = "kv"
	FormatINI  Format = "ini"
)

// ParseFormat accepts a format name case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatKV, FormatINI:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, kv or ini)", s)
	}
}

// ContentType is the HTTP content type of the format
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Render serializes p in format f
func Render(f Format, p models.Payload) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return JSON(p)
	case FormatKV:
		return KV(p), nil
	case FormatINI:
		return INI(p)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Parse reads a payload serialized in format f
func Parse(f Format, data []byte) (models.Payload, error) {
	switch f {
	case FormatJSON, "":
		return ParseJSON(data)
	case FormatKV:
		return ParseKV(data)
	case FormatINI:
		return ParseINI(data)
	default:
		return models.Payload{}, fmt.Errorf("unknown format %q", f)
	}
}

// nonZero drops entries whose amount renders as 0.00
func nonZero(a models.Amounts) models.Amounts {
	out := models.Amounts{}
	for _, e := range a {
		if numparse.Round2(e.Value) != 0 {
			out = append(out, models.Amount{Key: e.Key, Value: numparse.Round2(e.Value)})
		}
	}
	return out
}

func parseAmount(key, s string) (float64, error) {
	v, ok := numparse.Parse(s)
	if !ok {
		return 0, fmt.Errorf("%s: invalid amount %q", key, s)
	}
	return v, nil
}
