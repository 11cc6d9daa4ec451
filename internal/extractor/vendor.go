package extractor

import (
	"strings"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/patterns"
)

const vendorScanLines = 120

// DetectVendor resolves the vendor tag: the caller's hint first, then header
// keywords, then the emisor CUIT. It returns "" when nothing matches.
func DetectVendor(hint string, lines models.Lines, cuitProveedor string, cfg models.VendorConfig) string {
	if v := VendorByName(hint, lines, cfg); v != "" {
		return v
	}
	return VendorByCUIT(cuitProveedor, cfg)
}

// VendorByName applies the hint and the keyword scan of the first header lines
func VendorByName(hint string, lines models.Lines, cfg models.VendorConfig) string {
	if h := strings.ToUpper(strings.TrimSpace(hint)); h != "" {
		return h
	}

	header := strings.ToUpper(strings.Join(lines[:min(len(lines), vendorScanLines)], " "))
	for _, vk := range cfg.Names {
		for _, name := range vk.Names {
			if name != "" && strings.Contains(header, strings.ToUpper(name)) {
				return vk.Vendor
			}
		}
	}
	return ""
}

// VendorByCUIT looks the CUIT up as printed and then by its digits
func VendorByCUIT(cuit string, cfg models.VendorConfig) string {
	if cuit == "" {
		return ""
	}
	if v, ok := cfg.CUITs[cuit]; ok {
		return v
	}
	digits := patterns.Digits(cuit)
	for k, v := range cfg.CUITs {
		if patterns.Digits(k) == digits {
			return v
		}
	}
	return ""
}
