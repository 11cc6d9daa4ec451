// Package config loads the service configuration and the vendors file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/ocr"
	"github.com/facturaIA/factura-extractor-ar/internal/pdftext"
	"github.com/facturaIA/factura-extractor-ar/internal/services"
)

// Defaults returns the configuration used when no file is present
func Defaults() *models.Config {
	return &models.Config{
		Port: 8000,
		Host: "0.0.0.0",
		Logger: models.LoggerConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
		OCR: models.OCRConfig{
			Engine:     "tesseract",
			Language:   ocr.DefaultLanguage,
			DPI:        ocr.DefaultDPI,
			MinChars:   pdftext.DefaultMinChars,
			Preprocess: true,
		},
		Extraction: models.ExtractionConfig{
			VendorsFile: "vendors.yaml",
			Tolerance:   services.DefaultTolerance,
		},
		Storage: models.StorageConfig{
			Bucket: "facturas",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*models.Config, error) {
	config := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *models.Config) error {
	if port := os.Getenv("PORT"); port != "" {
		if _, err := fmt.Sscanf(port, "%d", &config.Port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logger.Format = format
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}
	if file := os.Getenv("VENDORS_FILE"); file != "" {
		config.Extraction.VendorsFile = file
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
		config.Storage.Archive = true
	}
	if key := os.Getenv("MINIO_ACCESS_KEY"); key != "" {
		config.Storage.AccessKey = key
	}
	if key := os.Getenv("MINIO_SECRET_KEY"); key != "" {
		config.Storage.SecretKey = key
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}

	for name, dst := range map[string]*bool{
		"MINIO_USE_SSL":      &config.Storage.UseSSL,
		"PREFER_CLIENT_CUIT": &config.Extraction.PreferClientCUIT,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		*dst = b
	}
	return nil
}

type vendorEntry struct {
	Detect struct {
		Names []string `yaml:"names"`
		CUITs []string `yaml:"cuits"`
	} `yaml:"detect"`
}

// LoadVendors reads the vendors file:
//
//	GUERRINI:
//	  detect:
//	    names: ["GUERRINI NEUMATICOS"]
//	    cuits: ["30-12345678-9"]
//
// Vendor tags are upper-cased and file order is kept. A missing file yields
// an empty configuration.
func LoadVendors(path string) (models.VendorConfig, error) {
	cfg := models.VendorConfig{CUITs: map[string]string{}}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read vendors file: %w", err)
	}
	return ParseVendors(data)
}

// ParseVendors decodes vendors file content
func ParseVendors(data []byte) (models.VendorConfig, error) {
	cfg := models.VendorConfig{CUITs: map[string]string{}}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("failed to parse vendors file: %w", err)
	}
	if len(doc.Content) == 0 {
		return cfg, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return cfg, fmt.Errorf("vendors file: expected a mapping of vendors, got %s", kindName(root.Kind))
	}

	index := map[string]int{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		tag := strings.ToUpper(strings.TrimSpace(root.Content[i].Value))
		var entry vendorEntry
		if err := root.Content[i+1].Decode(&entry); err != nil {
			return cfg, fmt.Errorf("vendors file: %s: %w", tag, err)
		}

		if len(entry.Detect.Names) > 0 {
			pos, ok := index[tag]
			if !ok {
				pos = len(cfg.Names)
				index[tag] = pos
				cfg.Names = append(cfg.Names, models.VendorKeywords{Vendor: tag})
			}
			cfg.Names[pos].Names = append(cfg.Names[pos].Names, entry.Detect.Names...)
		}
		for _, cuit := range entry.Detect.CUITs {
			cfg.CUITs[cuit] = tag
		}
	}
	return cfg, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "node"
	}
}
