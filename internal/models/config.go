package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	Logger     LoggerConfig     `yaml:"logger"`
	OCR        OCRConfig        `yaml:"ocr"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Storage    StorageConfig    `yaml:"storage"`
	Auth       AuthConfig       `yaml:"auth"`
}

// LoggerConfig selects level, encoding and destination of the zap logger
type LoggerConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json or console
	OutputPath string `yaml:"output_path"` // stdout, stderr or a file path
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine     string  `yaml:"engine"`     // "tesseract" or "none"
	Language   string  `yaml:"language"`   // tesseract languages, default "spa+eng"
	DPI        float64 `yaml:"dpi"`        // page render resolution
	MinChars   int     `yaml:"min_chars"`  // text layers shorter than this trigger OCR
	Preprocess bool    `yaml:"preprocess"` // run ImageMagick before tesseract
}

// ExtractionConfig tunes the extraction pipeline
type ExtractionConfig struct {
	VendorsFile      string  `yaml:"vendors_file"`
	PreferClientCUIT bool    `yaml:"prefer_client_cuit"`
	Tolerance        float64 `yaml:"tolerance"`
}

// StorageConfig configures temp uploads and the optional MinIO archive
type StorageConfig struct {
	TempDir   string `yaml:"temp_dir"`
	Archive   bool   `yaml:"archive"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// AuthConfig enables bearer token checks when JWTSecret is set
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// VendorKeywords lists header keywords that identify one vendor
type VendorKeywords struct {
	Vendor string
	Names  []string
}

// VendorConfig is the detection data read from the vendors file. Names keeps
// the file order so the first vendor with a matching keyword wins.
type VendorConfig struct {
	Names []VendorKeywords
	CUITs map[string]string
}
