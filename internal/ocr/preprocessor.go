package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Preprocessor cleans rendered pages with ImageMagick before recognition
type Preprocessor struct {
	enabled bool
	logger  *zap.Logger
}

// NewPreprocessor creates a new image preprocessor. A disabled preprocessor
// returns images untouched.
func NewPreprocessor(enabled bool, logger *zap.Logger) *Preprocessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preprocessor{enabled: enabled, logger: logger}
}

// Process applies grayscale, contrast and sharpening to a PNG page.
// Any ImageMagick failure returns the original image.
func (p *Preprocessor) Process(ctx context.Context, image []byte) []byte {
	if !p.enabled {
		return image
	}

	id := uuid.NewString()
	inputFile := filepath.Join(os.TempDir(), "page_in_"+id+".png")
	outputFile := filepath.Join(os.TempDir(), "page_out_"+id+".png")

	if err := os.WriteFile(inputFile, image, 0600); err != nil {
		return image
	}
	defer os.Remove(inputFile)
	defer os.Remove(outputFile)

	// No resize: tesseract reads the page at the render DPI.
	args := []string{
		inputFile,
		"-colorspace", "Gray",
		"-normalize",
		"-contrast-stretch", "2%x1%",
		"-despeckle",
		"-sharpen", "0x1",
		outputFile,
	}

	cmd := exec.CommandContext(ctx, imageMagickBinary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		p.logger.Warn("ImageMagick failed, using original page",
			zap.Error(err),
			zap.String("stderr", stderr.String()))
		return image
	}

	processed, err := os.ReadFile(outputFile)
	if err != nil {
		return image
	}

	p.logger.Debug("Page enhanced", zap.Int("bytes_in", len(image)), zap.Int("bytes_out", len(processed)))
	return processed
}

// imageMagickBinary prefers 'magick' (ImageMagick 7) over 'convert' (ImageMagick 6)
func imageMagickBinary() string {
	if _, err := exec.LookPath("magick"); err == nil {
		return "magick"
	}
	return "convert"
}

// ImageMagickAvailable reports whether either ImageMagick binary is installed
func ImageMagickAvailable() bool {
	_, err := exec.LookPath(imageMagickBinary())
	return err == nil
}
