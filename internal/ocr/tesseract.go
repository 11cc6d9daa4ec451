package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLanguage is the tesseract language set used for Argentine invoices
const DefaultLanguage = "spa+eng"

// TesseractOCR runs the tesseract CLI
type TesseractOCR struct {
	binary   string
	language string
	logger   *zap.Logger
}

// NewTesseractOCR creates a new Tesseract OCR instance
func NewTesseractOCR(language string, logger *zap.Logger) *TesseractOCR {
	if language == "" {
		language = DefaultLanguage
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TesseractOCR{binary: "tesseract", language: language, logger: logger}
}

// Available reports whether the tesseract binary is installed
func (t *TesseractOCR) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

// Recognize returns the text lines of one page image. Lines are rebuilt from
// the TSV word boxes; when tesseract gives no line metadata the plain text
// output is split instead.
func (t *TesseractOCR) Recognize(ctx context.Context, image []byte) ([]string, error) {
	imgPath := filepath.Join(os.TempDir(), "ocr_"+uuid.NewString()+".png")
	if err := os.WriteFile(imgPath, image, 0600); err != nil {
		return nil, fmt.Errorf("write page image: %w", err)
	}
	defer os.Remove(imgPath)

	out, err := t.run(ctx, imgPath, "tsv")
	if err == nil {
		if words, ok := ParseTSV(bytes.NewReader(out)); ok {
			return JoinLines(words), nil
		}
	} else {
		t.logger.Warn("Tesseract TSV failed, using plain text", zap.Error(err))
	}

	out, err = t.run(ctx, imgPath)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(out), "\n"), nil
}

func (t *TesseractOCR) run(ctx context.Context, imgPath string, configs ...string) ([]byte, error) {
	args := append([]string{imgPath, "stdout", "-l", t.language}, configs...)
	cmd := exec.CommandContext(ctx, t.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// WordInfo contains detailed information about a detected word
type WordInfo struct {
	Text       string
	Confidence float64
	Line       LineKey
	Box        BoundingBox
}

// LineKey identifies a text line. Tesseract restarts line_num in every block
// and paragraph, so the line number alone is not unique within a page.
type LineKey struct {
	Page, Block, Par, Line int
}

// BoundingBox represents the location of text in the image
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// ParseTSV reads tesseract TSV output. Rows with negative confidence (layout
// rows) or blank text are skipped. ok is false when the header has no
// line_num column.
func ParseTSV(r io.Reader) (words []WordInfo, ok bool) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, false
	}
	col := make(map[string]int)
	for i, name := range strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t") {
		col[name] = i
	}
	for _, name := range []string{"line_num", "conf", "text"} {
		if _, found := col[name]; !found {
			return nil, false
		}
	}

	field := func(f []string, name string) string {
		i, found := col[name]
		if !found || i >= len(f) {
			return ""
		}
		return f[i]
	}
	num := func(f []string, name string) int {
		n, _ := strconv.Atoi(field(f, name))
		return n
	}

	for sc.Scan() {
		f := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
		conf, err := strconv.ParseFloat(field(f, "conf"), 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(field(f, "text"))
		if text == "" {
			continue
		}
		words = append(words, WordInfo{
			Text:       text,
			Confidence: conf,
			Line: LineKey{
				Page:  num(f, "page_num"),
				Block: num(f, "block_num"),
				Par:   num(f, "par_num"),
				Line:  num(f, "line_num"),
			},
			Box: BoundingBox{
				X:      num(f, "left"),
				Y:      num(f, "top"),
				Width:  num(f, "width"),
				Height: num(f, "height"),
			},
		})
	}
	return words, true
}

// JoinLines joins consecutive words of the same line with single spaces
func JoinLines(words []WordInfo) []string {
	var lines []string
	var buf []string
	var current LineKey

	for i, w := range words {
		if i > 0 && w.Line != current {
			lines = append(lines, strings.Join(buf, " "))
			buf = buf[:0]
		}
		current = w.Line
		buf = append(buf, w.Text)
	}
	if len(buf) > 0 {
		lines = append(lines, strings.Join(buf, " "))
	}
	return lines
}
