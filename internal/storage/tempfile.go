package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotPDF is returned for uploads without a .pdf extension
var ErrNotPDF = errors.New("el archivo debe ser un PDF")

// cleanupAttempts bounds the retries of CleanupTempFile
const cleanupAttempts = 3

// IsPDFName reports whether filename ends in .pdf, case-insensitively
func IsPDFName(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".pdf")
}

// SaveTempPDF copies r into a new file in dir (the system temp dir when
// empty) and returns its path and size.
func SaveTempPDF(dir string, r io.Reader) (string, int64, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("create temp dir: %w", err)
	}

	path := filepath.Join(dir, "factura_"+uuid.New().String()+".pdf")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write temp file: %w", err)
	}
	return path, n, nil
}

// CleanupTempFile removes path, retrying permission errors with a growing
// pause. Failures are returned but callers usually only log them.
func CleanupTempFile(path string) error {
	if path == "" {
		return nil
	}
	var err error
	for attempt := 0; attempt < cleanupAttempts; attempt++ {
		err = os.Remove(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if !errors.Is(err, fs.ErrPermission) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
	return err
}
