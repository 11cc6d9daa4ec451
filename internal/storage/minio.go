// Package storage handles uploaded PDFs: temp files for the pipeline and an
// optional MinIO archive.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

// PDFContentType is set on archived objects
const PDFContentType = "application/pdf"

// Archive stores uploaded invoices in a MinIO bucket. A nil *Archive is a
// disabled archive.
type Archive struct {
	client *minio.Client
	bucket string
}

// NewArchive builds the MinIO client. It returns nil when archiving is off or
// no endpoint is configured. No request is made until Check or ArchivePDF.
func NewArchive(cfg models.StorageConfig) (*Archive, error) {
	if !cfg.Archive || cfg.Endpoint == "" {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is empty")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// Enabled reports whether a bucket is configured
func (a *Archive) Enabled() bool {
	return a != nil && a.client != nil
}

// Bucket returns the target bucket name
func (a *Archive) Bucket() string {
	if a == nil {
		return ""
	}
	return a.bucket
}

// Check verifies that the bucket exists
func (a *Archive) Check(ctx context.Context) error {
	if !a.Enabled() {
		return errors.New("archive disabled")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", a.bucket)
	}
	return nil
}

// ArchivePDF uploads data under vendor/YYYY/MM/ and returns bucket/object
func (a *Archive) ArchivePDF(ctx context.Context, vendor, filename string, data []byte) (string, error) {
	if !a.Enabled() {
		return "", errors.New("archive disabled")
	}
	objectName := ObjectName(vendor, filename, time.Now())

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: PDFContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload pdf: %w", err)
	}
	return fmt.Sprintf("%s/%s", a.bucket, objectName), nil
}

// ObjectName builds {vendor}/YYYY/MM/{timestamp}_{id}_{filename}
func ObjectName(vendor, filename string, now time.Time) string {
	vendor = strings.ToUpper(strings.TrimSpace(vendor))
	if vendor == "" {
		vendor = models.UnknownVendor
	}
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "factura.pdf"
	}
	return fmt.Sprintf("%s/%d/%02d/%s_%s_%s",
		vendor,
		now.Year(),
		now.Month(),
		now.Format("20060102_150405"),
		uuid.New().String()[:8],
		base,
	)
}
