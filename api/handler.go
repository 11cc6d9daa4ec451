package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/render"
	"github.com/facturaIA/factura-extractor-ar/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "1.0.0"
)

// Extractor runs the extraction pipeline over a PDF on disk
type Extractor interface {
	Extract(ctx context.Context, path, hint string) (*models.Result, error)
	Vendors() []string
}

// Archiver keeps a copy of uploaded PDFs
type Archiver interface {
	Enabled() bool
	Check(ctx context.Context) error
	ArchivePDF(ctx context.Context, vendor, filename string, data []byte) (string, error)
}

// Handler handles HTTP requests for invoice extraction
type Handler struct {
	config    *models.Config
	extractor Extractor
	archive   Archiver
	logger    *zap.Logger
}

// NewHandler creates a new API handler. archive may be nil.
func NewHandler(config *models.Config, extractor Extractor, archive Archiver, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		config:    config,
		extractor: extractor,
		archive:   archive,
		logger:    logger,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/extract", h.Extract).Methods("POST")
	router.HandleFunc("/vendors", h.ListVendors).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")

	router.Use(h.logRequests)
	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status      string        `json:"status"`
	Version     string        `json:"version"`
	Timestamp   string        `json:"timestamp"`
	Uptime      string        `json:"uptime"`
	Memory      MemoryStats   `json:"memory"`
	OCREngine   string        `json:"ocrEngine"`
	Tesseract   ServiceStatus `json:"tesseract"`
	ImageMagick ServiceStatus `json:"imageMagick"`
	Storage     ServiceStatus `json:"storage"`
	Vendors     []string      `json:"vendors"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health reports process stats and the external tools OCR depends on.
// Missing OCR tools only degrade the service when OCR is enabled.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	tesseractStatus := checkBinary("tesseract", "--version")
	imageMagickStatus := checkImageMagick()

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		OCREngine:   h.config.OCR.Engine,
		Tesseract:   tesseractStatus,
		ImageMagick: imageMagickStatus,
		Storage:     h.checkStorage(r.Context()),
		Vendors:     h.extractor.Vendors(),
	}

	ocrEnabled := h.config.OCR.Engine != "none"
	if ocrEnabled && (!tesseractStatus.Available || (h.config.OCR.Preprocess && !imageMagickStatus.Available)) {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkBinary runs a version command and reports its first output line
func checkBinary(name string, args ...string) ServiceStatus {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return ServiceStatus{
			Available: false,
			Error:     name + " not found or not executable",
		}
	}

	version := "unknown"
	if first, _, _ := strings.Cut(string(output), "\n"); strings.TrimSpace(first) != "" {
		version = strings.TrimSpace(first)
	}
	return ServiceStatus{
		Available: true,
		Version:   version,
	}
}

// checkImageMagick accepts either the v7 magick binary or v6 convert
func checkImageMagick() ServiceStatus {
	if status := checkBinary("magick", "-version"); status.Available {
		return status
	}
	status := checkBinary("convert", "-version")
	if !status.Available {
		status.Error = "imagemagick not found or not executable"
	}
	return status
}

// checkStorage verifies the MinIO archive bucket
func (h *Handler) checkStorage(ctx context.Context) ServiceStatus {
	if h.archive == nil || !h.archive.Enabled() {
		return ServiceStatus{
			Available: false,
			Error:     "archive disabled",
		}
	}
	if err := h.archive.Check(ctx); err != nil {
		return ServiceStatus{
			Available: false,
			Error:     err.Error(),
		}
	}
	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// ListVendors returns the vendor tags accepted by /extract
func (h *Handler) ListVendors(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{
		"vendors": h.extractor.Vendors(),
	})
}

// Extract handles multipart uploads: a PDF in "file", a mandatory "vendor",
// and optional "format" (json, kv, ini) and "detail" (full) fields.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx := r.Context()
	started := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		h.sendError(w, http.StatusBadRequest, "Archivo demasiado grande o formulario inválido.")
		return
	}

	vendor, ok := h.vendor(r.FormValue("vendor"))
	if !ok {
		h.sendError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("vendor inválido: use uno de %s", strings.Join(h.extractor.Vendors(), ", ")))
		return
	}

	format, err := render.ParseFormat(r.FormValue("format"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	detail := strings.EqualFold(r.FormValue("detail"), "full")

	file, header, err := r.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Falta el archivo (campo 'file').")
		return
	}
	defer file.Close()

	if !storage.IsPDFName(header.Filename) {
		h.sendError(w, http.StatusBadRequest, "Solo se aceptan archivos PDF por el momento.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "No se pudo leer el archivo.")
		return
	}
	if len(data) == 0 {
		h.sendError(w, http.StatusBadRequest, "Archivo vacío.")
		return
	}

	tmpPath, _, err := storage.SaveTempPDF(h.config.Storage.TempDir, bytes.NewReader(data))
	if err != nil {
		h.logger.Error("Failed to save upload", zap.Error(err))
		h.sendError(w, http.StatusInternalServerError, "Error guardando archivo temporal.")
		return
	}
	defer func() {
		if err := storage.CleanupTempFile(tmpPath); err != nil {
			h.logger.Warn("Failed to remove temp file", zap.String("path", tmpPath), zap.Error(err))
		}
	}()

	if h.archive != nil && h.archive.Enabled() {
		if object, err := h.archive.ArchivePDF(ctx, vendor, header.Filename, data); err != nil {
			h.logger.Warn("Failed to archive upload", zap.String("file", header.Filename), zap.Error(err))
		} else {
			h.logger.Debug("Upload archived", zap.String("object", object))
		}
	}

	res, err := h.extractor.Extract(ctx, tmpPath, vendor)
	if err != nil {
		h.logger.Error("Extraction failed", zap.String("file", header.Filename), zap.Error(err))
		h.sendError(w, http.StatusInternalServerError, "Error extrayendo la factura: "+err.Error())
		return
	}
	res.Record.File = header.Filename

	h.logger.Info("Extract request served",
		zap.String("file", header.Filename),
		zap.String("vendor", vendor),
		zap.String("format", string(format)),
		zap.Bool("detail", detail),
		zap.Duration("duration", time.Since(started)),
	)

	if detail {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(res.Record)
		return
	}

	body, err := render.Render(format, res.Payload)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// vendor validates the form value against the registered vendor tags
func (h *Handler) vendor(v string) (string, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return "", false
	}
	for _, tag := range h.extractor.Vendors() {
		if tag == v {
			return v, true
		}
	}
	return "", false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// logRequests logs one line per request with a request id
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r)

		h.logger.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
