package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/api"
	"github.com/facturaIA/factura-extractor-ar/internal/auth"
	"github.com/facturaIA/factura-extractor-ar/internal/config"
	"github.com/facturaIA/factura-extractor-ar/internal/extractor"
	"github.com/facturaIA/factura-extractor-ar/internal/logger"
	"github.com/facturaIA/factura-extractor-ar/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	ex, err := extractor.NewFromConfig(cfg, zl)
	if err != nil {
		zl.Fatal("Failed to load vendors file", zap.String("path", cfg.Extraction.VendorsFile), zap.Error(err))
	}

	archive, err := storage.NewArchive(cfg.Storage)
	if err != nil {
		zl.Warn("MinIO storage not available, uploads will not be archived", zap.Error(err))
	}

	handler := api.NewHandler(cfg, ex, archive, zl)
	var router http.Handler = handler.SetupRoutes()
	if cfg.Auth.JWTSecret != "" {
		router = auth.JWTMiddleware(cfg.Auth.JWTSecret, "/health")(router)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	zl.Info("Starting invoice extractor",
		zap.String("addr", addr),
		zap.String("version", api.Version),
		zap.String("ocr_engine", cfg.OCR.Engine),
		zap.Strings("vendors", ex.Vendors()),
		zap.Bool("archive", archive.Enabled()),
		zap.Bool("auth", cfg.Auth.JWTSecret != ""),
	)
	zl.Info("Endpoints",
		zap.String("extract", fmt.Sprintf("POST http://%s/extract", addr)),
		zap.String("vendors", fmt.Sprintf("GET  http://%s/vendors", addr)),
		zap.String("health", fmt.Sprintf("GET  http://%s/health", addr)),
	)

	if err := http.ListenAndServe(addr, router); err != nil {
		zl.Fatal("Server failed", zap.Error(err))
	}
}
