// Package main provides facturactl, the command line front end of the
// invoice extractor.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/internal/config"
	"github.com/facturaIA/factura-extractor-ar/internal/logger"
	"github.com/facturaIA/factura-extractor-ar/internal/models"
)

var (
	// Global flags
	cfgFile     string
	vendorsFile string
	verbose     bool

	// Configuration and logger
	cfg *models.Config
	log *zap.Logger
)

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "facturactl",
		Short: "Extract fiscal data from Argentine supplier invoices",
		Long: `facturactl reads invoice PDFs (text layer first, tesseract OCR when the
PDF is scanned) and prints the header, parties, totals and normalized taxes.

Output formats: json (default), kv and ini.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if vendorsFile != "" {
				cfg.Extraction.VendorsFile = vendorsFile
			}

			logCfg := cfg.Logger
			logCfg.OutputPath = "stderr"
			if verbose {
				logCfg.Level = "debug"
			} else if logCfg.Level == "" || logCfg.Level == "info" {
				logCfg.Level = "warn"
			}
			log, err = logger.New(logCfg)
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	root.PersistentFlags().StringVar(&vendorsFile, "vendors", "", "vendors file (overrides extraction.vendors_file)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newExtractCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newVendorsCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
