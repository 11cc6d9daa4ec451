package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/facturaIA/factura-extractor-ar/internal/extractor"
	"github.com/facturaIA/factura-extractor-ar/internal/models"
	"github.com/facturaIA/factura-extractor-ar/internal/pdftext"
	"github.com/facturaIA/factura-extractor-ar/internal/render"
)

// newExtractCmd creates the extract subcommand.
func newExtractCmd() *cobra.Command {
	var (
		vendor   string
		format   string
		detail   bool
		textFile bool
		output   string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "extract <factura.pdf>",
		Short: "Extract one invoice",
		Long: `Extract reads an invoice PDF and prints the compact payload in the chosen
format, or the full extraction record with --detail.

With --text the argument is a plain text file holding the invoice lines, as
produced by pdftotext or a previous OCR run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			ex, err := extractor.NewFromConfig(cfg, log)
			if err != nil {
				return fmt.Errorf("load vendors: %w", err)
			}

			hint := strings.ToUpper(strings.TrimSpace(vendor))
			if hint != "" && !contains(ex.Vendors(), hint) {
				return fmt.Errorf("unknown vendor %q (want one of %s)", vendor, strings.Join(ex.Vendors(), ", "))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := run(ctx, ex, args[0], hint, textFile)
			if err != nil {
				return err
			}
			log.Debug("Extraction finished",
				zap.String("file", res.Record.File),
				zap.String("vendor", res.Record.Debug.Vendor),
				zap.Strings("warnings", res.Record.Warnings),
			)

			var body []byte
			if detail {
				body, err = json.MarshalIndent(res.Record, "", "  ")
			} else {
				body, err = render.Render(f, res.Payload)
			}
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			return write(cmd.OutOrStdout(), output, body)
		},
	}

	cmd.Flags().StringVar(&vendor, "vendor", "", "force the vendor handler (GUERRINI, PIRELLI)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, kv or ini")
	cmd.Flags().BoolVar(&detail, "detail", false, "print the full extraction record as JSON")
	cmd.Flags().BoolVar(&textFile, "text", false, "treat the argument as a text file of invoice lines")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "give up after this long")
	return cmd
}

func run(ctx context.Context, ex *extractor.Extractor, path, hint string, textFile bool) (*models.Result, error) {
	if !textFile {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("open invoice: %w", err)
		}
		return ex.Extract(ctx, path, hint)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	res := ex.ExtractLines(hint, pdftext.SplitLines(string(data)), models.SourceText)
	res.Record.File = filepath.Base(path)
	return res, nil
}

func write(stdout io.Writer, path string, body []byte) error {
	if len(body) > 0 && body[len(body)-1] != '\n' {
		body = append(body, '\n')
	}
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
