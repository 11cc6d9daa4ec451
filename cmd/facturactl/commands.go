package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/facturaIA/factura-extractor-ar/api"
	"github.com/facturaIA/factura-extractor-ar/internal/auth"
	"github.com/facturaIA/factura-extractor-ar/internal/config"
	"github.com/facturaIA/factura-extractor-ar/internal/render"
	"github.com/facturaIA/factura-extractor-ar/internal/vendors"
)

// newConvertCmd creates the convert subcommand.
func newConvertCmd() *cobra.Command {
	var from, to, output string

	cmd := &cobra.Command{
		Use:   "convert <payload>",
		Short: "Convert a payload between json, kv and ini",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := render.ParseFormat(from)
			if err != nil {
				return err
			}
			dst, err := render.ParseFormat(to)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
			p, err := render.Parse(src, data)
			if err != nil {
				return err
			}
			body, err := render.Render(dst, p)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), output, body)
		},
	}

	cmd.Flags().StringVar(&from, "from", "json", "input format: json, kv or ini")
	cmd.Flags().StringVar(&to, "to", "kv", "output format: json, kv or ini")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

// newVendorsCmd creates the vendors subcommand.
func newVendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List vendor handlers and the detection keywords of the vendors file",
		RunE: func(cmd *cobra.Command, args []string) error {
			vendorCfg, err := config.LoadVendors(cfg.Extraction.VendorsFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Handlers:")
			for _, tag := range vendors.NewDefaultRegistry().Tags() {
				fmt.Fprintf(out, "  %s\n", tag)
			}

			fmt.Fprintf(out, "Detection (%s):\n", cfg.Extraction.VendorsFile)
			for _, kw := range vendorCfg.Names {
				fmt.Fprintf(out, "  %s names: %s\n", kw.Vendor, strings.Join(kw.Names, ", "))
			}
			cuits := make([]string, 0, len(vendorCfg.CUITs))
			for cuit := range vendorCfg.CUITs {
				cuits = append(cuits, cuit)
			}
			sort.Strings(cuits)
			for _, cuit := range cuits {
				fmt.Fprintf(out, "  %s cuit: %s\n", vendorCfg.CUITs[cuit], cuit)
			}
			return nil
		},
	}
}

// newTokenCmd creates the token subcommand.
func newTokenCmd() *cobra.Command {
	var (
		user   string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the extraction API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = cfg.Auth.JWTSecret
			}
			if secret == "" {
				return errors.New("no secret: set auth.jwt_secret, JWT_SECRET or --secret")
			}
			token, err := auth.GenerateToken(secret, user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "facturactl", "user id stored in the token")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to the configured one)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "facturactl %s\n", api.Version)
		},
	}
}
