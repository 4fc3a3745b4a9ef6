// qrgen encodes QR content from flags or a description file, reports how
// well it will scan and optionally writes the rendered image.
//
//	qrgen --kind url --field url=https://example.com --out code.png
//	qrgen --file shop.yaml --format svg --out shop.svg
//	qrgen decode 'https://qr.example.com/m?p=...'
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"qrstudio-backend/internal/capacity"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/qrcontent"
	"qrstudio-backend/internal/render"
	"qrstudio-backend/internal/service"
)

const logoPrefix = "/logo/"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "decode" {
		return runDecode(args[1:], stdout)
	}

	var (
		kind      string
		fields    map[string]string
		file      string
		strict    bool
		baseURL   string
		out       string
		format    string
		width     int
		color     string
		bg        string
		dotStyle  string
		ecLevel   string
		logo      string
		asJSON    bool
		listKinds bool
	)

	flagSet := pflag.NewFlagSet("qrgen", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&kind, "kind", "k", "", "content kind (see --list)")
	flagSet.StringToStringVarP(&fields, "field", "f", nil, "field value as name=value, repeatable")
	flagSet.StringVar(&file, "file", "", "YAML or JSONC description file")
	flagSet.BoolVar(&strict, "strict", false, "escape reserved characters in WIFI, vCard and event fields")
	flagSet.StringVar(&baseURL, "base-url", envOr("QRGEN_BASE_URL", "http://localhost:8081/m"), "viewer URL microsite links point at")
	flagSet.StringVarP(&out, "out", "o", "", "write the rendered code to this file")
	flagSet.StringVar(&format, "format", "", "png, jpeg, webp or svg (default from --out extension)")
	flagSet.IntVar(&width, "width", 0, "image width in pixels")
	flagSet.StringVar(&color, "color", "", "foreground hex color")
	flagSet.StringVar(&bg, "background", "", "background hex color or transparent")
	flagSet.StringVar(&dotStyle, "dot-style", "", "square, rounded, dots, classy or classy-rounded")
	flagSet.StringVar(&ecLevel, "ec", "", "error correction level L, M, Q or H")
	flagSet.StringVar(&logo, "logo", "", "image file placed in the centre")
	flagSet.BoolVar(&asJSON, "json", false, "print the result as JSON")
	flagSet.BoolVar(&listKinds, "list", false, "list content kinds and their fields")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if listKinds {
		return printKinds(stdout)
	}

	req := models.GeneratePayloadRequest{Kind: kind, Fields: fields, StrictEscaping: strict}
	opts := models.DefaultVisualOptions()

	if file != "" {
		desc, err := loadDescription(file)
		if err != nil {
			return err
		}
		if kind == "" {
			req.Kind = desc.Kind
		}
		req.Fields = mergeFields(desc.Fields, fields)
		req.Microsite = desc.Microsite
		req.StrictEscaping = strict || desc.StrictEscaping
		if desc.Options != nil {
			opts = *desc.Options
		}
	}
	if req.Kind == "" {
		return errors.New("--kind or --file is required")
	}

	qr := service.NewQRService(baseURL)
	resp, err := qr.Generate(req)
	if err != nil {
		return err
	}

	if err := printResult(stdout, resp, asJSON); err != nil {
		return err
	}
	if resp.Capacity.Level != capacity.LevelOK && !asJSON {
		fmt.Fprintf(stderr, "warning: %s\n", resp.Capacity.Message)
	}

	if out == "" {
		return nil
	}

	overrideString(&opts.Color, color)
	overrideString(&opts.BackgroundColor, bg)
	overrideString(&opts.DotStyle, dotStyle)
	overrideString(&opts.ErrorCorrectionLevel, strings.ToUpper(ecLevel))
	if width > 0 {
		opts.Width = width
	}

	var loader render.LogoLoader
	if logo != "" {
		abs, err := filepath.Abs(logo)
		if err != nil {
			return err
		}
		loader = render.NewLocalLogoLoader(filepath.Dir(abs), logoPrefix)
		opts.LogoURL = logoPrefix + filepath.Base(abs)
	}

	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(out), ".")
	}
	return writeImage(out, format, resp.Payload, opts, loader, stderr)
}

func writeImage(path, format, payload string, opts models.VisualOptions, loader render.LogoLoader, stderr io.Writer) error {
	f, err := render.ParseFormat(format)
	if err != nil {
		return err
	}

	adapter := render.NewStyled(render.WithLogoLoader(loader))
	if err := adapter.Update(payload, opts.Normalized()); err != nil {
		return err
	}
	if logoErr := adapter.LogoError(); logoErr != nil {
		fmt.Fprintf(stderr, "warning: logo skipped: %v\n", logoErr)
	}

	data, err := adapter.Export(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func runDecode(args []string, stdout io.Writer) error {
	flagSet := pflag.NewFlagSet("qrgen decode", pflag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		return errors.New("usage: qrgen decode <token|url>")
	}

	cfg, err := service.NewQRService("").DecodeMicrosite(flagSet.Arg(0))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}

func printResult(w io.Writer, resp *models.PayloadResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintln(w, resp.Payload)
	fmt.Fprintf(w, "length: %d (%s)\n", resp.Capacity.Length, resp.Capacity.Level)
	return nil
}

func printKinds(w io.Writer) error {
	for _, entry := range qrcontent.Catalog() {
		names := make([]string, 0, len(entry.Fields))
		for _, field := range entry.Fields {
			names = append(names, field.Name)
		}
		fmt.Fprintf(w, "%-10s %s\n", entry.Kind, strings.Join(names, ", "))
	}
	return nil
}

func mergeFields(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func overrideString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
