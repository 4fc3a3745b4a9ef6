// Package render styles and rasterizes QR symbols. The module matrix
// comes from go-qrcode; everything visual happens here.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/HugoSmits86/nativewebp"
	qrcode "github.com/skip2/go-qrcode"

	"qrstudio-backend/internal/models"
)

var (
	ErrNotRendered       = errors.New("nothing rendered yet")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrPayloadTooLarge   = errors.New("payload does not fit in a QR code")
)

// Adapter is the surface the rest of the system sees. Update is
// idempotent: repeating the last payload and options does no work.
type Adapter interface {
	Update(payload string, opts models.VisualOptions) error
	Export(format Format) ([]byte, error)
	RawData() ([]byte, error)
}

// Styled renders with dot and corner styles, gradients and a centred logo.
// A Styled value is not safe for concurrent use.
type Styled struct {
	logos LogoLoader

	rendered bool
	payload  string
	opts     models.VisualOptions

	geom    *geometry
	palette palette
	logo    image.Image
	logoErr error
	img     *image.RGBA
	renders int
}

type Option func(*Styled)

// WithLogoLoader sets how logo references are resolved. Without one,
// logos are ignored.
func WithLogoLoader(l LogoLoader) Option {
	return func(s *Styled) { s.logos = l }
}

func NewStyled(options ...Option) *Styled {
	s := &Styled{}
	for _, o := range options {
		o(s)
	}
	return s
}

var _ Adapter = (*Styled)(nil)

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch level {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// Matrix returns the module bitmap for payload without a quiet zone.
func Matrix(payload, level string) ([][]bool, error) {
	q, err := qrcode.New(payload, recoveryLevel(level))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

func (s *Styled) Update(payload string, opts models.VisualOptions) error {
	if payload == "" {
		payload = " "
	}
	opts = opts.Normalized()
	if s.rendered && payload == s.payload && opts == s.opts {
		return nil
	}

	matrix, err := Matrix(payload, opts.ErrorCorrectionLevel)
	if err != nil {
		return err
	}

	logo, logoErr := s.loadLogo(opts.LogoURL)

	geom := layout(matrix, opts, logo != nil)
	pal := resolvePalette(opts)

	s.img = rasterize(geom, pal, logo)
	s.geom = geom
	s.palette = pal
	s.logo = logo
	s.logoErr = logoErr
	s.payload = payload
	s.opts = opts
	s.rendered = true
	s.renders++
	return nil
}

func (s *Styled) loadLogo(ref string) (image.Image, error) {
	if ref == "" || s.logos == nil {
		return nil, nil
	}
	return s.logos.LoadLogo(ref)
}

// LogoError reports why the last render went without its logo, if it did.
func (s *Styled) LogoError() error { return s.logoErr }

// Renders counts how many times the symbol was actually redrawn.
func (s *Styled) Renders() int { return s.renders }

// Image returns the last rendered canvas.
func (s *Styled) Image() (image.Image, error) {
	if !s.rendered {
		return nil, ErrNotRendered
	}
	return s.img, nil
}

func (s *Styled) Export(format Format) ([]byte, error) {
	if !s.rendered {
		return nil, ErrNotRendered
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, s.img); err != nil {
			return nil, fmt.Errorf("failed to encode png: %w", err)
		}
	case FormatJPEG:
		flat := flatten(s.img, s.palette.background)
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: 95}); err != nil {
			return nil, fmt.Errorf("failed to encode jpeg: %w", err)
		}
	case FormatWEBP:
		if err := nativewebp.Encode(&buf, s.img, nil); err != nil {
			return nil, fmt.Errorf("failed to encode webp: %w", err)
		}
	case FormatSVG:
		return renderSVG(s.geom, s.palette, s.logo)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

// RawData returns PNG bytes suitable for placing on a clipboard.
func (s *Styled) RawData() ([]byte, error) {
	return s.Export(FormatPNG)
}
