package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"
	"strings"

	"qrstudio-backend/internal/models"
)

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// svgPath converts outlines into path data using the same geometry the
// raster backend fills.
func svgPath(outlines []outline) string {
	var b strings.Builder
	for _, o := range outlines {
		if o.kind == outlineCircle {
			rx, ry := o.w/2, o.h/2
			cx, cy := o.x+rx, o.y+ry
			fmt.Fprintf(&b, "M%s %sa%s %s 0 1 0 %s 0a%s %s 0 1 0 %s 0Z",
				num(cx-rx), num(cy), num(rx), num(ry), num(2*rx), num(rx), num(ry), num(-2*rx))
			continue
		}
		tl, tr, br, bl := o.radii[0], o.radii[1], o.radii[2], o.radii[3]
		x, y, w, h := o.x, o.y, o.w, o.h
		fmt.Fprintf(&b, "M%s %sH%s", num(x+tl), num(y), num(x+w-tr))
		if tr > 0 {
			fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(tr), num(tr), num(x+w), num(y+tr))
		}
		fmt.Fprintf(&b, "V%s", num(y+h-br))
		if br > 0 {
			fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(br), num(br), num(x+w-br), num(y+h))
		}
		fmt.Fprintf(&b, "H%s", num(x+bl))
		if bl > 0 {
			fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(bl), num(bl), num(x), num(y+h-bl))
		}
		fmt.Fprintf(&b, "V%s", num(y+tl))
		if tl > 0 {
			fmt.Fprintf(&b, "A%s %s 0 0 1 %s %s", num(tl), num(tl), num(x+tl), num(y))
		}
		b.WriteString("Z")
	}
	return b.String()
}

// renderSVG writes the geometry as a standalone SVG document. The logo,
// when present, is embedded as a PNG data URI.
func renderSVG(g *geometry, p palette, logo image.Image) ([]byte, error) {
	var b bytes.Buffer
	size := strconv.Itoa(g.size)
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`, size, size, size, size)

	dotsFill := hexOf(p.dots)
	if p.gradient {
		b.WriteString("<defs>")
		if p.gradientType == models.GradientRadial {
			c := float64(g.size) / 2
			fmt.Fprintf(&b, `<radialGradient id="dots-gradient" gradientUnits="userSpaceOnUse" cx="%s" cy="%s" r="%s">`,
				num(c), num(c), num(c*math.Sqrt2))
			writeStops(&b, p)
			b.WriteString("</radialGradient>")
		} else {
			x0, y0, x1, y1 := gradientAxis(g.size, p.rotation)
			fmt.Fprintf(&b, `<linearGradient id="dots-gradient" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`,
				num(x0), num(y0), num(x1), num(y1))
			writeStops(&b, p)
			b.WriteString("</linearGradient>")
		}
		b.WriteString("</defs>")
		dotsFill = "url(#dots-gradient)"
	}

	if !isTransparent(p.background) {
		fmt.Fprintf(&b, `<rect width="%s" height="%s" fill="%s"/>`, size, size, hexOf(p.background))
	}

	var dots []outline
	for _, s := range g.shapes {
		if s.layer == layerDots {
			dots = append(dots, s.outlines...)
		}
	}
	if len(dots) > 0 {
		fmt.Fprintf(&b, `<path fill="%s" d="%s"/>`, dotsFill, svgPath(dots))
	}

	for _, s := range g.shapes {
		var fill string
		switch s.layer {
		case layerCornerSquare:
			fill = hexOf(p.cornerSquare)
		case layerCornerDot:
			fill = hexOf(p.cornerDot)
		default:
			continue
		}
		rule := ""
		if s.evenOdd {
			rule = ` fill-rule="evenodd"`
		}
		fmt.Fprintf(&b, `<path fill="%s"%s d="%s"/>`, fill, rule, svgPath(s.outlines))
	}

	if logo != nil && !g.logo.empty() {
		scaled := fitImage(logo, int(g.logo.w), int(g.logo.h))
		var encoded bytes.Buffer
		if err := png.Encode(&encoded, scaled); err != nil {
			return nil, fmt.Errorf("failed to encode logo: %w", err)
		}
		sb := scaled.Bounds()
		x := g.logo.x + (g.logo.w-float64(sb.Dx()))/2
		y := g.logo.y + (g.logo.h-float64(sb.Dy()))/2
		fmt.Fprintf(&b, `<image x="%s" y="%s" width="%d" height="%d" href="data:image/png;base64,%s"/>`,
			num(x), num(y), sb.Dx(), sb.Dy(), base64.StdEncoding.EncodeToString(encoded.Bytes()))
	}

	b.WriteString("</svg>")
	return b.Bytes(), nil
}

func writeStops(b *bytes.Buffer, p palette) {
	fmt.Fprintf(b, `<stop offset="0" stop-color="%s"/>`, hexOf(p.gradientFrom))
	fmt.Fprintf(b, `<stop offset="1" stop-color="%s"/>`, hexOf(p.gradientTo))
}
