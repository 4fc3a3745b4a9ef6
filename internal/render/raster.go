package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"qrstudio-backend/internal/models"
)

// palette is the resolved fill for each layer.
type palette struct {
	background   color.Color
	dots         color.Color
	cornerSquare color.Color
	cornerDot    color.Color
	gradient     bool
	gradientType string
	gradientFrom color.Color
	gradientTo   color.Color
	rotation     float64
}

func resolvePalette(opts models.VisualOptions) palette {
	fg := parseColor(opts.Color, color.Black)
	return palette{
		background:   parseColor(opts.BackgroundColor, color.White),
		dots:         fg,
		cornerSquare: parseColor(opts.CornerSquareColor, fg),
		cornerDot:    parseColor(opts.CornerDotColor, fg),
		gradient:     opts.Gradient,
		gradientType: opts.GradientType,
		gradientFrom: parseColor(opts.GradientColor1, fg),
		gradientTo:   parseColor(opts.GradientColor2, fg),
		rotation:     opts.GradientRotation,
	}
}

func (p palette) dotsPattern(size int) gg.Pattern {
	if !p.gradient {
		return gg.NewSolidPattern(p.dots)
	}
	var grad gg.Gradient
	if p.gradientType == models.GradientRadial {
		c := float64(size) / 2
		grad = gg.NewRadialGradient(c, c, 0, c, c, c*math.Sqrt2)
	} else {
		x0, y0, x1, y1 := gradientAxis(size, p.rotation)
		grad = gg.NewLinearGradient(x0, y0, x1, y1)
	}
	grad.AddColorStop(0, p.gradientFrom)
	grad.AddColorStop(1, p.gradientTo)
	return grad
}

// rasterize draws the geometry onto a fresh canvas.
func rasterize(g *geometry, p palette, logo image.Image) *image.RGBA {
	dc := gg.NewContext(g.size, g.size)
	dc.SetColor(p.background)
	dc.Clear()

	patterns := map[layer]gg.Pattern{
		layerDots:         p.dotsPattern(g.size),
		layerCornerSquare: gg.NewSolidPattern(p.cornerSquare),
		layerCornerDot:    gg.NewSolidPattern(p.cornerDot),
	}

	for _, s := range g.shapes {
		dc.NewSubPath()
		for _, o := range s.outlines {
			tracePath(dc, o)
		}
		if s.evenOdd {
			dc.SetFillRuleEvenOdd()
		} else {
			dc.SetFillRuleWinding()
		}
		dc.SetFillStyle(patterns[s.layer])
		dc.Fill()
	}
	dc.SetFillRuleWinding()

	if logo != nil && !g.logo.empty() {
		placeLogo(dc, logo, g.logo)
	}

	out, ok := dc.Image().(*image.RGBA)
	if !ok {
		b := dc.Image().Bounds()
		out = image.NewRGBA(b)
		draw.Draw(out, b, dc.Image(), b.Min, draw.Src)
	}
	return out
}

func tracePath(dc *gg.Context, o outline) {
	if o.kind == outlineCircle {
		dc.DrawEllipse(o.x+o.w/2, o.y+o.h/2, o.w/2, o.h/2)
		return
	}
	tl, tr, br, bl := o.radii[0], o.radii[1], o.radii[2], o.radii[3]
	x, y, w, h := o.x, o.y, o.w, o.h

	dc.MoveTo(x+tl, y)
	dc.LineTo(x+w-tr, y)
	if tr > 0 {
		dc.DrawArc(x+w-tr, y+tr, tr, -math.Pi/2, 0)
	}
	dc.LineTo(x+w, y+h-br)
	if br > 0 {
		dc.DrawArc(x+w-br, y+h-br, br, 0, math.Pi/2)
	}
	dc.LineTo(x+bl, y+h)
	if bl > 0 {
		dc.DrawArc(x+bl, y+h-bl, bl, math.Pi/2, math.Pi)
	}
	dc.LineTo(x, y+tl)
	if tl > 0 {
		dc.DrawArc(x+tl, y+tl, tl, math.Pi, 3*math.Pi/2)
	}
	dc.ClosePath()
}

// placeLogo scales logo to fit inside area keeping its aspect ratio.
func placeLogo(dc *gg.Context, logo image.Image, area box) {
	scaled := fitImage(logo, int(area.w), int(area.h))
	b := scaled.Bounds()
	x := int(area.x) + (int(area.w)-b.Dx())/2
	y := int(area.y) + (int(area.h)-b.Dy())/2
	dc.DrawImage(scaled, x, y)
}

func fitImage(src image.Image, maxW, maxH int) image.Image {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 || maxW <= 0 || maxH <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	scale := math.Min(float64(maxW)/float64(sb.Dx()), float64(maxH)/float64(sb.Dy()))
	w := int(math.Max(1, math.Round(float64(sb.Dx())*scale)))
	h := int(math.Max(1, math.Round(float64(sb.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}

// flatten composites img over bg for encoders without alpha.
func flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(opaque(bg)), image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}
