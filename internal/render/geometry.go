package render

import (
	"math"

	"qrstudio-backend/internal/models"
)

type layer int

const (
	layerDots layer = iota
	layerCornerSquare
	layerCornerDot
)

type outlineKind int

const (
	outlineRect outlineKind = iota
	outlineCircle
)

// outline is a closed subpath. Radii apply to rect outlines and are
// ordered top-left, top-right, bottom-right, bottom-left.
type outline struct {
	kind       outlineKind
	x, y, w, h float64
	radii      [4]float64
}

// shape is one filled path. Rings are two outlines with evenOdd set.
type shape struct {
	layer    layer
	outlines []outline
	evenOdd  bool
}

// box is an axis aligned rectangle in pixels.
type box struct {
	x, y, w, h float64
}

func (b box) empty() bool { return b.w <= 0 || b.h <= 0 }

func (b box) intersects(o box) bool {
	return b.x < o.x+o.w && o.x < b.x+b.w && b.y < o.y+o.h && o.y < b.y+b.h
}

// geometry is the resolved drawing plan shared by the raster and SVG
// backends.
type geometry struct {
	size    int
	modules int
	origin  float64
	module  float64
	shapes  []shape
	logo    box
}

const finderSize = 7

// edge returns the pixel coordinate of module boundary i. Rounding keeps
// adjacent squares on shared pixel edges so no hairline seams appear.
func (g *geometry) edge(i int) float64 {
	return math.Round(g.origin + float64(i)*g.module)
}

func (g *geometry) cell(col, row int) box {
	x0, x1 := g.edge(col), g.edge(col+1)
	y0, y1 := g.edge(row), g.edge(row+1)
	return box{x: x0, y: y0, w: x1 - x0, h: y1 - y0}
}

func (g *geometry) span(col, row, n int) box {
	x0, x1 := g.edge(col), g.edge(col+n)
	y0, y1 := g.edge(row), g.edge(row+n)
	return box{x: x0, y: y0, w: x1 - x0, h: y1 - y0}
}

// finderOrigins lists the top-left module of each finder pattern.
func finderOrigins(n int) [][2]int {
	return [][2]int{{0, 0}, {n - finderSize, 0}, {0, n - finderSize}}
}

func inFinder(n, col, row int) bool {
	for _, o := range finderOrigins(n) {
		if col >= o[0] && col < o[0]+finderSize && row >= o[1] && row < o[1]+finderSize {
			return true
		}
	}
	return false
}

// layout turns a module matrix into shapes. matrix[row][col] is true for
// dark modules. withLogo reserves the centre box for a logo.
func layout(matrix [][]bool, opts models.VisualOptions, withLogo bool) *geometry {
	n := len(matrix)
	g := &geometry{size: opts.Width, modules: n}
	if n == 0 {
		return g
	}

	inner := float64(opts.Width - 2*opts.Margin)
	g.module = inner / float64(n)
	g.origin = float64(opts.Margin)

	if withLogo {
		side := math.Round(inner * opts.LogoSize)
		g.logo = box{
			x: math.Round(float64(opts.Width)/2 - side/2),
			y: math.Round(float64(opts.Width)/2 - side/2),
			w: side,
			h: side,
		}
	}

	hidden := box{}
	if withLogo && opts.HideBackgroundDots {
		m := float64(opts.LogoMargin)
		hidden = box{x: g.logo.x - m, y: g.logo.y - m, w: g.logo.w + 2*m, h: g.logo.h + 2*m}
	}

	dark := func(col, row int) bool {
		if row < 0 || row >= n || col < 0 || col >= n {
			return false
		}
		return matrix[row][col] && !inFinder(n, col, row)
	}

	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if !dark(col, row) {
				continue
			}
			c := g.cell(col, row)
			if !hidden.empty() && c.intersects(hidden) {
				continue
			}
			nb := neighbours{
				top:    dark(col, row-1),
				right:  dark(col+1, row),
				bottom: dark(col, row+1),
				left:   dark(col-1, row),
			}
			g.shapes = append(g.shapes, shape{
				layer:    layerDots,
				outlines: []outline{dotOutline(opts.DotStyle, c, nb)},
			})
		}
	}

	for _, o := range finderOrigins(n) {
		outer := g.span(o[0], o[1], finderSize)
		hole := g.span(o[0]+1, o[1]+1, finderSize-2)
		g.shapes = append(g.shapes, cornerSquareShape(opts.CornerSquareStyle, outer, hole, g.module))

		eye := g.span(o[0]+2, o[1]+2, 3)
		g.shapes = append(g.shapes, cornerDotShape(opts.CornerDotStyle, eye))
	}

	return g
}

type neighbours struct {
	top, right, bottom, left bool
}

func dotOutline(style string, c box, nb neighbours) outline {
	half := math.Min(c.w, c.h) / 2
	switch style {
	case models.DotDots:
		return outline{kind: outlineCircle, x: c.x, y: c.y, w: c.w, h: c.h}
	case models.DotRounded:
		return rectOutline(c, [4]float64{
			free(nb.top, nb.left, half),
			free(nb.top, nb.right, half),
			free(nb.bottom, nb.right, half),
			free(nb.bottom, nb.left, half),
		})
	case models.DotClassy:
		return rectOutline(c, [4]float64{
			free(nb.top, nb.left, half),
			0,
			free(nb.bottom, nb.right, half),
			0,
		})
	case models.DotClassyRounded:
		return rectOutline(c, [4]float64{
			free(nb.top, nb.left, half),
			free(nb.top, nb.right, half/2),
			free(nb.bottom, nb.right, half),
			free(nb.bottom, nb.left, half/2),
		})
	default:
		return rectOutline(c, [4]float64{})
	}
}

// free returns r when neither side touching a corner has a dark neighbour.
func free(a, b bool, r float64) float64 {
	if a || b {
		return 0
	}
	return r
}

func rectOutline(b box, radii [4]float64) outline {
	return outline{kind: outlineRect, x: b.x, y: b.y, w: b.w, h: b.h, radii: radii}
}

func uniform(r float64) [4]float64 { return [4]float64{r, r, r, r} }

func cornerSquareShape(style string, outer, hole box, module float64) shape {
	s := shape{layer: layerCornerSquare, evenOdd: true}
	switch style {
	case models.CornerDot:
		s.outlines = []outline{
			{kind: outlineCircle, x: outer.x, y: outer.y, w: outer.w, h: outer.h},
			{kind: outlineCircle, x: hole.x, y: hole.y, w: hole.w, h: hole.h},
		}
	case models.CornerExtraRounded:
		s.outlines = []outline{
			rectOutline(outer, uniform(module*2.5)),
			rectOutline(hole, uniform(module*1.5)),
		}
	default:
		s.outlines = []outline{
			rectOutline(outer, [4]float64{}),
			rectOutline(hole, [4]float64{}),
		}
	}
	return s
}

func cornerDotShape(style string, eye box) shape {
	s := shape{layer: layerCornerDot}
	if style == models.CornerDot {
		s.outlines = []outline{{kind: outlineCircle, x: eye.x, y: eye.y, w: eye.w, h: eye.h}}
	} else {
		s.outlines = []outline{rectOutline(eye, [4]float64{})}
	}
	return s
}

// gradientAxis returns the start and end points of a linear gradient
// rotated by degrees around the canvas centre.
func gradientAxis(size int, degrees float64) (x0, y0, x1, y1 float64) {
	c := float64(size) / 2
	theta := degrees * math.Pi / 180
	dx, dy := math.Cos(theta)*c, math.Sin(theta)*c
	return c - dx, c - dy, c + dx, c + dy
}
