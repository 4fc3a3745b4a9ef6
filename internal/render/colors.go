package render

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// parseColor reads "#rgb", "#rrggbb" or "transparent". Anything else
// yields fallback so a bad value never aborts a render.
func parseColor(s string, fallback color.Color) color.Color {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "transparent") {
		return color.Transparent
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c.Clamped()
}

// hexOf normalises a color to "#rrggbb" for SVG output.
func hexOf(c color.Color) string {
	if isTransparent(c) {
		return "none"
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "none"
	}
	return cf.Hex()
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}

// opaque composites c over white; JPEG has no alpha channel.
func opaque(c color.Color) color.Color {
	if isTransparent(c) {
		return color.White
	}
	return c
}
