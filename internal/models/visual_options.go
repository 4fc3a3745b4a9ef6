package models

const (
	DotSquare        = "square"
	DotRounded       = "rounded"
	DotDots          = "dots"
	DotClassy        = "classy"
	DotClassyRounded = "classy-rounded"

	CornerSquare       = "square"
	CornerDot          = "dot"
	CornerExtraRounded = "extra-rounded"

	GradientLinear = "linear"
	GradientRadial = "radial"
)

// VisualOptions describes how a payload is drawn. It is a plain value:
// renderers compare the whole struct to decide whether anything changed.
type VisualOptions struct {
	Color           string `json:"color" binding:"hexcolor_or_empty"`
	BackgroundColor string `json:"background_color" binding:"omitempty,hexcolor_or_transparent"`

	Gradient         bool    `json:"gradient"`
	GradientType     string  `json:"gradient_type" binding:"omitempty,oneof=linear radial"`
	GradientColor1   string  `json:"gradient_color1" binding:"hexcolor_or_empty"`
	GradientColor2   string  `json:"gradient_color2" binding:"hexcolor_or_empty"`
	GradientRotation float64 `json:"gradient_rotation" binding:"min=0,max=360"`

	DotStyle          string `json:"dot_style" binding:"omitempty,oneof=square rounded dots classy classy-rounded"`
	CornerSquareStyle string `json:"corner_square_style" binding:"omitempty,oneof=square dot extra-rounded"`
	CornerSquareColor string `json:"corner_square_color" binding:"hexcolor_or_empty"`
	CornerDotStyle    string `json:"corner_dot_style" binding:"omitempty,oneof=square dot"`
	CornerDotColor    string `json:"corner_dot_color" binding:"hexcolor_or_empty"`

	LogoURL            string  `json:"logo_url,omitempty"`
	LogoSize           float64 `json:"logo_size" binding:"omitempty,min=0.1,max=0.4"`
	LogoMargin         int     `json:"logo_margin" binding:"min=0,max=100"`
	HideBackgroundDots bool    `json:"hide_background_dots"`

	ErrorCorrectionLevel string `json:"error_correction_level" binding:"omitempty,oneof=L M Q H"`
	Margin               int    `json:"margin" binding:"min=0,max=200"`
	Width                int    `json:"width" binding:"omitempty,min=64,max=4096"`
}

// DefaultVisualOptions matches the designer's initial state. Request
// bodies are bound on top of it so omitted fields keep these values.
func DefaultVisualOptions() VisualOptions {
	return VisualOptions{
		Color:                "#000000",
		BackgroundColor:      "#ffffff",
		GradientType:         GradientLinear,
		GradientColor1:       "#000000",
		GradientColor2:       "#4f46e5",
		DotStyle:             DotSquare,
		CornerSquareStyle:    CornerSquare,
		CornerSquareColor:    "#000000",
		CornerDotStyle:       CornerSquare,
		CornerDotColor:       "#000000",
		LogoSize:             0.2,
		LogoMargin:           10,
		HideBackgroundDots:   true,
		ErrorCorrectionLevel: "M",
		Margin:               10,
		Width:                300,
	}
}

// Normalized fills zero values with defaults and clamps out of range
// numbers, so renderers never see a half-specified struct.
func (o VisualOptions) Normalized() VisualOptions {
	def := DefaultVisualOptions()
	if o.Color == "" {
		o.Color = def.Color
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = def.BackgroundColor
	}
	if o.GradientType == "" {
		o.GradientType = def.GradientType
	}
	if o.GradientColor1 == "" {
		o.GradientColor1 = o.Color
	}
	if o.GradientColor2 == "" {
		o.GradientColor2 = def.GradientColor2
	}
	if o.DotStyle == "" {
		o.DotStyle = def.DotStyle
	}
	if o.CornerSquareStyle == "" {
		o.CornerSquareStyle = def.CornerSquareStyle
	}
	if o.CornerDotStyle == "" {
		o.CornerDotStyle = def.CornerDotStyle
	}
	if o.CornerSquareColor == "" {
		o.CornerSquareColor = o.Color
	}
	if o.CornerDotColor == "" {
		o.CornerDotColor = o.Color
	}
	if o.LogoSize <= 0 {
		o.LogoSize = def.LogoSize
	}
	o.LogoSize = clampFloat(o.LogoSize, 0.1, 0.4)
	if o.LogoMargin < 0 {
		o.LogoMargin = 0
	}
	if o.ErrorCorrectionLevel == "" {
		o.ErrorCorrectionLevel = def.ErrorCorrectionLevel
	}
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Margin > o.Width/4 {
		o.Margin = o.Width / 4
	}
	if o.GradientRotation < 0 || o.GradientRotation > 360 {
		o.GradientRotation = 0
	}
	return o
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
