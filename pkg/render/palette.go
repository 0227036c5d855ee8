package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Console palette used by the grayscale shader.
var (
	ColorBlack    = color.RGBA{0, 0, 0, 255}
	ColorDarkGray = color.RGBA{128, 128, 128, 255}
	ColorGray     = color.RGBA{192, 192, 192, 255}
	ColorWhite    = color.RGBA{255, 255, 255, 255}
)

// Shade symbols, from lightest coverage to solid.
const (
	SymbolQuarter      = '░'
	SymbolHalf         = '▒'
	SymbolThreeQuarter = '▓'
	SymbolSolid        = '█'
)

// Glyph is the display attribute of a cell or a whole flat-shaded triangle:
// a symbol drawn in Fg over Bg.
type Glyph struct {
	Symbol rune
	Fg, Bg Color
}

// Coverage returns the fraction of the cell the symbol paints in Fg.
func (g Glyph) Coverage() float64 {
	switch g.Symbol {
	case SymbolQuarter:
		return 0.25
	case SymbolHalf:
		return 0.5
	case SymbolThreeQuarter:
		return 0.75
	case SymbolSolid:
		return 1
	default:
		return 0
	}
}

// Blend returns the single color a viewer sees from far away: Fg and Bg
// mixed by coverage.
func (g Glyph) Blend() Color {
	t := g.Coverage()
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a)*t + float64(b)*(1-t)))
	}
	return Color{
		R: mix(g.Fg.R, g.Bg.R),
		G: mix(g.Fg.G, g.Bg.G),
		B: mix(g.Fg.B, g.Bg.B),
		A: 255,
	}
}

// ShadeFunc maps a luminance in [0, 1] to a display attribute.
type ShadeFunc func(lum float64) Glyph

var shadeSymbols = [4]rune{SymbolQuarter, SymbolHalf, SymbolThreeQuarter, SymbolSolid}

// shadeLevel buckets lum into 0..12.
func shadeLevel(lum float64) int {
	if math.IsNaN(lum) || lum <= 0 {
		return 0
	}
	level := int(13 * lum)
	if level > 12 {
		level = 12
	}
	return level
}

// GrayscaleShade maps luminance onto 13 levels of a four-tone console
// palette: black, then three bands (black/dark gray, dark gray/gray,
// gray/white), each stepping through quarter, half, three-quarter and solid
// coverage.
func GrayscaleShade(lum float64) Glyph {
	bands := [3][2]Color{
		{ColorBlack, ColorDarkGray},
		{ColorDarkGray, ColorGray},
		{ColorGray, ColorWhite},
	}
	level := shadeLevel(lum)
	if level == 0 {
		return Glyph{Symbol: SymbolSolid, Fg: ColorBlack, Bg: ColorBlack}
	}
	band := bands[(level-1)/4]
	return Glyph{Symbol: shadeSymbols[(level-1)%4], Fg: band[1], Bg: band[0]}
}

// TintShade returns a ShadeFunc with the same 13 levels as GrayscaleShade
// but ramping from black to base.
func TintShade(base Color) ShadeFunc {
	ramp := [4]Color{
		ColorBlack,
		scaleColor(base, 1.0/3),
		scaleColor(base, 2.0/3),
		base,
	}
	return func(lum float64) Glyph {
		level := shadeLevel(lum)
		if level == 0 {
			return Glyph{Symbol: SymbolSolid, Fg: ColorBlack, Bg: ColorBlack}
		}
		band := (level - 1) / 4
		return Glyph{Symbol: shadeSymbols[(level-1)%4], Fg: ramp[band+1], Bg: ramp[band]}
	}
}

func scaleColor(c Color, s float64) Color {
	return Color{
		R: uint8(float64(c.R) * s),
		G: uint8(float64(c.G) * s),
		B: uint8(float64(c.B) * s),
		A: c.A,
	}
}

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b, 255}
}
