package ciplot

import (
	"image/color"

	"gonum.org/v1/plot/plotutil"
)

// Theme holds the fixed default styles of each geom and the palette used
// for discrete color and fill scales.
type Theme struct {
	PointStyle, LineStyle                       AesMapping
	ErrorbarStyle, RibbonStyle, PointrangeStyle AesMapping

	// Palette is cycled through by discrete color and fill scales.
	Palette []color.Color
}

var DefaultTheme = Theme{
	PointStyle: AesMapping{
		"size":  "2.5",
		"shape": "solid-circle",
		"color": "#222222",
		"alpha": "1",
	},
	LineStyle: AesMapping{
		"size":     "1",
		"linetype": "solid",
		"color":    "#222222",
		"alpha":    "1",
	},
	ErrorbarStyle: AesMapping{
		"linewidth": "1",
		"linetype":  "solid",
		"color":     "#222222",
		"alpha":     "1",
		"width":     "0.9",
	},
	RibbonStyle: AesMapping{
		"linewidth": "0.5",
		"linetype":  "blank",
		"color":     "#222222",
		"fill":      "gray40",
		"alpha":     "1",
	},
	PointrangeStyle: AesMapping{
		"size":      "3",
		"linewidth": "1",
		"shape":     "solid-circle",
		"linetype":  "solid",
		"color":     "#222222",
		"alpha":     "1",
	},
	Palette: plotutil.DarkColors,
}

// palette returns the palette of t or the default one.
func (t Theme) palette() []color.Color {
	if len(t.Palette) > 0 {
		return t.Palette
	}
	return DefaultTheme.Palette
}
