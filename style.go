package ciplot

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// MergeStyles merges the given styles into a new one. A key set in an
// earlier style wins over the same key in a later one.
func MergeStyles(styles ...AesMapping) AesMapping {
	merged := make(AesMapping)
	for i := len(styles) - 1; i >= 0; i-- {
		for k, v := range styles[i] {
			merged[k] = v
		}
	}
	return merged
}

// String2Float parses s, a plain number or a percentage like "40%", and
// clamps it to [low,high]. Unparsable values yield def.
func String2Float(s string, low, high, def float64) float64 {
	s = strings.TrimSpace(s)
	factor := 1.0
	if strings.HasSuffix(s, "%") {
		s = s[:len(s)-1]
		factor = 100
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) {
		return def
	}
	value /= factor

	if value < low {
		return low
	} else if value > high {
		return high
	}
	return value
}

// SetAlpha scales the opacity of c by a.
func SetAlpha(c color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * a))
	return n
}

// -------------------------------------------------------------------------
// Points

type PointShape int

const (
	BlankPoint PointShape = iota
	CirclePoint
	SquarePoint
	DiamondPoint
	DeltaPoint
	NablaPoint
	SolidCirclePoint
	SolidSquarePoint
	SolidDiamondPoint
	SolidDeltaPoint
	SolidNablaPoint
	CrossPoint
	PlusPoint
	StarPoint
)

var pointShapeNames = map[string]PointShape{
	"blank":         BlankPoint,
	"circle":        CirclePoint,
	"square":        SquarePoint,
	"diamond":       DiamondPoint,
	"delta":         DeltaPoint,
	"nabla":         NablaPoint,
	"solid-circle":  SolidCirclePoint,
	"solid-square":  SolidSquarePoint,
	"solid-diamond": SolidDiamondPoint,
	"solid-delta":   SolidDeltaPoint,
	"solid-nabla":   SolidNablaPoint,
	"cross":         CrossPoint,
	"plus":          PlusPoint,
	"star":          StarPoint,
}

// String2PointShape parses a shape name or a number. Numbers wrap around
// the non-blank shapes; unknown names are solid circles.
func String2PointShape(s string) PointShape {
	n, err := strconv.Atoi(s)
	if err == nil {
		if n <= 0 {
			return BlankPoint
		}
		return PointShape((n-1)%int(StarPoint) + 1)
	}
	if ps, ok := pointShapeNames[s]; ok {
		return ps
	}
	return SolidCirclePoint
}

// Glyph returns the drawer for shape, nil for BlankPoint.
func (shape PointShape) Glyph() draw.GlyphDrawer {
	switch shape {
	case CirclePoint:
		return draw.RingGlyph{}
	case SquarePoint:
		return draw.SquareGlyph{}
	case DiamondPoint:
		return polyGlyph{corners: 4, rotation: 0}
	case DeltaPoint:
		return polyGlyph{corners: 3, rotation: 90}
	case NablaPoint:
		return polyGlyph{corners: 3, rotation: 270}
	case SolidCirclePoint:
		return draw.CircleGlyph{}
	case SolidSquarePoint:
		return draw.BoxGlyph{}
	case SolidDiamondPoint:
		return polyGlyph{corners: 4, rotation: 0, solid: true}
	case SolidDeltaPoint:
		return polyGlyph{corners: 3, rotation: 90, solid: true}
	case SolidNablaPoint:
		return polyGlyph{corners: 3, rotation: 270, solid: true}
	case CrossPoint:
		return draw.CrossGlyph{}
	case PlusPoint:
		return draw.PlusGlyph{}
	case StarPoint:
		return starGlyph{}
	}
	return nil
}

// polyGlyph is a regular polygon inscribed in the glyph circle. The first
// corner sits at rotation degrees.
type polyGlyph struct {
	corners  int
	rotation float64
	solid    bool
}

func (g polyGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	var p vg.Path
	for i := 0; i < g.corners; i++ {
		rad := (g.rotation + float64(i)*360/float64(g.corners)) * math.Pi / 180
		corner := vg.Point{
			X: pt.X + sty.Radius*vg.Length(math.Cos(rad)),
			Y: pt.Y + sty.Radius*vg.Length(math.Sin(rad)),
		}
		if i == 0 {
			p.Move(corner)
		} else {
			p.Line(corner)
		}
	}
	p.Close()
	if g.solid {
		c.SetColor(sty.Color)
		c.Fill(p)
		return
	}
	c.SetLineStyle(draw.LineStyle{Color: sty.Color, Width: vg.Points(0.5)})
	c.Stroke(p)
}

type starGlyph struct{}

func (starGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	draw.PlusGlyph{}.DrawGlyph(c, sty, pt)
	draw.CrossGlyph{}.DrawGlyph(c, sty, pt)
}

// -------------------------------------------------------------------------
// Lines

type LineType int

const (
	BlankLine LineType = iota
	SolidLine
	DashedLine
	DottedLine
	DotDashLine
	LongdashLine
	TwodashLine
)

var lineTypeNames = map[string]LineType{
	"blank":    BlankLine,
	"solid":    SolidLine,
	"dashed":   DashedLine,
	"dotted":   DottedLine,
	"dotdash":  DotDashLine,
	"longdash": LongdashLine,
	"twodash":  TwodashLine,
}

// String2LineType parses a line type name or a number. Numbers wrap
// around the non-blank line types; unknown names are solid.
func String2LineType(s string) LineType {
	n, err := strconv.Atoi(s)
	if err == nil {
		if n <= 0 {
			return BlankLine
		}
		return LineType((n-1)%int(TwodashLine) + 1)
	}
	if lt, ok := lineTypeNames[s]; ok {
		return lt
	}
	return SolidLine
}

// Dashes returns the dash pattern of lt for lines of width w.
func (lt LineType) Dashes(w vg.Length) []vg.Length {
	if w < vg.Points(1) {
		w = vg.Points(1)
	}
	pattern := func(d ...float64) []vg.Length {
		dashes := make([]vg.Length, len(d))
		for i, x := range d {
			dashes[i] = vg.Length(x) * w
		}
		return dashes
	}
	switch lt {
	case DashedLine:
		return pattern(4, 4)
	case DottedLine:
		return pattern(1, 3)
	case DotDashLine:
		return pattern(1, 3, 4, 3)
	case LongdashLine:
		return pattern(8, 4)
	case TwodashLine:
		return pattern(2, 2, 6, 2)
	}
	return nil
}

// -------------------------------------------------------------------------
// Colors

var BuiltinColors = map[string]color.NRGBA{
	"red":       {0xff, 0x00, 0x00, 0xff},
	"green":     {0x00, 0xff, 0x00, 0xff},
	"darkgreen": {0x00, 0x64, 0x00, 0xff},
	"blue":      {0x00, 0x00, 0xff, 0xff},
	"steelblue": {0x46, 0x82, 0xb4, 0xff},
	"cyan":      {0x00, 0xff, 0xff, 0xff},
	"magenta":   {0xff, 0x00, 0xff, 0xff},
	"yellow":    {0xff, 0xff, 0x00, 0xff},
	"orange":    {0xff, 0xa5, 0x00, 0xff},
	"white":     {0xff, 0xff, 0xff, 0xff},
	"gray20":    {0x33, 0x33, 0x33, 0xff},
	"gray40":    {0x66, 0x66, 0x66, 0xff},
	"gray":      {0x7f, 0x7f, 0x7f, 0xff},
	"gray50":    {0x7f, 0x7f, 0x7f, 0xff},
	"gray60":    {0x99, 0x99, 0x99, 0xff},
	"gray80":    {0xcc, 0xcc, 0xcc, 0xff},
	"black":     {0x00, 0x00, 0x00, 0xff},
	"none":      {0x00, 0x00, 0x00, 0x00},
}

// String2Color parses "#rrggbb", "#rrggbbaa" or the name of one of the
// BuiltinColors ("grey" is accepted for "gray").
func String2Color(s string) color.Color {
	if strings.HasPrefix(s, "#") && len(s) >= 7 {
		var r, g, b uint8
		a := uint8(0xff)
		fmt.Sscanf(s[1:3], "%2x", &r)
		fmt.Sscanf(s[3:5], "%2x", &g)
		fmt.Sscanf(s[5:7], "%2x", &b)
		if len(s) >= 9 {
			fmt.Sscanf(s[7:9], "%2x", &a)
		}
		return color.NRGBA{r, g, b, a}
	}
	s = strings.Replace(strings.ToLower(s), "grey", "gray", 1)
	if col, ok := BuiltinColors[s]; ok {
		return col
	}

	return color.NRGBA{0xaa, 0x66, 0x77, 0x7f}
}

// Color2String formats c as "#rrggbbaa", the inverse of String2Color.
func Color2String(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// -------------------------------------------------------------------------
// Resolving fixed styles

// Float returns the numeric style value for key or def if unset.
func (m AesMapping) Float(key string, low, high, def float64) float64 {
	s, ok := m[key]
	if !ok {
		return def
	}
	return String2Float(s, low, high, def)
}

func (m AesMapping) alpha() float64 {
	return m.Float("alpha", 0, 1, 1)
}

// Color returns the color stored under key with the style's alpha applied.
func (m AesMapping) Color(key string) color.Color {
	s, ok := m[key]
	if !ok {
		s = "black"
	}
	return SetAlpha(String2Color(s), m.alpha())
}

// LineStyle builds the stroke style from color, linetype and the width
// stored under widthKey (in points). The boolean is false for blank lines.
func (m AesMapping) LineStyle(widthKey string) (draw.LineStyle, bool) {
	lt := String2LineType(m["linetype"])
	if lt == BlankLine {
		return draw.LineStyle{}, false
	}
	w := vg.Points(m.Float(widthKey, 0, 50, 1))
	return draw.LineStyle{
		Color:  m.Color("color"),
		Width:  w,
		Dashes: lt.Dashes(w),
	}, true
}

// GlyphStyle builds the point style from color, shape and size (the
// glyph radius in points). The boolean is false for blank points.
func (m AesMapping) GlyphStyle() (draw.GlyphStyle, bool) {
	glyph := String2PointShape(m["shape"]).Glyph()
	if glyph == nil {
		return draw.GlyphStyle{}, false
	}
	return draw.GlyphStyle{
		Color:  m.Color("color"),
		Radius: vg.Points(m.Float("size", 0, 50, 3)),
		Shape:  glyph,
	}, true
}
