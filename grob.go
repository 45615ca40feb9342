package ciplot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Grob is a graphical object, the result of rendering a geom. Grobs are
// gonum plotters: they draw themselves, report their data range and can
// draw a legend thumbnail.
type Grob interface {
	plot.Plotter
	plot.DataRanger
	plot.Thumbnailer
}

// Range is a vertical interval [Lo,Hi] at X with an optional center Y.
type Range struct {
	X, Y, Lo, Hi float64
}

// rangeExtent returns the data range of rs, widened by hw on both
// sides of each X.
func rangeExtent(rs []Range, hw float64, withY bool) (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, r := range rs {
		xmin = math.Min(xmin, r.X-hw)
		xmax = math.Max(xmax, r.X+hw)
		ymin = math.Min(ymin, math.Min(r.Lo, r.Hi))
		ymax = math.Max(ymax, math.Max(r.Lo, r.Hi))
		if withY {
			ymin = math.Min(ymin, r.Y)
			ymax = math.Max(ymax, r.Y)
		}
	}
	return xmin, xmax, ymin, ymax
}

// -------------------------------------------------------------------------
// Grob Errorbar

// GrobErrorbar draws vertical bars from Lo to Hi with horizontal caps
// HalfWidth (in data units) to the left and right.
type GrobErrorbar struct {
	Ranges    []Range
	HalfWidth []float64
	draw.LineStyle
}

func (g *GrobErrorbar) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for i, r := range g.Ranges {
		x, lo, hi := trX(r.X), trY(r.Lo), trY(r.Hi)
		x0, x1 := trX(r.X-g.HalfWidth[i]), trX(r.X+g.HalfWidth[i])
		lines := [][]vg.Point{
			{{X: x, Y: lo}, {X: x, Y: hi}},
			{{X: x0, Y: lo}, {X: x1, Y: lo}},
			{{X: x0, Y: hi}, {X: x1, Y: hi}},
		}
		c.StrokeLines(g.LineStyle, c.ClipLinesXY(lines...)...)
	}
}

func (g *GrobErrorbar) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax, ymin, ymax = rangeExtent(g.Ranges, 0, false)
	for i, r := range g.Ranges {
		xmin = math.Min(xmin, r.X-g.HalfWidth[i])
		xmax = math.Max(xmax, r.X+g.HalfWidth[i])
	}
	return xmin, xmax, ymin, ymax
}

func (g *GrobErrorbar) Thumbnail(c *draw.Canvas) {
	xc := (c.Min.X + c.Max.X) / 2
	w := (c.Max.X - c.Min.X) / 4
	lo, hi := c.Min.Y, c.Max.Y
	c.StrokeLines(g.LineStyle,
		[]vg.Point{{X: xc, Y: lo}, {X: xc, Y: hi}},
		[]vg.Point{{X: xc - w, Y: lo}, {X: xc + w, Y: lo}},
		[]vg.Point{{X: xc - w, Y: hi}, {X: xc + w, Y: hi}},
	)
}

// -------------------------------------------------------------------------
// Grob Ribbon

// GrobRibbon fills the band between Lo and Hi of consecutive ranges
// and optionally strokes its upper and lower border.
type GrobRibbon struct {
	Ranges  []Range // ordered by X
	Fill    color.Color
	Outline bool
	draw.LineStyle
}

func (g *GrobRibbon) Plot(c draw.Canvas, plt *plot.Plot) {
	if len(g.Ranges) == 0 {
		return
	}
	trX, trY := plt.Transforms(&c)
	n := len(g.Ranges)
	upper := make([]vg.Point, n)
	lower := make([]vg.Point, n)
	poly := make([]vg.Point, 0, 2*n)
	for i, r := range g.Ranges {
		upper[i] = vg.Point{X: trX(r.X), Y: trY(r.Hi)}
		lower[i] = vg.Point{X: trX(r.X), Y: trY(r.Lo)}
	}
	poly = append(poly, upper...)
	for i := n - 1; i >= 0; i-- {
		poly = append(poly, lower[i])
	}
	if g.Fill != nil {
		c.FillPolygon(g.Fill, c.ClipPolygonXY(poly))
	}
	if g.Outline {
		c.StrokeLines(g.LineStyle, c.ClipLinesXY(upper, lower)...)
	}
}

func (g *GrobRibbon) DataRange() (xmin, xmax, ymin, ymax float64) {
	return rangeExtent(g.Ranges, 0, false)
}

func (g *GrobRibbon) Thumbnail(c *draw.Canvas) {
	box := []vg.Point{
		c.Min,
		{X: c.Max.X, Y: c.Min.Y},
		c.Max,
		{X: c.Min.X, Y: c.Max.Y},
	}
	if g.Fill != nil {
		c.FillPolygon(g.Fill, box)
	}
	if g.Outline {
		c.StrokeLines(g.LineStyle, append(box, c.Min))
	}
}

// -------------------------------------------------------------------------
// Grob Pointrange

// GrobPointrange draws a vertical line from Lo to Hi and a glyph at Y.
type GrobPointrange struct {
	Ranges   []Range
	Line     draw.LineStyle
	HasLine  bool
	Glyph    draw.GlyphStyle
	HasGlyph bool
}

func (g *GrobPointrange) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, r := range g.Ranges {
		x := trX(r.X)
		if g.HasLine {
			line := []vg.Point{{X: x, Y: trY(r.Lo)}, {X: x, Y: trY(r.Hi)}}
			c.StrokeLines(g.Line, c.ClipLinesXY(line)...)
		}
		if g.HasGlyph {
			c.DrawGlyph(g.Glyph, vg.Point{X: x, Y: trY(r.Y)})
		}
	}
}

func (g *GrobPointrange) DataRange() (xmin, xmax, ymin, ymax float64) {
	return rangeExtent(g.Ranges, 0, true)
}

func (g *GrobPointrange) Thumbnail(c *draw.Canvas) {
	xc := (c.Min.X + c.Max.X) / 2
	if g.HasLine {
		c.StrokeLine2(g.Line, xc, c.Min.Y, xc, c.Max.Y)
	}
	if g.HasGlyph {
		c.DrawGlyphNoClip(g.Glyph, vg.Point{X: xc, Y: (c.Min.Y + c.Max.Y) / 2})
	}
}
