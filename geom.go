package ciplot

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/plot/plotter"
)

// Geom is a geometrical object, a type of visual for the plot.
type Geom interface {
	Name() string            // The name of the geom.
	NeededSlots() []string   // The needed slots to construct this geom.
	OptionalSlots() []string // The optional slots this geom understands.

	// Fixed returns the style set explicitly on this geom. It takes
	// precedence over mapped aesthetics.
	Fixed() AesMapping

	// Aes returns the merged default (fixed) aesthetics.
	Aes(plot *Plot) AesMapping

	// Render interpretes data, one group of the layer, as the specific
	// geom and produces Grobs.
	Render(plot *Plot, data *DataFrame, style AesMapping) ([]Grob, error)
}

// A Constructor is a Geom which has to augment the layer data before it
// is split into groups and rendered.
type Constructor interface {
	Construct(data *DataFrame, style AesMapping)
}

// sortedRows returns the row indices of data ordered by x.
func sortedRows(data *DataFrame) []int {
	x := data.Columns["x"].Data
	rows := make([]int, data.N)
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool { return x[rows[a]] < x[rows[b]] })
	return rows
}

func defined(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// intervalRuns collects the intervals of data in x order. A row with an
// undefined value ends the current run.
func intervalRuns(data *DataFrame, withY bool) [][]Range {
	x, lo, hi := data.Columns["x"].Data, data.Columns["ymin"].Data, data.Columns["ymax"].Data
	var y []float64
	if withY {
		y = data.Columns["y"].Data
	}

	var runs [][]Range
	var run []Range
	for _, i := range sortedRows(data) {
		r := Range{X: x[i], Lo: lo[i], Hi: hi[i]}
		if withY {
			r.Y = y[i]
		}
		if !defined(r.X, r.Y, r.Lo, r.Hi) {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		run = append(run, r)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

func flatten(runs [][]Range) []Range {
	var all []Range
	for _, run := range runs {
		all = append(all, run...)
	}
	return all
}

// -------------------------------------------------------------------------
// Geom Point

type GeomPoint struct {
	Style AesMapping // The individal fixed, aka non-mapped aesthetics
}

var _ Geom = GeomPoint{}

func (p GeomPoint) Name() string            { return "GeomPoint" }
func (p GeomPoint) NeededSlots() []string   { return []string{"x", "y"} }
func (p GeomPoint) OptionalSlots() []string { return []string{"color", "size", "shape", "alpha"} }
func (p GeomPoint) Fixed() AesMapping       { return p.Style }

func (p GeomPoint) Aes(plot *Plot) AesMapping {
	return MergeStyles(p.Style, plot.Theme.PointStyle, DefaultTheme.PointStyle)
}

func (p GeomPoint) Render(_ *Plot, data *DataFrame, style AesMapping) ([]Grob, error) {
	glyph, ok := style.GlyphStyle()
	if !ok {
		return nil, nil
	}
	x, y := data.Columns["x"].Data, data.Columns["y"].Data
	points := make(plotter.XYs, 0, data.N)
	for i := 0; i < data.N; i++ {
		if defined(x[i], y[i]) {
			points = append(points, plotter.XY{X: x[i], Y: y[i]})
		}
	}
	if len(points) == 0 {
		return nil, nil
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	scatter.GlyphStyle = glyph
	return []Grob{scatter}, nil
}

// -------------------------------------------------------------------------
// Geom Line

// GeomLine connects the points of a group in x order. Missing values
// break the line.
type GeomLine struct {
	Style AesMapping // The individal fixed, aka non-mapped aesthetics
}

var _ Geom = GeomLine{}

func (p GeomLine) Name() string          { return "GeomLine" }
func (p GeomLine) NeededSlots() []string { return []string{"x", "y"} }
func (p GeomLine) OptionalSlots() []string {
	return []string{"color", "size", "linetype", "alpha", "group"}
}
func (p GeomLine) Fixed() AesMapping { return p.Style }

func (p GeomLine) Aes(plot *Plot) AesMapping {
	return MergeStyles(p.Style, plot.Theme.LineStyle, DefaultTheme.LineStyle)
}

func (p GeomLine) Render(_ *Plot, data *DataFrame, style AesMapping) ([]Grob, error) {
	lineStyle, ok := style.LineStyle("size")
	if !ok {
		return nil, nil
	}
	x, y := data.Columns["x"].Data, data.Columns["y"].Data

	var grobs []Grob
	var segment plotter.XYs
	flush := func() error {
		if len(segment) >= 2 {
			line, err := plotter.NewLine(segment)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Name(), err)
			}
			line.LineStyle = lineStyle
			grobs = append(grobs, line)
		}
		segment = nil
		return nil
	}
	for _, i := range sortedRows(data) {
		if !defined(x[i], y[i]) {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		segment = append(segment, plotter.XY{X: x[i], Y: y[i]})
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return grobs, nil
}

// -------------------------------------------------------------------------
// Geom Errorbar

// GeomErrorbar draws ymin to ymax with caps. The style value "width" is
// the cap width relative to the resolution of x.
type GeomErrorbar struct {
	Style AesMapping // The individal fixed, aka non-mapped aesthetics
}

var _ Geom = GeomErrorbar{}
var _ Constructor = GeomErrorbar{}

func (e GeomErrorbar) Name() string          { return "GeomErrorbar" }
func (e GeomErrorbar) NeededSlots() []string { return []string{"x", "ymin", "ymax"} }
func (e GeomErrorbar) OptionalSlots() []string {
	return []string{"color", "linewidth", "linetype", "alpha", "width"}
}
func (e GeomErrorbar) Fixed() AesMapping { return e.Style }

func (e GeomErrorbar) Aes(plot *Plot) AesMapping {
	return MergeStyles(e.Style, plot.Theme.ErrorbarStyle, DefaultTheme.ErrorbarStyle)
}

// Construct adds a width column unless the data provides one.
func (e GeomErrorbar) Construct(data *DataFrame, style AesMapping) {
	if data.Has("width") {
		return
	}
	x := data.Columns["x"]
	width := style.Float("width", 0, 100, 0.9) * Resolution(x.Data)
	data.Columns["width"] = Field{Type: Float, Pool: data.Pool}.Const(width, data.N)
}

func (e GeomErrorbar) Render(_ *Plot, data *DataFrame, style AesMapping) ([]Grob, error) {
	lineStyle, ok := style.LineStyle("linewidth")
	if !ok {
		return nil, nil
	}
	ranges := flatten(intervalRuns(data, false))
	if len(ranges) == 0 {
		return nil, nil
	}

	halfWidth := make([]float64, len(ranges))
	width := data.Columns["width"].Data
	x := data.Columns["x"].Data
	// intervalRuns reorders rows; look the widths up by x.
	widthAt := make(map[float64]float64, data.N)
	for i := 0; i < data.N; i++ {
		widthAt[x[i]] = width[i]
	}
	for i, r := range ranges {
		halfWidth[i] = widthAt[r.X] / 2
	}

	return []Grob{&GrobErrorbar{
		Ranges:    ranges,
		HalfWidth: halfWidth,
		LineStyle: lineStyle,
	}}, nil
}

// -------------------------------------------------------------------------
// Geom Ribbon

// GeomRibbon fills the area between ymin and ymax. Missing values split
// the ribbon, isolated intervals are not drawn.
type GeomRibbon struct {
	Style AesMapping // The individal fixed, aka non-mapped aesthetics
}

var _ Geom = GeomRibbon{}

func (r GeomRibbon) Name() string          { return "GeomRibbon" }
func (r GeomRibbon) NeededSlots() []string { return []string{"x", "ymin", "ymax"} }
func (r GeomRibbon) OptionalSlots() []string {
	return []string{"color", "fill", "linewidth", "linetype", "alpha"}
}
func (r GeomRibbon) Fixed() AesMapping { return r.Style }

func (r GeomRibbon) Aes(plot *Plot) AesMapping {
	return MergeStyles(r.Style, plot.Theme.RibbonStyle, DefaultTheme.RibbonStyle)
}

func (r GeomRibbon) Render(_ *Plot, data *DataFrame, style AesMapping) ([]Grob, error) {
	lineStyle, outline := style.LineStyle("linewidth")
	fill := style.Color("fill")

	var grobs []Grob
	for _, run := range intervalRuns(data, false) {
		if len(run) < 2 {
			continue // a band needs some width
		}
		grobs = append(grobs, &GrobRibbon{
			Ranges:    run,
			Fill:      fill,
			Outline:   outline,
			LineStyle: lineStyle,
		})
	}
	return grobs, nil
}

// -------------------------------------------------------------------------
// Geom Pointrange

// GeomPointrange draws a point at y on a vertical line from ymin to ymax.
type GeomPointrange struct {
	Style AesMapping // The individal fixed, aka non-mapped aesthetics
}

var _ Geom = GeomPointrange{}

func (p GeomPointrange) Name() string          { return "GeomPointrange" }
func (p GeomPointrange) NeededSlots() []string { return []string{"x", "y", "ymin", "ymax"} }
func (p GeomPointrange) OptionalSlots() []string {
	return []string{"color", "size", "linewidth", "shape", "linetype", "alpha"}
}
func (p GeomPointrange) Fixed() AesMapping { return p.Style }

func (p GeomPointrange) Aes(plot *Plot) AesMapping {
	return MergeStyles(p.Style, plot.Theme.PointrangeStyle, DefaultTheme.PointrangeStyle)
}

func (p GeomPointrange) Render(_ *Plot, data *DataFrame, style AesMapping) ([]Grob, error) {
	ranges := flatten(intervalRuns(data, true))
	if len(ranges) == 0 {
		return nil, nil
	}
	grob := &GrobPointrange{Ranges: ranges}
	grob.Line, grob.HasLine = style.LineStyle("linewidth")
	grob.Glyph, grob.HasGlyph = style.GlyphStyle()
	if !grob.HasLine && !grob.HasGlyph {
		return nil, nil
	}
	return []Grob{grob}, nil
}
