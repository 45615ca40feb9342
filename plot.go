package ciplot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type Plot struct {
	// Data is the data to draw.
	Data *DataFrame

	// Mapping describes how fields in data are mapped to Aesthetics
	Aes AesMapping

	// Layers contains all the layers displayed in the plot.
	Layers []*Layer

	Scales map[string]*Scale

	Theme Theme

	// Title and axis labels. Empty axis labels default to the
	// fields mapped to x and y.
	Title, XLabel, YLabel string

	// YScale transforms the y axis, nil is the identity.
	YScale *ScaleTransform

	// Logger receives warnings and debug output. Nil discards them.
	Logger *zap.Logger
}

// Layer represents one layer of data
type Layer struct {
	Plot *Plot
	Name string

	// A nil Data will use the Data from the plot this Layer belongs to.
	Data        *DataFrame
	DataMapping AesMapping

	// Stat is the statistical transformation used in this layer.
	Stat        Stat
	StatMapping AesMapping

	// Geom is the geom to use for this layer
	Geom        Geom
	GeomMapping AesMapping

	Position PositionAdjust

	// DodgeWidth is the width (relative to the resolution of x)
	// groups get spread over if Position is PosDodge. Zero means 0.4.
	DodgeWidth float64

	// Grobs and the legend label of the group each grob was drawn for.
	Grobs  []Grob
	Labels []string

	// input is the layer data as given by the user. Data is replaced
	// while building.
	input    *DataFrame
	prepared bool
}

func (p *Plot) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p *Plot) Warnf(f string, args ...interface{}) {
	p.logger().Sugar().Warnf(f, args...)
}

func contains(s []string, t string) bool {
	for _, ss := range s {
		if t == ss {
			return true
		}
	}
	return false
}

func same(s []string, t []string) bool {
	if len(s) != len(t) {
		return false
	}
	for _, x := range s {
		if !contains(t, x) {
			return false
		}
	}
	return true
}

// groupAes are the aesthetics which split a layer into groups.
var groupAes = []string{"color", "fill", "shape", "linetype", "group"}

// scaleable are the aesthetics backed by a Scale.
var scaleable = map[string]bool{
	"x":        true,
	"color":    true,
	"fill":     true,
	"shape":    true,
	"linetype": true,
	"group":    true, // orders groups only, never drawn
}

// PrepareData is the first step in generating a plot.
// After preparing the data frame the following holds
//   - Layer has a own data frame (a copy of plots data frame)
//   - This data frame has no unused (aka not mapped to aesthetics)
//     columns
//   - The columns name are the aestectics (e.g. x, y, color...)
//   - The scales of all mapped aesthetics are set up and pre-trained.
func (p *Plot) PrepareData() error {
	if p.Scales == nil {
		p.Scales = make(map[string]*Scale)
	}
	for _, layer := range p.Layers {
		layer.Plot = p
		if !layer.prepared {
			layer.input, layer.prepared = layer.Data, true
		}
		src := layer.input
		if src == nil {
			src = p.Data
		}
		if src == nil {
			return fmt.Errorf("layer %s: no data", layer.Name)
		}

		// Collect the mapped fields under their aesthetic name; all
		// unmapped fields are dropped.
		aes := MergeAes(layer.DataMapping, p.Aes)
		data := NewDataFrame(src.Name, src.Pool)
		data.N = src.N
		for a, f := range aes {
			field, ok := src.Columns[f]
			if !ok {
				return fmt.Errorf("layer %s: aesthetic %s mapped to unknown field %q",
					layer.Name, a, f)
			}
			data.Columns[a] = field.Copy()
		}
		layer.Data = data
		p.logger().Debug("prepared layer data",
			zap.String("layer", layer.Name),
			zap.Strings("aesthetics", data.FieldNames()),
			zap.Int("rows", data.N))

		if err := p.PrepareScales(data); err != nil {
			return fmt.Errorf("layer %s: %w", layer.Name, err)
		}
	}
	return nil
}

// PrepareScales makes sure plot contains all scales needed for the
// aesthetics in data and pre-trains them.
func (p *Plot) PrepareScales(data *DataFrame) error {
	for _, a := range data.FieldNames() {
		field := data.Columns[a]
		if contains(groupAes, a) && !field.Discrete() {
			return fmt.Errorf("aesthetic %s needs a discrete field, got %s", a, field.Type)
		}
		if !scaleable[a] {
			continue
		}

		scale, ok := p.Scales[a]
		if !ok {
			scale = NewScale(a, field)
			p.Scales[a] = scale
			p.logger().Debug("added scale", zap.String("aesthetic", a),
				zap.Bool("discrete", scale.Discrete))
		} else if scale.Discrete != NewScale(a, field).Discrete {
			return fmt.Errorf("aesthetic %s mixes discrete and continuous data", a)
		}
		scale.Train(field)
	}
	return nil
}

// ComputeStatistics computes the statistical transform. Might be the identity.
func (layer *Layer) ComputeStatistics() error {
	if layer.Stat == nil {
		return nil // The identity statistical transformation.
	}
	info := layer.Stat.Info()

	// Make sure all needed aesthetics (columns) are present in
	// our data frame.
	for _, aes := range info.NeededAes {
		if !layer.Data.Has(aes) {
			return fmt.Errorf("stat %s in layer %s needs aesthetic %s",
				layer.Stat.Name(), layer.Name, aes)
		}
	}

	usedByStat := NewStringSetFrom(info.NeededAes)
	usedByStat.Join(NewStringSetFrom(info.OptionalAes))
	fields := NewStringSetFrom(layer.Data.FieldNames())
	fields.Remove(usedByStat)
	extra := fields.Elements()

	switch {
	case len(extra) == 0:
	case info.ExtraFieldHandling == IgnoreExtraFields:
		for _, f := range extra {
			layer.Data.Delete(f)
		}
		extra = nil
	case info.ExtraFieldHandling == FailOnExtraFields:
		return fmt.Errorf("stat %s in layer %s cannot cope with excess fields %v",
			layer.Stat.Name(), layer.Name, extra)
	default:
		for _, f := range extra {
			if !layer.Data.Columns[f].Discrete() {
				return fmt.Errorf("stat %s in layer %s cannot cope with continous excess field %s",
					layer.Stat.Name(), layer.Name, f)
			}
		}
	}

	// Apply the stat once per group, the group fields are constant
	// in each result.
	keys, rows := groupRows(layer.Data, extra, layer.Plot.rank)
	var result *DataFrame
	for g, key := range keys {
		df := layer.Data.selectRows(rows[g])
		for _, f := range extra {
			df.Delete(f)
		}
		res, err := layer.Stat.Apply(df, layer.Plot)
		if err != nil {
			return fmt.Errorf("layer %s: %w", layer.Name, err)
		}
		for j, f := range extra {
			res.Columns[f] = layer.Data.Columns[f].Const(key[j], res.N)
		}
		if result == nil {
			result = res
		} else if err := result.Append(res); err != nil {
			return fmt.Errorf("layer %s: %w", layer.Name, err)
		}
	}
	if result == nil {
		// No rows at all: still run the stat to get its columns.
		res, err := layer.Stat.Apply(layer.Data, layer.Plot)
		if err != nil {
			return fmt.Errorf("layer %s: %w", layer.Name, err)
		}
		result = res
	}
	layer.Data = result
	if lo, ok := result.Columns["ymin"]; ok {
		undefined := 0
		for _, x := range lo.Data {
			if math.IsNaN(x) {
				undefined++
			}
		}
		if undefined > 0 {
			layer.Plot.Warnf("layer %s: %d of %d intervals undefined, not drawn",
				layer.Name, undefined, result.N)
		}
	}

	// Now we have a new data frame with possible new columns.
	// These may be mapped to plot aestetics by plot.StatMapping.
	for a, f := range layer.StatMapping {
		layer.Data.Rename(f, a)
	}
	return nil
}

func (p *Plot) ComputeStatistics() error {
	for _, layer := range p.Layers {
		if err := layer.ComputeStatistics(); err != nil {
			return err
		}
	}
	return nil
}

// ConstructGeoms sets up the geoms so that they can be rendered. This
// includes an optional renaming of stat-generated fields to
// geom-understandable fields, mapping x to its position and applying
// positional adjustment to same-x geoms.
func (p *Plot) ConstructGeoms() error {
	for _, layer := range p.Layers {
		if err := layer.ConstructGeom(); err != nil {
			return err
		}
	}
	return nil
}

func (layer *Layer) ConstructGeom() error {
	if layer.Geom == nil {
		layer.Plot.Warnf("No Geom specified in layer %s.", layer.Name)
		return nil
	}

	for aes, field := range layer.GeomMapping {
		layer.Data.Rename(field, aes)
	}

	// Make sure all needed slots are present in the data frame
	slots := NewStringSetFrom(layer.Geom.NeededSlots())
	slots.Remove(NewStringSetFrom(layer.Data.FieldNames()))
	if len(slots) > 0 {
		return fmt.Errorf("missing slots in geom %s in layer %s: %v",
			layer.Geom.Name(), layer.Name, slots.Elements())
	}

	if sx, ok := layer.Plot.Scales["x"]; ok && sx.Discrete {
		x := layer.Data.Columns["x"]
		x.Apply(sx.Pos)
		x.Type = Float
		layer.Data.Columns["x"] = x
	}

	if c, ok := layer.Geom.(Constructor); ok {
		c.Construct(layer.Data, layer.Geom.Aes(layer.Plot))
	}

	if layer.Position == PosDodge {
		layer.dodge()
	}
	return nil
}

// dodge spreads the groups sharing an x value side by side.
func (layer *Layer) dodge() {
	data := layer.Data
	x := data.Columns["x"]
	width := layer.DodgeWidth
	if width == 0 {
		width = 0.4
	}
	width *= Resolution(x.Data)

	keys, rows := groupRows(data, groupFields(data), layer.Plot.rank)
	groupOf := make([]int, data.N)
	for g := range keys {
		for _, i := range rows[g] {
			groupOf[i] = g
		}
	}

	// Groups present at each x, in group order.
	at := make(map[float64][]int)
	for g := range keys {
		seen := NewFloatSet()
		for _, i := range rows[g] {
			if xi := x.Data[i]; !seen.Contains(xi) {
				seen.Add(xi)
				at[xi] = append(at[xi], g)
			}
		}
	}

	shifted := x.Copy()
	for i, xi := range x.Data {
		groups := at[xi]
		total := float64(len(groups))
		if total < 2 {
			continue
		}
		drawn := float64(sort.SearchInts(groups, groupOf[i]))
		wh := width / 2 / total
		shifted.Data[i] = xi + (2*drawn-(total-1))*wh
	}
	data.Columns["x"] = shifted
}

// RenderGeoms renders each group of each layer.
func (p *Plot) RenderGeoms() error {
	for _, layer := range p.Layers {
		if err := layer.Render(); err != nil {
			return err
		}
	}
	return nil
}

func (layer *Layer) Render() error {
	layer.Grobs, layer.Labels = nil, nil
	if layer.Geom == nil {
		return nil
	}
	p := layer.Plot
	style := layer.Geom.Aes(p)
	fixed := layer.Geom.Fixed()
	fields := groupFields(layer.Data)
	keys, rows := groupRows(layer.Data, fields, p.rank)

	for g, key := range keys {
		part := layer.Data.selectRows(rows[g])
		mapped := AesMapping{}
		var labels []string
		for j, f := range fields {
			v := key[j]
			scale, ok := p.Scales[f]
			switch {
			case !ok || f == "group":
				continue // splits only
			case f == "color" || f == "fill":
				mapped[f] = Color2String(scale.Color(v, p.Theme.palette()))
			case f == "shape" || f == "linetype":
				mapped[f] = scale.Style(v)
			}
			if l := scale.Label(v); !contains(labels, l) {
				labels = append(labels, l)
			}
		}

		grobs, err := layer.Geom.Render(p, part, MergeStyles(fixed, mapped, style))
		if err != nil {
			return fmt.Errorf("layer %s: %w", layer.Name, err)
		}
		label := strings.Join(labels, ", ")
		for _, grob := range grobs {
			layer.Grobs = append(layer.Grobs, grob)
			layer.Labels = append(layer.Labels, label)
		}
	}
	p.logger().Debug("rendered layer", zap.String("layer", layer.Name),
		zap.Int("groups", len(keys)), zap.Int("grobs", len(layer.Grobs)))
	return nil
}

// groupFields returns the group aesthetics present in data.
func groupFields(data *DataFrame) []string {
	var fields []string
	for _, a := range groupAes {
		if data.Has(a) {
			fields = append(fields, a)
		}
	}
	return fields
}

// rank orders the value v of aesthetic a: discrete scales by level,
// everything else by value.
func (p *Plot) rank(a string, v float64) float64 {
	if s, ok := p.Scales[a]; ok && s.Discrete {
		return float64(s.Index(v))
	}
	return v
}

// groupRows splits the rows of data by the combined values of fields.
// The groups are ordered by rank.
func groupRows(data *DataFrame, fields []string, rank func(string, float64) float64) (keys [][]float64, rows [][]int) {
	index := make(map[string]int)
	for i := 0; i < data.N; i++ {
		key := make([]float64, len(fields))
		var sb strings.Builder
		for j, f := range fields {
			key[j] = data.Columns[f].Data[i]
			sb.WriteString(strconv.FormatFloat(key[j], 'g', -1, 64))
			sb.WriteByte('|')
		}
		g, ok := index[sb.String()]
		if !ok {
			g = len(keys)
			index[sb.String()] = g
			keys = append(keys, key)
			rows = append(rows, nil)
		}
		rows[g] = append(rows[g], i)
	}

	ranked := make([][]float64, len(keys))
	for g, key := range keys {
		ranked[g] = make([]float64, len(key))
		for j, v := range key {
			ranked[g][j] = rank(fields[j], v)
		}
	}
	perm := order(ranked)
	sortedKeys := make([][]float64, len(keys))
	sortedRows := make([][]int, len(keys))
	for i, g := range perm {
		sortedKeys[i], sortedRows[i] = keys[g], rows[g]
	}
	return sortedKeys, sortedRows
}

// Build runs all steps and assembles the gonum plot.
func (p *Plot) Build() (*plot.Plot, error) {
	// Prepare data: map aestetics, add scales, clean data frame.
	// Mapped scales are pre-trained.
	if err := p.PrepareData(); err != nil {
		return nil, err
	}
	if err := p.ComputeStatistics(); err != nil {
		return nil, err
	}
	if err := p.ConstructGeoms(); err != nil {
		return nil, err
	}
	if err := p.RenderGeoms(); err != nil {
		return nil, err
	}

	gp := plot.New()
	gp.Title.Text = p.Title
	gp.X.Label.Text = p.XLabel
	if gp.X.Label.Text == "" {
		gp.X.Label.Text = p.Aes["x"]
	}
	gp.Y.Label.Text = p.YLabel
	if gp.Y.Label.Text == "" {
		gp.Y.Label.Text = p.Aes["y"]
	}
	gp.Add(plotter.NewGrid())

	n := 0
	for _, layer := range p.Layers {
		for _, grob := range layer.Grobs {
			gp.Add(grob)
			n++
		}
	}
	if n == 0 {
		return nil, errors.New("nothing to draw")
	}

	if sx, ok := p.Scales["x"]; ok && sx.Discrete {
		gp.X.Tick.Marker = sx
		gp.X.Min = math.Min(gp.X.Min, 0.5)
		gp.X.Max = math.Max(gp.X.Max, float64(len(sx.Levels()))+0.5)
	}
	if t := p.YScale; t != nil {
		if t.Positive && gp.Y.Min <= 0 {
			return nil, fmt.Errorf("%s y axis cannot show %g", t.Name, gp.Y.Min)
		}
		gp.Y.Scale = t.Norm
		gp.Y.Tick.Marker = t.Ticker
	}

	p.addLegend(gp)
	return gp, nil
}

// addLegend adds one legend entry per group label showing the thumbnails
// of all layers drawn for that group.
func (p *Plot) addLegend(gp *plot.Plot) {
	var labels []string
	thumbs := make(map[string][]plot.Thumbnailer)
	for _, layer := range p.Layers {
		for i, grob := range layer.Grobs {
			label := layer.Labels[i]
			if label == "" {
				continue
			}
			if _, ok := thumbs[label]; !ok {
				labels = append(labels, label)
			}
			thumbs[label] = append(thumbs[label], grob)
		}
	}
	for _, label := range labels {
		gp.Legend.Add(label, thumbs[label]...)
	}
	gp.Legend.Top = true
}

// Save draws the plot to file. The format is determined by the file
// extension (png, svg, pdf, eps, ...).
func (p *Plot) Save(width, height vg.Length, file string) error {
	gp, err := p.Build()
	if err != nil {
		return err
	}
	return gp.Save(width, height, file)
}

// WriteTo draws the plot in the given format to w.
func (p *Plot) WriteTo(w io.Writer, width, height vg.Length, format string) (int64, error) {
	gp, err := p.Build()
	if err != nil {
		return 0, err
	}
	wt, err := gp.WriterTo(width, height, format)
	if err != nil {
		return 0, err
	}
	return wt.WriteTo(w)
}

// AesMapping controlls the mapping of fields of a data frame to aesthetics
// and, as a style, the fixed values of aesthetics.
type AesMapping map[string]string

func (m AesMapping) Copy() AesMapping {
	c := make(AesMapping, len(m))
	for a, n := range m {
		c[a] = n
	}
	return c
}

// MergeAes merges the mappings; earlier ones win. An empty field name
// removes the mapping of that aesthetic.
func MergeAes(ams ...AesMapping) AesMapping {
	merged := MergeStyles(ams...)
	for k, v := range merged {
		if v == "" {
			delete(merged, k)
		}
	}
	return merged
}

// -------------------------------------------------------------------------
// Position Adjustments

type PositionAdjust int

const (
	PosIdentity PositionAdjust = iota
	PosDodge
)

// ParsePosition converts "identity" or "dodge" to a PositionAdjust.
func ParsePosition(name string) (PositionAdjust, error) {
	switch name {
	case "", "identity":
		return PosIdentity, nil
	case "dodge":
		return PosDodge, nil
	}
	return PosIdentity, fmt.Errorf("unknown position adjustment %q", name)
}
