package ciplot

import (
	"errors"
	"fmt"

	"github.com/vdobler/ciplot/stat"
)

// MeanCIGeoms are the geoms MeanCI understands.
var MeanCIGeoms = []string{"point", "line", "errorbar", "ribbon", "pointrange"}

// DefaultMeanCIGeoms are drawn if MeanCIOptions.Geoms is empty.
var DefaultMeanCIGeoms = []string{"point", "errorbar"}

// MeanCIDefaults are the fixed styles MeanCI applies to each geom unless
// overridden by the options.
var MeanCIDefaults = map[string]AesMapping{
	"point":      {"size": "3"},
	"line":       {},
	"errorbar":   {"width": "0.2"},
	"ribbon":     {"alpha": "0.2", "linetype": "blank"},
	"pointrange": {"size": "3"},
}

// MeanCIOptions controls MeanCI.
type MeanCIOptions struct {
	// Geoms lists the geoms to draw, in drawing order.
	Geoms []string

	// Level is the confidence level, 0 means 0.95.
	Level float64

	// Distribution is "normal" (the default), "lognormal" or "binomial".
	Distribution string

	// Style is applied to every geom, GeomStyles to individual ones.
	Style      AesMapping
	GeomStyles map[string]AesMapping

	Position   PositionAdjust
	DodgeWidth float64
}

// MeanCI returns one layer per requested geom, each summarising y by its
// mean and confidence interval at every x (and group).
func MeanCI(opts MeanCIOptions) ([]*Layer, error) {
	level := opts.Level
	if level == 0 {
		level = 0.95
	}
	if err := stat.CheckLevel(level); err != nil {
		return nil, err
	}
	dist, err := stat.ParseDistribution(opts.Distribution)
	if err != nil {
		return nil, err
	}

	geoms := opts.Geoms
	if len(geoms) == 0 {
		geoms = DefaultMeanCIGeoms
	}
	for g := range opts.GeomStyles {
		if !contains(MeanCIGeoms, g) {
			return nil, fmt.Errorf("style given for unknown geom %q", g)
		}
	}

	seen := NewStringSet()
	layers := make([]*Layer, 0, len(geoms))
	for _, name := range geoms {
		if seen.Contains(name) {
			return nil, fmt.Errorf("geom %q requested twice", name)
		}
		seen.Add(name)

		geom, err := NewGeom(name, opts.GeomStyle(name))
		if err != nil {
			return nil, err
		}
		layers = append(layers, &Layer{
			Name:       fmt.Sprintf("mean_ci %s", name),
			Stat:       StatMeanCI{Level: level, Distribution: dist},
			Geom:       geom,
			Position:   opts.Position,
			DodgeWidth: opts.DodgeWidth,
		})
	}
	return layers, nil
}

// GeomStyle is the fixed style MeanCI gives geom: the geom's own style
// over the common style over MeanCIDefaults.
func (opts MeanCIOptions) GeomStyle(geom string) AesMapping {
	return MergeStyles(opts.GeomStyles[geom], opts.Style, MeanCIDefaults[geom])
}

// NewGeom returns the geom called name with the given fixed style.
func NewGeom(name string, style AesMapping) (Geom, error) {
	switch name {
	case "point":
		return GeomPoint{Style: style}, nil
	case "line":
		return GeomLine{Style: style}, nil
	case "errorbar":
		return GeomErrorbar{Style: style}, nil
	case "ribbon":
		return GeomRibbon{Style: style}, nil
	case "pointrange":
		return GeomPointrange{Style: style}, nil
	}
	return nil, fmt.Errorf("unknown geom %q (want one of %v)", name, MeanCIGeoms)
}

// AddMeanCI appends the layers of MeanCI(opts) to p.
func (p *Plot) AddMeanCI(opts MeanCIOptions) error {
	layers, err := MeanCI(opts)
	if err != nil {
		return err
	}
	p.Layers = append(p.Layers, layers...)
	return nil
}

// Summary computes the statistics of the first layer without drawing
// anything. The columns carry the names of the mapped fields again:
// x, y and the group fields as mapped in p.Aes, ymin, ymax and n as is.
// A field mapped to several aesthetics shows up once.
func (p *Plot) Summary() (*DataFrame, error) {
	if len(p.Layers) == 0 {
		return nil, errors.New("no layers")
	}
	if err := p.PrepareData(); err != nil {
		return nil, err
	}
	layer := p.Layers[0]
	if err := layer.ComputeStatistics(); err != nil {
		return nil, err
	}

	table := layer.Data.Copy()
	aes := MergeAes(layer.DataMapping, p.Aes)
	renamed := NewStringSet()
	for _, a := range table.FieldNames() {
		f, ok := aes[a]
		switch {
		case !ok || f == a:
		case renamed.Contains(f):
			table.Delete(a) // same field mapped twice
		case !table.Has(f):
			table.Rename(a, f)
			renamed.Add(f)
		}
	}
	return table, nil
}
