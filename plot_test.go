package ciplot

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vdobler/ciplot/stat"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func measurementPlot(t *testing.T, opts MeanCIOptions) *Plot {
	t.Helper()
	df, err := NewDataFrameFrom(measurement)
	if err != nil {
		t.Fatalf("Unexpected error %s", err)
	}
	p := &Plot{
		Data: df,
		Aes: AesMapping{
			"x":     "Origin",
			"y":     "Weight",
			"color": "Group",
		},
		Title: "Weight by origin",
	}
	if err := p.AddMeanCI(opts); err != nil {
		t.Fatalf("Unexpected error %s", err)
	}
	return p
}

func TestMeanCIPlot(t *testing.T) {
	p := measurementPlot(t, MeanCIOptions{})
	gp, err := p.Build()
	if err != nil {
		t.Fatalf("Unexpected error %s", err)
	}

	if gp.X.Label.Text != "Origin" || gp.Y.Label.Text != "Weight" {
		t.Errorf("Axis labels %q, %q", gp.X.Label.Text, gp.Y.Label.Text)
	}
	if gp.X.Min > 0.5 || gp.X.Max < 3.5 {
		t.Errorf("x range [%g,%g] does not cover all levels", gp.X.Min, gp.X.Max)
	}
	var ticks []string
	for _, tick := range gp.X.Tick.Marker.Ticks(gp.X.Min, gp.X.Max) {
		ticks = append(ticks, tick.Label)
	}
	if diff := cmp.Diff([]string{"ch", "de", "uk"}, ticks); diff != "" {
		t.Errorf("x ticks (-want +got):\n%s", diff)
	}

	// Origin x Group has 7 combinations, two of them with a single
	// measurement.
	points := p.Layers[0].Data
	if points.N != 7 {
		t.Errorf("Got %d means, want 7", points.N)
	}
	undefined := 0
	for i := 0; i < points.N; i++ {
		if math.IsNaN(points.Columns["ymin"].Data[i]) {
			undefined++
		}
		if x := points.Columns["x"].Data[i]; x != 1 && x != 2 && x != 3 {
			t.Errorf("Row %d at x=%g, want a level position", i, x)
		}
	}
	if undefined != 2 {
		t.Errorf("Got %d undefined intervals, want 2", undefined)
	}

	for _, layer := range p.Layers {
		if diff := cmp.Diff([]string{"25", "35", "45"}, layer.Labels); diff != "" {
			t.Errorf("Labels of %s (-want +got):\n%s", layer.Name, diff)
		}
	}
}

func TestMeanCIPlotDodge(t *testing.T) {
	p := measurementPlot(t, MeanCIOptions{Position: PosDodge})
	if _, err := p.Build(); err != nil {
		t.Fatalf("Unexpected error %s", err)
	}

	// de (x=2) has all three groups, uk (x=3) only one.
	var atDe, atUk []float64
	for _, x := range p.Layers[0].Data.Columns["x"].Data {
		switch {
		case x > 1.5 && x < 2.5:
			atDe = append(atDe, x)
		case x > 2.5:
			atUk = append(atUk, x)
		}
	}
	wh := 0.4 / 2 / 3
	want := []float64{2 - 2*wh, 2, 2 + 2*wh}
	approx := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, atDe, approx); diff != "" {
		t.Errorf("Dodged x at de (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{3}, atUk); diff != "" {
		t.Errorf("x at uk (-want +got):\n%s", diff)
	}

	// Error bar widths are computed before dodging.
	for _, w := range p.Layers[1].Data.Columns["width"].Data {
		if w != 0.2 {
			t.Errorf("Errorbar width %g, want 0.2", w)
		}
	}
}

func TestBuildTwice(t *testing.T) {
	p := measurementPlot(t, MeanCIOptions{Geoms: []string{"pointrange"}})
	if _, err := p.Build(); err != nil {
		t.Fatalf("First build: %s", err)
	}
	if _, err := p.Build(); err != nil {
		t.Fatalf("Second build: %s", err)
	}
	if p.Layers[0].Data.N != 7 {
		t.Errorf("Got %d rows after rebuild", p.Layers[0].Data.N)
	}
}

func TestWriteTo(t *testing.T) {
	for _, format := range []string{"png", "svg"} {
		df, _ := NewDataFrameFrom(measurement)
		p := &Plot{
			Data: df,
			Aes:  AesMapping{"x": "Group", "y": "Height", "color": "Origin"},
		}
		err := p.AddMeanCI(MeanCIOptions{Geoms: []string{"ribbon", "line", "point"}})
		if err != nil {
			t.Fatalf("Unexpected error %s", err)
		}

		var buf bytes.Buffer
		n, err := p.WriteTo(&buf, 12*vg.Centimeter, 8*vg.Centimeter, format)
		if err != nil {
			t.Fatalf("%s: unexpected error %s", format, err)
		}
		if n == 0 || int64(buf.Len()) != n {
			t.Errorf("%s: wrote %d bytes, buffer has %d", format, n, buf.Len())
		}
		if format == "svg" && !strings.Contains(buf.String(), "<svg") {
			t.Errorf("Output is not svg")
		}
	}
}

func TestSave(t *testing.T) {
	p := measurementPlot(t, MeanCIOptions{Geoms: []string{"point", "errorbar", "line"}})
	file := filepath.Join(t.TempDir(), "weight.png")
	if err := p.Save(10*vg.Centimeter, 10*vg.Centimeter, file); err != nil {
		t.Fatalf("Unexpected error %s", err)
	}
	if fi, err := os.Stat(file); err != nil || fi.Size() == 0 {
		t.Errorf("No image written: %v", err)
	}
}

func TestLogScale(t *testing.T) {
	df := xyFrame([]float64{1, 1, 1, 2, 2, 2}, []float64{1, 10, 100, 5, 50, 500})
	p := &Plot{
		Data:   df,
		Aes:    AesMapping{"x": "x", "y": "y"},
		YScale: &Log10Scale,
	}
	err := p.AddMeanCI(MeanCIOptions{Distribution: "lognormal"})
	if err != nil {
		t.Fatalf("Unexpected error %s", err)
	}
	gp, err := p.Build()
	if err != nil {
		t.Fatalf("Unexpected error %s", err)
	}
	if gp.Y.Min <= 0 {
		t.Errorf("Got y minimum %g", gp.Y.Min)
	}

	// Normal intervals reach below zero.
	p = &Plot{
		Data:   df,
		Aes:    AesMapping{"x": "x", "y": "y"},
		YScale: &Log10Scale,
	}
	p.AddMeanCI(MeanCIOptions{})
	if _, err := p.Build(); err == nil {
		t.Errorf("Missing error for negative values on log axis")
	}
}

func TestBuildErrors(t *testing.T) {
	df, _ := NewDataFrameFrom(measurement)

	tests := []struct {
		name   string
		aes    AesMapping
		layers []*Layer
	}{
		{
			name: "unknown field",
			aes:  AesMapping{"x": "Origin", "y": "Shoesize"},
		},
		{
			name: "continuous color",
			aes:  AesMapping{"x": "Origin", "y": "Weight", "color": "Height"},
		},
		{
			name: "missing slots",
			aes:  AesMapping{"x": "Origin", "y": "Weight"},
			layers: []*Layer{
				{Name: "raw errorbars", Geom: GeomErrorbar{}},
			},
		},
		{
			name: "binomial weights",
			aes:  AesMapping{"x": "Origin", "y": "Weight"},
			layers: []*Layer{
				{Name: "bad", Stat: StatMeanCI{Distribution: stat.Binomial}, Geom: GeomPoint{}},
			},
		},
	}
	for _, tc := range tests {
		p := &Plot{Data: df, Aes: tc.aes, Layers: tc.layers}
		if tc.layers == nil {
			p.AddMeanCI(MeanCIOptions{})
		}
		if _, err := p.Build(); err == nil {
			t.Errorf("%s: missing error", tc.name)
		}
	}

	p := &Plot{
		Data: Filter(df, "Age", 99),
		Aes:  AesMapping{"x": "Origin", "y": "Weight"},
	}
	p.AddMeanCI(MeanCIOptions{})
	if _, err := p.Build(); err == nil || !strings.Contains(err.Error(), "nothing to draw") {
		t.Errorf("Empty data: got %v", err)
	}
}

func TestUndefinedIntervalsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := measurementPlot(t, MeanCIOptions{})
	p.Logger = zap.New(core)
	if _, err := p.Build(); err != nil {
		t.Fatalf("Unexpected error %s", err)
	}
	if n := logs.FilterMessageSnippet("2 of 7 intervals undefined").Len(); n != 2 {
		t.Errorf("Got %d warnings, want one per layer", n)
	}
}

func TestParsePosition(t *testing.T) {
	for name, want := range map[string]PositionAdjust{"": PosIdentity, "identity": PosIdentity, "dodge": PosDodge} {
		got, err := ParsePosition(name)
		if err != nil || got != want {
			t.Errorf("ParsePosition(%q) = %d, %v", name, got, err)
		}
	}
	if _, err := ParsePosition("jitter"); err == nil {
		t.Errorf("Missing error for jitter")
	}
}

func intervalFrame(x, y, lo, hi []float64) *DataFrame {
	df := NewDataFrame("intervals", nil)
	df.N = len(x)
	for name, data := range map[string][]float64{"x": x, "y": y, "ymin": lo, "ymax": hi} {
		f := NewField(len(data), Float, df.Pool)
		copy(f.Data, data)
		df.Columns[name] = f
	}
	return df
}

func TestIntervalGeomsSkipUndefined(t *testing.T) {
	nan := math.NaN()
	// The interval at x=2 is undefined, like the one of a single observation.
	data := intervalFrame(
		[]float64{4, 1, 3, 2},
		[]float64{8, 2, 6, 4},
		[]float64{7, 1, 5, nan},
		[]float64{9, 3, 7, nan},
	)
	data.Columns["width"] = Field{Type: Float}.Const(0.5, data.N)
	p := &Plot{}

	tests := []struct {
		geom   Geom
		ranges [][]float64 // x of the ranges of each grob
	}{
		{GeomRibbon{}, [][]float64{{3, 4}}},
		{GeomErrorbar{}, [][]float64{{1, 3, 4}}},
		{GeomPointrange{}, [][]float64{{1, 3, 4}}},
	}
	for _, tc := range tests {
		grobs, err := tc.geom.Render(p, data, tc.geom.Aes(p))
		if err != nil {
			t.Fatalf("%s: unexpected error %s", tc.geom.Name(), err)
		}
		var got [][]float64
		for _, grob := range grobs {
			var ranges []Range
			switch g := grob.(type) {
			case *GrobRibbon:
				ranges = g.Ranges
			case *GrobErrorbar:
				ranges = g.Ranges
				for i, hw := range g.HalfWidth {
					if hw != 0.25 {
						t.Errorf("%s: half width %d is %g", tc.geom.Name(), i, hw)
					}
				}
			case *GrobPointrange:
				ranges = g.Ranges
			default:
				t.Fatalf("%s: unexpected grob %T", tc.geom.Name(), grob)
			}
			var xs []float64
			for _, r := range ranges {
				xs = append(xs, r.X)
				if !(r.Lo <= r.Hi) {
					t.Errorf("%s: bad range %+v", tc.geom.Name(), r)
				}
			}
			got = append(got, xs)
		}
		if diff := cmp.Diff(tc.ranges, got); diff != "" {
			t.Errorf("%s (-want +got):\n%s", tc.geom.Name(), diff)
		}
	}
}

func TestGeomLineBreaksAtMissing(t *testing.T) {
	nan := math.NaN()
	data := intervalFrame(
		[]float64{5, 1, 2, 3, 4},
		[]float64{9, 1, 2, nan, 7},
		nil, nil,
	)
	p := &Plot{}
	grobs, err := GeomLine{}.Render(p, data, GeomLine{}.Aes(p))
	if err != nil {
		t.Fatalf("Unexpected error %s", err)
	}
	if len(grobs) != 2 {
		t.Fatalf("Got %d lines, want 2", len(grobs))
	}
	var got [][]float64
	for _, grob := range grobs {
		line, ok := grob.(*plotter.Line)
		if !ok {
			t.Fatalf("Unexpected grob %T", grob)
		}
		var xs []float64
		for _, xy := range line.XYs {
			xs = append(xs, xy.X)
		}
		got = append(got, xs)
	}
	if diff := cmp.Diff([][]float64{{1, 2}, {4, 5}}, got); diff != "" {
		t.Errorf("Line segments (-want +got):\n%s", diff)
	}

	// A single defined point draws no line at all.
	data = intervalFrame([]float64{1, 2}, []float64{1, nan}, nil, nil)
	if grobs, _ := (GeomLine{}).Render(p, data, GeomLine{}.Aes(p)); len(grobs) != 0 {
		t.Errorf("Got %d lines for one point", len(grobs))
	}
}
