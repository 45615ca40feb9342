package ciplot

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vdobler/ciplot/stat"
)

// Stat is the interface of statistical transform.
//
// Statistical transform take a data frame and produce an other data frame.
// This is typically done by "summarizing", "modeling" or "transforming"
// the data in a statistically significant way.
type Stat interface {
	// Name returns the name of this statistic.
	Name() string

	// Info returns the StatInfo which describes how this
	// statistic can be used.
	Info() StatInfo

	// Apply this statistic to data. The plot can be used to
	// access the current scales.
	Apply(data *DataFrame, plot *Plot) (*DataFrame, error)
}

// StatInfo contains information about how a stat can be used.
type StatInfo struct {
	// NeededAes are the aestetics which must be present in the
	// data frame. If not all needed aestetics are mapped this
	// statistics cannot be applied.
	NeededAes []string

	// OptionalAes are the aestetics which are used by this
	// statistics if present, but it is no error if they are
	// not mapped.
	OptionalAes []string

	ExtraFieldHandling ExtraFieldHandling
}

// ExtraFieldHandling determines what happens to mapped fields a stat
// neither needs nor understands.
type ExtraFieldHandling int

const (
	IgnoreExtraFields ExtraFieldHandling = iota
	FailOnExtraFields
	GroupOnExtraFields // apply the stat once per combination of levels
)

// -------------------------------------------------------------------------
// StatMeanCI

// StatMeanCI summarises y at each distinct x by its mean and a confidence
// interval. The result has the columns x, y (the mean), ymin, ymax and n.
type StatMeanCI struct {
	// Level is the confidence level, 0 means 0.95.
	Level float64

	// Distribution assumed for y.
	Distribution stat.Distribution
}

var _ Stat = StatMeanCI{}

func (StatMeanCI) Name() string { return "StatMeanCI" }

func (StatMeanCI) Info() StatInfo {
	return StatInfo{
		NeededAes:          []string{"x", "y"},
		ExtraFieldHandling: GroupOnExtraFields,
	}
}

func (s StatMeanCI) level() float64 {
	if s.Level == 0 {
		return 0.95
	}
	return s.Level
}

func (s StatMeanCI) Apply(data *DataFrame, plot *Plot) (*DataFrame, error) {
	level := s.level()
	if err := stat.CheckLevel(level); err != nil {
		return nil, err
	}

	xf, yf := data.Columns["x"], data.Columns["y"]
	ys := make(map[float64][]float64)
	for i := 0; i < data.N; i++ {
		x := xf.Data[i]
		if math.IsNaN(x) {
			continue
		}
		ys[x] = append(ys[x], yf.Data[i])
	}
	xs := NewFloatSet()
	for x := range ys {
		xs.Add(x)
	}

	// Order the x values like the x scale does.
	levels := xs.Elements()
	if plot != nil {
		sort.SliceStable(levels, func(i, j int) bool {
			return plot.rank("x", levels[i]) < plot.rank("x", levels[j])
		})
	}

	pool := data.Pool
	var rows []stat.Interval
	var rowX []float64
	for _, x := range levels {
		iv, err := stat.MeanCI(ys[x], level, s.Distribution)
		if errors.Is(err, stat.ErrEmpty) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("%s of %s at x=%s: %w",
				s.Name(), data.Name, xf.String(x), err)
		}
		rows = append(rows, iv)
		rowX = append(rowX, x)
	}

	n := len(rows)
	result := NewDataFrame(fmt.Sprintf("mean and %g%% CI of %s", 100*level, data.Name), pool)
	result.N = n
	X := NewField(n, xf.Type, pool)
	Y := NewField(n, Float, pool)
	YMin, YMax := NewField(n, Float, pool), NewField(n, Float, pool)
	N := NewField(n, Int, pool)
	for i, iv := range rows {
		X.Data[i] = rowX[i]
		Y.Data[i] = iv.Mean
		YMin.Data[i] = iv.Lower
		YMax.Data[i] = iv.Upper
		N.Data[i] = float64(iv.N)
	}

	result.Columns["x"] = X
	result.Columns["y"] = Y
	result.Columns["ymin"] = YMin
	result.Columns["ymax"] = YMax
	result.Columns["n"] = N
	return result, nil
}
