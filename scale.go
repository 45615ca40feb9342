package ciplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
)

// Scale maps the values of one aesthetic to what is drawn: discrete x
// values to positions 1, 2, ..., discrete colors to palette entries and
// so on. Continuous scales only record their domain.
type Scale struct {
	Aesthetic string
	Discrete  bool

	DomainMin    float64
	DomainMax    float64
	DomainLevels FloatSet

	// Type and Pool of the trained field, used to label levels.
	Type FieldType
	Pool *StringPool

	// levels are the sorted DomainLevels, set up by Prepare.
	levels []float64
	index  map[float64]int
}

// NewScale sets up a new scale for the given aesthetic, suitable for
// the given data in field. Integer x values are positions, not levels.
func NewScale(aesthetic string, field Field) *Scale {
	scale := Scale{
		Aesthetic:    aesthetic,
		Discrete:     field.Discrete(),
		DomainMin:    math.Inf(+1),
		DomainMax:    math.Inf(-1),
		DomainLevels: NewFloatSet(),
		Type:         field.Type,
		Pool:         field.Pool,
	}
	if isPositional(aesthetic) {
		scale.Discrete = field.Type == String
	}
	return &scale
}

func isPositional(aesthetic string) bool {
	switch aesthetic {
	case "x", "y", "ymin", "ymax":
		return true
	}
	return false
}

// Train updates the domain of s according to the data found in f.
func (s *Scale) Train(f Field) {
	if s.Discrete {
		s.DomainLevels.Join(f.Levels())
		s.levels = nil
		return
	}
	min, max, mini, maxi := f.MinMax()
	if mini != -1 && min < s.DomainMin {
		s.DomainMin = min
	}
	if maxi != -1 && max > s.DomainMax {
		s.DomainMax = max
	}
}

// Prepare orders the levels of a discrete scale. String levels are sorted
// by their label, all others by value.
func (s *Scale) Prepare() {
	if !s.Discrete {
		return
	}
	s.levels = s.DomainLevels.Elements()
	if s.Type == String && s.Pool != nil {
		sort.SliceStable(s.levels, func(i, j int) bool {
			return s.Pool.Get(int(s.levels[i])) < s.Pool.Get(int(s.levels[j]))
		})
	}
	s.index = make(map[float64]int, len(s.levels))
	for i, x := range s.levels {
		s.index[x] = i
	}
}

// Levels returns the ordered levels of a discrete scale.
func (s *Scale) Levels() []float64 {
	if s.levels == nil {
		s.Prepare()
	}
	return s.levels
}

// Index returns the position of level x in the scale or -1.
func (s *Scale) Index(x float64) int {
	if s.levels == nil {
		s.Prepare()
	}
	if i, ok := s.index[x]; ok {
		return i
	}
	return -1
}

// Pos maps x to its position: 1, 2, ... for discrete scales and the
// identity for continuous ones.
func (s *Scale) Pos(x float64) float64 {
	if !s.Discrete {
		return x
	}
	i := s.Index(x)
	if i < 0 {
		return math.NaN()
	}
	return float64(i + 1)
}

// Label formats x, a value of the trained field.
func (s *Scale) Label(x float64) string {
	f := Field{Type: s.Type, Pool: s.Pool}
	return f.String(x)
}

// Color maps the discrete value x to an entry of palette.
func (s *Scale) Color(x float64, palette []color.Color) color.Color {
	i := s.Index(x)
	if i < 0 || len(palette) == 0 {
		return color.Black
	}
	return palette[i%len(palette)]
}

// Style maps the discrete value x to a numeric shape or line type as
// understood by String2PointShape and String2LineType.
func (s *Scale) Style(x float64) string {
	return strconv.Itoa(s.Index(x) + 1)
}

// Ticks implements plot.Ticker for discrete position scales: one labeled
// tick per level.
func (s *Scale) Ticks(min, max float64) []plot.Tick {
	levels := s.Levels()
	ticks := make([]plot.Tick, 0, len(levels))
	for i, x := range levels {
		pos := float64(i + 1)
		if pos < min || pos > max {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: pos, Label: s.Label(x)})
	}
	return ticks
}

func (s *Scale) String() string {
	if s.Discrete {
		return fmt.Sprintf("Scale %s: discrete %d levels", s.Aesthetic, len(s.DomainLevels))
	}
	return fmt.Sprintf("Scale %s: continuous [%g,%g]", s.Aesthetic, s.DomainMin, s.DomainMax)
}

// -------------------------------------------------------------------------
// Scale Transformations

// ScaleTransform is the transformation of a continuous axis.
type ScaleTransform struct {
	Name   string
	Norm   plot.Normalizer
	Ticker plot.Ticker

	// Positive is set if the transformation is defined for
	// positive values only.
	Positive bool
}

var IdentityScale = ScaleTransform{
	Name:   "identity",
	Norm:   plot.LinearScale{},
	Ticker: plot.DefaultTicks{},
}

var Log10Scale = ScaleTransform{
	Name:     "log10",
	Norm:     plot.LogScale{},
	Ticker:   plot.LogTicks{Prec: -1},
	Positive: true,
}

// ParseScaleTransform looks up a transformation by name. The empty name
// is the identity.
func ParseScaleTransform(name string) (*ScaleTransform, error) {
	switch name {
	case "", "identity", "linear":
		return &IdentityScale, nil
	case "log10", "log":
		return &Log10Scale, nil
	}
	return nil, fmt.Errorf("unknown scale transformation %q", name)
}
