// Package stat computes the summary statistics drawn by ciplot: the mean of
// a sample together with a confidence interval for it.
//
// Three distributional assumptions are supported:
//
//     Normal     mean ± t(n-1) quantile × standard error
//     Lognormal  the normal interval computed on log(y), exponentiated back
//     Binomial   exact Clopper-Pearson interval of a 0/1 sample
package stat

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrLevel               = errors.New("stat: confidence level must be a number in (0,1)")
	ErrUnknownDistribution = errors.New("stat: unknown distribution")
	ErrEmpty               = errors.New("stat: empty sample")
	ErrNotPositive         = errors.New("stat: lognormal sample contains non-positive values")
	ErrNotBinary           = errors.New("stat: binomial sample contains values other than 0 and 1")
)

// Distribution is the assumed distribution of the observations.
type Distribution int

const (
	Normal Distribution = iota
	Lognormal
	Binomial
)

var distNames = []string{"normal", "lognormal", "binomial"}

func (d Distribution) String() string {
	if d < 0 || int(d) >= len(distNames) {
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
	return distNames[d]
}

// ParseDistribution converts name to a Distribution. The empty name
// selects Normal.
func ParseDistribution(name string) (Distribution, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Normal, nil
	}
	for i, n := range distNames {
		if n == name {
			return Distribution(i), nil
		}
	}
	return Normal, fmt.Errorf("%w %q (want one of %s)",
		ErrUnknownDistribution, name, strings.Join(distNames, ", "))
}

// CheckLevel reports whether level is a usable confidence level.
func CheckLevel(level float64) error {
	if math.IsNaN(level) || level <= 0 || level >= 1 {
		return fmt.Errorf("%w, got %g", ErrLevel, level)
	}
	return nil
}

// Interval is the mean of a sample and its confidence interval.
// Lower and Upper are NaN if the interval is undefined.
type Interval struct {
	N     int
	Mean  float64
	Lower float64
	Upper float64
}

// Defined reports whether both bounds of the interval are known.
func (iv Interval) Defined() bool {
	return !math.IsNaN(iv.Lower) && !math.IsNaN(iv.Upper)
}

// MeanCI computes the mean of ys and its confidence interval at the given
// level under the assumption dist. NaN observations are ignored.
func MeanCI(ys []float64, level float64, dist Distribution) (Interval, error) {
	if err := CheckLevel(level); err != nil {
		return Interval{}, err
	}
	sample := dropNaN(ys)
	if len(sample) == 0 {
		return Interval{}, ErrEmpty
	}

	switch dist {
	case Normal:
		return normalCI(sample, level), nil
	case Lognormal:
		return lognormalCI(sample, level)
	case Binomial:
		return binomialCI(sample, level)
	}
	return Interval{}, fmt.Errorf("%w %s", ErrUnknownDistribution, dist)
}

func dropNaN(ys []float64) []float64 {
	sample := make([]float64, 0, len(ys))
	for _, y := range ys {
		if !math.IsNaN(y) {
			sample = append(sample, y)
		}
	}
	return sample
}

func normalCI(sample []float64, level float64) Interval {
	n := len(sample)
	iv := Interval{N: n, Lower: math.NaN(), Upper: math.NaN()}
	if n == 1 {
		iv.Mean = sample[0]
		return iv
	}

	mean, sd := stat.MeanStdDev(sample, nil)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	margin := t.Quantile((1+level)/2) * sd / math.Sqrt(float64(n))
	iv.Mean = mean
	iv.Lower, iv.Upper = mean-margin, mean+margin
	return iv
}

func lognormalCI(sample []float64, level float64) (Interval, error) {
	logs := make([]float64, len(sample))
	for i, y := range sample {
		if y <= 0 {
			return Interval{}, fmt.Errorf("%w: %g", ErrNotPositive, y)
		}
		logs[i] = math.Log(y)
	}
	iv := normalCI(logs, level)
	iv.Mean = math.Exp(iv.Mean)
	iv.Lower = math.Exp(iv.Lower)
	iv.Upper = math.Exp(iv.Upper)
	return iv, nil
}

func binomialCI(sample []float64, level float64) (Interval, error) {
	n, x := len(sample), 0
	for _, y := range sample {
		switch y {
		case 0:
		case 1:
			x++
		default:
			return Interval{}, fmt.Errorf("%w: %g", ErrNotBinary, y)
		}
	}
	lower, upper, err := ClopperPearson(x, n, level)
	if err != nil {
		return Interval{}, err
	}
	return Interval{
		N:     n,
		Mean:  float64(x) / float64(n),
		Lower: lower,
		Upper: upper,
	}, nil
}

// ClopperPearson returns the exact two-sided confidence interval for the
// success probability after x successes in n trials.
func ClopperPearson(x, n int, level float64) (lower, upper float64, err error) {
	if err := CheckLevel(level); err != nil {
		return math.NaN(), math.NaN(), err
	}
	if n <= 0 {
		return math.NaN(), math.NaN(), fmt.Errorf("%w: %d trials", ErrEmpty, n)
	}
	if x < 0 || x > n {
		return math.NaN(), math.NaN(), fmt.Errorf("stat: %d successes in %d trials", x, n)
	}
	alpha := 1 - level
	lower, upper = 0, 1
	if x > 0 {
		b := distuv.Beta{Alpha: float64(x), Beta: float64(n - x + 1)}
		lower = b.Quantile(alpha / 2)
	}
	if x < n {
		b := distuv.Beta{Alpha: float64(x + 1), Beta: float64(n - x)}
		upper = b.Quantile(1 - alpha/2)
	}
	return lower, upper, nil
}
