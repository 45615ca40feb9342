package stat

import (
	"errors"
	"math"
	"testing"
)

// Two-sided 95% quantiles of Student's t for 4 and 2 degrees of freedom.
const (
	t975df4 = 2.7764451051977987
	t975df2 = 4.302652729749461
)

func near(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol
}

func TestMeanCI(t *testing.T) {
	e := math.E
	tests := []struct {
		name  string
		ys    []float64
		level float64
		dist  Distribution
		want  Interval
	}{
		{
			name:  "normal",
			ys:    []float64{1, 2, 3, 4, 5},
			level: 0.95,
			dist:  Normal,
			want: Interval{N: 5, Mean: 3,
				Lower: 3 - t975df4*math.Sqrt(2.5)/math.Sqrt(5),
				Upper: 3 + t975df4*math.Sqrt(2.5)/math.Sqrt(5)},
		},
		{
			name:  "normal ignores NaN",
			ys:    []float64{math.NaN(), 1, 2, 3, 4, 5, math.NaN()},
			level: 0.95,
			dist:  Normal,
			want: Interval{N: 5, Mean: 3,
				Lower: 3 - t975df4*math.Sqrt(2.5)/math.Sqrt(5),
				Upper: 3 + t975df4*math.Sqrt(2.5)/math.Sqrt(5)},
		},
		{
			name:  "normal single observation",
			ys:    []float64{7},
			level: 0.95,
			dist:  Normal,
			want:  Interval{N: 1, Mean: 7, Lower: math.NaN(), Upper: math.NaN()},
		},
		{
			name:  "normal constant sample",
			ys:    []float64{2, 2, 2},
			level: 0.9,
			dist:  Normal,
			want:  Interval{N: 3, Mean: 2, Lower: 2, Upper: 2},
		},
		{
			name:  "lognormal",
			ys:    []float64{1, e, e * e},
			level: 0.95,
			dist:  Lognormal,
			want: Interval{N: 3, Mean: e,
				Lower: math.Exp(1 - t975df2/math.Sqrt(3)),
				Upper: math.Exp(1 + t975df2/math.Sqrt(3))},
		},
		{
			name:  "binomial half",
			ys:    []float64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1},
			level: 0.95,
			dist:  Binomial,
			want:  Interval{N: 10, Mean: 0.5, Lower: 0.1870860, Upper: 0.8129140},
		},
		{
			name:  "binomial no success",
			ys:    make([]float64, 10),
			level: 0.95,
			dist:  Binomial,
			want:  Interval{N: 10, Mean: 0, Lower: 0, Upper: 1 - math.Pow(0.025, 0.1)},
		},
		{
			name:  "binomial all success",
			ys:    []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			level: 0.95,
			dist:  Binomial,
			want:  Interval{N: 10, Mean: 1, Lower: math.Pow(0.025, 0.1), Upper: 1},
		},
		{
			name:  "binomial single trial",
			ys:    []float64{1},
			level: 0.9,
			dist:  Binomial,
			want:  Interval{N: 1, Mean: 1, Lower: 0.05, Upper: 1},
		},
	}

	for _, tc := range tests {
		got, err := MeanCI(tc.ys, tc.level, tc.dist)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
			continue
		}
		if got.N != tc.want.N || !near(got.Mean, tc.want.Mean, 1e-9) ||
			!near(got.Lower, tc.want.Lower, 1e-6) || !near(got.Upper, tc.want.Upper, 1e-6) {
			t.Errorf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestMeanCIErrors(t *testing.T) {
	tests := []struct {
		ys    []float64
		level float64
		dist  Distribution
		want  error
	}{
		{[]float64{1, 2}, 0, Normal, ErrLevel},
		{[]float64{1, 2}, 1, Normal, ErrLevel},
		{[]float64{1, 2}, -0.5, Normal, ErrLevel},
		{[]float64{1, 2}, 95, Normal, ErrLevel},
		{[]float64{1, 2}, math.NaN(), Normal, ErrLevel},
		{[]float64{1, 2}, math.Inf(1), Normal, ErrLevel},
		{nil, 0.95, Normal, ErrEmpty},
		{[]float64{math.NaN()}, 0.95, Lognormal, ErrEmpty},
		{[]float64{1, 0, 3}, 0.95, Lognormal, ErrNotPositive},
		{[]float64{1, -2}, 0.95, Lognormal, ErrNotPositive},
		{[]float64{1, 0, 0.5}, 0.95, Binomial, ErrNotBinary},
		{[]float64{1, 2}, 0.95, Distribution(7), ErrUnknownDistribution},
	}

	for i, tc := range tests {
		_, err := MeanCI(tc.ys, tc.level, tc.dist)
		if !errors.Is(err, tc.want) {
			t.Errorf("%d: got error %v, want %v", i, err, tc.want)
		}
	}
}

func TestParseDistribution(t *testing.T) {
	tests := []struct {
		name string
		want Distribution
		ok   bool
	}{
		{"", Normal, true},
		{"normal", Normal, true},
		{"Lognormal", Lognormal, true},
		{" binomial ", Binomial, true},
		{"poisson", Normal, false},
		{"norm", Normal, false},
	}

	for _, tc := range tests {
		got, err := ParseDistribution(tc.name)
		if tc.ok != (err == nil) {
			t.Errorf("%q: got error %v", tc.name, err)
			continue
		}
		if !tc.ok && !errors.Is(err, ErrUnknownDistribution) {
			t.Errorf("%q: got error %v, want ErrUnknownDistribution", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%q: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestIntervalWidensWithLevel(t *testing.T) {
	ys := []float64{4.2, 3.9, 5.1, 4.8, 4.4, 3.7}
	prev := 0.0
	for _, level := range []float64{0.5, 0.8, 0.9, 0.95, 0.99} {
		iv, err := MeanCI(ys, level, Normal)
		if err != nil {
			t.Fatalf("level %g: %v", level, err)
		}
		if w := iv.Upper - iv.Lower; w <= prev {
			t.Errorf("level %g: width %g not larger than %g", level, w, prev)
		} else {
			prev = w
		}
		if iv.Lower > iv.Mean || iv.Mean > iv.Upper {
			t.Errorf("level %g: mean %g outside [%g,%g]", level, iv.Mean, iv.Lower, iv.Upper)
		}
	}
}

func TestIntervalDefined(t *testing.T) {
	iv, _ := MeanCI([]float64{3}, 0.95, Normal)
	if iv.Defined() {
		t.Errorf("Single observation gave defined interval %+v", iv)
	}
	iv, _ = MeanCI([]float64{3, 4}, 0.95, Normal)
	if !iv.Defined() {
		t.Errorf("Two observations gave undefined interval %+v", iv)
	}
}

func TestClopperPearsonSymmetry(t *testing.T) {
	for _, n := range []int{1, 7, 30} {
		for x := 0; x <= n; x++ {
			lo, hi, err := ClopperPearson(x, n, 0.95)
			if err != nil {
				t.Fatalf("x=%d n=%d: unexpected error %v", x, n, err)
			}
			mlo, mhi, _ := ClopperPearson(n-x, n, 0.95)
			if !near(lo, 1-mhi, 1e-8) || !near(hi, 1-mlo, 1e-8) {
				t.Errorf("x=%d n=%d: [%g,%g] mirrored [%g,%g]", x, n, lo, hi, mlo, mhi)
			}
			if p := float64(x) / float64(n); lo > p || hi < p {
				t.Errorf("x=%d n=%d: [%g,%g] misses %g", x, n, lo, hi, p)
			}
		}
	}
}

func TestClopperPearsonErrors(t *testing.T) {
	tests := []struct {
		x, n  int
		level float64
		is    error
	}{
		{1, 2, 1.5, ErrLevel},
		{1, 2, 0, ErrLevel},
		{1, 2, math.NaN(), ErrLevel},
		{0, 0, 0.95, ErrEmpty},
		{5, 3, 0.95, nil},
		{-1, 3, 0.95, nil},
	}
	for _, tc := range tests {
		lo, hi, err := ClopperPearson(tc.x, tc.n, tc.level)
		if err == nil {
			t.Errorf("x=%d n=%d level=%g: missing error, got [%g,%g]", tc.x, tc.n, tc.level, lo, hi)
			continue
		}
		if tc.is != nil && !errors.Is(err, tc.is) {
			t.Errorf("x=%d n=%d level=%g: got %v, want %v", tc.x, tc.n, tc.level, err, tc.is)
		}
	}
}
