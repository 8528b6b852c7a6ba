package common

import (
	"math"
	"testing"
)

const angleEpsilon = 1e-9

func TestCircularAccumulator_Seam(t *testing.T) {
	cases := []struct {
		name       string
		degrees    []float64
		weights    []float64
		want       float64
		closeTo360 bool
	}{
		{"straddle from above", []float64{350, 10}, []float64{1, 1}, 0, true},
		{"straddle from below", []float64{10, 350}, []float64{1, 1}, 0, false},
		{"weighted straddle", []float64{340, 20}, []float64{3, 1}, 350, true},
		{"near 180", []float64{170, 190, 200}, []float64{1, 1, 1}, 186.66666666666666, false},
		{"plain", []float64{40, 50}, []float64{1, 1}, 45, false},
	}
	for _, c := range cases {
		acc := CircularAccumulator{}
		for i, d := range c.degrees {
			acc.Add(DegreesToRadians(d), c.weights[i])
		}
		mean, ok := acc.Mean()
		if !ok {
			t.Fatalf("%s: expected a mean", c.name)
		}
		if got := RadiansToDegrees(mean); AngleDifference(DegreesToRadians(got), DegreesToRadians(c.want)) > 1e-6 {
			t.Errorf("%s: have %v want %v", c.name, got, c.want)
		}
		closeTo, ok := acc.CloseTo360()
		if !ok || closeTo != c.closeTo360 {
			t.Errorf("%s: closeTo360 have %v want %v", c.name, closeTo, c.closeTo360)
		}
	}
}

func TestCircularAccumulator_ShiftInvariance(t *testing.T) {
	bearings := []float64{5.9, 6.1, 0.2, 0.1}
	a, b := CircularAccumulator{}, CircularAccumulator{}
	for i, v := range bearings {
		a.Add(v, float64(i+1))
		b.Add(v+TwoPi, float64(i+1))
	}
	ma, _ := a.Mean()
	mb, _ := b.Mean()
	if math.Abs(ma-mb) > angleEpsilon {
		t.Errorf("have %v want %v", mb, ma)
	}
}

func TestCircularAccumulator_Empty(t *testing.T) {
	acc := CircularAccumulator{}
	acc.Add(1, 0)
	acc.Add(1, math.NaN())
	if _, ok := acc.Mean(); ok {
		t.Error("expected no mean without weight")
	}
	if _, ok := acc.CloseTo360(); ok {
		t.Error("expected no branch without weight")
	}
	if !acc.IsEmpty() {
		t.Error("expected empty accumulator")
	}
}

func TestNormalizeSignedRadians(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-TwoPi - 0.5, -0.5},
	}
	for _, c := range cases {
		if got := NormalizeSignedRadians(c.in); math.Abs(got-c.want) > angleEpsilon {
			t.Errorf("NormalizeSignedRadians(%v): have %v want %v", c.in, got, c.want)
		}
	}
	if got := NormalizeRadians(-1e-18); got < 0 || got >= TwoPi {
		t.Errorf("NormalizeRadians out of range: %v", got)
	}
}
