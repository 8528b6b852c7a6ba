package common

import "math"

// CircularAccumulator sums weighted angles on a single continuous branch of the circle,
// so that a cluster straddling the 0/2π seam does not average out to its opposite.
//
// The first weighted sample pins the branch. Every later sample is shifted by ±2π onto
// the copy of the circle lying within π of that first sample before it is summed.
// The running sum may therefore leave [0, 2π); it is only normalized when read.
type CircularAccumulator struct {
	WeightedSum float64 `json:"weightedSum"`
	WeightSum   float64 `json:"weightSum"`

	reference float64
	pinned    bool
}

// Add folds angle (radians, any branch) into the accumulator with the given weight.
// Non-positive and non-finite weights are ignored.
func (c *CircularAccumulator) Add(angle, weight float64) {
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) || math.IsNaN(angle) {
		return
	}
	angle = NormalizeRadians(angle)
	if !c.pinned {
		c.reference = angle
		c.pinned = true
	} else if angle-c.reference > math.Pi {
		angle -= TwoPi
	} else if c.reference-angle > math.Pi {
		angle += TwoPi
	}
	c.WeightedSum += angle * weight
	c.WeightSum += weight
}

// CloseTo360 reports whether the pinned branch sits near the top of the circle (> 3π/2).
// ok is false until a sample has been added.
func (c *CircularAccumulator) CloseTo360() (closeTo bool, ok bool) {
	if !c.pinned {
		return false, false
	}
	return c.reference > 3*math.Pi/2, true
}

// Mean returns the weighted mean angle normalized to [0, 2π).
// ok is false when nothing has been accumulated.
func (c *CircularAccumulator) Mean() (mean float64, ok bool) {
	if c.WeightSum == 0 {
		return 0, false
	}
	return NormalizeRadians(c.WeightedSum / c.WeightSum), true
}

// IsEmpty is true when no weight has been accumulated.
func (c *CircularAccumulator) IsEmpty() bool {
	return c.WeightSum == 0
}

// WeightedAccumulator is the linear counterpart of CircularAccumulator,
// used for quantities like velocity that do not wrap.
type WeightedAccumulator struct {
	WeightedSum float64 `json:"weightedSum"`
	WeightSum   float64 `json:"weightSum"`
}

func (w *WeightedAccumulator) Add(value, weight float64) {
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) || math.IsNaN(value) {
		return
	}
	w.WeightedSum += value * weight
	w.WeightSum += weight
}

func (w *WeightedAccumulator) Mean() (float64, bool) {
	if w.WeightSum == 0 {
		return 0, false
	}
	return w.WeightedSum / w.WeightSum, true
}
