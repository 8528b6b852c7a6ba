// Package tackdetector cuts a located track into tacks at its maneuvers.
//
// Detection runs in two passes over the bearing signal. The first pass slides a pair
// of windows along the track and marks candidate maneuvers where the bearings are
// consistent within each window but not across both. The second pass accepts the
// candidates strongest first, rejecting any that would leave a neighbouring tack
// too short to have a main part.
package tackdetector

import (
	"log/slog"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/sail"
)

// Maneuver is a candidate tack boundary: the index of the first point of the new tack.
type Maneuver struct {
	Index int
	// Before, After and Whole are the mean resultant lengths (0..1) of the bearings
	// in the window before the boundary, after it, and of both windows together.
	Before float64
	After  float64
	Whole  float64
	// Score is how much the joined window is less consistent than its halves.
	Score float64
}

// Detect segments the located points into tacks covering the whole sequence.
// The tacks share the located slice. Fewer than 2×TackExtension points give a single
// tack without main points; no points give no tacks.
func Detect(located datapoint.DataPoints, config *params.TackDetectorConfig) []*sail.Tack {
	if config == nil {
		config = params.DefaultTackDetectorConfig
	}
	if len(located) == 0 {
		return []*sail.Tack{}
	}
	candidates := Candidates(located, config)
	boundaries := Validate(candidates, len(located), config.TackExtension)

	tacks := make([]*sail.Tack, 0, len(boundaries)+1)
	start := 0
	for _, b := range append(boundaries, len(located)) {
		tacks = append(tacks, sail.NewTack(located, start, b-1, config.TackExtension))
		start = b
	}
	slog.Debug("Detected tacks", "points", len(located), "candidates", len(candidates), "tacks", len(tacks))
	return tacks
}

// Candidates is the first pass. It scores every index with a full window of valid
// bearings on each side and returns the peak of each run of consecutive qualifying
// indices, in index order.
func Candidates(located datapoint.DataPoints, config *params.TackDetectorConfig) []Maneuver {
	w := config.WindowSize
	if w < 1 {
		return nil
	}
	var valid []int
	for i, p := range located {
		if p.Bearing != nil {
			valid = append(valid, i)
		}
	}

	var out []Maneuver
	var run *Maneuver
	flush := func() {
		if run != nil {
			out = append(out, *run)
			run = nil
		}
	}
	for i := range located {
		k := sort.SearchInts(valid, i)
		if k < w || len(valid)-k < w {
			flush()
			continue
		}
		m := score(located, valid[k-w:k], valid[k:k+w])
		m.Index = i
		if m.Before < config.MinWindowConsistency || m.After < config.MinWindowConsistency ||
			m.Score < config.MinConsistencyDrop {
			flush()
			continue
		}
		if run == nil || m.Score > run.Score {
			if run == nil {
				run = &Maneuver{}
			}
			*run = m
		}
	}
	flush()
	return out
}

func score(located datapoint.DataPoints, before, after []int) Maneuver {
	m := Maneuver{
		Before: resultantLength(located, before),
		After:  resultantLength(located, after),
	}
	whole := make([]int, 0, len(before)+len(after))
	whole = append(whole, before...)
	whole = append(whole, after...)
	m.Whole = resultantLength(located, whole)
	m.Score = (m.Before+m.After)/2 - m.Whole
	return m
}

// resultantLength is the length of the mean unit vector of the bearings at idx,
// 1 for identical bearings, near 0 for scattered ones.
func resultantLength(located datapoint.DataPoints, idx []int) float64 {
	sins := make(stats.Float64Data, 0, len(idx))
	coss := make(stats.Float64Data, 0, len(idx))
	for _, i := range idx {
		sin, cos := math.Sincos(*located[i].Bearing)
		sins = append(sins, sin)
		coss = append(coss, cos)
	}
	s, err := sins.Mean()
	if err != nil {
		return 0
	}
	c, _ := coss.Mean()
	return math.Hypot(s, c)
}

// Validate is the second pass. Candidates are taken strongest first; one is kept only
// if the tentative tacks on both sides of it, bounded by the boundaries kept so far,
// still have main points. It returns the kept boundaries in index order.
func Validate(candidates []Maneuver, n, extension int) []int {
	ordered := make([]Maneuver, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	minLength := 2*extension + 1
	var kept []int
	for _, c := range ordered {
		k := sort.SearchInts(kept, c.Index)
		prev, next := 0, n
		if k > 0 {
			prev = kept[k-1]
		}
		if k < len(kept) {
			next = kept[k]
		}
		if c.Index-prev < minLength || next-c.Index < minLength {
			slog.Debug("Merged maneuver into enclosing tack", "index", c.Index, "score", c.Score)
			continue
		}
		kept = append(kept, 0)
		copy(kept[k+1:], kept[k:])
		kept[k] = c.Index
	}
	return kept
}
