// Package tackseries groups consecutive close hauled tacks into series
// alternating between port and starboard.
package tackseries

import (
	"log/slog"

	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/types/sail"
)

// Aggregate groups the tacks into series.
//
// A series is a run of close hauled tacks alternating sides, starting at the first one.
// Two consecutive close hauled tacks on the same side start a new series, and any other
// tack with main points, reaches included, ends the current one. Tacks without main points between two tacks of a series are
// part of it but carry no weight. Series with fewer than config.MinTacks weighted
// tacks are dropped.
func Aggregate(tacks []*sail.Tack, config *params.TackSeriesConfig) []*sail.TackSeries {
	if config == nil {
		config = params.DefaultTackSeriesConfig
	}
	out := []*sail.TackSeries{}

	var current *sail.TackSeries
	var last sail.PointOfSail
	weighted := 0
	var pending []int

	finish := func() {
		if current != nil && weighted >= config.MinTacks {
			out = append(out, current)
		}
		current = nil
		weighted = 0
		pending = pending[:0]
	}

	for i, tack := range tacks {
		if !tack.HasMainPoints() {
			if current != nil {
				pending = append(pending, i)
			}
			continue
		}
		if !tack.PointOfSail.IsCloseHauled() {
			finish()
			continue
		}
		if current != nil && tack.PointOfSail == last {
			finish()
		}
		if current == nil {
			current = sail.NewTackSeries(i)
		}
		for _, j := range pending {
			current.AddTack(tacks[j], j)
		}
		pending = pending[:0]
		current.AddTack(tack, i)
		last = tack.PointOfSail
		weighted++
	}
	finish()

	slog.Debug("Aggregated tack series", "tacks", len(tacks), "series", len(out))
	return out
}
