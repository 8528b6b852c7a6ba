// Package interpolate fills in positions for points sampled between GPS fixes.
package interpolate

import (
	"log/slog"

	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

// Locations gives every point lying in time between two fixes a position on the
// straight line between them, linear in time. Points before the first or after the
// last fix stay unlocated. Positions interpolated by an earlier call are recomputed
// from the fixes. It returns the number of points located.
//
// Afterwards every located point gets its BearingFromLatLong, see TrackBearings.
func Locations(points datapoint.DataPoints) int {
	interpolated := 0
	var before *datapoint.DataPoint
	var pending datapoint.DataPoints
	for _, p := range points {
		if p.HasLocation() && p.Location.Interpolated {
			p.Location = nil
		}
		if !p.HasLocation() {
			if before != nil {
				pending = append(pending, p)
			}
			continue
		}
		for _, q := range pending {
			q.Location = InterpolateTo(before, p, q.Time)
			interpolated++
		}
		pending = pending[:0]
		before = p
	}

	TrackBearings(points)
	slog.Debug("Interpolated locations", "points", len(points), "interpolated", interpolated, "unlocated", len(pending))
	return interpolated
}

// InterpolateTo returns the position at time t on the line from a to b.
// Times outside [a.Time, b.Time] are clamped onto the segment.
func InterpolateTo(a, b *datapoint.DataPoint, t int64) *datapoint.Location {
	ratio := 0.0
	if span := b.Time - a.Time; span != 0 {
		ratio = float64(t-a.Time) / float64(span)
	}
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	return &datapoint.Location{
		Latitude:     a.Location.Latitude + ratio*(b.Location.Latitude-a.Location.Latitude),
		Longitude:    a.Location.Longitude + ratio*(b.Location.Longitude-a.Location.Longitude),
		Interpolated: true,
	}
}

// TrackBearings sets BearingFromLatLong on every located point from its located
// predecessor. The first located point has none; a point that did not move keeps
// the bearing of its predecessor.
func TrackBearings(points datapoint.DataPoints) {
	var last *datapoint.DataPoint
	var bearing *float64
	for _, p := range points {
		if !p.HasLocation() {
			continue
		}
		if last != nil && p.DistanceTo(last) > 0 {
			bearing = common.Float64Ptr(last.BearingTo(p))
		}
		if bearing != nil {
			p.Location.BearingFromLatLong = common.Float64Ptr(*bearing)
		} else {
			p.Location.BearingFromLatLong = nil
		}
		last = p
	}
}
