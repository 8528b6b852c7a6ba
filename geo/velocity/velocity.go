// Package velocity derives speed, course over ground and wind-relative bearing
// from successive located points.
package velocity

import (
	"log/slog"

	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

// Analyze sets Velocity, Bearing and RelativeBearing on every located point from the
// located point before it. windBearing is in radians. The first located point and all
// unlocated points are cleared. A point that did not move keeps the bearing of its
// predecessor, or none if there is none yet. Running it twice gives the same result.
func Analyze(points datapoint.DataPoints, windBearing float64) {
	var last *datapoint.DataPoint
	withVelocity := 0
	for _, p := range points {
		p.ClearDerived()
		if !p.HasLocation() {
			continue
		}
		if last == nil {
			last = p
			continue
		}

		p.Velocity = common.Float64Ptr(p.VelocityInKnotsBetween(last))
		withVelocity++

		if p.DistanceTo(last) > 0 {
			p.Bearing = common.Float64Ptr(last.BearingTo(p))
		} else if last.Bearing != nil {
			p.Bearing = common.Float64Ptr(*last.Bearing)
		}
		if p.Bearing != nil {
			p.RelativeBearing = common.Float64Ptr(RelativeBearing(*p.Bearing, windBearing))
		}
		last = p
	}
	slog.Debug("Analyzed velocity", "points", len(points), "with_velocity", withVelocity)
}

// RelativeBearing is bearing minus windBearing normalized to (−π, π].
func RelativeBearing(bearing, windBearing float64) float64 {
	return common.NormalizeSignedRadians(bearing - windBearing)
}
