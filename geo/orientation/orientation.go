// Package orientation finds how the measuring device is mounted on the boat and
// turns raw acceleration and magnetic field readings into roll, pitch and compass bearing.
package orientation

import (
	"log/slog"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/montanaflynn/stats"
	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/sail"
	"github.com/rotblauer/sailtrack/types/vector"
)

const (
	ReasonResolved           = "resolved"
	ReasonTooFewSamples      = "too few acceleration samples"
	ReasonNotGravity         = "mean acceleration is not gravity"
	ReasonOneSided           = "too few samples on port or starboard"
	ReasonNoHeel             = "heel below noise"
	ReasonDegenerateGeometry = "degenerate axes"
)

// Result describes a resolution attempt.
type Result struct {
	Reason    string
	Samples   int
	Starboard int
	Port      int
	// HeelSignature is the mean horizontal deviation of acceleration towards the low side, m/s^2.
	HeelSignature float64
}

func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("reason", r.Reason),
		slog.Int("samples", r.Samples),
		slog.Int("starboard", r.Starboard),
		slog.Int("port", r.Port),
		slog.Float64("heel_signature", common.DecimalToFixed(r.HeelSignature, 3)),
	)
}

// Resolve estimates the boat axes in device coordinates.
//
// The device is taken to be rigidly mounted. Averaged over the track the measured
// specific force points straight up, which gives the down axis. The boat heels to
// opposite sides on port and starboard tacks, so the horizontal deviation from that
// mean, signed by the tack side at each sample, points along the right axis.
// Front completes the right-handed frame.
//
// located must carry relative bearings and be in time order.
// It returns nil when the data cannot support an estimate.
func Resolve(located, accelerated datapoint.DataPoints, config *params.OrientationConfig) (*vector.CoordinateSystem, Result) {
	if config == nil {
		config = params.DefaultOrientationConfig
	}
	res := Result{Samples: len(accelerated)}
	if len(accelerated) < config.MinAccelerationPoints || len(accelerated) == 0 {
		res.Reason = ReasonTooFewSamples
		return nil, res
	}

	mean := meanVector(accelerated)
	if math.Abs(mean.Norm()-common.StandardGravity) > config.GravityToleranceFactor*common.StandardGravity {
		res.Reason = ReasonNotGravity
		return nil, res
	}
	down := mean.Mul(-1).Normalize()

	sides := newSideLookup(located)
	signature := r3.Vector{}
	for _, p := range accelerated {
		pos, ok := sides.at(p.Time)
		if !ok {
			continue
		}
		sign := -1.0
		if pos.IsStarboard() {
			sign = 1
			res.Starboard++
		} else {
			res.Port++
		}
		deviation := p.Acceleration.Vector().Sub(mean)
		horizontal := deviation.Sub(down.Mul(deviation.Dot(down)))
		signature = signature.Add(horizontal.Mul(sign))
	}
	if res.Starboard < config.MinSamplesPerSide || res.Port < config.MinSamplesPerSide {
		res.Reason = ReasonOneSided
		return nil, res
	}
	res.HeelSignature = signature.Norm() / float64(res.Starboard+res.Port)
	if res.HeelSignature < config.MinHeelSignature {
		res.Reason = ReasonNoHeel
		return nil, res
	}

	cs, ok := vector.NewCoordinateSystem(down, signature)
	if !ok {
		res.Reason = ReasonDegenerateGeometry
		return nil, res
	}
	res.Reason = ReasonResolved
	return &cs, res
}

func meanVector(points datapoint.DataPoints) r3.Vector {
	xs := make(stats.Float64Data, 0, len(points))
	ys := make(stats.Float64Data, 0, len(points))
	zs := make(stats.Float64Data, 0, len(points))
	for _, p := range points {
		xs = append(xs, p.Acceleration.X)
		ys = append(ys, p.Acceleration.Y)
		zs = append(zs, p.Acceleration.Z)
	}
	x, _ := xs.Mean()
	y, _ := ys.Mean()
	z, _ := zs.Mean()
	return r3.Vector{X: x, Y: y, Z: z}
}

// sideLookup finds the tack side at a time from the nearest located point
// with a sided relative bearing.
type sideLookup struct {
	times []int64
	sides []sail.PointOfSail
}

func newSideLookup(located datapoint.DataPoints) sideLookup {
	l := sideLookup{}
	for _, p := range located {
		if p.RelativeBearing == nil {
			continue
		}
		pos := sail.PointOfSailFromRelativeBearing(*p.RelativeBearing)
		if !pos.HasSide() {
			continue
		}
		l.times = append(l.times, p.Time)
		l.sides = append(l.sides, pos)
	}
	return l
}

func (l sideLookup) at(t int64) (sail.PointOfSail, bool) {
	i := nearestIndex(l.times, t)
	if i < 0 {
		return sail.PointOfSailUnknown, false
	}
	return l.sides[i], true
}

// nearestIndex returns the index of the time closest to t in the sorted times, or -1.
func nearestIndex(times []int64, t int64) int {
	if len(times) == 0 {
		return -1
	}
	i := sort.Search(len(times), func(i int) bool { return times[i] >= t })
	if i == len(times) {
		return len(times) - 1
	}
	if i > 0 && t-times[i-1] <= times[i]-t {
		return i - 1
	}
	return i
}

// Apply sets Roll and Pitch on every acceleration reading and CompassBearing on every
// magnetic field reading. A nil coordinate system clears them.
//
// The compass bearing is tilt compensated with the acceleration sample nearest in time,
// falling back to the mounting's down axis.
func Apply(cs *vector.CoordinateSystem, accelerated, magnetic datapoint.DataPoints) {
	if cs == nil {
		Clear(accelerated, magnetic)
		return
	}
	times := make([]int64, 0, len(accelerated))
	for _, p := range accelerated {
		boat := cs.Project(p.Acceleration.Vector())
		p.Acceleration.Roll = common.Float64Ptr(math.Atan2(-boat.Y, -boat.Z))
		p.Acceleration.Pitch = common.Float64Ptr(math.Atan2(boat.X, math.Hypot(boat.Y, boat.Z)))
		times = append(times, p.Time)
	}
	for _, p := range magnetic {
		down := cs.Down
		if i := nearestIndex(times, p.Time); i >= 0 {
			if f := accelerated[i].Acceleration.Vector(); f.Norm() > 0 {
				down = f.Mul(-1).Normalize()
			}
		}
		if heading, ok := CompassBearing(p.MagneticField.Vector(), cs.Front, down); ok {
			p.MagneticField.CompassBearing = common.Float64Ptr(heading)
		} else {
			p.MagneticField.CompassBearing = nil
		}
	}
	slog.Debug("Applied device orientation", "accelerated", len(accelerated), "magnetic", len(magnetic))
}

// CompassBearing is the angle, clockwise seen from above, from magnetic north to the
// front axis, radians [0, 2π). All vectors are in device coordinates; down is the true
// vertical. ok is false when the field or the front axis is vertical.
func CompassBearing(field, front, down r3.Vector) (float64, bool) {
	north := field.Sub(down.Mul(field.Dot(down)))
	ahead := front.Sub(down.Mul(front.Dot(down)))
	if north.Norm() < 1e-9 || ahead.Norm() < 1e-9 {
		return 0, false
	}
	return common.NormalizeRadians(math.Atan2(down.Dot(north.Cross(ahead)), north.Dot(ahead))), true
}

// Clear forgets roll, pitch and compass bearings.
func Clear(accelerated, magnetic datapoint.DataPoints) {
	for _, p := range accelerated {
		p.Acceleration.Roll = nil
		p.Acceleration.Pitch = nil
	}
	for _, p := range magnetic {
		p.MagneticField.CompassBearing = nil
	}
}
