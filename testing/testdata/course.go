package testdata

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/vector"
)

// Leg is a straight run of a synthetic course.
type Leg struct {
	BearingDegrees float64
	Points         int
	// RollDegrees is the constant heel on the leg, positive with the starboard side down.
	// Starboard legs heel to port, so their roll is negative.
	RollDegrees float64
}

// Course generates a synthetic sailing track at constant speed and sample rate.
type Course struct {
	Start          orb.Point
	StartTime      int64
	IntervalMillis int64
	SpeedKnots     float64
	Legs           []Leg

	// LocateEvery keeps a GPS fix on every n-th point only; 0 or 1 locates every point.
	LocateEvery int
	// ClockOffsetMillis is device clock minus GPS clock. When non-zero every fix
	// carries its GPS time as SatelliteTime and Time is on the device clock.
	ClockOffsetMillis int64

	// Orientation, when set, adds accelerometer and magnetometer readings
	// as seen by a device mounted with these boat axes.
	Orientation *vector.CoordinateSystem
}

// Earth field used for magnetometer readings, µT, north and down components.
const (
	MagneticNorth = 20.0
	MagneticDown  = 40.0
)

// FlatMount is a device lying flat, screen up, its top towards the bow.
var FlatMount = vector.CoordinateSystem{
	Front: r3.Vector{Y: 1},
	Right: r3.Vector{X: 1},
	Down:  r3.Vector{Z: -1},
}

var DefaultCourse = Course{
	Start:          orb.Point{10.1, 54.4},
	StartTime:      1_700_000_000_000,
	IntervalMillis: 1000,
	SpeedKnots:     5,
}

// Points walks the legs and returns the generated points in time order.
func (c Course) Points() datapoint.DataPoints {
	interval := c.IntervalMillis
	if interval == 0 {
		interval = 1000
	}
	step := c.SpeedKnots * common.KnotsToMetersPerSecond * float64(interval) / common.MillisPerSecond

	var out datapoint.DataPoints
	position := c.Start
	gpsTime := c.StartTime
	i := 0
	for _, leg := range c.Legs {
		for k := 0; k < leg.Points; k++ {
			if i > 0 {
				position = geo.PointAtBearingAndDistance(position, leg.BearingDegrees, step)
				gpsTime += interval
			}
			dp := &datapoint.DataPoint{Time: gpsTime + c.ClockOffsetMillis}
			if c.LocateEvery <= 1 || i%c.LocateEvery == 0 {
				dp.Location = &datapoint.Location{
					Latitude:  position.Lat(),
					Longitude: position.Lon(),
				}
				if c.ClockOffsetMillis != 0 {
					st := gpsTime
					dp.Location.SatelliteTime = &st
				}
			}
			if c.Orientation != nil {
				dp.Acceleration = c.acceleration(leg.RollDegrees)
				dp.MagneticField = c.magneticField(leg.BearingDegrees, leg.RollDegrees)
			}
			out = append(out, dp)
			i++
		}
	}
	return out
}

// toDevice expresses a boat-frame vector (front, right, down) in device axes.
func (c Course) toDevice(boat r3.Vector) r3.Vector {
	o := c.Orientation
	return o.Front.Mul(boat.X).Add(o.Right.Mul(boat.Y)).Add(o.Down.Mul(boat.Z))
}

// roll turns a level-frame vector into the frame of a boat rolled by phi.
func roll(v r3.Vector, phi float64) r3.Vector {
	sin, cos := math.Sincos(phi)
	return r3.Vector{X: v.X, Y: v.Y*cos + v.Z*sin, Z: -v.Y*sin + v.Z*cos}
}

func (c Course) acceleration(rollDegrees float64) *datapoint.Acceleration {
	gravity := roll(r3.Vector{Z: common.StandardGravity}, common.DegreesToRadians(rollDegrees))
	f := c.toDevice(gravity.Mul(-1))
	return &datapoint.Acceleration{X: f.X, Y: f.Y, Z: f.Z}
}

func (c Course) magneticField(headingDegrees, rollDegrees float64) *datapoint.MagneticField {
	sin, cos := math.Sincos(common.DegreesToRadians(headingDegrees))
	level := r3.Vector{X: MagneticNorth * cos, Y: -MagneticNorth * sin, Z: MagneticDown}
	m := c.toDevice(roll(level, common.DegreesToRadians(rollDegrees)))
	return &datapoint.MagneticField{X: m.X, Y: m.Y, Z: m.Z}
}

// StraightWithTurn is a single course change of turnDegrees halfway through n points.
func StraightWithTurn(n int, bearingDegrees, turnDegrees float64) Course {
	c := DefaultCourse
	c.Legs = []Leg{
		{BearingDegrees: bearingDegrees, Points: n / 2},
		{BearingDegrees: bearingDegrees + turnDegrees, Points: n - n/2},
	}
	return c
}

// Beat zigzags upwind: legs alternate between starboard and port close hauled courses
// either side of windDegrees, starting on starboard.
func Beat(legs, pointsPerLeg int, windDegrees, angleToWind, heelDegrees float64) Course {
	c := DefaultCourse
	for i := 0; i < legs; i++ {
		leg := Leg{Points: pointsPerLeg}
		if i%2 == 0 {
			leg.BearingDegrees = windDegrees + angleToWind
			leg.RollDegrees = -heelDegrees
		} else {
			leg.BearingDegrees = windDegrees - angleToWind
			leg.RollDegrees = heelDegrees
		}
		c.Legs = append(c.Legs, leg)
	}
	return c
}
