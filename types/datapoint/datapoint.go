// Package datapoint holds the single timestamped boat observation
// and its optional sensor readings.
package datapoint

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/rotblauer/sailtrack/common"
)

// DataPoint stores one observation of the boat.
// Every sub-reading is optional, and so is every derived value:
// nil means unknown, never zero.
type DataPoint struct {
	// Time is epoch milliseconds. Device clock on import, GPS clock after time correction.
	Time int64 `json:"time"`

	Location      *Location      `json:"location,omitempty"`
	MagneticField *MagneticField `json:"magneticField,omitempty"`
	Acceleration  *Acceleration  `json:"acceleration,omitempty"`

	// Velocity is in knots, from the previous located point.
	Velocity *float64 `json:"velocity,omitempty"`
	// Bearing is the course over ground in radians, [0, 2π).
	Bearing *float64 `json:"bearing,omitempty"`
	// RelativeBearing is Bearing minus the wind bearing, in radians, (−π, π].
	// Positive is starboard (wind over the starboard side).
	RelativeBearing *float64 `json:"relativeBearing,omitempty"`
}

// Location is a GPS fix, or a position interpolated between two fixes.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// BearingFromLatLong is the track bearing from the previous located point, radians.
	BearingFromLatLong *float64 `json:"bearingFromLatLong,omitempty"`
	// Bearing is the bearing reported by the GPS receiver, radians.
	Bearing *float64 `json:"bearing,omitempty"`
	// SatelliteTime is the GPS clock time of the fix, epoch milliseconds.
	SatelliteTime *int64 `json:"satelliteTime,omitempty"`

	Interpolated bool `json:"interpolated,omitempty"`
}

// MagneticField is a raw magnetometer reading in the device frame, µT.
type MagneticField struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// CompassBearing is the boat heading against magnetic north, radians.
	// Only known once the device orientation is resolved.
	CompassBearing *float64 `json:"compassBearing,omitempty"`
}

// Acceleration is a raw accelerometer reading (specific force) in the device frame, m/s².
type Acceleration struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Roll and Pitch are boat angles in radians, known once the device orientation is resolved.
	// Roll is positive with the starboard side down, pitch positive bow up.
	Roll  *float64 `json:"roll,omitempty"`
	Pitch *float64 `json:"pitch,omitempty"`
}

func (m *MagneticField) Vector() r3.Vector {
	return r3.Vector{X: m.X, Y: m.Y, Z: m.Z}
}

func (a *Acceleration) Vector() r3.Vector {
	return r3.Vector{X: a.X, Y: a.Y, Z: a.Z}
}

func (dp *DataPoint) HasLocation() bool {
	return dp != nil && dp.Location != nil
}

func (dp *DataPoint) HasMagneticField() bool {
	return dp != nil && dp.MagneticField != nil
}

func (dp *DataPoint) HasAcceleration() bool {
	return dp != nil && dp.Acceleration != nil
}

// TimeAt returns the point's time as a time.Time.
func (dp *DataPoint) TimeAt() time.Time {
	return time.UnixMilli(dp.Time)
}

// Point returns the location as an orb.Point (lon, lat).
// It must only be called on located points.
func (dp *DataPoint) Point() orb.Point {
	return orb.Point{dp.Location.Longitude, dp.Location.Latitude}
}

// DistanceTo returns the great-circle distance in meters between two located points.
func (dp *DataPoint) DistanceTo(other *DataPoint) float64 {
	return geo.Distance(dp.Point(), other.Point())
}

// BearingTo returns the initial great-circle bearing from dp to other, radians in [0, 2π).
func (dp *DataPoint) BearingTo(other *DataPoint) float64 {
	return common.NormalizeRadians(common.DegreesToRadians(geo.Bearing(dp.Point(), other.Point())))
}

// VelocityInKnotsBetween returns the straight-line speed between two located points.
// Coincident timestamps yield 0.
func (dp *DataPoint) VelocityInKnotsBetween(other *DataPoint) float64 {
	millis := math.Abs(float64(other.Time - dp.Time))
	if millis == 0 {
		return 0
	}
	return dp.DistanceTo(other) / (millis / common.MillisPerSecond) * common.MetersPerSecondToKnots
}

// RelativeBearingInDegrees returns the relative bearing in degrees, (−180, 180].
func (dp *DataPoint) RelativeBearingInDegrees() (float64, bool) {
	if dp.RelativeBearing == nil {
		return 0, false
	}
	return common.RadiansToDegrees(*dp.RelativeBearing), true
}

// ClearDerived forgets velocity, bearing and relative bearing.
func (dp *DataPoint) ClearDerived() {
	dp.Velocity = nil
	dp.Bearing = nil
	dp.RelativeBearing = nil
}

// Copy returns a deep copy of the point.
func (dp *DataPoint) Copy() *DataPoint {
	cp := &DataPoint{
		Time:            dp.Time,
		Velocity:        copyFloat(dp.Velocity),
		Bearing:         copyFloat(dp.Bearing),
		RelativeBearing: copyFloat(dp.RelativeBearing),
	}
	if dp.Location != nil {
		loc := *dp.Location
		loc.BearingFromLatLong = copyFloat(dp.Location.BearingFromLatLong)
		loc.Bearing = copyFloat(dp.Location.Bearing)
		if dp.Location.SatelliteTime != nil {
			st := *dp.Location.SatelliteTime
			loc.SatelliteTime = &st
		}
		cp.Location = &loc
	}
	if dp.MagneticField != nil {
		mf := *dp.MagneticField
		mf.CompassBearing = copyFloat(dp.MagneticField.CompassBearing)
		cp.MagneticField = &mf
	}
	if dp.Acceleration != nil {
		acc := *dp.Acceleration
		acc.Roll = copyFloat(dp.Acceleration.Roll)
		acc.Pitch = copyFloat(dp.Acceleration.Pitch)
		cp.Acceleration = &acc
	}
	return cp
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

type DataPoints []*DataPoint
