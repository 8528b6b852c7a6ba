package sail

import (
	"math"

	"github.com/rotblauer/sailtrack/common"
)

type PointOfSail int

const (
	CloseHauledStarboard PointOfSail = iota
	BeamReachStarboard
	BroadReachStarboard
	Running
	BroadReachPort
	BeamReachPort
	CloseHauledPort
	PointOfSailUnknown PointOfSail = -1
)

// Limits on the absolute relative bearing, in degrees.
const (
	CloseHauledMaxAngle = 70.0
	BeamReachMaxAngle   = 110.0
	BroadReachMaxAngle  = 160.0
)

// PointOfSailFromRelativeBearing classifies a relative bearing (radians, any branch).
// Positive relative bearings have the wind on the starboard side.
func PointOfSailFromRelativeBearing(relativeBearing float64) PointOfSail {
	if math.IsNaN(relativeBearing) {
		return PointOfSailUnknown
	}
	rel := common.NormalizeSignedRadians(relativeBearing)
	abs := common.RadiansToDegrees(math.Abs(rel))
	starboard := rel > 0
	switch {
	case abs < CloseHauledMaxAngle:
		if starboard {
			return CloseHauledStarboard
		}
		return CloseHauledPort
	case abs < BeamReachMaxAngle:
		if starboard {
			return BeamReachStarboard
		}
		return BeamReachPort
	case abs < BroadReachMaxAngle:
		if starboard {
			return BroadReachStarboard
		}
		return BroadReachPort
	}
	return Running
}

func (p PointOfSail) IsKnown() bool { return p != PointOfSailUnknown }

func (p PointOfSail) IsStarboard() bool {
	return p == CloseHauledStarboard || p == BeamReachStarboard || p == BroadReachStarboard
}

func (p PointOfSail) IsPort() bool {
	return p == CloseHauledPort || p == BeamReachPort || p == BroadReachPort
}

// HasSide is false for Running and Unknown.
func (p PointOfSail) HasSide() bool { return p.IsStarboard() || p.IsPort() }

func (p PointOfSail) IsCloseHauled() bool {
	return p == CloseHauledStarboard || p == CloseHauledPort
}

// String implements the Stringer interface.
func (p PointOfSail) String() string {
	switch p {
	case CloseHauledStarboard:
		return "CloseHauledStarboard"
	case BeamReachStarboard:
		return "BeamReachStarboard"
	case BroadReachStarboard:
		return "BroadReachStarboard"
	case Running:
		return "Running"
	case BroadReachPort:
		return "BroadReachPort"
	case BeamReachPort:
		return "BeamReachPort"
	case CloseHauledPort:
		return "CloseHauledPort"
	}
	return "Unknown"
}

func (p PointOfSail) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PointOfSail) UnmarshalText(text []byte) error {
	for _, candidate := range []PointOfSail{
		CloseHauledStarboard, BeamReachStarboard, BroadReachStarboard, Running,
		BroadReachPort, BeamReachPort, CloseHauledPort,
	} {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	*p = PointOfSailUnknown
	return nil
}
