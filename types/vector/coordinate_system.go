// Package vector describes the rigid mounting of the measuring device on the boat.
package vector

import (
	"math"

	"github.com/golang/geo/r3"
)

// orthonormalEpsilon is the tolerance on dot products and norms for Valid.
const orthonormalEpsilon = 1e-6

// CoordinateSystem is the boat's main axes (front, right, down)
// expressed in the coordinate system of the measuring device.
type CoordinateSystem struct {
	Front r3.Vector `json:"front"`
	Right r3.Vector `json:"right"`
	Down  r3.Vector `json:"down"`
}

// NewCoordinateSystem builds a right-handed system from a down axis and an
// approximate right axis. The right axis is made orthogonal to down and the front
// axis completes the frame. ok is false when the inputs are degenerate.
func NewCoordinateSystem(down, approxRight r3.Vector) (cs CoordinateSystem, ok bool) {
	if down.Norm() == 0 {
		return cs, false
	}
	down = down.Normalize()
	right := approxRight.Sub(down.Mul(approxRight.Dot(down)))
	if right.Norm() < orthonormalEpsilon {
		return cs, false
	}
	right = right.Normalize()
	cs = CoordinateSystem{
		Front: right.Cross(down).Normalize(),
		Right: right,
		Down:  down,
	}
	return cs, cs.Valid()
}

// Project expresses a device-frame vector in boat coordinates (front, right, down).
func (cs CoordinateSystem) Project(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: v.Dot(cs.Front),
		Y: v.Dot(cs.Right),
		Z: v.Dot(cs.Down),
	}
}

// Valid reports whether the axes are unit length, mutually orthogonal and right-handed.
func (cs CoordinateSystem) Valid() bool {
	for _, axis := range []r3.Vector{cs.Front, cs.Right, cs.Down} {
		if math.Abs(axis.Norm()-1) > orthonormalEpsilon {
			return false
		}
	}
	if math.Abs(cs.Front.Dot(cs.Right)) > orthonormalEpsilon ||
		math.Abs(cs.Front.Dot(cs.Down)) > orthonormalEpsilon ||
		math.Abs(cs.Right.Dot(cs.Down)) > orthonormalEpsilon {
		return false
	}
	return cs.Front.Cross(cs.Right).Sub(cs.Down).Norm() < orthonormalEpsilon*10
}
