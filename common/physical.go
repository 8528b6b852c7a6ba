package common

// All units are metric unless the name says otherwise:
// - Speed is in m/s (velocities stored on points are knots)
// - Distance is in meters
// - Time is in milliseconds on points, seconds in rates
// - Acceleration is in m/s^2
// - Angles are in radians; degrees only at the edges (flags, labels)

const MetersPerSecondToKnots = 1.94384 // 1 m/s in kts
const KnotsToMetersPerSecond = 1 / MetersPerSecondToKnots

const StandardGravity = 9.80665

// GravityToleranceFactor bounds how far a mean specific force may stray from
// StandardGravity and still be read as gravity.
const GravityToleranceFactor = 0.5

const MillisPerSecond = 1000.0

const SpeedOfFastestSailboat = 65.45 // kts, or 121 km/h
