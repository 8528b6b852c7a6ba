package params

import (
	"time"

	"github.com/rotblauer/sailtrack/common"
)

type TimeCorrectionConfig struct {
	// MaxOffset bounds the accepted difference between GPS and device clocks.
	// References further apart are treated as bogus fixes and ignored. Zero disables the check.
	MaxOffset time.Duration
}

var DefaultTimeCorrectionConfig = &TimeCorrectionConfig{
	MaxOffset: 24 * time.Hour,
}

type OrientationConfig struct {
	// MinAccelerationPoints is the least number of acceleration samples
	// needed to attempt resolving the device orientation.
	MinAccelerationPoints int

	// MinSamplesPerSide is the least number of acceleration samples needed
	// on each of port and starboard tacks. Heel is only observable as a
	// difference between the two.
	MinSamplesPerSide int

	// MinHeelSignature is the least mean horizontal deviation, m/s^2,
	// that still reads as heel rather than sensor noise.
	// 0.1 m/s^2 is roughly half a degree of heel.
	MinHeelSignature float64

	// GravityToleranceFactor bounds how far the mean acceleration magnitude may
	// stray from standard gravity, as a fraction of it.
	GravityToleranceFactor float64
}

var DefaultOrientationConfig = &OrientationConfig{
	MinAccelerationPoints:  10,
	MinSamplesPerSide:      3,
	MinHeelSignature:       0.1,
	GravityToleranceFactor: common.GravityToleranceFactor,
}

type TackDetectorConfig struct {
	// TackExtension is the number of points trimmed from each end of a tack
	// to leave out the turning transient. A tack needs more than twice this
	// many points to have a main part.
	TackExtension int

	// WindowSize is the number of valid bearings compared before and after
	// each candidate maneuver.
	WindowSize int

	// MinWindowConsistency is the least mean resultant length, 0..1, of the
	// bearings on each side of a maneuver. Lower values read as noise.
	MinWindowConsistency float64

	// MinConsistencyDrop is the least amount by which the consistency of the
	// joined window must fall short of the two separate windows.
	// A clean 90 degree turn drops by about 0.29, a 60 degree turn by about 0.13.
	MinConsistencyDrop float64
}

var DefaultTackDetectorConfig = &TackDetectorConfig{
	TackExtension:        5,
	WindowSize:           10,
	MinWindowConsistency: 0.8,
	MinConsistencyDrop:   0.1,
}

type TackSeriesConfig struct {
	// MinTacks is the least number of close hauled tacks with main points
	// a series must hold to be reported.
	MinTacks int

	// NumberOfBearingBins is the resolution of the relative bearing histogram.
	NumberOfBearingBins int
}

var DefaultTackSeriesConfig = &TackSeriesConfig{
	MinTacks:            1,
	NumberOfBearingBins: 36,
}

type AnalysisConfig struct {
	TimeCorrection *TimeCorrectionConfig
	Orientation    *OrientationConfig
	TackDetector   *TackDetectorConfig
	TackSeries     *TackSeriesConfig
}

func DefaultAnalysisConfig() *AnalysisConfig {
	tc, oc, tdc, tsc := *DefaultTimeCorrectionConfig, *DefaultOrientationConfig, *DefaultTackDetectorConfig, *DefaultTackSeriesConfig
	return &AnalysisConfig{
		TimeCorrection: &tc,
		Orientation:    &oc,
		TackDetector:   &tdc,
		TackSeries:     &tsc,
	}
}
