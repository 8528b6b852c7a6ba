package params

import "github.com/rotblauer/sailtrack/common"

type CleanConfig struct {
	// DedupeCacheSize is the number of recent sample hashes remembered
	// when dropping repeated samples. Loggers replaying a buffer tend to
	// repeat only the last few hundred samples.
	DedupeCacheSize int

	// MaxSpeedKnots drops fixes implying a faster jump from the previous kept fix.
	// Zero disables the check.
	MaxSpeedKnots float64
}

var DefaultCleanConfig = &CleanConfig{
	DedupeCacheSize: 10_000,
	MaxSpeedKnots:   common.SpeedOfFastestSailboat,
}
