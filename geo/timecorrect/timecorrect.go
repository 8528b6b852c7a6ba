// Package timecorrect moves point timestamps from the device clock onto the GPS clock.
package timecorrect

import (
	"log/slog"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

// Result reports what a correction pass did.
type Result struct {
	// References is the number of fixes whose GPS time set an offset.
	References int
	// Corrected is the number of points moved onto the GPS clock.
	Corrected int
	// Clamped is the number of corrected points lifted to their predecessor's time
	// to keep time non-decreasing.
	Clamped int
	// Lowered is the number of leading points moved down to their successor's time,
	// when the device clock ran ahead of GPS.
	Lowered int
	// Leading is the number of points before the first reference, left on device time.
	Leading int
	// MedianOffset is the median of the reference offsets, GPS minus device clock.
	MedianOffset time.Duration
}

func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("references", r.References),
		slog.Int("corrected", r.Corrected),
		slog.Int("clamped", r.Clamped),
		slog.Int("lowered", r.Lowered),
		slog.Int("leading", r.Leading),
		slog.Duration("median_offset", r.MedianOffset),
	)
}

type reference struct {
	deviceTime int64
	offset     int64
}

// Correct rewrites Time on every point to the GPS time base, in place.
//
// Fixes carrying a SatelliteTime are references: their offset is satellite time minus
// device time. Every later point takes the offset of the reference nearest to it on the
// device clock, before or after. Points preceding the first reference have no established
// offset and keep device time, unless that puts them after the first corrected point: then
// they are lowered to their successor's time, so GPS time is never overwritten. Remaining
// inversions among corrected points are removed by lifting a point to its predecessor's time.
func Correct(points datapoint.DataPoints, config *params.TimeCorrectionConfig) Result {
	if config == nil {
		config = params.DefaultTimeCorrectionConfig
	}
	res := Result{}
	refs := references(points, config.MaxOffset)
	res.References = len(refs)

	if len(refs) > 0 {
		offsets := make(stats.Float64Data, 0, len(refs))
		for _, r := range refs {
			offsets = append(offsets, float64(r.offset))
		}
		if median, err := offsets.Median(); err == nil {
			res.MedianOffset = time.Duration(median) * time.Millisecond
		}

		first := refs[0].deviceTime
		leading := make([]bool, len(points))
		for i, p := range points {
			if p.Time < first {
				leading[i] = true
				res.Leading++
				continue
			}
			if offset := nearestOffset(refs, p.Time); offset != 0 {
				p.Time += offset
				res.Corrected++
			}
		}
		res.Lowered = lowerLeading(points, leading)
	} else {
		res.Leading = len(points)
	}

	res.Clamped = ForceNonDecreasing(points)
	slog.Debug("Time corrected", "result", res)
	return res
}

// references collects the usable clock offsets ordered by device time.
func references(points datapoint.DataPoints, maxOffset time.Duration) []reference {
	var refs []reference
	for _, p := range points {
		if !p.HasLocation() || p.Location.SatelliteTime == nil {
			continue
		}
		offset := *p.Location.SatelliteTime - p.Time
		if maxOffset > 0 && time.Duration(abs(offset))*time.Millisecond > maxOffset {
			slog.Debug("Ignoring implausible clock offset", "device_time", p.Time, "offset_ms", offset)
			continue
		}
		refs = append(refs, reference{deviceTime: p.Time, offset: offset})
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].deviceTime < refs[j].deviceTime
	})
	return refs
}

// nearestOffset returns the offset of the reference closest to deviceTime.
// Ties go to the earlier reference.
func nearestOffset(refs []reference, deviceTime int64) int64 {
	i := sort.Search(len(refs), func(i int) bool {
		return refs[i].deviceTime >= deviceTime
	})
	if i == len(refs) {
		return refs[len(refs)-1].offset
	}
	if i == 0 {
		return refs[0].offset
	}
	before, after := refs[i-1], refs[i]
	if after.deviceTime-deviceTime < deviceTime-before.deviceTime {
		return after.offset
	}
	return before.offset
}

// lowerLeading walks backwards and moves each leading point down to the time of the
// point after it, when that is earlier.
func lowerLeading(points datapoint.DataPoints, leading []bool) int {
	lowered := 0
	for i := len(points) - 2; i >= 0; i-- {
		if leading[i] && points[i].Time > points[i+1].Time {
			points[i].Time = points[i+1].Time
			lowered++
		}
	}
	return lowered
}

// ForceNonDecreasing lifts every point earlier than its predecessor to the
// predecessor's time and returns how many were lifted.
func ForceNonDecreasing(points datapoint.DataPoints) int {
	clamped := 0
	for i := 1; i < len(points); i++ {
		if points[i].Time < points[i-1].Time {
			points[i].Time = points[i-1].Time
			clamped++
		}
	}
	return clamped
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
