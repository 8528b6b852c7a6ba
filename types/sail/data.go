package sail

import (
	"math"
	"time"

	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/vector"
)

// Data owns a recorded track and everything derived from it.
//
// The sensor subsets (located, magnetic, accelerated points) are cached and rebuilt
// after any change made through Add or Modify. The tack and tack series lists are
// pipeline output: they are only replaced by re-running the analysis.
//
// Data is not safe for concurrent use.
type Data struct {
	points datapoint.DataPoints

	dirty               bool
	prepared            bool
	locationPoints      datapoint.DataPoints
	magneticFieldPoints datapoint.DataPoints
	accelerationPoints  datapoint.DataPoints

	// DeviceOrientation holds the boat axes in device coordinates, nil when unresolved.
	DeviceOrientation *vector.CoordinateSystem

	Comment string

	TackList       []*Tack
	TackSeriesList []*TackSeries
}

// NewData copies the points into a new container.
func NewData(points datapoint.DataPoints) *Data {
	d := &Data{points: make(datapoint.DataPoints, 0, len(points)), dirty: true}
	for _, p := range points {
		d.points = append(d.points, p.Copy())
	}
	return d
}

// Add appends a copy of the point.
func (d *Data) Add(p *datapoint.DataPoint) {
	d.points = append(d.points, p.Copy())
	d.dirty = true
	d.prepared = false
}

// Modify hands the raw points to fn for in-place changes, or for replacement via the
// returned slice, and invalidates the cached subsets.
func (d *Data) Modify(fn func(points datapoint.DataPoints) datapoint.DataPoints) {
	if replaced := fn(d.points); replaced != nil {
		d.points = replaced
	}
	d.dirty = true
	d.prepared = false
}

// Prepared reports whether the points were time corrected and interpolated
// since they last changed.
func (d *Data) Prepared() bool { return d.prepared }

func (d *Data) MarkPrepared() { d.prepared = true }

// AllPoints returns the raw points. Callers must not mutate them; use Modify.
func (d *Data) AllPoints() datapoint.DataPoints {
	return d.points
}

func (d *Data) Len() int { return len(d.points) }

func (d *Data) fill() {
	if !d.dirty {
		return
	}
	d.locationPoints = datapoint.DataPoints{}
	d.magneticFieldPoints = datapoint.DataPoints{}
	d.accelerationPoints = datapoint.DataPoints{}
	for _, p := range d.points {
		if p.HasLocation() {
			d.locationPoints = append(d.locationPoints, p)
		}
		if p.HasMagneticField() {
			d.magneticFieldPoints = append(d.magneticFieldPoints, p)
		}
		if p.HasAcceleration() {
			d.accelerationPoints = append(d.accelerationPoints, p)
		}
	}
	d.dirty = false
}

func (d *Data) LocationPoints() datapoint.DataPoints {
	d.fill()
	return d.locationPoints
}

func (d *Data) MagneticFieldPoints() datapoint.DataPoints {
	d.fill()
	return d.magneticFieldPoints
}

func (d *Data) AccelerationPoints() datapoint.DataPoints {
	d.fill()
	return d.accelerationPoints
}

// ResetAnalysis forgets the pipeline output.
func (d *Data) ResetAnalysis() {
	d.DeviceOrientation = nil
	d.TackList = nil
	d.TackSeriesList = nil
}

// Span describes the time coverage of a set of points.
type Span struct {
	Count int       `json:"count"`
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
	// Frequency is the average sample rate in Hz.
	// It is 0 without points, and NaN when all points share one timestamp.
	Frequency float64 `json:"-"`
}

func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

func spanOf(points datapoint.DataPoints) Span {
	s := Span{Count: len(points)}
	if len(points) == 0 {
		return s
	}
	first, last := points[0], points[len(points)-1]
	s.Start = first.TimeAt().UTC()
	s.End = last.TimeAt().UTC()
	millis := last.Time - first.Time
	if millis == 0 {
		s.Frequency = math.NaN()
		return s
	}
	s.Frequency = common.MillisPerSecond * float64(len(points)) / float64(millis)
	return s
}

// Stats summarizes the coverage of the track per sensor.
type Stats struct {
	All           Span `json:"all"`
	Location      Span `json:"location"`
	MagneticField Span `json:"magneticField"`
	Acceleration  Span `json:"acceleration"`
}

func (d *Data) Stats() Stats {
	return Stats{
		All:           spanOf(d.points),
		Location:      spanOf(d.LocationPoints()),
		MagneticField: spanOf(d.MagneticFieldPoints()),
		Acceleration:  spanOf(d.AccelerationPoints()),
	}
}

// RelativeBearingHistogram counts located points by relative bearing,
// bins of equal width over (−180°, 180°]. Points without a relative bearing are skipped.
func (d *Data) RelativeBearingHistogram(bins int) []int {
	if bins <= 0 {
		return nil
	}
	histogram := make([]int, bins)
	width := 360 / float64(bins)
	for _, p := range d.LocationPoints() {
		deg, ok := p.RelativeBearingInDegrees()
		if !ok {
			continue
		}
		bin := int((deg + 180) / width)
		if bin >= bins {
			bin = bins - 1
		}
		if bin < 0 {
			bin = 0
		}
		histogram[bin]++
	}
	return histogram
}

// PolarEntry is one tack's mean relative bearing against its mean velocity.
type PolarEntry struct {
	TackIndex              int         `json:"tackIndex"`
	PointOfSail            PointOfSail `json:"pointOfSail"`
	RelativeBearingDegrees float64     `json:"relativeBearingDegrees"`
	VelocityKnots          float64     `json:"velocityKnots"`
}

// TackPolar lists the tacks that have both a relative bearing and a velocity.
func (d *Data) TackPolar() []PolarEntry {
	var entries []PolarEntry
	for i, t := range d.TackList {
		rel, okRel := t.RelativeBearingInDegrees()
		v, okV := t.Velocity()
		if !okRel || !okV {
			continue
		}
		entries = append(entries, PolarEntry{
			TackIndex:              i,
			PointOfSail:            t.PointOfSail,
			RelativeBearingDegrees: common.DecimalToFixed(rel, 1),
			VelocityKnots:          common.DecimalToFixed(v, 2),
		})
	}
	return entries
}
