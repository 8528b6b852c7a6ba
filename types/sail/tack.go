package sail

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/shopspring/decimal"
)

// Tack is a maximal run of consecutive located points sailed on one point of sail.
//
// StartIndex and EndIndex (inclusive) index the located-point sequence the tack was
// cut from, maneuver transitions included. The main part, StartOfTackDataPointIndex
// to EndOfTackDataPointIndex, narrows that range by the tack extension on each side
// to leave out the turning transient. Aggregates are taken over the main part only.
//
// A Tack shares the located-point slice; it never copies or owns points.
type Tack struct {
	StartIndex int
	EndIndex   int

	StartOfTackDataPointIndex int
	EndOfTackDataPointIndex   int

	PointOfSail PointOfSail

	points datapoint.DataPoints
}

// NewTack cuts a tack from the located points, start and end inclusive,
// and classifies its point of sail.
func NewTack(points datapoint.DataPoints, start, end, extension int) *Tack {
	t := &Tack{
		StartIndex:                start,
		EndIndex:                  end,
		StartOfTackDataPointIndex: start + extension,
		EndOfTackDataPointIndex:   end - extension,
		points:                    points,
	}
	t.PointOfSail = PointOfSailUnknown
	if rel, ok := t.RelativeBearing(); ok {
		t.PointOfSail = PointOfSailFromRelativeBearing(rel)
	}
	return t
}

// HasMainPoints is true when the narrowed main range is non-empty.
func (t *Tack) HasMainPoints() bool {
	return t.StartOfTackDataPointIndex <= t.EndOfTackDataPointIndex
}

// Points returns the tack's points, maneuvers included.
func (t *Tack) Points() datapoint.DataPoints {
	return t.points[t.StartIndex : t.EndIndex+1]
}

// MainPoints returns the points of the main part, or nil.
func (t *Tack) MainPoints() datapoint.DataPoints {
	if !t.HasMainPoints() {
		return nil
	}
	return t.points[t.StartOfTackDataPointIndex : t.EndOfTackDataPointIndex+1]
}

func (t *Tack) Start() *datapoint.DataPoint { return t.points[t.StartIndex] }

func (t *Tack) End() *datapoint.DataPoint { return t.points[t.EndIndex] }

// AfterStartManeuver is the first main point, or nil.
func (t *Tack) AfterStartManeuver() *datapoint.DataPoint {
	if !t.HasMainPoints() {
		return nil
	}
	return t.points[t.StartOfTackDataPointIndex]
}

// BeforeEndManeuver is the last main point, or nil.
func (t *Tack) BeforeEndManeuver() *datapoint.DataPoint {
	if !t.HasMainPoints() {
		return nil
	}
	return t.points[t.EndOfTackDataPointIndex]
}

// RelativeBearing is the circular mean relative bearing of the main points,
// radians in (−π, π].
func (t *Tack) RelativeBearing() (float64, bool) {
	acc := common.CircularAccumulator{}
	for _, p := range t.MainPoints() {
		if p.RelativeBearing != nil {
			acc.Add(*p.RelativeBearing, 1)
		}
	}
	mean, ok := acc.Mean()
	if !ok {
		return 0, false
	}
	return common.NormalizeSignedRadians(mean), true
}

func (t *Tack) RelativeBearingInDegrees() (float64, bool) {
	rel, ok := t.RelativeBearing()
	if !ok {
		return 0, false
	}
	return common.RadiansToDegrees(rel), true
}

// Velocity is the mean point velocity over the main part, knots.
func (t *Tack) Velocity() (float64, bool) {
	velocities := make([]float64, 0, len(t.MainPoints()))
	for _, p := range t.MainPoints() {
		if p.Velocity != nil {
			velocities = append(velocities, *p.Velocity)
		}
	}
	mean, err := stats.Float64Data(velocities).Mean()
	if err != nil || math.IsNaN(mean) {
		return 0, false
	}
	return mean, true
}

// Duration spans the whole tack, maneuvers included.
func (t *Tack) Duration() time.Duration {
	return time.Duration(t.End().Time-t.Start().Time) * time.Millisecond
}

// MainPartDuration spans the main part.
func (t *Tack) MainPartDuration() (time.Duration, bool) {
	if !t.HasMainPoints() {
		return 0, false
	}
	return time.Duration(t.BeforeEndManeuver().Time-t.AfterStartManeuver().Time) * time.Millisecond, true
}

// Length is the great-circle distance between the first and last main point, meters.
func (t *Tack) Length() (float64, bool) {
	if !t.HasMainPoints() {
		return 0, false
	}
	return t.AfterStartManeuver().DistanceTo(t.BeforeEndManeuver()), true
}

// MainPartBearing is the great-circle bearing from the first to the last main point.
// It is unknown when the main part does not move.
func (t *Tack) MainPartBearing() (float64, bool) {
	length, ok := t.Length()
	if !ok || length == 0 {
		return 0, false
	}
	return t.AfterStartManeuver().BearingTo(t.BeforeEndManeuver()), true
}

// MainPartVelocity is the straight-line speed over the main part, knots.
func (t *Tack) MainPartVelocity() (float64, bool) {
	if !t.HasMainPoints() {
		return 0, false
	}
	return t.BeforeEndManeuver().VelocityInKnotsBetween(t.AfterStartManeuver()), true
}

// Label is a short human description, eg. "CloseHauledPort 14:02:11, 5.4 kts, 42°".
func (t *Tack) Label() string {
	label := fmt.Sprintf("%s %s", t.PointOfSail, t.Start().TimeAt().UTC().Format(time.TimeOnly))
	if v, ok := t.Velocity(); ok {
		label += ", " + decimal.NewFromFloat(v).StringFixed(1) + " kts"
	}
	if rel, ok := t.RelativeBearingInDegrees(); ok {
		label += ", " + decimal.NewFromFloat(rel).StringFixed(0) + "°"
	}
	return label
}

func (t *Tack) String() string {
	return fmt.Sprintf("Tack %d-%d (main %d-%d) %s",
		t.StartIndex, t.EndIndex, t.StartOfTackDataPointIndex, t.EndOfTackDataPointIndex, t.PointOfSail)
}

// TackSummary is the read-only view of a tack handed to presentation and export.
type TackSummary struct {
	StartIndex                int         `json:"startIndex"`
	EndIndex                  int         `json:"endIndex"`
	StartOfTackDataPointIndex int         `json:"startOfTackDataPointIndex"`
	EndOfTackDataPointIndex   int         `json:"endOfTackDataPointIndex"`
	PointOfSail               PointOfSail `json:"pointOfSail"`
	HasMainPoints             bool        `json:"hasMainPoints"`
	StartTime                 time.Time   `json:"startTime"`
	EndTime                   time.Time   `json:"endTime"`
	DurationSeconds           float64     `json:"durationSeconds"`
	RelativeBearingDegrees    *float64    `json:"relativeBearingDegrees,omitempty"`
	VelocityKnots             *float64    `json:"velocityKnots,omitempty"`
	LengthMeters              *float64    `json:"lengthMeters,omitempty"`
	Label                     string      `json:"label"`
}

func (t *Tack) Summary() TackSummary {
	s := TackSummary{
		StartIndex:                t.StartIndex,
		EndIndex:                  t.EndIndex,
		StartOfTackDataPointIndex: t.StartOfTackDataPointIndex,
		EndOfTackDataPointIndex:   t.EndOfTackDataPointIndex,
		PointOfSail:               t.PointOfSail,
		HasMainPoints:             t.HasMainPoints(),
		StartTime:                 t.Start().TimeAt().UTC(),
		EndTime:                   t.End().TimeAt().UTC(),
		DurationSeconds:           t.Duration().Seconds(),
		Label:                     t.Label(),
	}
	if rel, ok := t.RelativeBearingInDegrees(); ok {
		s.RelativeBearingDegrees = common.Float64Ptr(common.DecimalToFixed(rel, 1))
	}
	if v, ok := t.Velocity(); ok {
		s.VelocityKnots = common.Float64Ptr(common.DecimalToFixed(v, 2))
	}
	if l, ok := t.Length(); ok {
		s.LengthMeters = common.Float64Ptr(math.Round(l))
	}
	return s
}

// MarshalJSON implements the json.Marshaler interface.
func (t *Tack) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Summary())
}

// Feature returns the tack as a GeoJSON LineString feature with its summary as properties.
func (t *Tack) Feature() *geojson.Feature {
	ls := make(orb.LineString, 0, t.EndIndex-t.StartIndex+1)
	for _, p := range t.Points() {
		ls = append(ls, p.Point())
	}
	f := geojson.NewFeature(ls)
	s := t.Summary()
	f.Properties["PointOfSail"] = s.PointOfSail.String()
	f.Properties["HasMainPoints"] = s.HasMainPoints
	f.Properties["Time_Start_Unix"] = s.StartTime.Unix()
	f.Properties["Time_End_Unix"] = s.EndTime.Unix()
	f.Properties["Duration"] = s.DurationSeconds
	f.Properties["Label"] = s.Label
	if s.RelativeBearingDegrees != nil {
		f.Properties["RelativeBearing"] = *s.RelativeBearingDegrees
	}
	if s.VelocityKnots != nil {
		f.Properties["Velocity"] = *s.VelocityKnots
	}
	if s.LengthMeters != nil {
		f.Properties["Length"] = *s.LengthMeters
	}
	return f
}
