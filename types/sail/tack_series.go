package sail

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rotblauer/sailtrack/common"
	"github.com/shopspring/decimal"
)

// TackSeries is a contiguous run of tacks alternating between port and starboard.
// It estimates the wind direction from the courses sailed, assuming every tack
// in the series was sailed equally close to the wind.
//
// Bearings and velocities are accumulated per side, each weighted by the main-part
// great-circle distance of the tack folded in, so long stable tacks count more
// than short noisy ones.
type TackSeries struct {
	StartTackIndex int
	EndTackIndex   int
	Tacks          []*Tack

	MainPartBearingStarboard  common.CircularAccumulator
	MainPartBearingPort       common.CircularAccumulator
	MainPartVelocityStarboard common.WeightedAccumulator
	MainPartVelocityPort      common.WeightedAccumulator
}

func NewTackSeries(startAndEndTackIndex int) *TackSeries {
	return &TackSeries{
		StartTackIndex: startAndEndTackIndex,
		EndTackIndex:   startAndEndTackIndex,
	}
}

// AddTack folds a tack into the series. Tacks without main points, or whose main part
// does not move, extend the series but carry no weight.
func (ts *TackSeries) AddTack(tack *Tack, tackIndex int) {
	ts.Tacks = append(ts.Tacks, tack)
	ts.EndTackIndex = tackIndex

	if !tack.HasMainPoints() || !tack.PointOfSail.HasSide() {
		return
	}
	distance, _ := tack.Length()
	bearing, ok := tack.MainPartBearing()
	if !ok {
		return
	}
	velocity, _ := tack.MainPartVelocity()

	if tack.PointOfSail.IsPort() {
		ts.MainPartBearingPort.Add(bearing, distance)
		ts.MainPartVelocityPort.Add(velocity, distance)
		return
	}
	ts.MainPartBearingStarboard.Add(bearing, distance)
	ts.MainPartVelocityStarboard.Add(velocity, distance)
}

func (ts *TackSeries) NumberOfTacks() int {
	return ts.EndTackIndex - ts.StartTackIndex + 1
}

func (ts *TackSeries) WeightSumStarboard() float64 { return ts.MainPartBearingStarboard.WeightSum }

func (ts *TackSeries) WeightSumPort() float64 { return ts.MainPartBearingPort.WeightSum }

// AverageBearingStarboard is the weighted mean course on starboard tacks, radians [0, 2π).
func (ts *TackSeries) AverageBearingStarboard() (float64, bool) {
	return ts.MainPartBearingStarboard.Mean()
}

// AverageBearingPort is the weighted mean course on port tacks, radians [0, 2π).
func (ts *TackSeries) AverageBearingPort() (float64, bool) {
	return ts.MainPartBearingPort.Mean()
}

// AverageWindDirection bisects the average port and starboard courses, radians [0, 2π).
// The plain bisector lands opposite the wind when the two courses straddle the 0/2π
// seam (they are more than π apart); it is turned by π in that case.
func (ts *TackSeries) AverageWindDirection() (float64, bool) {
	port, okPort := ts.AverageBearingPort()
	starboard, okStarboard := ts.AverageBearingStarboard()
	if !okPort || !okStarboard {
		return 0, false
	}
	result := (port + starboard) / 2
	if math.Abs(port-starboard) > math.Pi {
		result += math.Pi
	}
	return common.NormalizeRadians(result), true
}

func (ts *TackSeries) AverageWindDirectionInDegrees() (int, bool) {
	wind, ok := ts.AverageWindDirection()
	if !ok {
		return 0, false
	}
	return int(common.RadiansToDegrees(wind)), true
}

// AverageAngleToWind is the wind direction minus the average starboard course,
// radians [0, 2π).
func (ts *TackSeries) AverageAngleToWind() (float64, bool) {
	wind, ok := ts.AverageWindDirection()
	if !ok {
		return 0, false
	}
	starboard, _ := ts.AverageBearingStarboard()
	return common.NormalizeRadians(wind - starboard), true
}

func (ts *TackSeries) AverageAngleToWindInDegrees() (int, bool) {
	angle, ok := ts.AverageAngleToWind()
	if !ok {
		return 0, false
	}
	return int(common.RadiansToDegrees(angle)), true
}

// AverageMainPartVelocityStarboard is in knots.
func (ts *TackSeries) AverageMainPartVelocityStarboard() (float64, bool) {
	return ts.MainPartVelocityStarboard.Mean()
}

// AverageMainPartVelocityPort is in knots.
func (ts *TackSeries) AverageMainPartVelocityPort() (float64, bool) {
	return ts.MainPartVelocityPort.Mean()
}

func (ts *TackSeries) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Tack series containing tacks %d to %d", ts.StartTackIndex, ts.EndTackIndex))
	if wind, ok := ts.AverageWindDirection(); ok {
		sb.WriteString(", wind direction: " + decimal.NewFromFloat(common.RadiansToDegrees(wind)).StringFixed(0))
	}
	if angle, ok := ts.AverageAngleToWind(); ok {
		sb.WriteString(", angle to wind: " + decimal.NewFromFloat(common.RadiansToDegrees(angle)).StringFixed(0))
	}
	if v, ok := ts.AverageMainPartVelocityStarboard(); ok {
		sb.WriteString(", main part velocity starboard: " + decimal.NewFromFloat(v).StringFixed(1))
	}
	if v, ok := ts.AverageMainPartVelocityPort(); ok {
		sb.WriteString(", main part velocity port: " + decimal.NewFromFloat(v).StringFixed(1))
	}
	return sb.String()
}

// TackSeriesSummary is the read-only view of a series handed to presentation and export.
type TackSeriesSummary struct {
	StartTackIndex          int      `json:"startTackIndex"`
	EndTackIndex            int      `json:"endTackIndex"`
	NumberOfTacks           int      `json:"numberOfTacks"`
	WindDirectionDegrees    *int     `json:"windDirectionDegrees,omitempty"`
	AngleToWindDegrees      *int     `json:"angleToWindDegrees,omitempty"`
	VelocityStarboardKnots  *float64 `json:"velocityStarboardKnots,omitempty"`
	VelocityPortKnots       *float64 `json:"velocityPortKnots,omitempty"`
	BearingStarboardDegrees *float64 `json:"bearingStarboardDegrees,omitempty"`
	BearingPortDegrees      *float64 `json:"bearingPortDegrees,omitempty"`
}

func (ts *TackSeries) Summary() TackSeriesSummary {
	s := TackSeriesSummary{
		StartTackIndex: ts.StartTackIndex,
		EndTackIndex:   ts.EndTackIndex,
		NumberOfTacks:  ts.NumberOfTacks(),
	}
	if wind, ok := ts.AverageWindDirectionInDegrees(); ok {
		s.WindDirectionDegrees = &wind
	}
	if angle, ok := ts.AverageAngleToWindInDegrees(); ok {
		s.AngleToWindDegrees = &angle
	}
	if v, ok := ts.AverageMainPartVelocityStarboard(); ok {
		s.VelocityStarboardKnots = common.Float64Ptr(common.DecimalToFixed(v, 2))
	}
	if v, ok := ts.AverageMainPartVelocityPort(); ok {
		s.VelocityPortKnots = common.Float64Ptr(common.DecimalToFixed(v, 2))
	}
	if b, ok := ts.AverageBearingStarboard(); ok {
		s.BearingStarboardDegrees = common.Float64Ptr(common.DecimalToFixed(common.RadiansToDegrees(b), 1))
	}
	if b, ok := ts.AverageBearingPort(); ok {
		s.BearingPortDegrees = common.Float64Ptr(common.DecimalToFixed(common.RadiansToDegrees(b), 1))
	}
	return s
}

// MarshalJSON implements the json.Marshaler interface.
func (ts *TackSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Summary())
}
