package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/testing/testdata"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/sail"
)

func near(a, b r3.Vector) bool {
	return a.Sub(b).Norm() < 1e-3
}

func TestAnalyzer_Run_HeelingBeat(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelWarn + 1)()

	data := newTestData()
	a := NewAnalyzer(nil)
	if err := a.Run(data, testWind); err != nil {
		t.Fatal(err)
	}

	points := data.AllPoints()
	if have, want := points[0].Time, testdata.DefaultCourse.StartTime; have != want {
		t.Errorf("have first time %v want GPS time %v", have, want)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Time < points[i-1].Time {
			t.Fatalf("point %d goes back in time", i)
		}
	}
	// The last sample comes after the last fix and stays unlocated.
	if have, want := len(data.LocationPoints()), len(points)-1; have != want {
		t.Errorf("have %v located points want %v", have, want)
	}

	if len(data.TackList) != testLegs {
		t.Fatalf("have %v tacks want %v", len(data.TackList), testLegs)
	}
	for i, tack := range data.TackList {
		want := sail.CloseHauledStarboard
		if i%2 == 1 {
			want = sail.CloseHauledPort
		}
		if tack.PointOfSail != want {
			t.Errorf("tack %d: have %v want %v", i, tack.PointOfSail, want)
		}
	}

	if len(data.TackSeriesList) != 1 {
		t.Fatalf("have %v series want 1", len(data.TackSeriesList))
	}
	series := data.TackSeriesList[0]
	if series.NumberOfTacks() != testLegs {
		t.Errorf("have %v tacks in series want %v", series.NumberOfTacks(), testLegs)
	}
	wind, ok := series.AverageWindDirection()
	if !ok {
		t.Fatal("no wind direction")
	}
	if d := common.RadiansToDegrees(common.AngleDifference(wind, common.DegreesToRadians(testWind))); d > 0.5 {
		t.Errorf("have wind %v want %v", common.RadiansToDegrees(wind), testWind)
	}
	// Measured from the starboard course round to the wind.
	angle, ok := series.AverageAngleToWindInDegrees()
	if !ok || angle < 319 || angle > 320 {
		t.Errorf("have angle to wind %v %v want 320", angle, ok)
	}

	cs := data.DeviceOrientation
	if cs == nil {
		t.Fatal("device orientation unresolved")
	}
	mount := testdata.FlatMount
	if !near(cs.Down, mount.Down) || !near(cs.Right, mount.Right) || !near(cs.Front, mount.Front) {
		t.Errorf("have %+v want %+v", *cs, mount)
	}
	roll := points[10].Acceleration.Roll
	if roll == nil || math.Abs(common.RadiansToDegrees(*roll)+testHeel) > 0.01 {
		t.Errorf("have roll %v want %v", roll, -testHeel)
	}
}

func TestAnalyzer_Run_NewWind(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelWarn + 1)()

	data := newTestData()
	a := NewAnalyzer(nil)
	if err := a.Run(data, testWind); err != nil {
		t.Fatal(err)
	}
	firstTime := data.AllPoints()[0].Time

	if err := a.Run(data, 90); err != nil {
		t.Fatal(err)
	}
	if have := data.AllPoints()[0].Time; have != firstTime {
		t.Errorf("re-run corrected time again: have %v want %v", have, firstTime)
	}
	if a.Runs() != 2 {
		t.Errorf("have %v runs want 2", a.Runs())
	}
	if len(data.TackList) != testLegs {
		t.Fatalf("have %v tacks want %v", len(data.TackList), testLegs)
	}
	// 40° and 320° against a wind from 90° are close hauled and broad reaching on port.
	for i, tack := range data.TackList {
		want := sail.CloseHauledPort
		if i%2 == 1 {
			want = sail.BroadReachPort
		}
		if tack.PointOfSail != want {
			t.Errorf("tack %d: have %v want %v", i, tack.PointOfSail, want)
		}
	}
	// Each close hauled tack is a series of its own, cut by the reaches.
	if len(data.TackSeriesList) != testLegs/2 {
		t.Fatalf("have %v series want %v", len(data.TackSeriesList), testLegs/2)
	}
	for i, ts := range data.TackSeriesList {
		if ts.NumberOfTacks() != 1 || ts.StartTackIndex != 2*i {
			t.Errorf("series %d: have tacks %d-%d", i, ts.StartTackIndex, ts.EndTackIndex)
		}
		if _, ok := ts.AverageWindDirection(); ok {
			t.Errorf("series %d: have a wind direction from one side", i)
		}
	}
	// All on one side, so the heel cannot tell port from starboard.
	if data.DeviceOrientation != nil {
		t.Errorf("have orientation %+v want unresolved", *data.DeviceOrientation)
	}
	if roll := data.AllPoints()[10].Acceleration.Roll; roll != nil {
		t.Errorf("have stale roll %v", *roll)
	}
}

func TestAnalyzer_Run_AddedPointsPrepareAgain(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelWarn + 1)()

	c := heelingBeat()
	points := c.Points()
	data := sail.NewData(points[:90])
	a := NewAnalyzer(nil)
	if err := a.Run(data, testWind); err != nil {
		t.Fatal(err)
	}
	for _, p := range points[90:] {
		data.Add(p)
	}
	if data.Prepared() {
		t.Fatal("added points left the data prepared")
	}
	if err := a.Run(data, testWind); err != nil {
		t.Fatal(err)
	}
	last := data.AllPoints()[len(points)-1]
	if want := *points[len(points)-2].Location.SatelliteTime + c.IntervalMillis; last.Time != want {
		t.Errorf("have last time %v want %v", last.Time, want)
	}
	if len(data.TackList) != testLegs {
		t.Errorf("have %v tacks want %v", len(data.TackList), testLegs)
	}
}

func TestAnalyzer_Run_NoLocations(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelWarn + 1)()

	points := heelingBeat().Points()
	for _, p := range points {
		p.Location = nil
	}
	data := sail.NewData(points)
	if err := NewAnalyzer(nil).Run(data, testWind); err != nil {
		t.Fatal(err)
	}
	if len(data.LocationPoints()) != 0 {
		t.Errorf("have %v located points", len(data.LocationPoints()))
	}
	if data.TackList == nil || len(data.TackList) != 0 {
		t.Errorf("have tacks %v want empty", data.TackList)
	}
	if data.TackSeriesList == nil || len(data.TackSeriesList) != 0 {
		t.Errorf("have series %v want empty", data.TackSeriesList)
	}
	if data.DeviceOrientation != nil {
		t.Error("resolved orientation without locations")
	}
	for i, p := range data.AllPoints() {
		if p.Velocity != nil || p.Bearing != nil || p.RelativeBearing != nil {
			t.Fatalf("point %d has derived values", i)
		}
	}
}

func TestAnalyzer_Run_InvalidWind(t *testing.T) {
	data := sail.NewData(datapoint.DataPoints{})
	a := NewAnalyzer(nil)
	for _, wind := range []float64{-1, 360, math.NaN(), math.Inf(1)} {
		if err := a.Run(data, wind); !errors.Is(err, ErrInvalidWind) {
			t.Errorf("wind %v: have %v want %v", wind, err, ErrInvalidWind)
		}
	}
	if a.Runs() != 0 {
		t.Errorf("have %v runs want 0", a.Runs())
	}
}

func TestAnalyzer_Timings(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelWarn + 1)()

	a := NewAnalyzer(nil)
	if err := a.Run(newTestData(), testWind); err != nil {
		t.Fatal(err)
	}
	timings := a.Timings()
	for _, stage := range Stages {
		if _, ok := timings[stage]; !ok {
			t.Errorf("missing timing for %s", stage)
		}
	}
	if a.Registry().Get("analysis/"+StageTacks) == nil {
		t.Error("stage timer not registered")
	}
}

func TestNewReport(t *testing.T) {
	defer common.SlogResetLevel(slog.LevelWarn + 1)()

	data := newTestData()
	data.Comment = "beat"
	if err := NewAnalyzer(nil).Run(data, testWind); err != nil {
		t.Fatal(err)
	}
	r := NewReport(data, testWind, 36)
	if len(r.Tacks) != testLegs || len(r.TackSeries) != 1 {
		t.Errorf("have %v tacks and %v series", len(r.Tacks), len(r.TackSeries))
	}
	if r.Comment != "beat" {
		t.Errorf("have %q want %q", r.Comment, "beat")
	}
	related := 0
	for _, p := range data.LocationPoints() {
		if p.RelativeBearing != nil {
			related++
		}
	}
	sum := 0
	for _, n := range r.Histogram {
		sum += n
	}
	if len(r.Histogram) != 36 || sum != related {
		t.Errorf("have %d bins counting %d want 36 counting %d", len(r.Histogram), sum, related)
	}
	if len(r.Polar) != testLegs {
		t.Errorf("have %v polar entries want %v", len(r.Polar), testLegs)
	}
	if _, err := json.Marshal(r); err != nil {
		t.Fatal(err)
	}

	fc := TacksFeatureCollection(data)
	if len(fc.Features) != testLegs {
		t.Fatalf("have %v features want %v", len(fc.Features), testLegs)
	}
	for i, f := range fc.Features {
		if f.ID != i {
			t.Errorf("have id %v want %v", f.ID, i)
		}
	}
}
