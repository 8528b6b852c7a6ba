package interpolate

import (
	"math"
	"testing"

	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/testing/testdata"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

func TestLocations_LinearInTime(t *testing.T) {
	a := &datapoint.DataPoint{Time: 1000, Location: &datapoint.Location{Latitude: 54, Longitude: 10}}
	b := &datapoint.DataPoint{Time: 5000, Location: &datapoint.Location{Latitude: 54.4, Longitude: 10.8}}
	points := datapoint.DataPoints{
		{Time: 500},
		a,
		{Time: 2000},
		{Time: 4000},
		b,
		{Time: 6000},
	}
	n := Locations(points)
	if n != 2 {
		t.Errorf("have %v want %v", n, 2)
	}
	if points[0].HasLocation() || points[5].HasLocation() {
		t.Error("extrapolated beyond the fixes")
	}
	cases := []struct {
		i        int
		lat, lon float64
	}{
		{2, 54.1, 10.2},
		{3, 54.3, 10.6},
	}
	for _, c := range cases {
		loc := points[c.i].Location
		if math.Abs(loc.Latitude-c.lat) > 1e-9 || math.Abs(loc.Longitude-c.lon) > 1e-9 {
			t.Errorf("point %d: have %v,%v want %v,%v", c.i, loc.Latitude, loc.Longitude, c.lat, c.lon)
		}
		if !loc.Interpolated {
			t.Errorf("point %d not marked interpolated", c.i)
		}
	}
	if a.Location.Interpolated || b.Location.Interpolated {
		t.Error("fix marked interpolated")
	}
}

func TestLocations_SameTimeFixes(t *testing.T) {
	points := datapoint.DataPoints{
		{Time: 1000, Location: &datapoint.Location{Latitude: 1, Longitude: 1}},
		{Time: 1000},
		{Time: 1000, Location: &datapoint.Location{Latitude: 2, Longitude: 2}},
	}
	Locations(points)
	if loc := points[1].Location; loc == nil || loc.Latitude != 1 {
		t.Errorf("have %+v want the earlier fix", loc)
	}
}

func TestLocations_TrackBearings(t *testing.T) {
	c := testdata.StraightWithTurn(12, 0, 90)
	c.LocateEvery = 2
	points := c.Points()
	Locations(points)
	if points[0].Location.BearingFromLatLong != nil {
		t.Error("first point has a track bearing")
	}
	for i := 1; i < 5; i++ {
		b := points[i].Location.BearingFromLatLong
		if b == nil || common.AngleDifference(*b, 0) > 1e-3 {
			t.Errorf("point %d: have %v want 0", i, b)
		}
	}
	last := points[len(points)-2].Location.BearingFromLatLong
	if last == nil || common.AngleDifference(*last, math.Pi/2) > 1e-3 {
		t.Errorf("have %v want π/2", last)
	}
}

func TestTrackBearings_StationaryKeepsBearing(t *testing.T) {
	points := datapoint.DataPoints{
		{Time: 0, Location: &datapoint.Location{Latitude: 54, Longitude: 10}},
		{Time: 1, Location: &datapoint.Location{Latitude: 54.001, Longitude: 10}},
		{Time: 2, Location: &datapoint.Location{Latitude: 54.001, Longitude: 10}},
	}
	TrackBearings(points)
	b := points[2].Location.BearingFromLatLong
	if b == nil || common.AngleDifference(*b, 0) > 1e-9 {
		t.Errorf("have %v want 0", b)
	}
}

func TestLocations_NoFixes(t *testing.T) {
	points := datapoint.DataPoints{{Time: 1}, {Time: 2}}
	if n := Locations(points); n != 0 {
		t.Errorf("have %v want %v", n, 0)
	}
	if points[0].HasLocation() {
		t.Error("located without fixes")
	}
}

func TestLocations_Recomputes(t *testing.T) {
	points := datapoint.DataPoints{
		{Time: 1000, Location: &datapoint.Location{Latitude: 54, Longitude: 10}},
		{Time: 2000},
		{Time: 3000, Location: &datapoint.Location{Latitude: 54.2, Longitude: 10}},
	}
	Locations(points)
	// The point moved in time, eg. by a later time correction.
	points[1].Time = 1500
	if n := Locations(points); n != 1 {
		t.Errorf("have %v want %v", n, 1)
	}
	if lat := points[1].Location.Latitude; math.Abs(lat-54.05) > 1e-9 {
		t.Errorf("have %v want %v", lat, 54.05)
	}
}
