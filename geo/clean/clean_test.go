package clean

import (
	"context"
	"testing"

	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/stream"
	"github.com/rotblauer/sailtrack/testing/testdata"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

func TestNewDedupeFunc(t *testing.T) {
	pass := NewDedupeFunc(10)
	a := &datapoint.DataPoint{Time: 1000, Acceleration: &datapoint.Acceleration{Z: 9.8}}
	b := &datapoint.DataPoint{Time: 1000, Acceleration: &datapoint.Acceleration{Z: 9.8}}
	c := &datapoint.DataPoint{Time: 1001, Acceleration: &datapoint.Acceleration{Z: 9.8}}
	if !pass(a) {
		t.Error("first point deduped")
	}
	if pass(b) {
		t.Error("replayed point passed")
	}
	if !pass(c) {
		t.Error("later point deduped")
	}
}

func TestFilterValid(t *testing.T) {
	cases := []struct {
		name         string
		p            *datapoint.DataPoint
		want         bool
		wantLocation bool
	}{
		{"no time", &datapoint.DataPoint{Location: &datapoint.Location{Latitude: 54, Longitude: 10}}, false, true},
		{"located", &datapoint.DataPoint{Time: 1, Location: &datapoint.Location{Latitude: 54, Longitude: 10}}, true, true},
		{"null island", &datapoint.DataPoint{Time: 1, Location: &datapoint.Location{}}, false, false},
		{"bad latitude keeps sensors", &datapoint.DataPoint{Time: 1,
			Location:     &datapoint.Location{Latitude: 91, Longitude: 10},
			Acceleration: &datapoint.Acceleration{Z: 9.8}}, true, false},
		{"empty", &datapoint.DataPoint{Time: 1}, false, false},
	}
	for _, c := range cases {
		if have := FilterValid(c.p); have != c.want {
			t.Errorf("%s: have %v want %v", c.name, have, c.want)
		}
		if c.want && c.p.HasLocation() != c.wantLocation {
			t.Errorf("%s: have location %v want %v", c.name, c.p.HasLocation(), c.wantLocation)
		}
	}
}

func TestTeleportationFilter(t *testing.T) {
	c := testdata.StraightWithTurn(10, 90, 0)
	points := c.Points()
	// A fix 1° of latitude away, one second later.
	points[5].Location.Latitude += 1
	points[6].Acceleration = &datapoint.Acceleration{Z: 9.8}
	points[6].Location.Latitude += 1

	ctx := context.Background()
	out := stream.Collect(ctx, TeleportationFilter(ctx, params.DefaultCleanConfig.MaxSpeedKnots, stream.Slice(ctx, points)))
	if len(out) != 9 {
		t.Fatalf("have %d points want 9", len(out))
	}
	if out[5] != points[6] || out[5].HasLocation() {
		t.Errorf("jumped fix with a sensor reading should stay without location")
	}
	for i, p := range out {
		if i != 5 && !p.HasLocation() {
			t.Errorf("point %d lost its location", i)
		}
	}
}

func TestClean(t *testing.T) {
	c := testdata.StraightWithTurn(10, 90, 45)
	points := c.Points()
	withReplay := append(datapoint.DataPoints{}, points...)
	withReplay = append(withReplay, points[7].Copy(), points[8].Copy(), &datapoint.DataPoint{})

	ctx := context.Background()
	out := stream.Collect(ctx, Clean(ctx, nil, stream.Slice(ctx, withReplay)))
	if len(out) != len(points) {
		t.Errorf("have %d points want %d", len(out), len(points))
	}
}
