package tackdetector

import (
	"math"
	"testing"

	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/geo/velocity"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/testing/testdata"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/sail"
)

func analyzed(c testdata.Course, windDegrees float64) datapoint.DataPoints {
	points := c.Points()
	velocity.Analyze(points, common.DegreesToRadians(windDegrees))
	return points
}

func TestDetect_SingleTurn(t *testing.T) {
	points := analyzed(testdata.StraightWithTurn(60, 10, 90), 320)
	tacks := Detect(points, params.DefaultTackDetectorConfig)
	if len(tacks) != 2 {
		t.Fatalf("have %v tacks want 2", len(tacks))
	}
	boundary := tacks[1].StartIndex
	if d := boundary - 30; d < -params.DefaultTackDetectorConfig.TackExtension || d > params.DefaultTackDetectorConfig.TackExtension {
		t.Errorf("have boundary %v want 30±%d", boundary, params.DefaultTackDetectorConfig.TackExtension)
	}
	if tacks[0].StartIndex != 0 || tacks[1].EndIndex != 59 || tacks[0].EndIndex+1 != tacks[1].StartIndex {
		t.Errorf("tacks do not cover the track: %v, %v", tacks[0], tacks[1])
	}
	for _, tack := range tacks {
		if !tack.HasMainPoints() {
			t.Errorf("%v has no main points", tack)
		}
	}
	// 10° against a wind of 320° is 50° to starboard, 100° is 140°.
	if tacks[0].PointOfSail != sail.CloseHauledStarboard {
		t.Errorf("have %v want %v", tacks[0].PointOfSail, sail.CloseHauledStarboard)
	}
	if tacks[1].PointOfSail != sail.BroadReachStarboard {
		t.Errorf("have %v want %v", tacks[1].PointOfSail, sail.BroadReachStarboard)
	}
}

func TestCandidates_PeakAtTurn(t *testing.T) {
	points := analyzed(testdata.StraightWithTurn(60, 10, 90), 0)
	candidates := Candidates(points, params.DefaultTackDetectorConfig)
	if len(candidates) != 1 {
		t.Fatalf("have %v want 1 candidate: %+v", len(candidates), candidates)
	}
	c := candidates[0]
	if c.Index != 30 {
		t.Errorf("have index %v want 30", c.Index)
	}
	// Two unit vectors 90° apart average to cos(45°).
	if math.Abs(c.Score-(1-math.Sqrt2/2)) > 1e-3 {
		t.Errorf("have score %v want %v", c.Score, 1-math.Sqrt2/2)
	}
}

func TestDetect_Beat(t *testing.T) {
	points := analyzed(testdata.Beat(6, 30, 0, 40, 0), 0)
	tacks := Detect(points, nil)
	if len(tacks) != 6 {
		t.Fatalf("have %v tacks want 6", len(tacks))
	}
	for i, tack := range tacks {
		want := sail.CloseHauledStarboard
		if i%2 == 1 {
			want = sail.CloseHauledPort
		}
		if tack.PointOfSail != want {
			t.Errorf("tack %d: have %v want %v", i, tack.PointOfSail, want)
		}
		if i > 0 && tack.StartIndex != tacks[i-1].EndIndex+1 {
			t.Errorf("tack %d does not follow tack %d", i, i-1)
		}
	}
}

func TestDetect_Degenerate(t *testing.T) {
	if tacks := Detect(nil, nil); tacks == nil || len(tacks) != 0 {
		t.Errorf("have %v want empty tacks", tacks)
	}

	ext := params.DefaultTackDetectorConfig.TackExtension
	points := analyzed(testdata.StraightWithTurn(2*ext-1, 0, 90), 0)
	tacks := Detect(points, nil)
	if len(tacks) != 1 {
		t.Fatalf("have %v want 1 tack", len(tacks))
	}
	if tacks[0].HasMainPoints() {
		t.Error("short track has main points")
	}
	if tacks[0].StartIndex != 0 || tacks[0].EndIndex != 2*ext-2 {
		t.Errorf("have %v", tacks[0])
	}
}

func TestDetect_JitterDoesNotSplit(t *testing.T) {
	points := analyzed(testdata.StraightWithTurn(80, 0, 0), 0)
	for i, p := range points {
		jitter := 8.0
		if i%3 == 0 {
			jitter = -8
		}
		p.Bearing = common.Float64Ptr(common.NormalizeRadians(common.DegreesToRadians(jitter)))
	}
	if tacks := Detect(points, nil); len(tacks) != 1 {
		t.Errorf("have %v tacks want 1", len(tacks))
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name       string
		candidates []Maneuver
		n          int
		want       []int
	}{
		{
			name:       "short detour merged",
			candidates: []Maneuver{{Index: 30, Score: 0.29}, {Index: 36, Score: 0.2}},
			n:          66,
			want:       []int{30},
		},
		{
			name:       "weaker wins when stronger is squeezed",
			candidates: []Maneuver{{Index: 5, Score: 0.4}, {Index: 20, Score: 0.2}},
			n:          40,
			want:       []int{20},
		},
		{
			name:       "both kept",
			candidates: []Maneuver{{Index: 20, Score: 0.2}, {Index: 40, Score: 0.3}},
			n:          60,
			want:       []int{20, 40},
		},
		{
			name:       "too close to the end",
			candidates: []Maneuver{{Index: 55, Score: 0.3}},
			n:          60,
			want:       nil,
		},
	}
	for _, c := range cases {
		have := Validate(c.candidates, c.n, 5)
		if len(have) != len(c.want) {
			t.Errorf("%s: have %v want %v", c.name, have, c.want)
			continue
		}
		for i := range have {
			if have[i] != c.want[i] {
				t.Errorf("%s: have %v want %v", c.name, have, c.want)
			}
		}
	}
}
