package api

import (
	"github.com/rotblauer/sailtrack/testing/testdata"
	"github.com/rotblauer/sailtrack/types/sail"
)

const (
	testWind         = 0.0
	testClockOffset  = 2500
	testHeel         = 15.0
	testLegs         = 6
	testPointsPerLeg = 30
)

// heelingBeat is a beat against a wind from testWind, logged by a device lying flat
// whose clock runs ahead of GPS time, with a fix on every other sample.
func heelingBeat() testdata.Course {
	c := testdata.Beat(testLegs, testPointsPerLeg, testWind, 40, testHeel)
	mount := testdata.FlatMount
	c.Orientation = &mount
	c.ClockOffsetMillis = testClockOffset
	c.LocateEvery = 2
	return c
}

func newTestData() *sail.Data {
	return sail.NewData(heelingBeat().Points())
}
