package webd

import (
	"testing"

	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/testing/testdata"
	"github.com/rotblauer/sailtrack/types/sail"
)

const (
	testLegs         = 6
	testPointsPerLeg = 30
)

// newTestWebDaemon serves a heeling beat against a wind from 0°.
func newTestWebDaemon(t *testing.T) *WebDaemon {
	t.Helper()
	c := testdata.Beat(testLegs, testPointsPerLeg, 0, 40, 15)
	mount := testdata.FlatMount
	c.Orientation = &mount
	config := params.DefaultTestWebDaemonConfig()
	config.Token = "sesame"
	d, err := NewWebDaemon(config, sail.NewData(c.Points()), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = d.melodyInstance.Close()
	})
	return d
}
