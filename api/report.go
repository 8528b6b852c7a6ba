package api

import (
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/sailtrack/types/sail"
	"github.com/rotblauer/sailtrack/types/vector"
)

// Report is the read-only outcome of an analysis run, as handed to presentation
// and export.
type Report struct {
	WindDegrees       float64                  `json:"windDegrees"`
	Comment           string                   `json:"comment,omitempty"`
	Stats             sail.Stats               `json:"stats"`
	DeviceOrientation *vector.CoordinateSystem `json:"deviceOrientation,omitempty"`
	Tacks             []sail.TackSummary       `json:"tacks"`
	TackSeries        []sail.TackSeriesSummary `json:"tackSeries"`
	Polar             []sail.PolarEntry        `json:"polar,omitempty"`
	Histogram         []int                    `json:"histogram,omitempty"`
}

// NewReport summarizes analyzed data. bins sets the relative bearing histogram
// resolution; zero leaves the histogram out.
func NewReport(data *sail.Data, windDegrees float64, bins int) Report {
	r := Report{
		WindDegrees:       windDegrees,
		Comment:           data.Comment,
		Stats:             data.Stats(),
		DeviceOrientation: data.DeviceOrientation,
		Tacks:             make([]sail.TackSummary, 0, len(data.TackList)),
		TackSeries:        make([]sail.TackSeriesSummary, 0, len(data.TackSeriesList)),
		Polar:             data.TackPolar(),
		Histogram:         data.RelativeBearingHistogram(bins),
	}
	for _, t := range data.TackList {
		r.Tacks = append(r.Tacks, t.Summary())
	}
	for _, ts := range data.TackSeriesList {
		r.TackSeries = append(r.TackSeries, ts.Summary())
	}
	return r
}

// TacksFeatureCollection exports the tacks as GeoJSON line strings.
func TacksFeatureCollection(data *sail.Data) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, t := range data.TackList {
		f := t.Feature()
		f.ID = i
		fc.Append(f)
	}
	return fc
}
