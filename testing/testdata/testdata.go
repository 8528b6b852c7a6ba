package testdata

import (
	"encoding/json"

	"github.com/rotblauer/sailtrack/trackz"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

// WriteTrackFile writes the points as NDJSON to path, gzipped if path ends in .gz.
func WriteTrackFile(path string, points datapoint.DataPoints) error {
	w, err := trackz.Create(path, nil)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, p := range points {
		if err := enc.Encode(p); err != nil {
			_ = w.Close()
			return err
		}
	}
	return w.Close()
}
