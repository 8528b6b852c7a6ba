package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/tidwall/gjson"
)

var (
	ErrMissingAttribute = errors.New("missing attribute in read line")
	ErrNotPoint         = errors.New("feature geometry is not a point")
)

// Cat tracker property names.
const (
	AttrTime     = "properties.Time"
	AttrUnixTime = "properties.UnixTime"
	attrHeading  = "Heading"
)

// ReadPoints decodes one point per line. Lines are either DataPoint JSON or GeoJSON point
// features with cat tracker properties. Undecodable lines are logged and skipped.
// The error channel carries at most one error, for a failed read or a cancelled context,
// and is closed after the points channel.
func ReadPoints(ctx context.Context, r io.Reader) (<-chan *datapoint.DataPoint, <-chan error) {
	out := make(chan *datapoint.DataPoint)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(out)

		met := newTickScanMeter(5 * time.Second)
		defer met.stop()
		defer met.log("Read points")

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), params.MaxScanTokenSize)
		n := 0
		for scanner.Scan() {
			n++
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			p, err := DecodePoint(line)
			if err != nil {
				met.skip()
				slog.Warn("Skipping line", "line", n, "error", err)
				continue
			}
			met.mark(p.TimeAt(), line)
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case out <- p:
			}
		}
		if err := scanner.Err(); err != nil {
			errs <- fmt.Errorf("read line %d: %w", n+1, err)
		}
	}()
	return out, errs
}

// ReadAll collects every point from r.
func ReadAll(ctx context.Context, r io.Reader) (datapoint.DataPoints, error) {
	points, errs := ReadPoints(ctx, r)
	all := Collect(ctx, points)
	if err := <-errs; err != nil {
		return nil, err
	}
	return all, nil
}

// DecodePoint decodes a single line.
func DecodePoint(line []byte) (*datapoint.DataPoint, error) {
	if gjson.GetBytes(line, "type").String() == "Feature" {
		return decodeFeature(line)
	}
	if !gjson.GetBytes(line, "time").Exists() {
		return nil, fmt.Errorf("%w: time", ErrMissingAttribute)
	}
	p := &datapoint.DataPoint{}
	if err := json.Unmarshal(line, p); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeFeature(line []byte) (*datapoint.DataPoint, error) {
	f, err := geojson.UnmarshalFeature(line)
	if err != nil {
		return nil, err
	}

	p := &datapoint.DataPoint{}
	// Time carries milliseconds, UnixTime only seconds.
	if t := gjson.GetBytes(line, AttrTime); t.Exists() && !t.Time().IsZero() {
		p.Time = t.Time().UnixMilli()
	} else if u := gjson.GetBytes(line, AttrUnixTime); u.Exists() {
		p.Time = u.Int() * common.MillisPerSecond
	} else {
		return nil, fmt.Errorf("%w: %s", ErrMissingAttribute, AttrTime)
	}

	if f.Geometry != nil {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotPoint, f.Geometry.GeoJSONType())
		}
		p.Location = &datapoint.Location{Longitude: pt.Lon(), Latitude: pt.Lat()}
		// Cat trackers report a negative heading when it is unknown.
		if heading := f.Properties.MustFloat64(attrHeading, -1); heading >= 0 {
			p.Location.Bearing = common.Float64Ptr(common.NormalizeRadians(common.DegreesToRadians(heading)))
		}
	}
	if x, y, z, ok := vectorProperty(f.Properties, "Accelerometer"); ok {
		p.Acceleration = &datapoint.Acceleration{X: x, Y: y, Z: z}
	}
	if x, y, z, ok := vectorProperty(f.Properties, "Magnetometer"); ok {
		p.MagneticField = &datapoint.MagneticField{X: x, Y: y, Z: z}
	}
	return p, nil
}

func vectorProperty(props geojson.Properties, prefix string) (x, y, z float64, ok bool) {
	for _, axis := range []string{"X", "Y", "Z"} {
		v, isNumber := props[prefix+axis].(float64)
		if !isNumber {
			return 0, 0, 0, false
		}
		switch axis {
		case "X":
			x = v
		case "Y":
			y = v
		case "Z":
			z = v
		}
	}
	return x, y, z, true
}

// WritePoints writes the points as NDJSON.
func WritePoints(w io.Writer, points datapoint.DataPoints) error {
	enc := json.NewEncoder(w)
	for i, p := range points {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("write point %d: %w", i, err)
		}
	}
	return nil
}
