// Package clean drops raw samples a logger should never have written:
// replays of earlier samples, out of range positions and GPS jumps.
package clean

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/stream"
	"github.com/rotblauer/sailtrack/types/datapoint"
)

// NewDedupeFunc returns a filter passing points not seen among the last size points.
func NewDedupeFunc(size int) func(*datapoint.DataPoint) bool {
	cache, err := lru.New[uint64, struct{}](size)
	if err != nil {
		panic(fmt.Sprintf("dedupe cache: %v", err))
	}
	return func(p *datapoint.DataPoint) bool {
		hash, err := hashstructure.Hash(p, hashstructure.FormatV2, nil)
		if err != nil {
			return false
		}
		if cache.Contains(hash) {
			return false
		}
		cache.Add(hash, struct{}{})
		return true
	}
}

// FilterValid drops points without a time or without any reading.
// An out of range location is removed, keeping the point's other readings.
func FilterValid(p *datapoint.DataPoint) bool {
	if p == nil || p.Time <= 0 {
		return false
	}
	if p.HasLocation() && !validLocation(p.Location) {
		slog.Debug("Dropping invalid location", "time", p.Time,
			"lat", p.Location.Latitude, "lon", p.Location.Longitude)
		p.Location = nil
	}
	return p.HasLocation() || p.HasMagneticField() || p.HasAcceleration()
}

func validLocation(l *datapoint.Location) bool {
	lat, lon := l.Latitude, l.Longitude
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	// Null island is what some receivers report without a fix.
	return lat != 0 || lon != 0
}

// TeleportationFilter removes the location of fixes implying a speed above
// maxSpeedKnots from the last kept fix, dropping points left without readings.
// Zero disables it.
func TeleportationFilter(ctx context.Context, maxSpeedKnots float64, in <-chan *datapoint.DataPoint) <-chan *datapoint.DataPoint {
	out := make(chan *datapoint.DataPoint)

	go func() {
		defer close(out)

		var last *datapoint.DataPoint

		for p := range in {
			if maxSpeedKnots > 0 && p.HasLocation() {
				if last != nil && p.Time > last.Time && last.VelocityInKnotsBetween(p) > maxSpeedKnots {
					slog.Debug("Dropping GPS jump", "time", p.Time,
						"knots", last.VelocityInKnotsBetween(p))
					p.Location = nil
					if !p.HasMagneticField() && !p.HasAcceleration() {
						continue
					}
				} else {
					last = p
				}
			}
			select {
			case <-ctx.Done():
				return
			case out <- p:
			}
		}
	}()
	return out
}

// Clean chains the filters.
func Clean(ctx context.Context, config *params.CleanConfig, in <-chan *datapoint.DataPoint) <-chan *datapoint.DataPoint {
	if config == nil {
		config = params.DefaultCleanConfig
	}
	valid := stream.Filter(ctx, FilterValid, in)
	deduped := stream.Filter(ctx, NewDedupeFunc(config.DedupeCacheSize), valid)
	return TeleportationFilter(ctx, config.MaxSpeedKnots, deduped)
}
