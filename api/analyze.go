package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/rotblauer/sailtrack/common"
	"github.com/rotblauer/sailtrack/geo/interpolate"
	"github.com/rotblauer/sailtrack/geo/orientation"
	"github.com/rotblauer/sailtrack/geo/tackdetector"
	"github.com/rotblauer/sailtrack/geo/tackseries"
	"github.com/rotblauer/sailtrack/geo/timecorrect"
	"github.com/rotblauer/sailtrack/geo/velocity"
	"github.com/rotblauer/sailtrack/params"
	"github.com/rotblauer/sailtrack/types/datapoint"
	"github.com/rotblauer/sailtrack/types/sail"
)

var ErrInvalidWind = errors.New("wind bearing must be in [0, 360) degrees")

// Pipeline stages, in run order. They name the stage timers.
const (
	StageTimeCorrection = "timecorrect"
	StageInterpolation  = "interpolate"
	StageVelocity       = "velocity"
	StageOrientation    = "orientation"
	StageTacks          = "tacks"
	StageTackSeries     = "tackseries"
)

var Stages = []string{
	StageTimeCorrection, StageInterpolation, StageVelocity,
	StageOrientation, StageTacks, StageTackSeries,
}

// Analyzer runs the analysis pipeline over a Data container.
// An Analyzer may be reused across runs and datasets; it is not safe for concurrent use.
type Analyzer struct {
	Config *params.AnalysisConfig

	reg    metrics.Registry
	timers map[string]metrics.Timer
}

func NewAnalyzer(config *params.AnalysisConfig) *Analyzer {
	if config == nil {
		config = params.DefaultAnalysisConfig()
	}
	reg := metrics.NewRegistry()
	timers := make(map[string]metrics.Timer, len(Stages))
	for _, stage := range Stages {
		timers[stage] = metrics.NewRegisteredTimer("analysis/"+stage, reg)
	}
	return &Analyzer{Config: config, reg: reg, timers: timers}
}

func (a *Analyzer) stage(name string, fn func()) {
	start := time.Now()
	fn()
	a.timers[name].UpdateSince(start)
}

// Run analyzes data against a wind from windDegrees, clockwise from north.
//
// Time correction and interpolation only run when the raw points changed since the
// last run, so a new wind bearing re-runs the later stages alone. The previous tacks,
// tack series and device orientation are always replaced. Poor data never fails a run;
// it leaves derived values unknown.
func (a *Analyzer) Run(data *sail.Data, windDegrees float64) error {
	if math.IsNaN(windDegrees) || windDegrees < 0 || windDegrees >= 360 {
		return fmt.Errorf("%w: %v", ErrInvalidWind, windDegrees)
	}
	started := time.Now()
	data.ResetAnalysis()

	if !data.Prepared() {
		a.stage(StageTimeCorrection, func() {
			data.Modify(func(points datapoint.DataPoints) datapoint.DataPoints {
				res := timecorrect.Correct(points, a.Config.TimeCorrection)
				if res.Leading > 0 && res.References > 0 {
					slog.Warn("Points before the first GPS time kept device time", "leading", res.Leading)
				}
				return nil
			})
		})
		a.stage(StageInterpolation, func() {
			data.Modify(func(points datapoint.DataPoints) datapoint.DataPoints {
				interpolate.Locations(points)
				return nil
			})
		})
		data.MarkPrepared()
	}

	wind := common.DegreesToRadians(windDegrees)
	a.stage(StageVelocity, func() {
		velocity.Analyze(data.AllPoints(), wind)
	})

	a.stage(StageOrientation, func() {
		cs, res := orientation.Resolve(data.LocationPoints(), data.AccelerationPoints(), a.Config.Orientation)
		data.DeviceOrientation = cs
		orientation.Apply(cs, data.AccelerationPoints(), data.MagneticFieldPoints())
		slog.Debug("Device orientation", "result", res)
	})

	a.stage(StageTacks, func() {
		data.TackList = tackdetector.Detect(data.LocationPoints(), a.Config.TackDetector)
	})

	a.stage(StageTackSeries, func() {
		data.TackSeriesList = tackseries.Aggregate(data.TackList, a.Config.TackSeries)
	})

	slog.Info("Analyzed track",
		"points", data.Len(),
		"located", len(data.LocationPoints()),
		"wind", windDegrees,
		"oriented", data.DeviceOrientation != nil,
		"tacks", len(data.TackList),
		"series", len(data.TackSeriesList),
		"took", time.Since(started).Round(time.Millisecond))
	return nil
}

// Timings returns the mean duration of each stage over all runs so far.
func (a *Analyzer) Timings() map[string]time.Duration {
	out := make(map[string]time.Duration, len(a.timers))
	for name, timer := range a.timers {
		out[name] = time.Duration(timer.Snapshot().Mean())
	}
	return out
}

func (a *Analyzer) Registry() metrics.Registry {
	return a.reg
}

// Runs is the number of completed runs.
func (a *Analyzer) Runs() int64 {
	return a.timers[StageTackSeries].Snapshot().Count()
}
