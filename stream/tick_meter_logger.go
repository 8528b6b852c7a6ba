package stream

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/rotblauer/sailtrack/common"
)

// tickScanMeter logs read progress on an interval.
type tickScanMeter struct {
	label      time.Time
	interval   time.Duration
	started    time.Time
	ticker     *time.Ticker
	done       chan struct{}
	reg        metrics.Registry
	skipped    metrics.Counter
	countMeter metrics.Meter
	sizeMeter  metrics.Meter
}

func newTickScanMeter(interval time.Duration) *tickScanMeter {
	// Won't work without this global setting.
	metrics.Enabled = true

	rl := &tickScanMeter{
		reg:        metrics.NewRegistry(),
		interval:   interval,
		started:    time.Now(),
		done:       make(chan struct{}),
		skipped:    metrics.NewCounter(),
		countMeter: metrics.NewMeter(),
		sizeMeter:  metrics.NewMeter(),
	}
	for name, m := range map[string]any{
		"skipped.count": rl.skipped,
		"line.meter":    rl.countMeter,
		"size.meter":    rl.sizeMeter,
	} {
		if err := rl.reg.Register(name, m); err != nil {
			panic(err)
		}
	}
	rl.ticker = time.NewTicker(rl.interval)
	go rl.run()
	return rl
}

func (rl *tickScanMeter) mark(label time.Time, data []byte) {
	rl.label = label
	rl.countMeter.Mark(1)
	rl.sizeMeter.Mark(int64(len(data)))
}

func (rl *tickScanMeter) skip() {
	rl.skipped.Inc(1)
}

func (rl *tickScanMeter) run() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.ticker.C:
			rl.log("Reading points")
		}
	}
}

func (rl *tickScanMeter) log(msg string) {
	countSnap := rl.countMeter.Snapshot()
	sizeSnap := rl.sizeMeter.Snapshot()

	slog.Info(msg, "n", humanize.Comma(countSnap.Count()),
		"skipped", rl.skipped.Snapshot().Count(),
		"read.last", rl.label.UTC().Format(time.DateTime),
		"pps", common.DecimalToFixed(countSnap.Rate1(), 0),
		"bps", humanize.Bytes(uint64(sizeSnap.Rate1())),
		"total.bytes", humanize.Bytes(uint64(sizeSnap.Count())),
		"running", time.Since(rl.started).Round(time.Millisecond))
}

func (rl *tickScanMeter) stop() {
	if rl == nil || rl.ticker == nil {
		return
	}
	rl.ticker.Stop()
	close(rl.done)
	rl.countMeter.Stop()
	rl.sizeMeter.Stop()
}
