package params

import (
	"github.com/ethereum/go-ethereum/metrics"
)

func init() {
	metrics.Enabled = true
}

const (
	// EnvPrefix prefixes environment overrides, eg. SAILTRACK_WIND.
	EnvPrefix = "SAILTRACK"
	// ConfigFileName is looked up in the home directory, without extension.
	ConfigFileName = ".sailtrack"
)

// MaxScanTokenSize bounds a single NDJSON line.
var MaxScanTokenSize = 1024 * 1024
