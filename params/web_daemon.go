package params

import "time"

type WebDaemonConfig struct {
	ListenerConfig
	// ShutdownTimeout bounds the wait for in-flight requests on interrupt.
	ShutdownTimeout time.Duration
	// ReportCacheTTL is how long a rendered analysis is served for its wind bearing.
	ReportCacheTTL time.Duration
	// HistogramBins sets the relative bearing histogram resolution of served analyses.
	HistogramBins int
	// Token, when set, is required to post points.
	Token    string `json:"-"`
	Analysis *AnalysisConfig
	Clean    *CleanConfig
}

func DefaultWebListenerConfig() ListenerConfig {
	return ListenerConfig{
		Network: "tcp",
		Address: "localhost:3000",
	}
}

func DefaultWebDaemonConfig() *WebDaemonConfig {
	return &WebDaemonConfig{
		ListenerConfig:  DefaultWebListenerConfig(),
		ShutdownTimeout: 5 * time.Second,
		ReportCacheTTL:  10 * time.Minute,
		HistogramBins:   DefaultTackSeriesConfig.NumberOfBearingBins,
		Analysis:        DefaultAnalysisConfig(),
		Clean:           DefaultCleanConfig,
	}
}

func DefaultTestWebDaemonConfig() *WebDaemonConfig {
	d := DefaultWebDaemonConfig()
	d.Address = "localhost:3333"
	return d
}
