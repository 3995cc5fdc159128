package config

import "time"

// Server defaults
const (
	DefaultPort        = "8080"
	ServerReadTimeout  = 15 * time.Second
	ServerWriteTimeout = 90 * time.Second
	ShutdownTimeout    = 30 * time.Second
)

// Upstream telemetry API
const (
	UpstreamTimeout    = 30 * time.Second
	UpstreamRetries    = 2
	UpstreamRetryDelay = 1 * time.Second
	FetchWorkers       = 5
	PerSensorTimeout   = 60 * time.Second
	LatestFetchTimeout = 10 * time.Second
)

// Chart aggregation
const (
	MaxChartPoints = 500
	MaxQueryDays   = 366
)

// Result cache
const (
	CacheTTLCurrent    = 5 * time.Minute
	CacheTTLHistorical = 30 * time.Minute
	CacheMaxEntries    = 512
)

// Live updates
const (
	BroadcastInterval = 30 * time.Second
)

// WebSocket configuration
const (
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
	WSBroadcastBuffer = 256
	WSChannelBuffer   = 10
	WSWriteDeadline   = 10 * time.Second
	WSReadDeadline    = 60 * time.Second
	WSPingInterval    = 30 * time.Second
)

// Export limits
const (
	MaxExportWindow = 90 * 24 * time.Hour
)
