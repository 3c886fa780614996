package config

import "time"

var (
	ProbeOpenRetryMaxElapsed = 2 * time.Second
	ProbeOpenRetryMaxPause   = 500 * time.Millisecond
	FFProbeTimeout           = 10 * time.Second
	SnapshotWriteAttempts    = 3
	SearchCacheTTL           = 5 * time.Minute
	SearchCacheMaxEntries    = int64(512)
	EngineInboundBuffer      = 4
	EngineNotifyBuffer       = 4
	ScanProgressInterval     = time.Second
	ScanShutdownGrace        = 3 * time.Second
	DrainPollInterval        = 500 * time.Millisecond
)
