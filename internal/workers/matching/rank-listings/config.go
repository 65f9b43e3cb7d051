// internal/workers/matching/rank-listings/config.go
package ranklistings

import "time"

type Config struct {
	Timeout             time.Duration
	SourceTimeout       time.Duration
	PoolCacheTTL        time.Duration
	MaxCandidates       int
	DefaultLimit        int
	ListingStatus       string
	SignalResponseIndex string
	SignalResponseSize  int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:             30 * time.Second,
		SourceTimeout:       5 * time.Second,
		PoolCacheTTL:        time.Minute,
		ListingStatus:       "active",
		SignalResponseIndex: "signal-responses",
	}
}
