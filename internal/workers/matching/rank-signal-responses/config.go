// internal/workers/matching/rank-signal-responses/config.go
package ranksignalresponses

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
