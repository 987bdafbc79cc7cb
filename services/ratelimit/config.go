// Package ratelimit bounds the request rate per identifier and puts
// identifiers that burst or sustain abusive traffic into a temporary block.
package ratelimit

import "time"

const (
	defaultWindowSize    = time.Minute
	defaultMaxRequests   = 60
	defaultBlockDuration = 15 * time.Minute
)

// Config describes one protected surface. Each surface gets its own Limiter
// so thresholds can be tuned independently.
type Config struct {
	Name        string
	WindowSize  time.Duration
	MaxRequests int

	// A request whose wrapped operation succeeds (or fails) is not counted
	// when the matching flag is set. Only honoured by WithRateLimit.
	SkipSuccessfulRequests bool
	SkipFailedRequests     bool

	// FailClosed denies requests when the backing store is unreachable.
	FailClosed bool

	DDoS DDoSConfig
}

// DDoSConfig holds the abuse heuristics. A zero threshold disables the
// corresponding check.
type DDoSConfig struct {
	BurstThreshold int
	BurstWindow    time.Duration

	// SuspiciousThreshold is a multiplier over MaxRequests.
	SuspiciousThreshold float64

	BlockDuration time.Duration
}

func (c Config) normalize() Config {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.WindowSize <= 0 {
		c.WindowSize = defaultWindowSize
	}
	if c.MaxRequests <= 0 {
		c.MaxRequests = defaultMaxRequests
	}
	if c.DDoS.BlockDuration <= 0 {
		c.DDoS.BlockDuration = defaultBlockDuration
	}
	return c
}
