package model

import "time"

// RateLimitEntry is the live counter for one identifier on one limiter.
// Once ResetTime has passed the entry is replaced rather than mutated.
type RateLimitEntry struct {
	Identifier  string    `json:"identifier"`
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
	ResetTime   time.Time `json:"reset_time"`
	LastHit     time.Time `json:"last_hit"`
}

func (e *RateLimitEntry) Expired(now time.Time) bool {
	return !now.Before(e.ResetTime)
}

type BlockRecord struct {
	Identifier   string    `json:"identifier"`
	BlockedUntil time.Time `json:"blocked_until"`
	Reason       string    `json:"reason"`
	CreatedAt    time.Time `json:"created_at"`
}

func (b *BlockRecord) Active(now time.Time) bool {
	return now.Before(b.BlockedUntil)
}
