package ratelimit

import (
	"context"
	"time"

	"github.com/lac-hong-legacy/footage_api/model"
)

// Store keeps limiter state keyed by "<limiter>:<identifier>". Values written
// with a ttl may disappear once it elapses; a missing value is returned as
// nil without an error.
type Store interface {
	GetEntry(ctx context.Context, key string) (*model.RateLimitEntry, error)
	SaveEntry(ctx context.Context, key string, entry *model.RateLimitEntry, ttl time.Duration) error
	DeleteEntry(ctx context.Context, key string) error

	GetBlock(ctx context.Context, key string) (*model.BlockRecord, error)
	SaveBlock(ctx context.Context, key string, block *model.BlockRecord, ttl time.Duration) error
	DeleteBlock(ctx context.Context, key string) error

	// Sweep drops everything that expired at or before now and reports how
	// many values were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
