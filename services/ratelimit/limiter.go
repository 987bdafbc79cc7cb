package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/model"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
)

const (
	blockReasonBurst     = "burst"
	blockReasonSustained = "sustained"
)

type Limiter struct {
	cfg   Config
	store Store
	clock shared.Clock

	// Serializes read-modify-write on the store for this limiter.
	mu sync.Mutex
}

func NewLimiter(cfg Config, store Store, clock shared.Clock) *Limiter {
	if clock == nil {
		clock = shared.RealClock{}
	}
	return &Limiter{
		cfg:   cfg.normalize(),
		store: store,
		clock: clock,
	}
}

func (l *Limiter) Config() Config {
	return l.cfg
}

func (l *Limiter) Name() string {
	return l.cfg.Name
}

func (l *Limiter) key(identifier string) string {
	return l.cfg.Name + ":" + identifier
}

// CheckLimit counts one request for identifier and reports whether it may
// proceed. It never fails: a denial is part of the returned info.
func (l *Limiter) CheckLimit(ctx context.Context, identifier string) dto.RateLimitInfo {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	key := l.key(identifier)

	block, err := l.store.GetBlock(ctx, key)
	if err != nil {
		return l.storeFailure(identifier, "get block", err)
	}
	if block != nil {
		if block.Active(now) {
			return blockedInfo(block, false)
		}
		if err := l.store.DeleteBlock(ctx, key); err != nil {
			log.WithError(err).WithField("limiter", l.cfg.Name).Warn("Failed to delete expired block")
		}
	}

	entry, err := l.store.GetEntry(ctx, key)
	if err != nil {
		return l.storeFailure(identifier, "get entry", err)
	}
	if entry == nil || entry.Expired(now) {
		entry = &model.RateLimitEntry{
			Identifier:  identifier,
			Count:       0,
			WindowStart: now,
			ResetTime:   now.Add(l.cfg.WindowSize),
		}
	}

	// Abuse is judged on the state before this request is counted.
	if reason := l.detectAbuse(entry, now); reason != "" {
		block = &model.BlockRecord{
			Identifier:   identifier,
			BlockedUntil: now.Add(l.cfg.DDoS.BlockDuration),
			Reason:       reason,
			CreatedAt:    now,
		}
		if err := l.store.SaveBlock(ctx, key, block, l.cfg.DDoS.BlockDuration); err != nil {
			log.WithError(err).WithField("limiter", l.cfg.Name).Error("Failed to persist block record")
		}

		log.WithFields(log.Fields{
			"limiter":       l.cfg.Name,
			"identifier":    identifier,
			"reason":        reason,
			"count":         entry.Count,
			"blocked_until": block.BlockedUntil,
		}).Warn("Abusive traffic detected, identifier blocked")

		return blockedInfo(block, true)
	}

	entry.Count++
	entry.LastHit = now
	if err := l.store.SaveEntry(ctx, key, entry, entry.ResetTime.Sub(now)); err != nil {
		return l.storeFailure(identifier, "save entry", err)
	}

	remaining := l.cfg.MaxRequests - entry.Count
	if remaining < 0 {
		remaining = 0
	}
	resetTime := entry.ResetTime

	return dto.RateLimitInfo{
		Allowed:   entry.Count <= l.cfg.MaxRequests,
		Remaining: remaining,
		ResetTime: &resetTime,
	}
}

func (l *Limiter) detectAbuse(entry *model.RateLimitEntry, now time.Time) string {
	ddos := l.cfg.DDoS

	if ddos.BurstThreshold > 0 && now.Sub(entry.WindowStart) < ddos.BurstWindow && entry.Count > ddos.BurstThreshold {
		return blockReasonBurst
	}
	if ddos.SuspiciousThreshold > 0 && float64(entry.Count) > float64(l.cfg.MaxRequests)*ddos.SuspiciousThreshold {
		return blockReasonSustained
	}
	return ""
}

func (l *Limiter) storeFailure(identifier, op string, err error) dto.RateLimitInfo {
	log.WithFields(log.Fields{
		"limiter":     l.cfg.Name,
		"identifier":  identifier,
		"operation":   op,
		"fail_closed": l.cfg.FailClosed,
	}).WithError(err).Error("Rate limit store unavailable")

	if l.cfg.FailClosed {
		return dto.RateLimitInfo{Allowed: false, Remaining: 0}
	}
	return dto.RateLimitInfo{Allowed: true, Remaining: -1}
}

func blockedInfo(block *model.BlockRecord, detected bool) dto.RateLimitInfo {
	until := block.BlockedUntil
	return dto.RateLimitInfo{
		Allowed:        false,
		Remaining:      0,
		ResetTime:      &until,
		BlockedUntil:   &until,
		IsBlocked:      true,
		IsDDoSDetected: detected,
	}
}

// WithRateLimit runs fn only when identifier is within its limit and turns a
// denial into a 429 AppError.
func (l *Limiter) WithRateLimit(ctx context.Context, identifier string, fn func(context.Context) error) error {
	info := l.CheckLimit(ctx, identifier)
	if !info.Allowed {
		return DenialError(info)
	}

	err := fn(ctx)
	if info.ResetTime != nil && ((err == nil && l.cfg.SkipSuccessfulRequests) || (err != nil && l.cfg.SkipFailedRequests)) {
		l.refund(ctx, identifier, *info.ResetTime)
	}
	return err
}

// Refund uncounts a request that CheckLimit allowed, for middleware that
// only learns the outcome after the handler ran.
func (l *Limiter) Refund(ctx context.Context, identifier string, info dto.RateLimitInfo) {
	if !info.Allowed || info.ResetTime == nil {
		return
	}
	l.refund(ctx, identifier, *info.ResetTime)
}

// refund uncounts one request, provided the window it was counted in is
// still the current one.
func (l *Limiter) refund(ctx context.Context, identifier string, resetTime time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := l.key(identifier)
	entry, err := l.store.GetEntry(ctx, key)
	if err != nil || entry == nil || !entry.ResetTime.Equal(resetTime) || entry.Count == 0 {
		return
	}

	entry.Count--
	if err := l.store.SaveEntry(ctx, key, entry, entry.ResetTime.Sub(l.clock.Now())); err != nil {
		log.WithError(err).WithField("limiter", l.cfg.Name).Warn("Failed to refund rate limit request")
	}
}

// DenialMessage picks the user-facing text for a denied check.
func DenialMessage(info dto.RateLimitInfo) string {
	switch {
	case info.IsDDoSDetected && info.BlockedUntil != nil:
		return fmt.Sprintf("Suspicious activity detected. Access blocked until %s.", formatRetry(*info.BlockedUntil))
	case info.IsBlocked && info.BlockedUntil != nil:
		return fmt.Sprintf("Too many requests. Access temporarily blocked until %s.", formatRetry(*info.BlockedUntil))
	case info.ResetTime != nil:
		return fmt.Sprintf("Rate limit exceeded. Try again after %s.", formatRetry(*info.ResetTime))
	default:
		return "Rate limit service unavailable. Please try again later."
	}
}

func DenialError(info dto.RateLimitInfo) *shared.AppError {
	return shared.NewTooManyRequestsError(DenialMessage(info), info)
}

func formatRetry(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (l *Limiter) Reset(ctx context.Context, identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := l.key(identifier)
	if err := l.store.DeleteEntry(ctx, key); err != nil {
		return err
	}
	return l.store.DeleteBlock(ctx, key)
}

func (l *Limiter) Unblock(ctx context.Context, identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.DeleteBlock(ctx, l.key(identifier))
}

// Sweep removes expired state. Expired values are already ignored on read,
// so this only bounds memory.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.clock.Now())
}

func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := l.Sweep(ctx)
				if err != nil {
					log.WithError(err).WithField("limiter", l.cfg.Name).Error("Rate limit cleanup failed")
					continue
				}
				if removed > 0 {
					log.WithFields(log.Fields{"limiter": l.cfg.Name, "removed": removed}).Debug("Rate limit cleanup completed")
				}
			}
		}
	}()
}
