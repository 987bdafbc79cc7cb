package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/services/ratelimit"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
)

const (
	SurfaceGeneral  = "general"
	SurfaceAPI      = "api"
	SurfaceDownload = "download"
	SurfaceUpload   = "upload"
	SurfaceAuth     = "auth"

	StoreMemory = "memory"
	StoreRedis  = "redis"

	defaultSweepInterval = time.Minute
)

type RateLimitService struct {
	appContext.DefaultService

	backend       string
	sweepInterval time.Duration
	configs       map[string]ratelimit.Config

	limiters    map[string]*ratelimit.Limiter
	memoryStore *ratelimit.MemoryStore
	stopSweeper context.CancelFunc

	redisSvc *RedisService
	auditSvc *AuditService
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

// defaultSurfaceConfigs protects uploads and auth with tighter windows and
// lower burst thresholds than general reads.
func defaultSurfaceConfigs() map[string]ratelimit.Config {
	return map[string]ratelimit.Config{
		SurfaceGeneral: {
			Name:        SurfaceGeneral,
			WindowSize:  time.Minute,
			MaxRequests: 300,
			DDoS: ratelimit.DDoSConfig{
				BurstThreshold:      60,
				BurstWindow:         time.Second,
				SuspiciousThreshold: 3,
				BlockDuration:       5 * time.Minute,
			},
		},
		SurfaceAPI: {
			Name:        SurfaceAPI,
			WindowSize:  time.Minute,
			MaxRequests: 120,
			DDoS: ratelimit.DDoSConfig{
				BurstThreshold:      30,
				BurstWindow:         time.Second,
				SuspiciousThreshold: 3,
				BlockDuration:       10 * time.Minute,
			},
		},
		SurfaceDownload: {
			Name:        SurfaceDownload,
			WindowSize:  time.Minute,
			MaxRequests: 30,
			DDoS: ratelimit.DDoSConfig{
				BurstThreshold:      10,
				BurstWindow:         time.Second,
				SuspiciousThreshold: 2,
				BlockDuration:       15 * time.Minute,
			},
		},
		SurfaceUpload: {
			Name:        SurfaceUpload,
			WindowSize:  time.Hour,
			MaxRequests: 20,
			FailClosed:  true,
			DDoS: ratelimit.DDoSConfig{
				BurstThreshold:      3,
				BurstWindow:         10 * time.Second,
				SuspiciousThreshold: 2,
				BlockDuration:       time.Hour,
			},
		},
		SurfaceAuth: {
			Name:                   SurfaceAuth,
			WindowSize:             15 * time.Minute,
			MaxRequests:            10,
			SkipSuccessfulRequests: true,
			FailClosed:             true,
			DDoS: ratelimit.DDoSConfig{
				BurstThreshold:      5,
				BurstWindow:         10 * time.Second,
				SuspiciousThreshold: 2,
				BlockDuration:       30 * time.Minute,
			},
		},
	}
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.backend = strings.ToLower(os.Getenv("RATE_LIMIT_STORE"))
	if svc.backend == "" {
		svc.backend = StoreMemory
	}
	if svc.backend != StoreMemory && svc.backend != StoreRedis {
		return fmt.Errorf("unsupported RATE_LIMIT_STORE %q", svc.backend)
	}

	svc.sweepInterval = defaultSweepInterval
	if v := os.Getenv("RATE_LIMIT_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT_SWEEP_INTERVAL: %w", err)
		}
		svc.sweepInterval = d
	}

	configs, err := applySurfaceOverrides(defaultSurfaceConfigs(), os.Getenv)
	if err != nil {
		return err
	}
	svc.configs = configs

	return svc.DefaultService.Configure(ctx)
}

// applySurfaceOverrides reads RATE_LIMIT_<SURFACE>_MAX and
// RATE_LIMIT_<SURFACE>_WINDOW.
func applySurfaceOverrides(configs map[string]ratelimit.Config, getenv func(string) string) (map[string]ratelimit.Config, error) {
	for name, cfg := range configs {
		prefix := "RATE_LIMIT_" + strings.ToUpper(name)

		if v := getenv(prefix + "_MAX"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit <= 0 {
				return nil, fmt.Errorf("invalid %s_MAX %q", prefix, v)
			}
			cfg.MaxRequests = limit
		}
		if v := getenv(prefix + "_WINDOW"); v != "" {
			window, err := time.ParseDuration(v)
			if err != nil || window <= 0 {
				return nil, fmt.Errorf("invalid %s_WINDOW %q", prefix, v)
			}
			cfg.WindowSize = window
		}
		configs[name] = cfg
	}
	return configs, nil
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.auditSvc = svc.Service(AUDIT_SVC).(*AuditService)

	var store ratelimit.Store
	switch svc.backend {
	case StoreRedis:
		if !svc.redisSvc.Enabled() {
			return fmt.Errorf("RATE_LIMIT_STORE=redis requires REDIS_ADDR")
		}
		store = ratelimit.NewRedisStore(svc.redisSvc.GetClient())
	default:
		svc.memoryStore = ratelimit.NewMemoryStore(shared.RealClock{})
		store = svc.memoryStore
	}

	svc.buildLimiters(store, shared.RealClock{})

	ctx, cancel := context.WithCancel(context.Background())
	svc.stopSweeper = cancel
	for _, limiter := range svc.limiters {
		limiter.StartSweeper(ctx, svc.sweepInterval)
	}

	log.WithFields(log.Fields{
		"backend":  svc.backend,
		"surfaces": len(svc.limiters),
	}).Info("Rate limiting enabled")
	return nil
}

func (svc *RateLimitService) Shutdown() {
	if svc.stopSweeper != nil {
		svc.stopSweeper()
	}
}

func (svc *RateLimitService) buildLimiters(store ratelimit.Store, clock shared.Clock) {
	if svc.configs == nil {
		svc.configs = defaultSurfaceConfigs()
	}
	svc.limiters = make(map[string]*ratelimit.Limiter, len(svc.configs))
	for name, cfg := range svc.configs {
		svc.limiters[name] = ratelimit.NewLimiter(cfg, store, clock)
	}
}

func (svc *RateLimitService) Limiter(surface string) (*ratelimit.Limiter, bool) {
	limiter, ok := svc.limiters[surface]
	return limiter, ok
}

// ==================== MIDDLEWARE FUNCTIONS ====================

// IdentifierFunc picks the key a request is counted under.
type IdentifierFunc func(c *fiber.Ctx) string

// RateLimit counts the request against surface. Requests for an unknown
// surface pass through.
func (svc *RateLimitService) RateLimit(surface string, identify IdentifierFunc) fiber.Handler {
	if identify == nil {
		identify = ClientIdentifier
	}

	return func(c *fiber.Ctx) error {
		limiter, ok := svc.limiters[surface]
		if !ok {
			return c.Next()
		}

		identifier := identify(c)
		info := limiter.CheckLimit(c.UserContext(), identifier)
		addRateLimitHeaders(c, limiter.Config(), info)
		recordRateLimitDecision(surface, info)

		if !info.Allowed {
			if info.IsDDoSDetected {
				svc.recordBlock(c.UserContext(), surface, identifier, info)
			}
			return ratelimit.DenialError(info)
		}

		err := c.Next()

		cfg := limiter.Config()
		if cfg.SkipSuccessfulRequests || cfg.SkipFailedRequests {
			status := c.Response().StatusCode()
			if appErr, ok := shared.GetAppError(err); ok {
				status = appErr.StatusCode
			} else if err != nil {
				status = fiber.StatusInternalServerError
			}
			failed := status >= fiber.StatusBadRequest
			if (failed && cfg.SkipFailedRequests) || (!failed && cfg.SkipSuccessfulRequests) {
				limiter.Refund(c.UserContext(), identifier, info)
			}
		}
		return err
	}
}

func (svc *RateLimitService) recordBlock(ctx context.Context, surface, identifier string, info dto.RateLimitInfo) {
	if svc.auditSvc == nil {
		return
	}
	details := map[string]interface{}{
		"surface":    surface,
		"identifier": identifier,
	}
	if info.BlockedUntil != nil {
		details["blocked_until"] = info.BlockedUntil.UTC()
	}
	svc.auditSvc.RecordEvent(ctx, dto.AuditEvent{
		Event:     shared.EventRateLimitBlocked,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// ==================== IDENTIFIERS ====================

// ClientIdentifier uses the authenticated user id and falls back to the
// client IP. Forwarding headers only count when the peer is a trusted proxy.
func ClientIdentifier(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.IP()
}

// FingerprintIdentifier keys anonymous traffic on IP and User-Agent so
// clients behind one NAT are not lumped together.
func FingerprintIdentifier(c *fiber.Ctx) string {
	return ratelimit.Fingerprint(c.IP(), c.Get(fiber.HeaderUserAgent))
}

func addRateLimitHeaders(c *fiber.Ctx, cfg ratelimit.Config, info dto.RateLimitInfo) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))

	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}

	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}

	retryAt := info.BlockedUntil
	if retryAt == nil && !info.Allowed {
		retryAt = info.ResetTime
	}
	if retryAt != nil {
		retryAfter := int(time.Until(*retryAt).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
	}
}

// ==================== ADMIN FUNCTIONS ====================

func (svc *RateLimitService) Stats() dto.RateLimitStatsResponse {
	names := make([]string, 0, len(svc.limiters))
	for name := range svc.limiters {
		names = append(names, name)
	}
	sort.Strings(names)

	stats := dto.RateLimitStatsResponse{Backend: svc.backend}
	for _, name := range names {
		cfg := svc.limiters[name].Config()
		stats.Surfaces = append(stats.Surfaces, dto.RateLimitSurfaceStats{
			Name:                name,
			MaxRequests:         cfg.MaxRequests,
			WindowSeconds:       int64(cfg.WindowSize.Seconds()),
			BurstThreshold:      cfg.DDoS.BurstThreshold,
			BurstWindowMs:       cfg.DDoS.BurstWindow.Milliseconds(),
			SuspiciousThreshold: cfg.DDoS.SuspiciousThreshold,
			BlockSeconds:        int64(cfg.DDoS.BlockDuration.Seconds()),
			FailClosed:          cfg.FailClosed,
		})
	}
	if svc.memoryStore != nil {
		entries, blocks := svc.memoryStore.Len()
		stats.ActiveEntries = &entries
		stats.ActiveBlocks = &blocks
	}
	return stats
}

func (svc *RateLimitService) ResetRateLimit(ctx context.Context, surface, identifier string) error {
	limiter, ok := svc.limiters[surface]
	if !ok {
		return shared.NewNotFoundError(nil, fmt.Sprintf("Unknown rate limit surface %q", surface))
	}
	if err := limiter.Reset(ctx, identifier); err != nil {
		return shared.NewInternalError(err, "Failed to reset rate limit")
	}
	return nil
}

func (svc *RateLimitService) UnblockIdentifier(ctx context.Context, surface, identifier string) error {
	limiter, ok := svc.limiters[surface]
	if !ok {
		return shared.NewNotFoundError(nil, fmt.Sprintf("Unknown rate limit surface %q", surface))
	}
	if err := limiter.Unblock(ctx, identifier); err != nil {
		return shared.NewInternalError(err, "Failed to unblock identifier")
	}
	return nil
}
