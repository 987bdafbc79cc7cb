package services

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lac-hong-legacy/footage_api/dto"
	"github.com/lac-hong-legacy/footage_api/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "footage_api"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	httpRequestsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "Number of active concurrent HTTP requests",
		},
		[]string{"method"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Protection Metrics
var (
	rateLimitDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Rate limit decisions by surface and outcome",
		},
		[]string{"surface", "outcome"},
	)

	downloadOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "download_outcomes_total",
			Help: "Download executions by outcome",
		},
		[]string{"outcome"},
	)

	planChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_changes_total",
			Help: "Plan changes by effective timing",
		},
		[]string{"effective_date"},
	)
)

// System Metrics
var (
	heapAllocBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "heap_alloc_bytes",
			Help: "Heap memory allocated in bytes",
		},
	)

	gcTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gc_total",
			Help: "Total number of garbage collections",
		},
	)
)

const (
	outcomeAllowed  = "allowed"
	outcomeLimited  = "limited"
	outcomeBlocked  = "blocked"
	outcomeDetected = "ddos_detected"

	outcomeRecorded = "recorded"
	outcomeRepeat   = "already_downloaded"
	outcomeDenied   = "denied"
)

func rateLimitOutcome(info dto.RateLimitInfo) string {
	switch {
	case info.Allowed:
		return outcomeAllowed
	case info.IsDDoSDetected:
		return outcomeDetected
	case info.IsBlocked:
		return outcomeBlocked
	default:
		return outcomeLimited
	}
}

func recordRateLimitDecision(surface string, info dto.RateLimitInfo) {
	rateLimitDecisionsTotal.WithLabelValues(surface, rateLimitOutcome(info)).Inc()
}

func recordDownloadOutcome(result dto.DownloadResult) {
	switch {
	case !result.Success:
		downloadOutcomesTotal.WithLabelValues(outcomeDenied).Inc()
	case result.AlreadyDownloaded:
		downloadOutcomesTotal.WithLabelValues(outcomeRepeat).Inc()
	default:
		downloadOutcomesTotal.WithLabelValues(outcomeRecorded).Inc()
	}
}

func recordPlanChange(result *dto.PlanChangeResult) {
	if result == nil || !result.Changed {
		return
	}
	planChangesTotal.WithLabelValues(result.EffectiveDate).Inc()
}

type MonitoringService struct {
	appContext.DefaultService

	port     int
	register *prometheus.Registry

	closed      chan struct{}
	server      *fiber.App
	lastGCCount uint32
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *appContext.Context) error {
	port, err := strconv.Atoi(os.Getenv("PROMETHEUS_PORT"))
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	svc.register = newRegistry()
	return svc.DefaultService.Configure(ctx)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()

	// Register default collectors (includes Go runtime metrics like memory)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reg.MustRegister(
		httpRequestsTotal,
		httpRequestsActive,
		httpRequestDurationSeconds,
		rateLimitDecisionsTotal,
		downloadOutcomesTotal,
		planChangesTotal,
		heapAllocBytes,
		gcTotal,
	)
	return reg
}

func (svc *MonitoringService) Start() error {
	svc.closed = make(chan struct{}, 1)

	go svc.updateMemoryMetrics()

	svc.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	})
	svc.server.Use(recover.New())

	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Prometheus metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	svc.closed <- struct{}{}
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

// updateMemoryMetrics updates memory-related metrics every 15 seconds
func (svc *MonitoringService) updateMemoryMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			heapAllocBytes.Set(float64(m.Alloc))

			// Update GC count (only increment difference)
			if m.NumGC > svc.lastGCCount {
				gcTotal.Add(float64(m.NumGC - svc.lastGCCount))
				svc.lastGCCount = m.NumGC
			}

		case <-svc.closed:
			log.Info().Msg("Memory metrics updater stopped")
			return
		}
	}
}

// MonitoringMiddleware records request counts and latency per route pattern.
func MonitoringMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		httpRequestsActive.WithLabelValues(c.Method()).Inc()
		defer httpRequestsActive.WithLabelValues(c.Method()).Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if appErr, ok := shared.GetAppError(err); ok {
			status = appErr.StatusCode
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		statusStr := strconv.Itoa(status)

		// Route pattern, not the raw path, to bound label cardinality
		endpoint := c.Route().Path
		httpRequestsTotal.WithLabelValues(endpoint, c.Method(), statusStr).Inc()
		httpRequestDurationSeconds.WithLabelValues(endpoint, c.Method(), statusStr).Observe(time.Since(start).Seconds())
		return err
	}
}
