package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	docs "github.com/lac-hong-legacy/footage_api/docs"
	"github.com/lac-hong-legacy/footage_api/services/handlers"
	"github.com/lac-hong-legacy/footage_api/shared"
	log "github.com/sirupsen/logrus"
)

type HttpService struct {
	appContext.DefaultService

	authSvc      *AuthMiddleware
	rateLimitSvc *RateLimitService

	downloadHandler *handlers.DownloadHandler
	videoHandler    *handlers.VideoHandler
	adminHandler    *handlers.AdminHandler

	port           int
	proxyHeader    string
	trustedProxies []string
	app            *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *appContext.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	svc.proxyHeader = os.Getenv("PROXY_HEADER")
	if svc.proxyHeader == "" {
		svc.proxyHeader = fiber.HeaderXForwardedFor
	}
	svc.trustedProxies = parseTrustedProxies(os.Getenv("TRUSTED_PROXIES"))

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)

	svc.downloadHandler = handlers.NewDownloadHandler(svc.Service(DOWNLOAD_SVC).(*DownloadService))
	svc.videoHandler = handlers.NewVideoHandler(svc.Service(VIDEO_SVC).(*VideoService))
	svc.adminHandler = handlers.NewAdminHandler(svc.rateLimitSvc)

	svc.app = svc.newApp()
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// parseTrustedProxies reads a comma separated list of IPs or CIDR ranges.
func parseTrustedProxies(raw string) []string {
	var proxies []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

// fiberConfig only honours the proxy header for peers in TrustedProxies.
// With none configured, c.IP() is always the socket peer.
func (svc *HttpService) fiberConfig() fiber.Config {
	return fiber.Config{
		DisableStartupMessage:   os.Getenv("LOG_LEVEL") == "INFO",
		JSONEncoder:             shared.JSONMarshal,
		JSONDecoder:             shared.JSONUnmarshal,
		BodyLimit:               maxVideoUploadSize + 1<<20,
		ErrorHandler:            svc.errorHandler,
		ProxyHeader:             svc.proxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          svc.trustedProxies,
		EnableIPValidation:      true,
	}
}

func (svc *HttpService) newApp() *fiber.App {
	app := fiber.New(svc.fiberConfig())
	docs.SwaggerInfo.BasePath = ""

	app.Use(recover.New())
	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After",
	}))
	app.Use(MonitoringMiddleware())

	//Validation endpoints
	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	limit := svc.rateLimitSvc.RateLimit
	app.Use(limit(SurfaceGeneral, ClientIdentifier))

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	v1.Get("/videos", svc.videoHandler.ListVideos)
	v1.Get("/videos/:videoId", svc.videoHandler.GetVideo)

	// Failed token checks are counted per fingerprint, successful ones are refunded.
	authed := v1.Group("",
		limit(SurfaceAuth, FingerprintIdentifier),
		svc.authSvc.RequiredAuth(),
		limit(SurfaceAPI, ClientIdentifier),
	)

	authed.Get("/downloads/usage", svc.downloadHandler.GetUsage)
	authed.Get("/downloads/history", svc.downloadHandler.GetHistory)
	authed.Get("/downloads/:videoId/permission", svc.downloadHandler.CheckPermission)
	authed.Post("/downloads/:videoId", limit(SurfaceDownload, ClientIdentifier), svc.downloadHandler.Download)
	authed.Get("/subscription/plan-changes", svc.downloadHandler.GetPlanChanges)

	admin := authed.Group("/admin", svc.authSvc.RequireRole(RoleAdmin))
	admin.Post("/videos", limit(SurfaceUpload, ClientIdentifier), svc.videoHandler.UploadVideo)
	admin.Get("/videos/stats", svc.videoHandler.GetStatistics)
	admin.Delete("/videos/:videoId", svc.videoHandler.DeleteVideo)
	admin.Put("/subscriptions/:userId/plan", svc.downloadHandler.ChangePlan)
	admin.Get("/rate-limits", svc.adminHandler.GetRateLimitStats)
	admin.Post("/rate-limits/reset", svc.adminHandler.ResetRateLimit)
	admin.Post("/rate-limits/unblock", svc.adminHandler.UnblockIdentifier)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	return app
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseOK(c, "pong")
}

func (svc *HttpService) errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
