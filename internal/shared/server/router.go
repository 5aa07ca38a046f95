package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	googleauth "dossier-backend/internal/auth"
	"dossier-backend/internal/credentials"
	"dossier-backend/internal/export"
	"dossier-backend/internal/services/health"
	"dossier-backend/internal/shared/config"
	"dossier-backend/internal/shared/metrics"
	"dossier-backend/internal/shared/server/middleware"
	"dossier-backend/internal/shared/server/respond"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupExport  = "EXPORT"
)

// RouterDeps holds the handlers and services the router wires up.
type RouterDeps struct {
	Config        config.Config
	Health        *health.Service
	ExportHandler *export.Handler
	GoogleAuth    *googleauth.GoogleService
	Credentials   credentials.Repo
	Gatherer      prometheus.Gatherer
	RateLimiter   *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(middleware.WithPlainTextErrors(isExportRoute)),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.RateLimiter,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupDefault: {Rate: 10, Burst: 20},
				rateGroupExport:  {Rate: 0.2, Burst: 3},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler(deps.Gatherer))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	registerMeRoutes(api, deps.Credentials)
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}

	return r
}

func isExportRoute(c *gin.Context) bool {
	return strings.HasPrefix(c.FullPath(), "/api/v1/procedures/:id/export")
}

func rateGroupFor(c *gin.Context) string {
	if isExportRoute(c) {
		return rateGroupExport
	}
	return rateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
