package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/procurement-api/internal/config"
	"github.com/jwalitptl/procurement-api/internal/handler/health"
	"github.com/jwalitptl/procurement-api/internal/handler/prometheus"
	"github.com/jwalitptl/procurement-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	authH     Handler
	protected []Handler
	health    *health.Handler
	metrics   *prometheus.Handler
	cfg       *config.Config
}

// Handlers groups everything mounted under /api/v1
type Handlers struct {
	Auth         Handler
	User         Handler
	Project      Handler
	Item         Handler
	Alert        Handler
	Notification Handler
	Health       *health.Handler
}

func NewRouter(cfg *config.Config, auth *middleware.AuthMiddleware, handlers Handlers, metrics *prometheus.Handler) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	engine := gin.New()

	r := &Router{
		engine:  engine,
		auth:    auth,
		authH:   handlers.Auth,
		health:  handlers.Health,
		metrics: metrics,
		cfg:     cfg,
		protected: []Handler{
			handlers.User,
			handlers.Project,
			handlers.Item,
			handlers.Alert,
			handlers.Notification,
		},
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.ErrorHandler(),
		middleware.CORS(cfg.CORS),
	)

	if cfg.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	if metrics != nil {
		engine.Use(metrics.Middleware())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	for _, h := range r.protected {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	if r.health != nil {
		r.health.RegisterRoutes(health)
	}

	if r.metrics != nil && r.cfg.Monitoring.PrometheusEnabled {
		r.engine.GET(r.cfg.Monitoring.MetricsPath, r.metrics.Handler())
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
