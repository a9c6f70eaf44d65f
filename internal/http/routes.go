package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"coinflip3d/internal/http/handlers"
	"coinflip3d/internal/http/middleware"
	"coinflip3d/internal/repository"
	"coinflip3d/internal/service"
	"coinflip3d/internal/ws"
)

// Options carries what the routes need beyond the flip service.
type Options struct {
	Store          repository.FlipStore
	Hub            *ws.Hub
	Version        string
	AllowedOrigin  string
	APIRateLimit   int
	APIRateWindow  time.Duration
	FlipRateLimit  int
	FlipRateWindow time.Duration
}

func NewRouter(flips *service.FlipService, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Observe(), middleware.CORS(opts.AllowedOrigin))
	RegisterRoutes(r, flips, opts)
	return r
}

func RegisterRoutes(r *gin.Engine, flips *service.FlipService, opts Options) {
	if opts.APIRateLimit <= 0 {
		opts.APIRateLimit = 60
	}
	if opts.APIRateWindow <= 0 {
		opts.APIRateWindow = time.Minute
	}
	if opts.FlipRateLimit <= 0 {
		opts.FlipRateLimit = opts.APIRateLimit
	}
	if opts.FlipRateWindow <= 0 {
		opts.FlipRateWindow = opts.APIRateWindow
	}

	h := handlers.NewHandler(flips)
	healthHandler := handlers.NewHealthHandler(opts.Store, opts.Version).
		WithCheck("redis", handlers.PingFunc(middleware.PingRedis))
	if opts.Hub != nil {
		healthHandler.WithSessions(opts.Hub.Count)
	}

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(opts.APIRateLimit, opts.APIRateWindow))
	{
		v1.POST("/session", h.StartSession)
		v1.GET("/settings", h.Settings)
		v1.GET("/stats", h.Stats)

		auth := middleware.JWT(flips)
		v1.POST("/flip", auth, middleware.PlayerRateLimit(opts.FlipRateLimit, opts.FlipRateWindow), h.Flip)
		v1.GET("/flips", auth, h.History)
	}

	if opts.Hub != nil {
		r.GET("/ws", ws.HandleWS(opts.Hub, flips, opts.AllowedOrigin))
	}
}
