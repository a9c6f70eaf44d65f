package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"coinflip3d/internal/config"
	"coinflip3d/internal/crash"
	"coinflip3d/internal/db"
	httpServer "coinflip3d/internal/http"
	"coinflip3d/internal/http/middleware"
	"coinflip3d/internal/logger"
	"coinflip3d/internal/repository"
	"coinflip3d/internal/service"
	"coinflip3d/internal/ws"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if err := crash.Init(cfg.SentryDSN, version); err != nil {
		logger.Warn("sentry disabled", "error", err)
	}
	defer crash.Flush()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store := openStore(ctx, cfg)
	defer store.Close()

	if err := middleware.InitRedisRateLimiter(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CollabWaitAttempts, cfg.CollabWaitInterval); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", cfg.RedisAddr, "error", err)
	}
	defer middleware.CloseRedis()

	tokens, err := service.NewTokenService(cfg.JWTSecret, service.DefaultTokenTTL)
	if err != nil {
		logger.Fatal("token service", "error", err)
	}
	flips := service.NewFlipService(store, tokens, cfg.FlipSettings())

	hub := ws.NewHub(flips, ws.Config{
		FrameRate:    cfg.FrameRate,
		WaitAttempts: cfg.CollabWaitAttempts,
		WaitInterval: cfg.CollabWaitInterval,
	})
	hub.StartCleanup(ctx)

	gin.SetMode(gin.ReleaseMode)
	r := httpServer.NewRouter(flips, httpServer.Options{
		Store:         store,
		Hub:           hub,
		Version:       version,
		AllowedOrigin: cfg.AllowedOrigin,
		APIRateLimit:  cfg.APIRateLimit,
		APIRateWindow: cfg.APIRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// openStore prefers Postgres. If it does not come up within the bounded
// wait, flips are kept in the local sqlite file instead.
func openStore(ctx context.Context, cfg *config.Config) repository.FlipStore {
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.CollabWaitAttempts, cfg.CollabWaitInterval)
		if err == nil {
			return repository.NewPGFlipRepository(pool)
		}
		logger.Error("postgres unavailable, falling back to sqlite", "error", err, "path", cfg.SQLitePath)
	}

	store, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		logger.Fatal("open sqlite", "error", err, "path", cfg.SQLitePath)
	}
	logger.Info("using sqlite history store", "path", cfg.SQLitePath)
	return store
}
