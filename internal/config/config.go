package config

import (
	"fmt"
	"time"

	"coinflip3d/internal/game"
	"coinflip3d/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string `env:"APP_PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"false"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN"`
	JWTSecret     string `env:"JWT_SECRET,required,notEmpty"`
	SentryDSN     string `env:"SENTRY_DSN"`

	// History store: Postgres when DatabaseURL is set, sqlite otherwise.
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"coinflip.db"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	APIRateLimit  int           `env:"API_RATE_LIMIT" envDefault:"60"`
	APIRateWindow time.Duration `env:"API_RATE_WINDOW" envDefault:"1m"`

	FlipDuration       time.Duration `env:"FLIP_DURATION" envDefault:"3s"`
	FlipPeakHeight     float64       `env:"FLIP_PEAK_HEIGHT" envDefault:"6"`
	FlipAscendFraction float64       `env:"FLIP_ASCEND_FRACTION" envDefault:"0.4"`
	FlipSpinMin        float64       `env:"FLIP_SPIN_MIN" envDefault:"8"`
	FlipSpinMax        float64       `env:"FLIP_SPIN_MAX" envDefault:"14"`
	FlipSnapMode       string        `env:"FLIP_SNAP_MODE" envDefault:"floor"`
	FrameRate          int           `env:"FRAME_RATE" envDefault:"60"`

	// Bounded wait for collaborators that come up asynchronously.
	CollabWaitAttempts int           `env:"COLLAB_WAIT_ATTEMPTS" envDefault:"50"`
	CollabWaitInterval time.Duration `env:"COLLAB_WAIT_INTERVAL" envDefault:"100ms"`
}

// Parse reads the environment (and .env if present) into a Config.
func Parse() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.FlipSettings().Validate(); err != nil {
		return nil, fmt.Errorf("flip settings: %w", err)
	}
	if cfg.FrameRate <= 0 || cfg.FrameRate > 240 {
		return nil, fmt.Errorf("FRAME_RATE must be in 1..240, got %d", cfg.FrameRate)
	}
	return &cfg, nil
}

// Load is Parse for main: configuration errors are fatal.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

func (c *Config) FlipSettings() game.Settings {
	return game.Settings{
		TotalDuration:  c.FlipDuration,
		PeakHeight:     c.FlipPeakHeight,
		AscendFraction: c.FlipAscendFraction,
		SpinMin:        c.FlipSpinMin,
		SpinMax:        c.FlipSpinMax,
		SnapMode:       game.SnapMode(c.FlipSnapMode),
	}
}

func (c *Config) Address() string {
	return ":" + c.AppPort
}
