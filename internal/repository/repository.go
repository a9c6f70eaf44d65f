package repository

import (
	"context"
	"errors"
	"time"

	"coinflip3d/internal/domain"
)

var ErrPlayerNotFound = errors.New("player not found")

// FlipStore persists players and their flip history. PGFlipRepository and
// SQLiteFlipRepository implement it.
type FlipStore interface {
	CreatePlayer(ctx context.Context) (*domain.Player, error)
	PlayerExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, f *domain.FlipRecord) error
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.FlipRecord, error)
	Stats(ctx context.Context, since time.Time) (*domain.FlipStats, error)
	Ping(ctx context.Context) error
	Close()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
