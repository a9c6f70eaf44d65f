package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"coinflip3d/internal/domain"
	"coinflip3d/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration test: runs only if DATABASE_URL is set.
func TestPGFlipRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	b, err := os.ReadFile(filepath.Join("..", "migrations", "001_flips.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	r := NewPGFlipRepository(pool)
	p, err := r.CreatePlayer(ctx)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	since := time.Now().Add(-time.Minute)
	before, err := r.Stats(ctx, since)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	rec := &domain.FlipRecord{
		PlayerID:      p.ID,
		Channel:       domain.FlipChannelPlan,
		Outcome:       game.Heads,
		SpinCount:     10,
		FinalRotation: game.ComputeFinalRotation(game.Heads, 10),
		Duration:      3,
		SnapMode:      game.SnapFloor,
	}
	if err := r.Create(ctx, rec); err != nil {
		t.Fatalf("create flip: %v", err)
	}

	got, err := r.GetByPlayer(ctx, p.ID, 10)
	if err != nil || len(got) != 1 || got[0].ID != rec.ID || got[0].Outcome != game.Heads {
		t.Fatalf("get by player: %v %+v", err, got)
	}

	after, err := r.Stats(ctx, since)
	if err != nil || after.Heads != before.Heads+1 {
		t.Fatalf("stats after insert: %+v (before %+v) %v", after, before, err)
	}
}
