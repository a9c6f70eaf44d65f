package repository

import (
	"context"
	"time"

	"coinflip3d/internal/domain"
	"coinflip3d/internal/game"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGFlipRepository struct {
	db *pgxpool.Pool
}

func NewPGFlipRepository(db *pgxpool.Pool) *PGFlipRepository {
	return &PGFlipRepository{db: db}
}

func (r *PGFlipRepository) CreatePlayer(ctx context.Context) (*domain.Player, error) {
	p := &domain.Player{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO players DEFAULT VALUES RETURNING id, created_at`,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGFlipRepository) PlayerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// Create сохраняет бросок в историю
func (r *PGFlipRepository) Create(ctx context.Context, f *domain.FlipRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO flips
			(player_id, session_id, channel, outcome, spin_count, final_rotation, duration, snap_mode)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		f.PlayerID,
		f.SessionID,
		string(f.Channel),
		f.Outcome.String(),
		f.SpinCount,
		f.FinalRotation,
		f.Duration,
		string(f.SnapMode),
	).Scan(&f.ID, &f.CreatedAt)
}

func (r *PGFlipRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.FlipRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, player_id, session_id, channel, outcome, spin_count,
				final_rotation, duration, snap_mode, created_at
		 FROM flips
		 WHERE player_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		playerID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFlips(rows)
}

func scanFlips(rows pgx.Rows) ([]*domain.FlipRecord, error) {
	var out []*domain.FlipRecord
	for rows.Next() {
		f := &domain.FlipRecord{}
		var channel, outcome, snap string
		if err := rows.Scan(&f.ID, &f.PlayerID, &f.SessionID, &channel, &outcome,
			&f.SpinCount, &f.FinalRotation, &f.Duration, &snap, &f.CreatedAt); err != nil {
			return nil, err
		}
		o, err := game.ParseOutcome(outcome)
		if err != nil {
			return nil, err
		}
		f.Outcome = o
		f.Channel = domain.FlipChannel(channel)
		f.SnapMode = game.SnapMode(snap)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGFlipRepository) Stats(ctx context.Context, since time.Time) (*domain.FlipStats, error) {
	s := &domain.FlipStats{}
	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE outcome = 'heads'),
			COUNT(*) FILTER (WHERE outcome = 'tails')
		 FROM flips
		 WHERE created_at >= $1`,
		since,
	).Scan(&s.Heads, &s.Tails)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PGFlipRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PGFlipRepository) Close() {
	r.db.Close()
}
