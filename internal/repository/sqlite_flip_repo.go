package repository

import (
	"context"
	"database/sql"
	"time"

	"coinflip3d/internal/domain"
	"coinflip3d/internal/game"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS flips (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    player_id       INTEGER NOT NULL REFERENCES players(id),
    session_id      TEXT NOT NULL DEFAULT '',
    channel         TEXT NOT NULL,
    outcome         TEXT NOT NULL CHECK (outcome IN ('heads', 'tails')),
    spin_count      REAL NOT NULL,
    final_rotation  REAL NOT NULL,
    duration        REAL NOT NULL,
    snap_mode       TEXT NOT NULL,
    created_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS flips_player_created_idx ON flips (player_id, created_at DESC);
`

// SQLiteFlipRepository is the embedded store used when no Postgres is
// configured.
type SQLiteFlipRepository struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteFlipRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" to a single shared database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteFlipRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteFlipRepository) CreatePlayer(ctx context.Context) (*domain.Player, error) {
	p := &domain.Player{CreatedAt: r.now().UTC()}
	res, err := r.db.ExecContext(ctx, `INSERT INTO players (created_at) VALUES (?)`, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteFlipRepository) PlayerExists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM players WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

func (r *SQLiteFlipRepository) Create(ctx context.Context, f *domain.FlipRecord) error {
	f.CreatedAt = r.now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO flips
			(player_id, session_id, channel, outcome, spin_count, final_rotation, duration, snap_mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.PlayerID,
		f.SessionID,
		string(f.Channel),
		f.Outcome.String(),
		f.SpinCount,
		f.FinalRotation,
		f.Duration,
		string(f.SnapMode),
		f.CreatedAt,
	)
	if err != nil {
		return err
	}
	f.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteFlipRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.FlipRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, player_id, session_id, channel, outcome, spin_count,
				final_rotation, duration, snap_mode, created_at
		 FROM flips
		 WHERE player_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		playerID, clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

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

func (r *SQLiteFlipRepository) Stats(ctx context.Context, since time.Time) (*domain.FlipStats, error) {
	s := &domain.FlipStats{}
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(CASE WHEN outcome = 'heads' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'tails' THEN 1 ELSE 0 END), 0)
		 FROM flips
		 WHERE created_at >= ?`,
		since.UTC(),
	).Scan(&s.Heads, &s.Tails)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLiteFlipRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteFlipRepository) Close() {
	_ = r.db.Close()
}
