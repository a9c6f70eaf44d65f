package domain

import (
	"time"

	"coinflip3d/internal/game"
)

// FlipChannel records how a flip was requested.
type FlipChannel string

const (
	FlipChannelLive FlipChannel = "live" // websocket session, server-driven frames
	FlipChannelPlan FlipChannel = "plan" // HTTP, client plays the timeline
)

// Player is an anonymous visitor identified by a session token.
type Player struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FlipRecord is one settled (or planned) flip.
type FlipRecord struct {
	ID            int64         `db:"id" json:"id"`
	PlayerID      int64         `db:"player_id" json:"player_id"`
	SessionID     string        `db:"session_id" json:"session_id,omitempty"`
	Channel       FlipChannel   `db:"channel" json:"channel"`
	Outcome       game.Outcome  `db:"outcome" json:"outcome"`
	SpinCount     float64       `db:"spin_count" json:"spin_count"`
	FinalRotation float64       `db:"final_rotation" json:"final_rotation"`
	Duration      float64       `db:"duration" json:"duration"`
	SnapMode      game.SnapMode `db:"snap_mode" json:"snap_mode"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// FlipStats aggregates outcomes over a period.
type FlipStats struct {
	Heads int64 `json:"heads"`
	Tails int64 `json:"tails"`
}

func (s FlipStats) Total() int64 {
	return s.Heads + s.Tails
}

// HeadsRatio is 0 when there are no flips.
func (s FlipStats) HeadsRatio() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Heads) / float64(s.Total())
}
