package service

import (
	"context"
	"fmt"
	"time"

	"coinflip3d/internal/anim"
	"coinflip3d/internal/coin"
	"coinflip3d/internal/domain"
	"coinflip3d/internal/game"
	"coinflip3d/internal/logger"
	"coinflip3d/internal/repository"
	"coinflip3d/internal/scene"
)

const historyWriteTimeout = 5 * time.Second

// Session is what a new visitor gets back.
type Session struct {
	PlayerID int64  `json:"player_id"`
	Token    string `json:"token"`
}

// PlannedFlip is a flip choreographed on the server for the client to play.
type PlannedFlip struct {
	ID            int64               `json:"id"`
	Outcome       game.Outcome        `json:"outcome"`
	Label         string              `json:"label"`
	Params        game.FlipParameters `json:"params"`
	FinalRotation float64             `json:"final_rotation"`
	SettleAt      float64             `json:"settle_at"`
	Timeline      *anim.Timeline      `json:"timeline"`
}

// FlipService ties outcome selection and choreography to players and the
// history store.
type FlipService struct {
	store    repository.FlipStore
	tokens   *TokenService
	settings game.Settings
	rig      scene.Rig
	src      game.Source
}

func NewFlipService(store repository.FlipStore, tokens *TokenService, settings game.Settings) *FlipService {
	return &FlipService{
		store:    store,
		tokens:   tokens,
		settings: settings,
		rig:      scene.DefaultRig(),
		src:      game.CryptoSource{},
	}
}

// WithSource swaps the randomness, for replays and tests.
func (s *FlipService) WithSource(src game.Source) *FlipService {
	s.src = src
	return s
}

func (s *FlipService) Settings() game.Settings {
	return s.settings
}

func (s *FlipService) Rig() scene.Rig {
	return s.rig
}

func (s *FlipService) Tokens() *TokenService {
	return s.tokens
}

// StartSession registers an anonymous player and issues its token.
func (s *FlipService) StartSession(ctx context.Context) (*Session, error) {
	p, err := s.store.CreatePlayer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	tok, err := s.tokens.GenerateJWT(p.ID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{PlayerID: p.ID, Token: tok}, nil
}

// Authenticate resolves a token to a known player.
func (s *FlipService) Authenticate(ctx context.Context, token string) (int64, error) {
	id, err := s.tokens.ParseJWT(token)
	if err != nil {
		return 0, err
	}
	ok, err := s.store.PlayerExists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, repository.ErrPlayerNotFound
	}
	return id, nil
}

// Plan commits an outcome, choreographs it and records it. The client
// replays the returned timeline with its own tween engine.
func (s *FlipService) Plan(ctx context.Context, playerID int64) (*PlannedFlip, error) {
	outcome := game.SelectOutcome(s.src)
	params := s.settings.NewFlipParameters(s.src)
	tl := coin.PlanFlip(outcome, params, s.rig)
	if err := tl.Err(); err != nil {
		return nil, fmt.Errorf("plan flip: %w", err)
	}

	rec := &domain.FlipRecord{
		PlayerID:      playerID,
		Channel:       domain.FlipChannelPlan,
		Outcome:       outcome,
		SpinCount:     params.SpinCount,
		FinalRotation: params.FinalRotation(outcome),
		Duration:      params.TotalDuration,
		SnapMode:      params.SnapMode,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		HistoryWriteErrors.Inc()
		return nil, fmt.Errorf("record flip: %w", err)
	}
	FlipsTotal.WithLabelValues(outcome.String(), string(domain.FlipChannelPlan)).Inc()

	return &PlannedFlip{
		ID:            rec.ID,
		Outcome:       outcome,
		Label:         outcome.Label(),
		Params:        params,
		FinalRotation: rec.FinalRotation,
		SettleAt:      coin.SettleTime(params.TotalDuration),
		Timeline:      tl,
	}, nil
}

// RecordLive stores the result of a server-driven flip. It runs off the
// session's frame loop with its own timeout.
func (s *FlipService) RecordLive(playerID int64, sessionID string, res coin.Result) {
	FlipsTotal.WithLabelValues(res.Outcome.String(), string(domain.FlipChannelLive)).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()

	rec := &domain.FlipRecord{
		PlayerID:      playerID,
		SessionID:     sessionID,
		Channel:       domain.FlipChannelLive,
		Outcome:       res.Outcome,
		SpinCount:     res.Params.SpinCount,
		FinalRotation: res.FinalRotation,
		Duration:      res.Params.TotalDuration,
		SnapMode:      res.Params.SnapMode,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		HistoryWriteErrors.Inc()
		logger.Error("FlipService.RecordLive: failed to record flip", "error", err, "player_id", playerID, "session", sessionID)
	}
}

func (s *FlipService) History(ctx context.Context, playerID int64, limit int) ([]*domain.FlipRecord, error) {
	return s.store.GetByPlayer(ctx, playerID, limit)
}

func (s *FlipService) Stats(ctx context.Context, since time.Time) (*domain.FlipStats, error) {
	return s.store.Stats(ctx, since)
}

// NewFlipper builds a live session wired to this service's settings.
func (s *FlipService) NewFlipper(r coin.Renderer, ui coin.UI, onResult func(coin.Result)) (*coin.Flipper, error) {
	return coin.NewFlipper(coin.Deps{
		Renderer: r,
		UI:       ui,
		Source:   s.src,
		Settings: s.settings,
		Rig:      s.rig,
		OnResult: onResult,
	})
}
