package ws

import (
	"context"
	"strconv"
	"sync"
	"time"

	"coinflip3d/internal/logger"
	"coinflip3d/internal/service"
)

// Config tunes live sessions.
type Config struct {
	FrameRate    int
	WaitAttempts int
	WaitInterval time.Duration
	// FailedTTL is how long a session that never became ready is kept
	// open showing the fallback message.
	FailedTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		FrameRate:    60,
		WaitAttempts: 50,
		WaitInterval: 100 * time.Millisecond,
		FailedTTL:    10 * time.Minute,
	}
}

type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	seq      int64

	svc *service.FlipService
	cfg Config
}

func NewHub(svc *service.FlipService, cfg Config) *Hub {
	def := DefaultConfig()
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = def.FrameRate
	}
	if cfg.WaitAttempts <= 0 {
		cfg.WaitAttempts = def.WaitAttempts
	}
	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = def.WaitInterval
	}
	if cfg.FailedTTL <= 0 {
		cfg.FailedTTL = def.FailedTTL
	}
	return &Hub{
		sessions: make(map[string]*Session),
		svc:      svc,
		cfg:      cfg,
	}
}

// Open creates and tracks the session for a new connection.
func (h *Hub) Open(c *Client) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	s := newSession(strconv.FormatInt(h.seq, 10), c, h)
	h.sessions[s.ID] = s
	service.SessionsActive.Inc()
	return s
}

// Close stops the session's loop and forgets it. Safe to call twice.
func (h *Hub) Close(s *Session) {
	s.stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID]; ok {
		delete(h.sessions, s.ID)
		service.SessionsActive.Dec()
		logger.Info("Hub.Close: session closed", "session", s.ID, "age", time.Since(s.createdAt).Round(time.Second).String())
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// StartCleanup reaps sessions stuck on the fallback message until ctx ends.
func (h *Hub) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupFailedSessions(time.Now())
			}
		}
	}()
}

func (h *Hub) cleanupFailedSessions(now time.Time) int {
	h.mu.RLock()
	var stale []*Session
	for _, s := range h.sessions {
		if at, ok := s.failed(); ok && now.Sub(at) > h.cfg.FailedTTL {
			stale = append(stale, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range stale {
		logger.Info("Hub.cleanup: closing failed session", "session", s.ID)
		s.client.close()
		h.Close(s)
	}
	return len(stale)
}

// Shutdown closes every live session.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	all := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		all = append(all, s)
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.client.close()
		h.Close(s)
	}
}
