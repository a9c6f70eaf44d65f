package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"coinflip3d/internal/coin"
	"coinflip3d/internal/crash"
	"coinflip3d/internal/game"
	"coinflip3d/internal/scene"
	"coinflip3d/internal/service"
	"coinflip3d/internal/waitfor"
)

// Session is one live flip: a Flipper driven by its own loop, rendering
// into the client's websocket. It is the Flipper's Renderer and UI.
type Session struct {
	ID        string
	client    *Client
	hub       *Hub
	log       *slog.Logger
	createdAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	hello    *HelloPayload
	flipper  *coin.Flipper
	failedAt time.Time

	// owned by the loop goroutine
	last     scene.Snapshot
	rendered bool
}

func newSession(id string, c *Client, h *Hub) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		client:    c,
		hub:       h,
		log:       c.log.With("session", id),
		createdAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start sends the handshake and waits, in the background, for the client
// to report its renderer. The loop starts once it has.
func (s *Session) Start() {
	rig := s.hub.svc.Rig()
	s.sendControl(MsgReady, ReadyPayload{
		SessionID: s.ID,
		FrameRate: s.hub.cfg.FrameRate,
		Camera:    CameraPose{Position: rig.Position, Target: rig.Target},
	})
	go s.run()
}

func (s *Session) run() {
	defer s.recoverPanic("loop")

	err := waitfor.Poll(s.ctx, s.hub.cfg.WaitAttempts, s.hub.cfg.WaitInterval, func(context.Context) bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.hello != nil
	})
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		s.fail(coin.ErrRendererUnavailable)
		return
	}

	s.mu.Lock()
	hello := *s.hello
	s.mu.Unlock()
	if !hello.Timeline {
		s.fail(coin.ErrTimelineUnavailable)
		return
	}

	renderer := coin.Renderer(s)
	if !hello.Renderer {
		renderer = nil
	}
	f, err := s.hub.svc.NewFlipper(renderer, s, s.onResult)
	if err != nil {
		s.fail(err)
		return
	}

	s.mu.Lock()
	s.flipper = f
	s.mu.Unlock()

	s.log.Info("Session.run: flipper ready")
	if err := coin.NewLoop(f, s.hub.cfg.FrameRate).Run(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("Session.run: loop stopped", "error", err)
	}
}

// fail shows the fallback message. The connection stays open so the page
// can keep displaying it; the hub reaps it later.
func (s *Session) fail(err error) {
	s.log.Warn("Session: collaborators unavailable", "error", err)
	s.mu.Lock()
	s.failedAt = time.Now()
	s.mu.Unlock()
	s.sendControl(MsgError, ErrorPayload{Message: fallbackMessage(err)})
}

func fallbackMessage(err error) string {
	switch {
	case errors.Is(err, coin.ErrRendererUnavailable):
		return "3D rendering is not available. Please reload the page."
	case errors.Is(err, coin.ErrTimelineUnavailable):
		return "Animation library failed to load. Please reload the page."
	default:
		return "Coin flip is not available right now."
	}
}

func (s *Session) HandleMessage(raw []byte) {
	defer s.recoverPanic("read")

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.sendControl(MsgError, ErrorPayload{Message: "invalid message"})
		return
	}

	switch env.Type {
	case MsgHello:
		var hello HelloPayload
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &hello); err != nil {
				s.sendControl(MsgError, ErrorPayload{Message: "invalid hello"})
				return
			}
		}
		s.mu.Lock()
		if s.hello == nil {
			s.hello = &hello
		}
		s.mu.Unlock()

	case MsgFlip:
		s.flip()

	case MsgPing:
		s.sendControl(MsgPong, nil)

	default:
		s.sendControl(MsgError, ErrorPayload{Message: "unknown message type"})
	}
}

// flip asks the flipper for a new flip. Requests while one is running, or
// before the session is ready, are dropped without a reply.
func (s *Session) flip() {
	s.mu.Lock()
	f := s.flipper
	s.mu.Unlock()
	if f == nil {
		s.log.Debug("Session.flip: not ready, dropped")
		return
	}

	fl, ok := f.Flip()
	if !ok {
		service.FlipsDropped.Inc()
		return
	}
	s.sendControl(MsgFlipStarted, FlipStartedPayload{
		Seq:      fl.Seq,
		Params:   fl.Params,
		SettleAt: coin.SettleTime(fl.Params.TotalDuration),
	})
}

func (s *Session) onResult(res coin.Result) {
	go s.hub.svc.RecordLive(s.client.PlayerID, s.ID, res)
}

// Render pushes the frame unless it is identical to the previous one, so
// an idle session goes quiet.
func (s *Session) Render(snap scene.Snapshot) {
	if s.rendered && snap == s.last {
		return
	}
	msg, err := encode(MsgFrame, framePayload(snap))
	if err != nil {
		s.log.Error("Session.Render: encode failed", "error", err)
		return
	}
	if s.client.trySend(msg) {
		s.last = snap
		s.rendered = true
		service.FramesSent.Inc()
	}
}

func (s *Session) HideInstruction() {
	s.sendControl(MsgHideInstruction, nil)
}

func (s *Session) ClearResult() {
	s.sendControl(MsgClearResult, nil)
}

func (s *Session) ShowResult(o game.Outcome) {
	s.sendControl(MsgResult, ResultPayload{Outcome: o, Label: o.Label()})
}

func (s *Session) sendControl(msgType string, payload any) {
	msg, err := encode(msgType, payload)
	if err != nil {
		s.log.Error("Session.sendControl: encode failed", "type", msgType, "error", err)
		return
	}
	s.client.sendControl(msg)
}

// recoverPanic reports a panic and drops the connection; the hub then
// closes the session.
func (s *Session) recoverPanic(where string) {
	if r := recover(); r != nil {
		crash.Report(r, map[string]string{
			"conn_type": "ws",
			"session":   s.ID,
			"where":     where,
		})
		s.client.close()
	}
}

func (s *Session) failed() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedAt, !s.failedAt.IsZero()
}

func (s *Session) stop() {
	s.cancel()
}
