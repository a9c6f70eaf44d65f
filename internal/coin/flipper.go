// Package coin runs coin-flip sessions: it admits flip requests, plans the
// choreography and drives it frame by frame against a scene.
package coin

import (
	"errors"
	"sync"
	"time"

	"coinflip3d/internal/anim"
	"coinflip3d/internal/game"
	"coinflip3d/internal/logger"
	"coinflip3d/internal/scene"
)

var (
	ErrRendererUnavailable = errors.New("renderer unavailable")
	ErrTimelineUnavailable = errors.New("timeline engine unavailable")
)

// Renderer paints a scene snapshot. It only reads.
type Renderer interface {
	Render(scene.Snapshot)
}

// UI receives visibility changes. Calls are made after the session is
// unlocked, in the order the changes happened, on the goroutine that caused
// them.
type UI interface {
	HideInstruction()
	ClearResult()
	ShowResult(game.Outcome)
}

// State guards against overlapping flips.
type State struct {
	IsFlipping        bool `json:"is_flipping"`
	IsCameraAnimating bool `json:"is_camera_animating"`
}

func (s State) Busy() bool {
	return s.IsFlipping || s.IsCameraAnimating
}

// Flip describes one admitted flip.
type Flip struct {
	Seq           int64               `json:"seq"`
	Outcome       game.Outcome        `json:"outcome"`
	Params        game.FlipParameters `json:"params"`
	FinalRotation float64             `json:"final_rotation"`
	Timeline      *anim.Timeline      `json:"timeline"`
}

// Result is published when the coin has settled.
type Result struct {
	Flip
	RestingRotation float64 `json:"resting_rotation"`
}

// Deps are the session's collaborators.
type Deps struct {
	Renderer Renderer
	UI       UI
	Source   game.Source
	Settings game.Settings
	Rig      scene.Rig
	// OnResult runs right after ShowResult, outside the session lock.
	OnResult func(Result)
	// Clock stamps flip admission; defaults to time.Now.
	Clock func() time.Time
}

// Flipper is one coin-flip session. At most one flip is live at a time.
type Flipper struct {
	mu       sync.Mutex
	deps     Deps
	scene    scene.Scene
	state    State
	player   *anim.Player
	current  *Flip
	seq      int64
	rendered float64

	// when the live flip was admitted; see TickBetween
	admittedAt time.Time
	// UI notifications raised under mu, delivered by unlock
	pending []func()
}

func NewFlipper(deps Deps) (*Flipper, error) {
	if deps.Renderer == nil {
		return nil, ErrRendererUnavailable
	}
	if err := deps.Settings.Validate(); err != nil {
		return nil, err
	}
	if deps.UI == nil {
		deps.UI = nopUI{}
	}
	if deps.Source == nil {
		deps.Source = game.CryptoSource{}
	}
	if deps.Rig == (scene.Rig{}) {
		deps.Rig = scene.DefaultRig()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	f := &Flipper{deps: deps}
	f.deps.Rig.Reset(&f.scene.Camera)
	return f, nil
}

// Flip starts a new flip. If a flip or camera move is still running the
// request is dropped and ok is false.
func (f *Flipper) Flip() (flip Flip, ok bool) {
	f.mu.Lock()
	defer f.unlock()

	if f.state.Busy() {
		return Flip{}, false
	}
	f.state = State{IsFlipping: true, IsCameraAnimating: true}

	f.notify(f.deps.UI.HideInstruction)
	f.notify(f.deps.UI.ClearResult)
	f.deps.Rig.Reset(&f.scene.Camera)

	outcome := game.SelectOutcome(f.deps.Source)
	f.scene.Coin = scene.Object{}
	params := f.deps.Settings.NewFlipParameters(f.deps.Source)

	tl := PlanFlip(outcome, params, f.deps.Rig)
	player, err := anim.NewPlayer(tl)
	if err != nil {
		logger.Error("Flipper.Flip: plan rejected", "error", err)
		f.state = State{}
		f.pending = nil
		return Flip{}, false
	}

	f.seq++
	f.current = &Flip{
		Seq:           f.seq,
		Outcome:       outcome,
		Params:        params,
		FinalRotation: params.FinalRotation(outcome),
		Timeline:      tl,
	}
	f.player = player
	f.admittedAt = f.deps.Clock()
	return *f.current, true
}

// Advance moves the live timeline by dt seconds of wall time and returns
// the resulting snapshot.
func (f *Flipper) Advance(dt float64) scene.Snapshot {
	f.mu.Lock()
	defer f.unlock()
	return f.advanceLocked(dt)
}

// Tick advances and renders one frame.
func (f *Flipper) Tick(dt float64) scene.Snapshot {
	snap := f.Advance(dt)
	f.deps.Renderer.Render(snap)
	return snap
}

// TickBetween renders the frame for the wall-clock interval (last, now].
// A flip admitted inside the interval only advances by the part after its
// admission.
func (f *Flipper) TickBetween(last, now time.Time) scene.Snapshot {
	f.mu.Lock()
	start := last
	if f.player != nil && f.admittedAt.After(last) {
		start = f.admittedAt
	}
	dt := now.Sub(start).Seconds()
	if dt < 0 {
		dt = 0
	}
	snap := f.advanceLocked(dt)
	f.unlock()

	f.deps.Renderer.Render(snap)
	return snap
}

// notify queues a UI call for delivery once mu is released. Callers hold mu.
func (f *Flipper) notify(fn func()) {
	f.pending = append(f.pending, fn)
}

// unlock releases mu and then runs the queued notifications, so a slow UI
// never holds up the timeline or a concurrent Flip.
func (f *Flipper) unlock() {
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (f *Flipper) advanceLocked(dt float64) scene.Snapshot {
	if f.player == nil {
		if !f.state.Busy() {
			f.scene.Camera.LookAt(f.deps.Rig.Target)
		}
		return f.scene.Snapshot(f.rendered)
	}

	events, err := f.player.Advance(&f.scene, dt)
	if err != nil {
		logger.Error("Flipper.Advance: timeline write failed", "error", err)
	}
	f.rendered = f.player.Elapsed()
	for _, ev := range events {
		f.handleLocked(ev)
	}
	return f.scene.Snapshot(f.rendered)
}

func (f *Flipper) handleLocked(ev anim.Event) {
	switch ev.Name {
	case CueCameraSettled:
		f.scene.Camera.LookAt(f.deps.Rig.Target)
		f.state.IsCameraAnimating = false
	case CueResult:
		if f.current == nil {
			return
		}
		outcome := f.current.Outcome
		f.notify(func() { f.deps.UI.ShowResult(outcome) })
		if f.deps.OnResult != nil {
			res := Result{Flip: *f.current, RestingRotation: f.scene.Coin.Rotation.X()}
			f.notify(func() { f.deps.OnResult(res) })
		}
	case CueCooldown:
		f.state.IsFlipping = false
		f.player = nil
		f.current = nil
		f.rendered = 0
	default:
		logger.Warn("Flipper: unhandled cue", "cue", ev.Name)
	}
}

func (f *Flipper) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Current returns the live flip, if any.
func (f *Flipper) Current() (Flip, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return Flip{}, false
	}
	return *f.current, true
}

func (f *Flipper) Snapshot() scene.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scene.Snapshot(f.rendered)
}

func (f *Flipper) Rig() scene.Rig {
	return f.deps.Rig
}

type nopUI struct{}

func (nopUI) HideInstruction()        {}
func (nopUI) ClearResult()            {}
func (nopUI) ShowResult(game.Outcome) {}
