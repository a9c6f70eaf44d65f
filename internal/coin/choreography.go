package coin

import (
	"github.com/go-gl/mathgl/mgl64"

	"coinflip3d/internal/anim"
	"coinflip3d/internal/game"
	"coinflip3d/internal/scene"
)

// Landing and publication timings, seconds after the flight ends.
const (
	CorrectionDuration = 0.3
	BounceHeight       = 0.1
	BounceUpDuration   = 0.2
	BounceDownDuration = 0.2
	ResultDelay        = BounceUpDuration + BounceDownDuration
	Cooldown           = 0.8
)

// Cue names handled by the Flipper.
const (
	CueCameraSettled = "camera_settled"
	CueResult        = "result"
	CueCooldown      = "cooldown"
)

// PlanFlip lays out the whole flip on one timeline: the coin's arc and spin,
// the landing correction and bounce, the camera move, and the result and
// cooldown cues. Every offset is measured from the same origin.
func PlanFlip(outcome game.Outcome, p game.FlipParameters, rig scene.Rig) *anim.Timeline {
	total := p.TotalDuration
	ascend := total * p.AscendFraction

	tl := anim.NewTimeline()
	planCamera(tl, total, rig)

	tl.To(anim.Segment{
		Property: scene.CoinPosition,
		Axes:     anim.Y,
		Start:    0,
		Duration: ascend,
		Ease:     anim.Power2Out,
		End:      mgl64.Vec3{0, p.PeakHeight, 0},
	}).To(anim.Segment{
		Property: scene.CoinPosition,
		Axes:     anim.Y,
		Start:    ascend,
		Duration: total - ascend,
		Ease:     anim.Power2In,
		End:      mgl64.Vec3{0, 0, 0},
	})

	tl.To(anim.Segment{
		Property: scene.CoinRotation,
		Axes:     anim.X,
		Start:    0,
		Duration: total,
		Ease:     anim.Linear,
		End:      mgl64.Vec3{p.SpinRadians(), 0, 0},
	}).To(anim.Segment{
		Property: scene.CoinRotation,
		Axes:     anim.XYZ,
		Start:    total,
		Duration: CorrectionDuration,
		Ease:     anim.Power2Out,
		End:      mgl64.Vec3{p.FinalRotation(outcome), 0, 0},
	})

	tl.To(anim.Segment{
		Property: scene.CoinPosition,
		Axes:     anim.Y,
		Start:    total,
		Duration: BounceUpDuration,
		Ease:     anim.Power2Out,
		End:      mgl64.Vec3{0, BounceHeight, 0},
	}).To(anim.Segment{
		Property: scene.CoinPosition,
		Axes:     anim.Y,
		Start:    total + BounceUpDuration,
		Duration: BounceDownDuration,
		Ease:     anim.BounceOut,
		End:      mgl64.Vec3{0, 0, 0},
	})

	tl.Call(CueResult, total+ResultDelay)
	tl.Call(CueCooldown, total+ResultDelay+Cooldown)
	return tl
}

// SettleTime is when a flip with total duration total frees the session.
func SettleTime(total float64) float64 {
	return total + ResultDelay + Cooldown
}

// Snap is the rotation the correction segment has to cover.
func Snap(outcome game.Outcome, p game.FlipParameters) float64 {
	return game.MaxSnap(p.SpinRadians(), p.FinalRotation(outcome))
}
