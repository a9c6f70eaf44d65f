package coin

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"coinflip3d/internal/anim"
	"coinflip3d/internal/scene"
)

// Camera phases as fractions of the flight, aligned to the coin's ascent,
// peak and descent.
const (
	CameraFollowEnd = 0.4
	CameraPeakEnd   = 0.7

	cameraFollowHeight = 5.0
	cameraPeakHeight   = 8.0
	cameraPeakDistance = 4.0
)

var cameraPeakPitch = -math.Pi * 0.3

func planCamera(tl *anim.Timeline, total float64, rig scene.Rig) {
	followEnd := total * CameraFollowEnd
	peakEnd := total * CameraPeakEnd

	tl.To(anim.Segment{
		Property: scene.CameraPosition,
		Axes:     anim.Y,
		Start:    0,
		Duration: followEnd,
		Ease:     anim.Power2Out,
		End:      mgl64.Vec3{0, cameraFollowHeight, 0},
	})

	tl.To(anim.Segment{
		Property: scene.CameraPosition,
		Axes:     anim.Y | anim.Z,
		Start:    followEnd,
		Duration: peakEnd - followEnd,
		Ease:     anim.Power2InOut,
		End:      mgl64.Vec3{0, cameraPeakHeight, cameraPeakDistance},
	}).To(anim.Segment{
		Property: scene.CameraRotation,
		Axes:     anim.X,
		Start:    followEnd,
		Duration: peakEnd - followEnd,
		Ease:     anim.Power2InOut,
		End:      mgl64.Vec3{cameraPeakPitch, 0, 0},
	})

	tl.To(anim.Segment{
		Property: scene.CameraPosition,
		Axes:     anim.XYZ,
		Start:    peakEnd,
		Duration: total - peakEnd,
		Ease:     anim.Power2InOut,
		End:      rig.Position,
	}).To(anim.Segment{
		Property:   scene.CameraRotation,
		Axes:       anim.XYZ,
		Start:      peakEnd,
		Duration:   total - peakEnd,
		Ease:       anim.Power2InOut,
		End:        rig.Orientation(),
		OnComplete: CueCameraSettled,
	})
}
