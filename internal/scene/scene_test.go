package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestLookAtEuler(t *testing.T) {
	cases := []struct {
		name   string
		eye    mgl64.Vec3
		target mgl64.Vec3
		want   mgl64.Vec3
	}{
		{"straight ahead", mgl64.Vec3{0, 0, 8}, mgl64.Vec3{}, mgl64.Vec3{0, 0, 0}},
		{"rest rig", mgl64.Vec3{0, 2, 8}, mgl64.Vec3{}, mgl64.Vec3{-math.Atan2(2, 8), 0, 0}},
		{"from the right", mgl64.Vec3{8, 0, 0}, mgl64.Vec3{}, mgl64.Vec3{0, math.Pi / 2, 0}},
	}
	for _, tc := range cases {
		got := LookAtEuler(tc.eye, tc.target, mgl64.Vec3{0, 1, 0})
		if !got.ApproxEqualThreshold(tc.want, 1e-9) {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestLookAtStraightDown(t *testing.T) {
	got := LookAtEuler(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	for i := 0; i < 3; i++ {
		if math.IsNaN(got[i]) {
			t.Fatalf("NaN in %v", got)
		}
	}
	if math.Abs(got.X()+math.Pi/2) > 1e-3 {
		t.Fatalf("expected pitch near -π/2, got %v", got)
	}
}

func TestRigResetIsDeterministic(t *testing.T) {
	rig := DefaultRig()
	var c Camera
	c.Position = mgl64.Vec3{3, 7, 1}
	c.Rotation = mgl64.Vec3{1, 2, 3}

	rig.Reset(&c)
	if c.Position != rig.Position || c.Rotation != rig.Orientation() {
		t.Fatalf("reset camera %+v, want %v %v", c, rig.Position, rig.Orientation())
	}
}

func TestSceneVec(t *testing.T) {
	var s Scene
	*s.Vec(CoinPosition) = mgl64.Vec3{1, 2, 3}
	*s.Vec(CameraRotation) = mgl64.Vec3{4, 5, 6}
	if s.Coin.Position != (mgl64.Vec3{1, 2, 3}) || s.Camera.Rotation != (mgl64.Vec3{4, 5, 6}) {
		t.Fatalf("Vec did not alias scene fields: %+v", s)
	}
	if s.Vec("coin.scale") != nil {
		t.Fatalf("unknown property should resolve to nil")
	}

	snap := s.Snapshot(1.5)
	s.Coin.Position = mgl64.Vec3{}
	if snap.Coin.Position != (mgl64.Vec3{1, 2, 3}) || snap.T != 1.5 {
		t.Fatalf("snapshot aliased scene state: %+v", snap)
	}
}
