// Package scene holds the mutable coin and camera state that a flip
// timeline writes and a renderer reads. Meshes, materials and lights live in
// the client; here the coin is an opaque transform.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"coinflip3d/internal/anim"
)

const (
	CoinPosition   anim.Property = "coin.position"
	CoinRotation   anim.Property = "coin.rotation"
	CameraPosition anim.Property = "camera.position"
	CameraRotation anim.Property = "camera.rotation"
)

// Object is a transform with Euler rotation in radians, XYZ order.
type Object struct {
	Position mgl64.Vec3 `json:"position"`
	Rotation mgl64.Vec3 `json:"rotation"`
}

// Camera is an Object that can be re-aimed.
type Camera struct {
	Object
}

// LookAt orients the camera so its -Z axis points at target with +Y up.
func (c *Camera) LookAt(target mgl64.Vec3) {
	c.Rotation = LookAtEuler(c.Position, target, mgl64.Vec3{0, 1, 0})
}

// LookAtEuler returns the XYZ Euler angles of a camera at eye facing target.
func LookAtEuler(eye, target, up mgl64.Vec3) mgl64.Vec3 {
	z := eye.Sub(target)
	if z.Len() == 0 {
		z = mgl64.Vec3{0, 0, 1}
	}
	z = z.Normalize()
	x := up.Cross(z)
	if x.Len() == 0 {
		// up parallel to the view direction; nudge z
		z[2] += 0.0001
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	m := mgl64.Mat3FromCols(x, y, z)
	return eulerXYZ(m)
}

func eulerXYZ(m mgl64.Mat3) mgl64.Vec3 {
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	var e mgl64.Vec3
	e[1] = math.Asin(mgl64.Clamp(m13, -1, 1))
	if math.Abs(m13) < 0.9999999 {
		e[0] = math.Atan2(-m23, m33)
		e[2] = math.Atan2(-m12, m11)
	} else {
		e[0] = math.Atan2(m32, m22)
		e[2] = 0
	}
	return e
}

// Scene is the state shared by one flip session.
type Scene struct {
	Coin   Object
	Camera Camera
}

// Vec exposes the animatable fields to an anim.Player.
func (s *Scene) Vec(p anim.Property) *mgl64.Vec3 {
	switch p {
	case CoinPosition:
		return &s.Coin.Position
	case CoinRotation:
		return &s.Coin.Rotation
	case CameraPosition:
		return &s.Camera.Position
	case CameraRotation:
		return &s.Camera.Rotation
	}
	return nil
}

// Snapshot is a read-only copy handed to renderers.
type Snapshot struct {
	T      float64 `json:"t"`
	Coin   Object  `json:"coin"`
	Camera Object  `json:"camera"`
}

func (s *Scene) Snapshot(t float64) Snapshot {
	return Snapshot{T: t, Coin: s.Coin, Camera: s.Camera.Object}
}

// Rig is the camera's recorded rest pose.
type Rig struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
}

func DefaultRig() Rig {
	return Rig{
		Position: mgl64.Vec3{0, 2, 8},
		Target:   mgl64.Vec3{0, 0, 0},
	}
}

// Orientation is the rest rotation implied by the rig.
func (r Rig) Orientation() mgl64.Vec3 {
	return LookAtEuler(r.Position, r.Target, mgl64.Vec3{0, 1, 0})
}

// Reset puts the camera back at the rig synchronously.
func (r Rig) Reset(c *Camera) {
	c.Position = r.Position
	c.LookAt(r.Target)
}
