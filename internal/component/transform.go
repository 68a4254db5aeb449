package component

import "github.com/go-gl/mathgl/mgl32"

// Transform is an entity's placement in the arena plane.
// Rotation is in radians, counter-clockwise; zero faces +Y.
type Transform struct {
	Position mgl32.Vec2
	Rotation float32
}

// Forward returns the local up axis after rotation.
func (t *Transform) Forward() mgl32.Vec2 {
	return mgl32.Rotate2D(t.Rotation).Mul2x1(mgl32.Vec2{0, 1})
}

// RotateLocal turns the entity about its own axis.
func (t *Transform) RotateLocal(angle float32) {
	t.Rotation += angle
}

// Kinematics holds the scalar motion state. Speed and acceleration act along
// the entity's current forward axis, never a fixed world vector.
type Kinematics struct {
	LinearSpeed  float32
	LinearAccel  float32
	AngularSpeed float32 // radians per second
	AngularAccel float32
}
