package component

import "github.com/go-gl/mathgl/mgl32"

// TagMask is a set of collision group bits assigned at spawn time.
type TagMask uint32

// Any reports whether m shares at least one group with other.
func (m TagMask) Any(other TagMask) bool { return m&other != 0 }

// Tags marks the groups an entity belongs to. Immutable after spawn.
type Tags struct {
	Mask TagMask
}

// Health is the hit counter of a damageable entity. It is allowed to go
// below zero within a tick; the entity is removed once it reaches zero.
type Health struct {
	Current int32
	Max     int32
}

// Collider sizes the entity's axis-aligned box around its position.
// Orientation is ignored.
type Collider struct {
	HalfExtents mgl32.Vec2
}

// AABB is an axis-aligned box in arena coordinates.
type AABB struct {
	Min, Max mgl32.Vec2
}

// Box derives the entity's current box from its transform.
func (c *Collider) Box(t *Transform) AABB {
	return AABB{
		Min: t.Position.Sub(c.HalfExtents),
		Max: t.Position.Add(c.HalfExtents),
	}
}

// Overlaps tests both axes with open intervals: boxes that only touch
// along an edge do not overlap.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X() < b.Max.X() && b.Min.X() < a.Max.X() &&
		a.Min.Y() < b.Max.Y() && b.Min.Y() < a.Max.Y()
}

// Lifetime removes an entity once Remaining seconds have elapsed.
type Lifetime struct {
	Remaining float32
}

// Cullable marks entities that are removed when they leave the arena.
type Cullable struct{}
