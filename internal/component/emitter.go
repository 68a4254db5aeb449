package component

import "github.com/go-gl/mathgl/mgl32"

// Emitter fires volleys of projectiles from its entity's position.
// Script names the Lua volley function; Pattern the default action program
// for shots that do not name their own.
type Emitter struct {
	Script   string
	Pattern  string
	Interval float32 // seconds between volleys
	Cooldown float32 // seconds until the next volley
	Volleys  int     // volleys fired so far
	Limit    int     // 0 = unlimited

	// Applied to every projectile the emitter spawns.
	ShotTags     TagMask
	ShotExtents  mgl32.Vec2
	ShotLifetime float32
}
