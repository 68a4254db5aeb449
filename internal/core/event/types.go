package event

import "github.com/barrage/server/internal/core/ecs"

// EntitySpawned is emitted when a queued or immediate spawn is applied.
type EntitySpawned struct {
	EntityID ecs.EntityID
	Tags     uint32
}

// EntityDespawned is emitted once per removed entity at commit.
type EntityDespawned struct {
	EntityID ecs.EntityID
	Tags     uint32
	Reason   string
}

// ProjectileHit is emitted for every overlapping attacker/defender pair.
type ProjectileHit struct {
	Projectile ecs.EntityID
	Target     ecs.EntityID
	Health     int32 // target health after the hit
	Killed     bool
}
