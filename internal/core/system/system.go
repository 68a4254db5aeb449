package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseEvents     Phase = iota // 0: deliver events emitted last tick
	PhaseSpawn                   // 1: emitters queue spawn requests
	PhaseKinematics              // 2: integrate speed/rotation/position
	PhaseActions                 // 3: step action programs
	PhaseCollision               // 4: resolve tagged pairs
	PhasePostUpdate              // 5: lifetime, bounds cull
	PhaseCommit                  // 6: apply queued despawns, then spawns
	PhaseOutput                  // 7: publish snapshot
)

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Seconds converts a tick duration to the float32 seconds the simulation works in.
func Seconds(dt time.Duration) float32 {
	return float32(dt.Seconds())
}
