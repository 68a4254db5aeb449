package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/world"
)

// LifetimeSystem counts down Lifetime components and removes expired
// entities. Phase 5 (PostUpdate).
type LifetimeSystem struct {
	state *world.State
}

func NewLifetimeSystem(ws *world.State) *LifetimeSystem {
	return &LifetimeSystem{state: ws}
}

func (s *LifetimeSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *LifetimeSystem) Update(dt time.Duration) {
	sec := coresys.Seconds(dt)
	for _, id := range s.state.Lifetimes.IDs() {
		l, _ := s.state.Lifetimes.Get(id)
		l.Remaining -= sec
		if l.Remaining <= 0 {
			s.state.Despawn(id, world.ReasonLifetime)
		}
	}
}

// CullSystem removes cullable entities whose position has left the arena.
// The arena is centred on the origin. Phase 5 (PostUpdate).
type CullSystem struct {
	state *world.State
	half  mgl32.Vec2
}

func NewCullSystem(ws *world.State, halfExtents mgl32.Vec2, margin float32) *CullSystem {
	return &CullSystem{
		state: ws,
		half:  halfExtents.Add(mgl32.Vec2{margin, margin}),
	}
}

func (s *CullSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CullSystem) Update(_ time.Duration) {
	ecs.Each2(s.state.Cullables, s.state.Transforms, func(id ecs.EntityID, _ *component.Cullable, t *component.Transform) {
		p := t.Position
		if p.X() < -s.half.X() || p.X() > s.half.X() || p.Y() < -s.half.Y() || p.Y() > s.half.Y() {
			s.state.Despawn(id, world.ReasonOutOfBounds)
		}
	})
}
