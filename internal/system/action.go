package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/world"
)

// ActionSystem steps every entity's action program once per tick and applies
// the effect of any step whose timer ran out. Phase 3 (Actions).
//
// Entities already queued for removal this tick are still stepped; their
// effects land on state that is about to be discarded.
type ActionSystem struct {
	state *world.State
	log   *zap.Logger
}

func NewActionSystem(ws *world.State, log *zap.Logger) *ActionSystem {
	return &ActionSystem{state: ws, log: log}
}

func (s *ActionSystem) Phase() coresys.Phase { return coresys.PhaseActions }

func (s *ActionSystem) Update(dt time.Duration) {
	sec := coresys.Seconds(dt)
	ecs.Each3(s.state.Programs, s.state.Transforms, s.state.Kinematics,
		func(id ecs.EntityID, p *component.ActionProgram, t *component.Transform, k *component.Kinematics) {
			s.step(id, p, t, k, sec)
		})
}

func (s *ActionSystem) step(id ecs.EntityID, p *component.ActionProgram, t *component.Transform, k *component.Kinematics, dt float32) {
	fired, ok, exhausted := p.Advance(dt)
	if !ok {
		return
	}
	if fired.Apply(t, k) {
		p.Stop()
		s.state.Despawn(id, world.ReasonDespawnEffect)
		return
	}
	if exhausted {
		s.log.Debug("program finished", zap.Uint64("entity", uint64(id)))
		s.state.Despawn(id, world.ReasonProgramEnd)
	}
}
