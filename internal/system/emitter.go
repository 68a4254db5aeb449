package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/scripting"
	"github.com/barrage/server/internal/world"
)

// VolleySource produces the shots of one emitter volley.
type VolleySource interface {
	Volley(name string, ctx scripting.VolleyContext) ([]scripting.Shot, error)
}

// EmitterSystem fires emitter volleys and queues one spawn request per shot.
// Spawns land at the end-of-tick commit. Phase 1 (Spawn).
type EmitterSystem struct {
	state    *world.State
	volleys  VolleySource
	patterns world.ProgramSource
	log      *zap.Logger
}

func NewEmitterSystem(ws *world.State, volleys VolleySource, patterns world.ProgramSource, log *zap.Logger) *EmitterSystem {
	return &EmitterSystem{state: ws, volleys: volleys, patterns: patterns, log: log}
}

func (s *EmitterSystem) Phase() coresys.Phase { return coresys.PhaseSpawn }

func (s *EmitterSystem) Update(dt time.Duration) {
	sec := coresys.Seconds(dt)
	ecs.Each2(s.state.Emitters, s.state.Transforms, func(id ecs.EntityID, em *component.Emitter, t *component.Transform) {
		if s.state.Pending(id) {
			return
		}
		if em.Limit > 0 && em.Volleys >= em.Limit {
			return
		}
		em.Cooldown -= sec
		if em.Cooldown > 0 {
			return
		}
		em.Cooldown = em.Interval
		s.fire(id, em, t)
	})
}

func (s *EmitterSystem) fire(id ecs.EntityID, em *component.Emitter, t *component.Transform) {
	shots, err := s.volleys.Volley(em.Script, scripting.VolleyContext{
		X:        t.Position.X(),
		Y:        t.Position.Y(),
		Rotation: t.Rotation,
		Volley:   em.Volleys,
		Tick:     s.state.Tick(),
	})
	em.Volleys++
	if err != nil {
		s.log.Warn("volley failed", zap.Uint64("emitter", uint64(id)), zap.String("script", em.Script), zap.Error(err))
		return
	}

	for _, shot := range shots {
		req, ok := s.shotRequest(em, t, shot)
		if !ok {
			continue
		}
		s.state.QueueSpawn(req)
	}
}

func (s *EmitterSystem) shotRequest(em *component.Emitter, t *component.Transform, shot scripting.Shot) (world.SpawnRequest, bool) {
	req := world.SpawnRequest{
		Transform: component.Transform{
			Position: t.Position.Add(mgl32.Vec2{shot.OffsetX, shot.OffsetY}),
			Rotation: t.Rotation + shot.Angle,
		},
		Kinematics: &component.Kinematics{
			LinearSpeed:  shot.Speed,
			LinearAccel:  shot.Accel,
			AngularSpeed: shot.AngularSpeed,
			AngularAccel: shot.AngularAccel,
		},
		Tags:     em.ShotTags,
		Lifetime: em.ShotLifetime,
		Cullable: true,
	}
	if em.ShotExtents != (mgl32.Vec2{}) {
		req.Collider = &component.Collider{HalfExtents: em.ShotExtents}
	}

	pattern := shot.Pattern
	if pattern == "" {
		pattern = em.Pattern
	}
	if pattern != "" {
		prog, ok := s.patterns.Program(pattern)
		if !ok {
			s.log.Warn("shot names unknown pattern", zap.String("pattern", pattern), zap.String("script", em.Script))
			return req, false
		}
		req.Program = prog
	}
	return req, true
}
