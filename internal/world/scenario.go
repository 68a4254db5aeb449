package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	"github.com/barrage/server/internal/data"
)

// ProgramSource hands out fresh action programs by pattern name.
type ProgramSource interface {
	Program(name string) (*component.ActionProgram, bool)
}

// SpawnScenario places every scenario entity immediately. It validates tag
// and pattern references before spawning anything, so a bad scene leaves the
// arena untouched.
func (s *State) SpawnScenario(sc *data.Scenario, patterns ProgramSource) ([]ecs.EntityID, error) {
	reqs := make([]SpawnRequest, 0, len(sc.Entities))
	for i := range sc.Entities {
		req, err := s.ScenarioRequest(&sc.Entities[i], patterns)
		if err != nil {
			return nil, fmt.Errorf("scenario entity %d (%s): %w", i, sc.Entities[i].Name, err)
		}
		reqs = append(reqs, req)
	}
	ids := make([]ecs.EntityID, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, s.Spawn(req))
	}
	return ids, nil
}

// ScenarioRequest converts one data-file entity into a spawn request.
func (s *State) ScenarioRequest(e *data.ScenarioEntity, patterns ProgramSource) (SpawnRequest, error) {
	req := SpawnRequest{
		Transform: component.Transform{
			Position: vec2(e.Position),
			Rotation: mgl32.DegToRad(e.Rotation),
		},
		Lifetime: e.Lifetime,
		Cullable: e.Cullable,
	}

	mask, err := s.tags.Mask(e.Tags...)
	if err != nil {
		return req, err
	}
	req.Tags = mask

	if e.Speed != 0 || e.Accel != 0 || e.AngularSpeed != 0 || e.AngularAccel != 0 {
		req.Kinematics = &component.Kinematics{
			LinearSpeed:  e.Speed,
			LinearAccel:  e.Accel,
			AngularSpeed: mgl32.DegToRad(e.AngularSpeed),
			AngularAccel: mgl32.DegToRad(e.AngularAccel),
		}
	}
	if e.Pattern != "" {
		prog, ok := patterns.Program(e.Pattern)
		if !ok {
			return req, fmt.Errorf("unknown pattern %q", e.Pattern)
		}
		req.Program = prog
	}
	if e.Health > 0 {
		req.Health = &component.Health{Current: e.Health, Max: e.Health}
	}
	if len(e.HalfExtents) == 2 {
		req.Collider = &component.Collider{HalfExtents: vec2(e.HalfExtents)}
	}

	if em := e.Emitter; em != nil {
		if em.Pattern != "" {
			if _, ok := patterns.Program(em.Pattern); !ok {
				return req, fmt.Errorf("emitter: unknown pattern %q", em.Pattern)
			}
		}
		shotMask, err := s.tags.Mask(em.ShotTags...)
		if err != nil {
			return req, fmt.Errorf("emitter: %w", err)
		}
		req.Emitter = &component.Emitter{
			Script:       em.Script,
			Pattern:      em.Pattern,
			Interval:     em.Interval,
			Cooldown:     em.Delay,
			Limit:        em.Limit,
			ShotTags:     shotMask,
			ShotExtents:  vec2(em.ShotHalfExtents),
			ShotLifetime: em.ShotLifetime,
		}
	}
	return req, nil
}

func vec2(v []float32) mgl32.Vec2 {
	if len(v) < 2 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{v[0], v[1]}
}
