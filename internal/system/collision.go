package system

import (
	"fmt"
	"time"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	"github.com/barrage/server/internal/core/event"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/world"
)

// CollisionPair names one attacker/defender matchup by tag mask.
type CollisionPair struct {
	Attackers component.TagMask
	Defenders component.TagMask
}

// CollisionPairs resolves configured tag names into masks.
func CollisionPairs(tags *world.TagRegistry, pairs [][2][]string) ([]CollisionPair, error) {
	out := make([]CollisionPair, 0, len(pairs))
	for i, p := range pairs {
		a, err := tags.Mask(p[0]...)
		if err != nil {
			return nil, fmt.Errorf("collision pair %d attackers: %w", i, err)
		}
		d, err := tags.Mask(p[1]...)
		if err != nil {
			return nil, fmt.Errorf("collision pair %d defenders: %w", i, err)
		}
		if a == 0 || d == 0 {
			return nil, fmt.Errorf("collision pair %d: both sides need at least one tag", i)
		}
		out = append(out, CollisionPair{Attackers: a, Defenders: d})
	}
	return out, nil
}

// Tagged returns, in ascending ID order, every entity with a collider whose
// tags intersect mask. Entities already queued for removal are included.
func Tagged(ws *world.State, mask component.TagMask) []ecs.EntityID {
	var ids []ecs.EntityID
	ecs.Each2(ws.Tags, ws.Colliders, func(id ecs.EntityID, t *component.Tags, _ *component.Collider) {
		if t.Mask.Any(mask) {
			ids = append(ids, id)
		}
	})
	return ids
}

// ResolvePair scans every attacker against every defender. On overlap the
// attacker is despawned and the defender loses one health, despawning at
// zero or below. Defenders without health absorb the attacker unharmed.
// Returns the number of overlaps found.
func ResolvePair(ws *world.State, bus *event.Bus, attackers, defenders []ecs.EntityID) int {
	hits := 0
	for _, b := range attackers {
		bBox, ok := box(ws, b)
		if !ok {
			continue
		}
		for _, c := range defenders {
			if b == c {
				continue
			}
			cBox, ok := box(ws, c)
			if !ok || !bBox.Overlaps(cBox) {
				continue
			}
			hit(ws, bus, b, c)
			hits++
		}
	}
	return hits
}

func box(ws *world.State, id ecs.EntityID) (component.AABB, bool) {
	t, ok := ws.Transforms.Get(id)
	if !ok {
		return component.AABB{}, false
	}
	c, ok := ws.Colliders.Get(id)
	if !ok {
		return component.AABB{}, false
	}
	return c.Box(t), true
}

func hit(ws *world.State, bus *event.Bus, b, c ecs.EntityID) {
	ws.Despawn(b, world.ReasonHit)

	ev := event.ProjectileHit{Projectile: b, Target: c}
	if h, ok := ws.Healths.Get(c); ok {
		h.Current--
		ev.Health = h.Current
		if h.Current <= 0 {
			ev.Killed = ws.Despawn(c, world.ReasonKilled)
		}
	}
	if bus != nil {
		event.Emit(bus, ev)
	}
}

// CollisionSystem runs the resolver once per configured pair.
// Phase 4 (Collision).
//
// With a positive cell size, defenders are indexed in a BoxGrid and each
// attacker is tested only against defenders sharing a cell. Candidates come
// back in ascending ID order, so outcomes match the exhaustive scan.
type CollisionSystem struct {
	state *world.State
	bus   *event.Bus
	pairs []CollisionPair
	grid  *world.BoxGrid
}

func NewCollisionSystem(ws *world.State, bus *event.Bus, pairs []CollisionPair, cellSize float32) *CollisionSystem {
	s := &CollisionSystem{state: ws, bus: bus, pairs: pairs}
	if cellSize > 0 {
		s.grid = world.NewBoxGrid(cellSize)
	}
	return s
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

func (s *CollisionSystem) Update(_ time.Duration) {
	for _, p := range s.pairs {
		attackers := Tagged(s.state, p.Attackers)
		defenders := Tagged(s.state, p.Defenders)
		if len(attackers) == 0 || len(defenders) == 0 {
			continue
		}
		if s.grid == nil {
			ResolvePair(s.state, s.bus, attackers, defenders)
			continue
		}
		s.resolveIndexed(attackers, defenders)
	}
}

func (s *CollisionSystem) resolveIndexed(attackers, defenders []ecs.EntityID) {
	s.grid.Reset()
	for _, c := range defenders {
		if cBox, ok := box(s.state, c); ok {
			s.grid.Insert(c, cBox)
		}
	}
	for _, b := range attackers {
		bBox, ok := box(s.state, b)
		if !ok {
			continue
		}
		for _, c := range s.grid.Nearby(bBox) {
			if b == c {
				continue
			}
			// Defender boxes do not move during the pass.
			cBox, _ := box(s.state, c)
			if bBox.Overlaps(cBox) {
				hit(s.state, s.bus, b, c)
			}
		}
	}
}
