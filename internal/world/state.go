package world

import (
	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	"github.com/barrage/server/internal/core/event"
)

// SpawnRequest describes a new entity. Optional parts are nil/zero when absent.
// Program must be owned by the request: it is attached as-is, never copied.
type SpawnRequest struct {
	Transform  component.Transform
	Kinematics *component.Kinematics
	Program    *component.ActionProgram
	Health     *component.Health
	Collider   *component.Collider
	Tags       component.TagMask
	Lifetime   float32 // seconds; 0 = unlimited
	Cullable   bool
	Emitter    *component.Emitter
}

// Removal is one entity removed at a commit point.
type Removal struct {
	ID     ecs.EntityID
	Tags   component.TagMask
	Reason DespawnReason
}

// CommitResult lists the structural changes applied by one Commit.
type CommitResult struct {
	Removed []Removal
	Spawned []ecs.EntityID
}

type pendingRemoval struct {
	tags   component.TagMask
	reason DespawnReason
}

// State is the simulation arena: one ecs.World plus a store per component.
// Accessed only from the game loop goroutine. No locks.
type State struct {
	ecs  *ecs.World
	bus  *event.Bus
	tags *TagRegistry

	Transforms *ecs.PtrComponentStore[component.Transform]
	Kinematics *ecs.PtrComponentStore[component.Kinematics]
	Programs   *ecs.PtrComponentStore[component.ActionProgram]
	Healths    *ecs.PtrComponentStore[component.Health]
	Colliders  *ecs.PtrComponentStore[component.Collider]
	Tags       *ecs.PtrComponentStore[component.Tags]
	Lifetimes  *ecs.PtrComponentStore[component.Lifetime]
	Cullables  *ecs.PtrComponentStore[component.Cullable]
	Emitters   *ecs.PtrComponentStore[component.Emitter]

	pending    map[ecs.EntityID]pendingRemoval
	spawnQueue []SpawnRequest
	last       CommitResult
	tick       int64
}

// NewState builds an empty arena. bus may be nil when nobody listens.
func NewState(tags *TagRegistry, bus *event.Bus) *State {
	s := &State{
		ecs:        ecs.NewWorld(),
		bus:        bus,
		tags:       tags,
		Transforms: ecs.NewPtrComponentStore[component.Transform](),
		Kinematics: ecs.NewPtrComponentStore[component.Kinematics](),
		Programs:   ecs.NewPtrComponentStore[component.ActionProgram](),
		Healths:    ecs.NewPtrComponentStore[component.Health](),
		Colliders:  ecs.NewPtrComponentStore[component.Collider](),
		Tags:       ecs.NewPtrComponentStore[component.Tags](),
		Lifetimes:  ecs.NewPtrComponentStore[component.Lifetime](),
		Cullables:  ecs.NewPtrComponentStore[component.Cullable](),
		Emitters:   ecs.NewPtrComponentStore[component.Emitter](),
		pending:    make(map[ecs.EntityID]pendingRemoval, 64),
	}
	reg := s.ecs.Registry()
	reg.Register(s.Transforms)
	reg.Register(s.Kinematics)
	reg.Register(s.Programs)
	reg.Register(s.Healths)
	reg.Register(s.Colliders)
	reg.Register(s.Tags)
	reg.Register(s.Lifetimes)
	reg.Register(s.Cullables)
	reg.Register(s.Emitters)
	return s
}

// TagRegistry returns the tag names this arena was built with.
func (s *State) TagRegistry() *TagRegistry { return s.tags }

// Tick returns the number of commits applied so far.
func (s *State) Tick() int64 { return s.tick }

// Live returns the number of entities currently in the arena.
func (s *State) Live() int { return s.ecs.Pool().Live() }

// Alive reports whether id names an entity that has not been committed away.
func (s *State) Alive(id ecs.EntityID) bool { return s.ecs.Alive(id) }

// Pending reports whether id has a despawn request queued this tick.
func (s *State) Pending(id ecs.EntityID) bool { return s.ecs.Pending(id) }

// LastCommit returns what the most recent Commit removed and spawned.
func (s *State) LastCommit() CommitResult { return s.last }

// Spawn creates the entity immediately. Use it for scene setup outside a tick;
// systems running inside a tick must use QueueSpawn.
func (s *State) Spawn(req SpawnRequest) ecs.EntityID {
	id := s.ecs.CreateEntity()

	tr := req.Transform
	s.Transforms.Set(id, &tr)
	if req.Kinematics != nil {
		k := *req.Kinematics
		s.Kinematics.Set(id, &k)
	}
	if req.Program != nil {
		if req.Kinematics == nil {
			s.Kinematics.Set(id, &component.Kinematics{})
		}
		s.Programs.Set(id, req.Program)
	}
	if req.Health != nil {
		h := *req.Health
		if h.Max == 0 {
			h.Max = h.Current
		}
		s.Healths.Set(id, &h)
	}
	if req.Collider != nil {
		c := *req.Collider
		s.Colliders.Set(id, &c)
	}
	if req.Tags != 0 {
		s.Tags.Set(id, &component.Tags{Mask: req.Tags})
	}
	if req.Lifetime > 0 {
		s.Lifetimes.Set(id, &component.Lifetime{Remaining: req.Lifetime})
	}
	if req.Cullable {
		s.Cullables.Set(id, &component.Cullable{})
	}
	if req.Emitter != nil {
		e := *req.Emitter
		s.Emitters.Set(id, &e)
	}

	if s.bus != nil {
		event.Emit(s.bus, event.EntitySpawned{EntityID: id, Tags: uint32(req.Tags)})
	}
	return id
}

// QueueSpawn defers creation to the next commit point.
func (s *State) QueueSpawn(req SpawnRequest) {
	s.spawnQueue = append(s.spawnQueue, req)
}

// QueuedSpawns returns the number of spawn requests waiting for commit.
func (s *State) QueuedSpawns() int { return len(s.spawnQueue) }

// Despawn requests removal at the next commit point. Repeated requests within
// a tick are no-ops; the first reason is kept. Returns true for a new request.
func (s *State) Despawn(id ecs.EntityID, reason DespawnReason) bool {
	if !s.ecs.MarkForDestruction(id) {
		return false
	}
	var mask component.TagMask
	if t, ok := s.Tags.Get(id); ok {
		mask = t.Mask
	}
	s.pending[id] = pendingRemoval{tags: mask, reason: reason}
	return true
}

// Commit applies queued despawns, then queued spawns. This is the single
// point where the set of live entities changes during a run.
func (s *State) Commit() CommitResult {
	var res CommitResult

	for _, id := range s.ecs.FlushDestroyQueue() {
		p := s.pending[id]
		delete(s.pending, id)
		res.Removed = append(res.Removed, Removal{ID: id, Tags: p.tags, Reason: p.reason})
		if s.bus != nil {
			event.Emit(s.bus, event.EntityDespawned{
				EntityID: id,
				Tags:     uint32(p.tags),
				Reason:   p.reason.String(),
			})
		}
	}

	if len(s.spawnQueue) > 0 {
		queue := s.spawnQueue
		s.spawnQueue = nil
		for _, req := range queue {
			res.Spawned = append(res.Spawned, s.Spawn(req))
		}
	}

	s.last = res
	s.tick++
	return res
}
