package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/event"
)

func newTestState(t *testing.T) (*State, *event.Bus) {
	t.Helper()
	tags, err := NewTagRegistry([]string{"player", "enemy", "player_shot", "enemy_shot"})
	require.NoError(t, err)
	bus := event.NewBus()
	return NewState(tags, bus), bus
}

func TestSpawnAttachesRequestedComponents(t *testing.T) {
	s, _ := newTestState(t)
	mask, err := s.TagRegistry().Mask("enemy")
	require.NoError(t, err)

	id := s.Spawn(SpawnRequest{
		Transform: component.Transform{Position: mgl32.Vec2{1, 2}},
		Health:    &component.Health{Current: 3},
		Collider:  &component.Collider{HalfExtents: mgl32.Vec2{5, 5}},
		Tags:      mask,
		Lifetime:  2,
	})

	assert.True(t, s.Alive(id))
	assert.Equal(t, 1, s.Live())
	h, ok := s.Healths.Get(id)
	require.True(t, ok)
	assert.Equal(t, int32(3), h.Max)
	assert.True(t, s.Colliders.Has(id))
	assert.True(t, s.Lifetimes.Has(id))
	assert.False(t, s.Kinematics.Has(id))
	assert.False(t, s.Cullables.Has(id))
}

func TestProgramImpliesKinematics(t *testing.T) {
	s, _ := newTestState(t)
	prog, err := component.NewActionProgram([]component.Step{{Effect: component.SetSpeed(1), Duration: 1}}, false)
	require.NoError(t, err)

	id := s.Spawn(SpawnRequest{Program: prog})
	assert.True(t, s.Kinematics.Has(id))
	got, _ := s.Programs.Get(id)
	assert.Same(t, prog, got)
}

func TestDespawnIsDeferredAndIdempotent(t *testing.T) {
	s, _ := newTestState(t)
	id := s.Spawn(SpawnRequest{})

	assert.True(t, s.Despawn(id, ReasonHit))
	assert.False(t, s.Despawn(id, ReasonKilled))
	assert.True(t, s.Alive(id), "entity survives until commit")
	assert.True(t, s.Pending(id))

	res := s.Commit()
	require.Len(t, res.Removed, 1)
	assert.Equal(t, ReasonHit, res.Removed[0].Reason, "first reason wins")
	assert.False(t, s.Alive(id))
	assert.False(t, s.Transforms.Has(id))

	assert.False(t, s.Despawn(id, ReasonExternal), "stale handle is ignored")
	assert.Empty(t, s.Commit().Removed)
}

func TestCommitRemovesBeforeSpawning(t *testing.T) {
	s, _ := newTestState(t)
	old := s.Spawn(SpawnRequest{})
	s.Despawn(old, ReasonLifetime)
	s.QueueSpawn(SpawnRequest{Transform: component.Transform{Position: mgl32.Vec2{9, 9}}})
	assert.Equal(t, 1, s.QueuedSpawns())

	res := s.Commit()
	require.Len(t, res.Spawned, 1)
	assert.Equal(t, old.Index(), res.Spawned[0].Index(), "slot is recycled")
	assert.NotEqual(t, old, res.Spawned[0])
	assert.Equal(t, 1, s.Live())
	assert.Equal(t, int64(1), s.Tick())
	assert.Zero(t, s.QueuedSpawns())
}

func TestCommitEmitsLifecycleEvents(t *testing.T) {
	s, bus := newTestState(t)
	var despawned []event.EntityDespawned
	var spawnCount int
	event.Subscribe(bus, func(event.EntitySpawned) { spawnCount++ })
	event.Subscribe(bus, func(e event.EntityDespawned) { despawned = append(despawned, e) })

	mask, _ := s.TagRegistry().Mask("enemy_shot")
	id := s.Spawn(SpawnRequest{Tags: mask})
	s.Despawn(id, ReasonOutOfBounds)
	s.Commit()

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, 1, spawnCount)
	require.Len(t, despawned, 1)
	assert.Equal(t, "out_of_bounds", despawned[0].Reason)
	assert.Equal(t, uint32(mask), despawned[0].Tags)
}

func TestChecksumTracksState(t *testing.T) {
	build := func() *State {
		s, _ := newTestState(t)
		s.Spawn(SpawnRequest{
			Transform:  component.Transform{Position: mgl32.Vec2{1, 2}, Rotation: 0.5},
			Kinematics: &component.Kinematics{LinearSpeed: 3},
		})
		return s
	}
	a, b := build(), build()
	assert.Equal(t, a.Checksum(), b.Checksum())

	tr, _ := b.Transforms.Get(b.Transforms.IDs()[0])
	tr.Position[0] += 0.001
	assert.NotEqual(t, a.Checksum(), b.Checksum())
}

func TestSnapshotListsEntitiesAndRemovals(t *testing.T) {
	s, _ := newTestState(t)
	a := s.Spawn(SpawnRequest{Health: &component.Health{Current: 2}})
	b := s.Spawn(SpawnRequest{Transform: component.Transform{Position: mgl32.Vec2{4, 5}}})
	s.Despawn(a, ReasonKilled)
	s.Commit()

	snap := s.Snapshot("run-1")
	assert.Equal(t, "run-1", snap.Run)
	assert.Equal(t, int64(1), snap.Tick)
	require.Len(t, snap.Entities, 1)
	assert.Equal(t, uint64(b), snap.Entities[0].ID)
	assert.Equal(t, float32(4), snap.Entities[0].X)
	assert.Nil(t, snap.Entities[0].Health)
	require.Len(t, snap.Removed, 1)
	assert.Equal(t, "killed", snap.Removed[0].Reason)
	assert.Equal(t, s.Checksum(), snap.Checksum)
}
