package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/barrage/server/internal/component"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/scripting"
	"github.com/barrage/server/internal/world"
)

type capture struct{ snaps []*world.Snapshot }

func (c *capture) Publish(s *world.Snapshot) { c.snaps = append(c.snaps, s) }

type sim struct {
	state    *world.State
	runner   *coresys.Runner
	stats    *StatsSystem
	dispatch *EventDispatchSystem
	pub      *capture
}

// newSim wires every system the way cmd/barrage does.
func newSim(t *testing.T) *sim {
	t.Helper()
	ws, bus := newState(t)
	pairs, err := CollisionPairs(ws.TagRegistry(), [][2][]string{
		{{"player_shot"}, {"enemy"}},
		{{"enemy_shot"}, {"player"}},
	})
	require.NoError(t, err)

	log := zap.NewNop()
	s := &sim{state: ws, runner: coresys.NewRunner(), pub: &capture{}}
	s.dispatch = NewEventDispatchSystem(bus)
	s.stats = NewStatsSystem(ws, bus, 10, log)

	// Registration order is shuffled; phases decide execution order.
	s.runner.Register(NewSnapshotSystem(ws, s.stats, s.pub, "test-run"))
	s.runner.Register(NewCommitSystem(ws, log))
	s.runner.Register(NewCollisionSystem(ws, bus, pairs, 16))
	s.runner.Register(NewActionSystem(ws, log))
	s.runner.Register(NewKinematicsSystem(ws))
	s.runner.Register(NewLifetimeSystem(ws))
	s.runner.Register(NewCullSystem(ws, mgl32.Vec2{200, 200}, 20))
	s.runner.Register(NewEmitterSystem(ws, &fakeVolleys{shots: []scripting.Shot{
		{Angle: 3.1415927, Speed: 60},
	}}, testPatternTable(t), log))
	s.runner.Register(s.stats)
	s.runner.Register(s.dispatch)
	return s
}

func (s *sim) scene(t *testing.T) {
	ws := s.state
	ws.Spawn(world.SpawnRequest{
		Transform: component.Transform{Position: mgl32.Vec2{0, 100}},
		Health:    &component.Health{Current: 3},
		Collider:  &component.Collider{HalfExtents: mgl32.Vec2{8, 8}},
		Tags:      mask(t, ws, "enemy"),
		Emitter: &component.Emitter{
			Script:      "aim",
			Interval:    0.5,
			ShotTags:    mask(t, ws, "enemy_shot"),
			ShotExtents: mgl32.Vec2{2, 2},
		},
	})
	ws.Spawn(world.SpawnRequest{
		Transform: component.Transform{Position: mgl32.Vec2{0, -100}},
		Health:    &component.Health{Current: 2},
		Collider:  &component.Collider{HalfExtents: mgl32.Vec2{6, 6}},
		Tags:      mask(t, ws, "player"),
	})
	for i := 0; i < 4; i++ {
		ws.Spawn(world.SpawnRequest{
			Transform:  component.Transform{Position: mgl32.Vec2{float32(i*2 - 3), -80}},
			Kinematics: &component.Kinematics{LinearSpeed: 90},
			Collider:   &component.Collider{HalfExtents: mgl32.Vec2{2, 2}},
			Tags:       mask(t, ws, "player_shot"),
			Cullable:   true,
		})
	}
}

func (s *sim) run(ticks int) {
	for i := 0; i < ticks; i++ {
		s.runner.Tick(time.Second / 60)
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	a, b := newSim(t), newSim(t)
	a.scene(t)
	b.scene(t)
	a.run(240)
	b.run(240)

	assert.Equal(t, a.state.Checksum(), b.state.Checksum())
	assert.Equal(t, a.stats.Counters(), b.stats.Counters())
	assert.Equal(t, int64(240), a.state.Tick())
}

func TestPipelineResolvesCombat(t *testing.T) {
	s := newSim(t)
	s.scene(t)
	s.run(240)
	s.dispatch.Flush()

	// The four player shots reach the enemy on the same tick; the third kills
	// it and the fourth still lands.
	assert.Empty(t, Tagged(s.state, mask(t, s.state, "enemy")))
	assert.GreaterOrEqual(t, s.stats.Counter(StatHits), int64(4))
	assert.GreaterOrEqual(t, s.stats.Despawns(world.ReasonHit), int64(4))
	assert.Equal(t, s.stats.Counter(StatKills), s.stats.Despawns(world.ReasonKilled))
	assert.GreaterOrEqual(t, s.stats.Counter(StatKills), int64(1))

	require.NotEmpty(t, s.pub.snaps)
	last := s.pub.snaps[len(s.pub.snaps)-1]
	assert.Equal(t, "test-run", last.Run)
	assert.Equal(t, int64(240), last.Tick)
	assert.Equal(t, s.state.Checksum(), last.Checksum)
	assert.Len(t, s.pub.snaps, 240)
}

func TestSnapshotCarriesCounters(t *testing.T) {
	s := newSim(t)
	s.scene(t)
	s.run(2)

	// Scene spawns are delivered on the first tick, the first volley's shot
	// on the second.
	assert.Equal(t, int64(6), s.pub.snaps[0].Counters[StatSpawned])
	assert.Equal(t, int64(7), s.pub.snaps[1].Counters[StatSpawned])
}
