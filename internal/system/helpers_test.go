package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	"github.com/barrage/server/internal/core/event"
	"github.com/barrage/server/internal/world"
)

var testTags = []string{"player", "enemy", "player_shot", "enemy_shot"}

func newState(t *testing.T) (*world.State, *event.Bus) {
	t.Helper()
	tags, err := world.NewTagRegistry(testTags)
	require.NoError(t, err)
	bus := event.NewBus()
	return world.NewState(tags, bus), bus
}

func mask(t *testing.T, ws *world.State, names ...string) component.TagMask {
	t.Helper()
	m, err := ws.TagRegistry().Mask(names...)
	require.NoError(t, err)
	return m
}

func program(t *testing.T, repeat bool, steps ...component.Step) *component.ActionProgram {
	t.Helper()
	p, err := component.NewActionProgram(steps, repeat)
	require.NoError(t, err)
	return p
}

func spawnBox(t *testing.T, ws *world.State, tag string, x, y float32, health int32) ecs.EntityID {
	t.Helper()
	req := world.SpawnRequest{
		Transform: component.Transform{Position: mgl32.Vec2{x, y}},
		Collider:  &component.Collider{HalfExtents: mgl32.Vec2{5, 5}},
		Tags:      mask(t, ws, tag),
	}
	if health > 0 {
		req.Health = &component.Health{Current: health}
	}
	return ws.Spawn(req)
}

func secs(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
