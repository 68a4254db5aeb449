package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/data"
)

func testPatterns(t *testing.T) *data.PatternTable {
	t.Helper()
	tbl, err := data.NewPatternTable([]data.PatternEntry{{
		Name:  "spin",
		Units: data.UnitsDegrees,
		Steps: []data.StepEntry{{Effect: "rotate", Value: 90, Duration: 1}},
	}})
	require.NoError(t, err)
	return tbl
}

func TestSpawnScenario(t *testing.T) {
	s, _ := newTestState(t)
	sc := &data.Scenario{Entities: []data.ScenarioEntity{
		{
			Name:        "boss",
			Position:    []float32{0, 100},
			Rotation:    180,
			Tags:        []string{"enemy"},
			Health:      10,
			HalfExtents: []float32{8, 8},
			Emitter: &data.EmitterEntry{
				Script:          "ring",
				Pattern:         "spin",
				Interval:        0.5,
				Delay:           1,
				ShotTags:        []string{"enemy_shot"},
				ShotHalfExtents: []float32{2, 2},
			},
		},
		{Name: "drone", Speed: 5, AngularSpeed: 90, Pattern: "spin", Cullable: true},
	}}

	ids, err := s.SpawnScenario(sc, testPatterns(t))
	require.NoError(t, err)
	require.Len(t, ids, 2)

	boss := ids[0]
	tr, _ := s.Transforms.Get(boss)
	assert.Equal(t, mgl32.Vec2{0, 100}, tr.Position)
	assert.InDelta(t, 3.1415926, tr.Rotation, 1e-5)
	em, ok := s.Emitters.Get(boss)
	require.True(t, ok)
	assert.Equal(t, float32(1), em.Cooldown)
	shotMask, _ := s.TagRegistry().Mask("enemy_shot")
	assert.Equal(t, shotMask, em.ShotTags)
	assert.Equal(t, mgl32.Vec2{2, 2}, em.ShotExtents)
	assert.False(t, s.Kinematics.Has(boss))

	drone := ids[1]
	k, ok := s.Kinematics.Get(drone)
	require.True(t, ok)
	assert.InDelta(t, 1.5707963, k.AngularSpeed, 1e-5)
	assert.True(t, s.Programs.Has(drone))
	assert.True(t, s.Cullables.Has(drone))
	assert.False(t, s.Healths.Has(drone))
}

func TestSpawnScenarioRejectsBadReferences(t *testing.T) {
	for name, e := range map[string]data.ScenarioEntity{
		"tag":             {Tags: []string{"ghost"}},
		"pattern":         {Pattern: "nope"},
		"emitter pattern": {Emitter: &data.EmitterEntry{Script: "s", Interval: 1, Pattern: "nope"}},
		"shot tag":        {Emitter: &data.EmitterEntry{Script: "s", Interval: 1, ShotTags: []string{"ghost"}}},
	} {
		t.Run(name, func(t *testing.T) {
			s, _ := newTestState(t)
			sc := &data.Scenario{Entities: []data.ScenarioEntity{{Name: "ok"}, e}}
			_, err := s.SpawnScenario(sc, testPatterns(t))
			assert.Error(t, err)
			assert.Zero(t, s.Live(), "nothing spawned on error")
		})
	}
}

var _ ProgramSource = (*data.PatternTable)(nil)

func TestProgramSourceClones(t *testing.T) {
	var src ProgramSource = testPatterns(t)
	a, _ := src.Program("spin")
	b, _ := src.Program("spin")
	assert.NotSame(t, a, b)
	assert.Equal(t, component.Rotate(mgl32.DegToRad(90)), a.Steps[0].Effect)
}
