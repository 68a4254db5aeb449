package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrage/server/internal/component"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const patternsYAML = `
patterns:
  - name: curl
    repeat: true
    units: degrees
    steps:
      - { effect: set_angular_speed, value: 90, duration: 0.5 }
      - { effect: rotate, value: 180, duration: 0.25 }
      - { effect: change_speed, value: 20, duration: 0.25 }
  - name: hop
    steps:
      - { effect: move, offset: [3, -4], duration: 1 }
      - { effect: despawn, duration: 0 }
`

func TestLoadPatternTable(t *testing.T) {
	tbl, err := LoadPatternTable(writeFile(t, patternsYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Count())
	assert.Equal(t, []string{"curl", "hop"}, tbl.Names())

	curl, ok := tbl.Program("curl")
	require.True(t, ok)
	assert.True(t, curl.Repeat)
	require.Len(t, curl.Steps, 3)
	assert.InDelta(t, mgl32.DegToRad(90), curl.Steps[0].Effect.Value, 1e-6)
	assert.InDelta(t, mgl32.DegToRad(180), curl.Steps[1].Effect.Value, 1e-6)
	assert.Equal(t, float32(20), curl.Steps[2].Effect.Value, "linear values are not converted")
	assert.Equal(t, float32(0.5), curl.Remaining)

	hop, ok := tbl.Program("hop")
	require.True(t, ok)
	assert.Equal(t, component.Move(mgl32.Vec2{3, -4}), hop.Steps[0].Effect)
	assert.Equal(t, component.EffectDespawn, hop.Steps[1].Effect.Kind)

	_, ok = tbl.Program("nope")
	assert.False(t, ok)
	assert.Nil(t, tbl.Get("nope"))
	assert.True(t, tbl.Has("hop"))
}

func TestPatternUnitsDefaultToDegrees(t *testing.T) {
	tbl, err := NewPatternTable([]PatternEntry{
		{Name: "plain", Steps: []StepEntry{{Effect: "rotate", Value: 90}}},
		{Name: "rad", Units: UnitsRadians, Steps: []StepEntry{{Effect: "rotate", Value: 1.5}}},
	})
	require.NoError(t, err)

	plain, _ := tbl.Program("plain")
	assert.InDelta(t, mgl32.DegToRad(90), plain.Steps[0].Effect.Value, 1e-6)
	rad, _ := tbl.Program("rad")
	assert.Equal(t, float32(1.5), rad.Steps[0].Effect.Value)
}

// The shipped tables must load, and a one-shot pattern has to outlive its
// last motion change or the entity is removed on the tick it happens.
func TestShippedData(t *testing.T) {
	tbl, err := LoadPatternTable(filepath.Join("..", "..", "data", "yaml", "patterns.yaml"))
	require.NoError(t, err)
	for _, name := range tbl.Names() {
		e := tbl.Get(name)
		if e.Repeat {
			continue
		}
		last := e.Steps[len(e.Steps)-1]
		assert.Equal(t, "despawn", last.Effect, "pattern %s", name)
	}

	sc, err := LoadScenario(filepath.Join("..", "..", "data", "yaml", "scenario.yaml"))
	require.NoError(t, err)
	for _, e := range sc.Entities {
		if e.Pattern != "" {
			assert.True(t, tbl.Has(e.Pattern), "entity %s pattern %s", e.Name, e.Pattern)
		}
		if e.Emitter != nil && e.Emitter.Pattern != "" {
			assert.True(t, tbl.Has(e.Emitter.Pattern), "entity %s emitter pattern %s", e.Name, e.Emitter.Pattern)
		}
	}
}

func TestProgramsAreIndependentCopies(t *testing.T) {
	tbl, err := LoadPatternTable(writeFile(t, patternsYAML))
	require.NoError(t, err)

	a, _ := tbl.Program("hop")
	a.Advance(5)
	b, _ := tbl.Program("hop")
	assert.Equal(t, 0, b.Cursor)
	assert.Equal(t, float32(1), b.Remaining)
}

func TestPatternValidation(t *testing.T) {
	cases := map[string][]PatternEntry{
		"missing name":  {{Steps: []StepEntry{{Effect: "despawn"}}}},
		"duplicate":     {{Name: "a", Steps: []StepEntry{{Effect: "despawn"}}}, {Name: "a", Steps: []StepEntry{{Effect: "despawn"}}}},
		"empty program": {{Name: "a"}},
		"bad effect":    {{Name: "a", Steps: []StepEntry{{Effect: "teleport"}}}},
		"bad units":     {{Name: "a", Units: "turns", Steps: []StepEntry{{Effect: "rotate"}}}},
		"bad offset":    {{Name: "a", Steps: []StepEntry{{Effect: "move", Offset: []float32{1}}}}},
		"negative":      {{Name: "a", Steps: []StepEntry{{Effect: "rotate", Duration: -1}}}},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPatternTable(entries)
			assert.Error(t, err)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeFile(t, `
name: opening
entities:
  - name: boss
    position: [0, 200]
    rotation: 180
    tags: [enemy]
    health: 40
    half_extents: [24, 24]
    emitter:
      script: ring
      pattern: curl
      interval: 0.5
      shot_tags: [enemy_shot]
      shot_half_extents: [4, 4]
      shot_lifetime: 6
  - name: player
    position: [0, -200]
    tags: [player]
    health: 3
`))
	require.NoError(t, err)
	assert.Equal(t, "opening", sc.Name)
	require.Equal(t, 2, sc.Count())
	boss := sc.Entities[0]
	assert.Equal(t, []float32{0, 200}, boss.Position)
	require.NotNil(t, boss.Emitter)
	assert.Equal(t, "ring", boss.Emitter.Script)
	assert.Equal(t, float32(0.5), boss.Emitter.Interval)
	assert.Nil(t, sc.Entities[1].Emitter)
}

func TestScenarioValidation(t *testing.T) {
	for name, body := range map[string]string{
		"position":    "entities: [{name: a, position: [1]}]",
		"no script":   "entities: [{name: a, emitter: {interval: 1}}]",
		"no interval": "entities: [{name: a, emitter: {script: s}}]",
		"bad yaml":    "entities: {",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenario(writeFile(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
