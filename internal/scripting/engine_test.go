package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "lib"), "util.lua", `
function spread(n, step)
  local out = {}
  for i = 1, n do
    out[i] = (i - 1) * step
  end
  return out
end
`)
	writeScript(t, dir, "volleys.lua", `
volleys.fan = function(ctx)
  local shots = {}
  for i, a in ipairs(spread(3, 90)) do
    shots[i] = { angle = a + ctx.rotation, speed = 10 * ctx.volley, pattern = "wave" }
  end
  return shots
end

volleys.offset = function(ctx)
  return { { x = ctx.x, y = -2, angular = 180, accel = 1.5 } }
end

volleys.empty = function(ctx) return nil end
volleys.broken = function(ctx) error("boom") end
volleys.wrong = function(ctx) return 7 end
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestVolleyConvertsShots(t *testing.T) {
	e := newTestEngine(t)

	shots, err := e.Volley("fan", VolleyContext{Volley: 2})
	require.NoError(t, err)
	require.Len(t, shots, 3)
	assert.InDelta(t, 0, shots[0].Angle, 1e-6)
	assert.InDelta(t, 1.5707963, shots[1].Angle, 1e-5)
	assert.InDelta(t, 3.1415926, shots[2].Angle, 1e-5)
	assert.Equal(t, float32(20), shots[0].Speed)
	assert.Equal(t, "wave", shots[2].Pattern)

	shots, err = e.Volley("offset", VolleyContext{X: 4})
	require.NoError(t, err)
	require.Len(t, shots, 1)
	assert.Equal(t, float32(4), shots[0].OffsetX)
	assert.Equal(t, float32(-2), shots[0].OffsetY)
	assert.Equal(t, float32(1.5), shots[0].Accel)
	assert.InDelta(t, 3.1415926, shots[0].AngularSpeed, 1e-5)
	assert.Empty(t, shots[0].Pattern)
}

func TestVolleySeesEmitterRotationInDegrees(t *testing.T) {
	e := newTestEngine(t)
	shots, err := e.Volley("fan", VolleyContext{Rotation: 1.5707964, Volley: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.5707963, shots[0].Angle, 1e-5)
}

func TestVolleyErrors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Volley("missing", VolleyContext{})
	assert.ErrorIs(t, err, ErrUnknownVolley)

	_, err = e.Volley("broken", VolleyContext{})
	assert.Error(t, err)

	_, err = e.Volley("wrong", VolleyContext{})
	assert.Error(t, err)

	shots, err := e.Volley("empty", VolleyContext{})
	assert.NoError(t, err)
	assert.Empty(t, shots)
}

func TestRegistry(t *testing.T) {
	e := newTestEngine(t)
	assert.True(t, e.Has("fan"))
	assert.False(t, e.Has("spread"))
	assert.Equal(t, []string{"broken", "empty", "fan", "offset", "wrong"}, e.Volleys())
}

func TestLoadErrorsAreReported(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad.lua", "volleys.x = function(")
	_, err := NewEngine(dir, zap.NewNop())
	assert.Error(t, err)
}

func TestMissingDirectoryLoadsNothing(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "none"), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()
	assert.Empty(t, e.Volleys())
}
