package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrUnknownVolley is returned when no script registered the requested volley.
var ErrUnknownVolley = errors.New("unknown volley")

// Engine wraps a single gopher-lua VM for emitter volley scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	volleys *lua.LTable
	log     *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// Scripts register volley functions into the global `volleys` table:
//
//	volleys.ring = function(ctx) return { {angle = 0, speed = 120}, ... } end
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	volleys := vm.NewTable()
	vm.SetGlobal("volleys", volleys)

	e := &Engine{vm: vm, volleys: volleys, log: log}

	// Shared helpers first, then the volley definitions.
	for _, dir := range []string{
		filepath.Join(scriptsDir, "lib"),
		scriptsDir,
		filepath.Join(scriptsDir, "volleys"),
	} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Has reports whether a volley function of that name is registered.
func (e *Engine) Has(name string) bool {
	_, ok := e.volleys.RawGetString(name).(*lua.LFunction)
	return ok
}

// Volleys lists the registered volley names, sorted.
func (e *Engine) Volleys() []string {
	var names []string
	e.volleys.ForEach(func(k, v lua.LValue) {
		if _, ok := v.(*lua.LFunction); ok {
			names = append(names, lua.LVAsString(k))
		}
	})
	sort.Strings(names)
	return names
}

// VolleyContext is what a volley script sees about its emitter.
type VolleyContext struct {
	X, Y     float32
	Rotation float32 // radians; scripts see degrees
	Volley   int     // volleys fired so far by this emitter
	Tick     int64
}

// Shot is one projectile produced by a volley. Offsets are relative to the
// emitter; Angle is added to the emitter's rotation.
type Shot struct {
	OffsetX, OffsetY float32
	Angle            float32 // radians
	Speed            float32
	Accel            float32
	AngularSpeed     float32 // radians per second
	AngularAccel     float32
	Pattern          string // overrides the emitter's pattern when set
}

// Volley calls volleys[name](ctx) and converts the returned array of shot
// tables. Angles in scripts are degrees.
func (e *Engine) Volley(name string, ctx VolleyContext) ([]Shot, error) {
	fn, ok := e.volleys.RawGetString(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("volley %q: %w", name, ErrUnknownVolley)
	}

	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("rotation", lua.LNumber(mgl32.RadToDeg(ctx.Rotation)))
	t.RawSetString("volley", lua.LNumber(ctx.Volley))
	t.RawSetString("tick", lua.LNumber(ctx.Tick))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return nil, fmt.Errorf("volley %q: %w", name, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		if result == lua.LNil {
			return nil, nil
		}
		return nil, fmt.Errorf("volley %q: returned %s, want table", name, result.Type())
	}

	shots := make([]Shot, 0, rt.Len())
	for i := 1; i <= rt.Len(); i++ {
		row, ok := rt.RawGetInt(i).(*lua.LTable)
		if !ok {
			continue
		}
		shots = append(shots, Shot{
			OffsetX:      lFloat(row, "x"),
			OffsetY:      lFloat(row, "y"),
			Angle:        mgl32.DegToRad(lFloat(row, "angle")),
			Speed:        lFloat(row, "speed"),
			Accel:        lFloat(row, "accel"),
			AngularSpeed: mgl32.DegToRad(lFloat(row, "angular")),
			AngularAccel: mgl32.DegToRad(lFloat(row, "angular_accel")),
			Pattern:      lStr(row, "pattern"),
		})
	}
	return shots, nil
}

// --- Lua helpers ---

// lFloat reads a numeric field from a Lua table; missing fields read as 0.
func lFloat(t *lua.LTable, key string) float32 {
	return float32(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
