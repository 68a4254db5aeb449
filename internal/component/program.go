package component

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// EffectKind enumerates the fixed set of action program effects.
type EffectKind uint8

const (
	EffectSetSpeed EffectKind = iota
	EffectSetAccel
	EffectSetAngularSpeed
	EffectSetAngularAccel
	EffectChangeSpeed
	EffectChangeAccel
	EffectChangeAngularSpeed
	EffectChangeAngularAccel
	EffectRotate
	EffectMove
	EffectDespawn
	effectKindCount
)

var effectNames = [effectKindCount]string{
	EffectSetSpeed:           "set_speed",
	EffectSetAccel:           "set_acceleration",
	EffectSetAngularSpeed:    "set_angular_speed",
	EffectSetAngularAccel:    "set_angular_acceleration",
	EffectChangeSpeed:        "change_speed",
	EffectChangeAccel:        "change_acceleration",
	EffectChangeAngularSpeed: "change_angular_speed",
	EffectChangeAngularAccel: "change_angular_acceleration",
	EffectRotate:             "rotate",
	EffectMove:               "move",
	EffectDespawn:            "despawn",
}

func (k EffectKind) String() string {
	if k < effectKindCount {
		return effectNames[k]
	}
	return fmt.Sprintf("effect(%d)", uint8(k))
}

// Angular reports whether the effect's value is an angle or angular rate.
func (k EffectKind) Angular() bool {
	switch k {
	case EffectSetAngularSpeed, EffectSetAngularAccel,
		EffectChangeAngularSpeed, EffectChangeAngularAccel, EffectRotate:
		return true
	}
	return false
}

// ParseEffectKind maps a data-file effect name to its kind.
func ParseEffectKind(name string) (EffectKind, error) {
	for k, n := range effectNames {
		if n == name {
			return EffectKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown effect %q", name)
}

// Effect is one discrete mutation applied when a program step expires.
// Offset is used by EffectMove only; Value by every other kind except EffectDespawn.
type Effect struct {
	Kind   EffectKind
	Value  float32
	Offset mgl32.Vec2
}

func SetSpeed(v float32) Effect           { return Effect{Kind: EffectSetSpeed, Value: v} }
func SetAccel(a float32) Effect           { return Effect{Kind: EffectSetAccel, Value: a} }
func SetAngularSpeed(v float32) Effect    { return Effect{Kind: EffectSetAngularSpeed, Value: v} }
func SetAngularAccel(a float32) Effect    { return Effect{Kind: EffectSetAngularAccel, Value: a} }
func ChangeSpeed(v float32) Effect        { return Effect{Kind: EffectChangeSpeed, Value: v} }
func ChangeAccel(a float32) Effect        { return Effect{Kind: EffectChangeAccel, Value: a} }
func ChangeAngularSpeed(v float32) Effect { return Effect{Kind: EffectChangeAngularSpeed, Value: v} }
func ChangeAngularAccel(a float32) Effect { return Effect{Kind: EffectChangeAngularAccel, Value: a} }
func Rotate(r float32) Effect             { return Effect{Kind: EffectRotate, Value: r} }
func Move(m mgl32.Vec2) Effect            { return Effect{Kind: EffectMove, Offset: m} }
func Despawn() Effect                     { return Effect{Kind: EffectDespawn} }

// Apply mutates the entity's motion state. It reports true when the effect
// asks for the entity to be removed.
func (e Effect) Apply(t *Transform, k *Kinematics) (despawn bool) {
	switch e.Kind {
	case EffectSetSpeed:
		k.LinearSpeed = e.Value
	case EffectSetAccel:
		k.LinearAccel = e.Value
	case EffectSetAngularSpeed:
		k.AngularSpeed = e.Value
	case EffectSetAngularAccel:
		k.AngularAccel = e.Value
	case EffectChangeSpeed:
		k.LinearSpeed += e.Value
	case EffectChangeAccel:
		k.LinearAccel += e.Value
	case EffectChangeAngularSpeed:
		k.AngularSpeed += e.Value
	case EffectChangeAngularAccel:
		k.AngularAccel += e.Value
	case EffectRotate:
		t.RotateLocal(e.Value)
	case EffectMove:
		t.Position = t.Position.Add(e.Offset)
	case EffectDespawn:
		return true
	}
	return false
}

// Step pairs an effect with the time that must elapse before it fires.
type Step struct {
	Effect   Effect
	Duration float32 // seconds
}

// ActionProgram is the timed effect sequence attached to a projectile.
// Steps never change after construction; only Cursor, Remaining and Done move.
type ActionProgram struct {
	Steps     []Step
	Cursor    int
	Remaining float32
	Repeat    bool
	Done      bool
}

var ErrEmptyProgram = errors.New("action program has no steps")

// NewActionProgram copies steps and arms the first one.
func NewActionProgram(steps []Step, repeat bool) (*ActionProgram, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyProgram
	}
	for i, s := range steps {
		if s.Effect.Kind >= effectKindCount {
			return nil, fmt.Errorf("step %d: %s", i, s.Effect.Kind)
		}
	}
	own := make([]Step, len(steps))
	copy(own, steps)
	return &ActionProgram{
		Steps:     own,
		Remaining: own[0].Duration,
		Repeat:    repeat,
	}, nil
}

// Clone returns an independent program with the same steps, rearmed at step 0.
func (p *ActionProgram) Clone() *ActionProgram {
	c, _ := NewActionProgram(p.Steps, p.Repeat)
	return c
}

// Advance counts the active step down by dt. When the countdown drops below
// zero the step fires and the returned effect must be applied exactly once.
// At most one step fires per call regardless of how far dt overshoots.
// The next step starts from its full duration; the overshoot is discarded.
// exhausted is true when the final step of a non-repeating program fired.
func (p *ActionProgram) Advance(dt float32) (fired Effect, ok bool, exhausted bool) {
	if p.Done {
		return Effect{}, false, false
	}
	p.Remaining -= dt
	if p.Remaining >= 0 {
		return Effect{}, false, false
	}

	fired = p.Steps[p.Cursor].Effect
	next := p.Cursor + 1
	if next == len(p.Steps) {
		if !p.Repeat {
			p.Done = true
			return fired, true, true
		}
		next = 0
	}
	p.Cursor = next
	p.Remaining = p.Steps[next].Duration
	return fired, true, false
}

// Stop ends program processing for good.
func (p *ActionProgram) Stop() { p.Done = true }
