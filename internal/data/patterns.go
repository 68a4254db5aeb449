package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/barrage/server/internal/component"
)

// Angle units accepted by a pattern. Degrees unless the pattern says
// otherwise, matching scenario files and volley scripts. Rotate and the
// angular effects are converted to radians at load time.
const (
	UnitsRadians = "radians"
	UnitsDegrees = "degrees"
)

// StepEntry is one timed effect of a pattern.
type StepEntry struct {
	Effect   string    `yaml:"effect"`
	Value    float32   `yaml:"value,omitempty"`
	Offset   []float32 `yaml:"offset,omitempty"` // [x, y], move only
	Duration float32   `yaml:"duration"`
}

// PatternEntry is a named action program as written in patterns.yaml.
type PatternEntry struct {
	Name   string      `yaml:"name"`
	Repeat bool        `yaml:"repeat"`
	Units  string      `yaml:"units,omitempty"`
	Note   string      `yaml:"note,omitempty"`
	Steps  []StepEntry `yaml:"steps"`
}

type patternFile struct {
	Patterns []PatternEntry `yaml:"patterns"`
}

// PatternTable holds compiled action programs by name. Programs handed out
// are clones; the table's copies are never advanced.
type PatternTable struct {
	entries  map[string]*PatternEntry
	programs map[string]*component.ActionProgram
}

// LoadPatternTable loads patterns.yaml.
func LoadPatternTable(path string) (*PatternTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	var f patternFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}
	return NewPatternTable(f.Patterns)
}

// NewPatternTable compiles entries from any source (YAML, database).
func NewPatternTable(entries []PatternEntry) (*PatternTable, error) {
	t := &PatternTable{
		entries:  make(map[string]*PatternEntry, len(entries)),
		programs: make(map[string]*component.ActionProgram, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("pattern #%d: missing name", i)
		}
		if _, dup := t.entries[e.Name]; dup {
			return nil, fmt.Errorf("pattern %q: duplicate name", e.Name)
		}
		prog, err := CompilePattern(e)
		if err != nil {
			return nil, err
		}
		t.entries[e.Name] = e
		t.programs[e.Name] = prog
	}
	return t, nil
}

// CompilePattern turns one entry into a fresh action program.
func CompilePattern(e *PatternEntry) (*component.ActionProgram, error) {
	degrees := true
	switch e.Units {
	case "", UnitsDegrees:
	case UnitsRadians:
		degrees = false
	default:
		return nil, fmt.Errorf("pattern %q: unknown units %q", e.Name, e.Units)
	}

	steps := make([]component.Step, 0, len(e.Steps))
	for i, s := range e.Steps {
		kind, err := component.ParseEffectKind(s.Effect)
		if err != nil {
			return nil, fmt.Errorf("pattern %q step %d: %w", e.Name, i, err)
		}
		if s.Duration < 0 {
			return nil, fmt.Errorf("pattern %q step %d: negative duration", e.Name, i)
		}
		eff := component.Effect{Kind: kind, Value: s.Value}
		if degrees && kind.Angular() {
			eff.Value = mgl32.DegToRad(s.Value)
		}
		if kind == component.EffectMove {
			switch len(s.Offset) {
			case 0:
			case 2:
				eff.Offset = mgl32.Vec2{s.Offset[0], s.Offset[1]}
			default:
				return nil, fmt.Errorf("pattern %q step %d: offset needs 2 values, got %d", e.Name, i, len(s.Offset))
			}
		}
		steps = append(steps, component.Step{Effect: eff, Duration: s.Duration})
	}

	prog, err := component.NewActionProgram(steps, e.Repeat)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", e.Name, err)
	}
	return prog, nil
}

// Program returns a fresh copy of the named program, rearmed at step 0.
func (t *PatternTable) Program(name string) (*component.ActionProgram, bool) {
	p, ok := t.programs[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Has reports whether a pattern of that name exists.
func (t *PatternTable) Has(name string) bool {
	_, ok := t.programs[name]
	return ok
}

// Get returns the source entry, or nil if none.
func (t *PatternTable) Get(name string) *PatternEntry {
	return t.entries[name]
}

// Names returns all pattern names, sorted.
func (t *PatternTable) Names() []string {
	names := make([]string, 0, len(t.entries))
	for n := range t.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Count returns the total number of patterns loaded.
func (t *PatternTable) Count() int {
	return len(t.entries)
}
