package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EmitterEntry configures a volley emitter on a scenario entity.
type EmitterEntry struct {
	Script          string    `yaml:"script"`
	Pattern         string    `yaml:"pattern"`
	Interval        float32   `yaml:"interval"`
	Delay           float32   `yaml:"delay"`
	Limit           int       `yaml:"limit"`
	ShotTags        []string  `yaml:"shot_tags"`
	ShotHalfExtents []float32 `yaml:"shot_half_extents"`
	ShotLifetime    float32   `yaml:"shot_lifetime"`
}

// ScenarioEntity is one entity placed at scene setup. Angles are degrees.
type ScenarioEntity struct {
	Name         string        `yaml:"name"`
	Position     []float32     `yaml:"position"`
	Rotation     float32       `yaml:"rotation"`
	Speed        float32       `yaml:"speed"`
	Accel        float32       `yaml:"accel"`
	AngularSpeed float32       `yaml:"angular"`
	AngularAccel float32       `yaml:"angular_accel"`
	Pattern      string        `yaml:"pattern"`
	Tags         []string      `yaml:"tags"`
	Health       int32         `yaml:"health"`
	HalfExtents  []float32     `yaml:"half_extents"`
	Lifetime     float32       `yaml:"lifetime"`
	Cullable     bool          `yaml:"cullable"`
	Emitter      *EmitterEntry `yaml:"emitter"`
}

// Scenario is the opening scene.
type Scenario struct {
	Name     string           `yaml:"name"`
	Entities []ScenarioEntity `yaml:"entities"`
}

// LoadScenario loads scenario.yaml.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i := range sc.Entities {
		e := &sc.Entities[i]
		if err := checkPair(e.Position, "position"); err != nil {
			return nil, fmt.Errorf("scenario entity %d (%s): %w", i, e.Name, err)
		}
		if err := checkPair(e.HalfExtents, "half_extents"); err != nil {
			return nil, fmt.Errorf("scenario entity %d (%s): %w", i, e.Name, err)
		}
		if em := e.Emitter; em != nil {
			if em.Script == "" {
				return nil, fmt.Errorf("scenario entity %d (%s): emitter without script", i, e.Name)
			}
			if em.Interval <= 0 {
				return nil, fmt.Errorf("scenario entity %d (%s): emitter interval must be positive", i, e.Name)
			}
			if err := checkPair(em.ShotHalfExtents, "shot_half_extents"); err != nil {
				return nil, fmt.Errorf("scenario entity %d (%s): %w", i, e.Name, err)
			}
		}
	}
	return &sc, nil
}

// Count returns the number of entities in the scene.
func (s *Scenario) Count() int {
	return len(s.Entities)
}

func checkPair(v []float32, field string) error {
	if len(v) != 0 && len(v) != 2 {
		return fmt.Errorf("%s needs 2 values, got %d", field, len(v))
	}
	return nil
}
