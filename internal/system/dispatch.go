package system

import (
	"time"

	"github.com/barrage/server/internal/core/event"
	coresys "github.com/barrage/server/internal/core/system"
)

// EventDispatchSystem delivers events emitted during the previous tick.
// Phase 0 (Events).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// Flush delivers whatever the last tick emitted. Called once at shutdown so
// subscribers see the final commit.
func (s *EventDispatchSystem) Flush() {
	s.Update(0)
}
