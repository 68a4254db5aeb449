package system

import (
	"time"

	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/world"
)

// Publisher receives each post-commit snapshot. Implementations must not
// block the game loop.
type Publisher interface {
	Publish(snap *world.Snapshot)
}

// SnapshotSystem captures the arena after commit and hands it to the
// publisher. Phase 7 (Output).
type SnapshotSystem struct {
	state  *world.State
	stats  *StatsSystem
	pub    Publisher
	run    string
	latest *world.Snapshot
}

func NewSnapshotSystem(ws *world.State, stats *StatsSystem, pub Publisher, run string) *SnapshotSystem {
	return &SnapshotSystem{state: ws, stats: stats, pub: pub, run: run}
}

func (s *SnapshotSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *SnapshotSystem) Update(_ time.Duration) {
	snap := s.state.Snapshot(s.run)
	if s.stats != nil {
		snap.Counters = s.stats.Counters()
	}
	s.latest = snap
	if s.pub != nil {
		s.pub.Publish(snap)
	}
}

// Latest returns the most recent snapshot, or nil before the first tick.
func (s *SnapshotSystem) Latest() *world.Snapshot { return s.latest }
