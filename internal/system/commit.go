package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/world"
)

// CommitSystem applies the tick's queued despawns, then queued spawns.
// Phase 6 (Commit).
type CommitSystem struct {
	state *world.State
	log   *zap.Logger
}

func NewCommitSystem(ws *world.State, log *zap.Logger) *CommitSystem {
	return &CommitSystem{state: ws, log: log}
}

func (s *CommitSystem) Phase() coresys.Phase { return coresys.PhaseCommit }

func (s *CommitSystem) Update(_ time.Duration) {
	res := s.state.Commit()
	if len(res.Removed) > 0 || len(res.Spawned) > 0 {
		s.log.Debug("commit",
			zap.Int64("tick", s.state.Tick()),
			zap.Int("removed", len(res.Removed)),
			zap.Int("spawned", len(res.Spawned)),
			zap.Int("live", s.state.Live()),
		)
	}
}
