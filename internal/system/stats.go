package system

import (
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/barrage/server/internal/core/event"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/world"
)

// Counter names carried in snapshots and the shutdown log.
const (
	StatSpawned = "spawned"
	StatHits    = "hits"
	StatKills   = "kills"
	statDespawn = "despawn."
)

// StatsSystem tallies lifecycle events from the bus and logs a checksum line
// every N ticks. Phase 7 (Output).
type StatsSystem struct {
	state    *world.State
	log      *zap.Logger
	every    int64
	counters map[string]int64
}

func NewStatsSystem(ws *world.State, bus *event.Bus, checksumEvery int, log *zap.Logger) *StatsSystem {
	s := &StatsSystem{
		state:    ws,
		log:      log,
		every:    int64(checksumEvery),
		counters: make(map[string]int64),
	}
	event.Subscribe(bus, func(event.EntitySpawned) { s.counters[StatSpawned]++ })
	event.Subscribe(bus, func(e event.EntityDespawned) { s.counters[statDespawn+e.Reason]++ })
	event.Subscribe(bus, func(e event.ProjectileHit) {
		s.counters[StatHits]++
		if e.Killed {
			s.counters[StatKills]++
		}
	})
	return s
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *StatsSystem) Update(_ time.Duration) {
	tick := s.state.Tick()
	if s.every <= 0 || tick%s.every != 0 {
		return
	}
	s.log.Info("tick",
		zap.Int64("tick", tick),
		zap.Int("live", s.state.Live()),
		zap.String("checksum", checksumHex(s.state.Checksum())),
		zap.Int64("hits", s.counters[StatHits]),
		zap.Int64("kills", s.counters[StatKills]),
	)
}

// Counter returns one tally.
func (s *StatsSystem) Counter(name string) int64 { return s.counters[name] }

// Despawns returns how many entities were removed for reason r.
func (s *StatsSystem) Despawns(r world.DespawnReason) int64 {
	return s.counters[statDespawn+r.String()]
}

// Counters returns a copy of every tally.
func (s *StatsSystem) Counters() map[string]int64 {
	return maps.Clone(s.counters)
}

// LogSummary writes the final tallies.
func (s *StatsSystem) LogSummary() {
	fields := []zap.Field{
		zap.Int64("ticks", s.state.Tick()),
		zap.Int("live", s.state.Live()),
		zap.String("checksum", checksumHex(s.state.Checksum())),
	}
	for _, k := range sortedKeys(s.counters) {
		fields = append(fields, zap.Int64(k, s.counters[k]))
	}
	s.log.Info("run summary", fields...)
}
