package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/barrage/server/internal/config"
	"github.com/barrage/server/internal/core/event"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/data"
	gonet "github.com/barrage/server/internal/net"
	"github.com/barrage/server/internal/persist"
	"github.com/barrage/server/internal/scripting"
	"github.com/barrage/server/internal/system"
	"github.com/barrage/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	runID := uuid.New()
	baseLog, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer baseLog.Sync()
	log := baseLog.With(zap.String("run", runID.String()))

	printBanner(cfg.Server.Name, runID.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Optional PostgreSQL
	var db *persist.DB
	if cfg.Database.Enabled {
		printSection("database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err = persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		err = persist.RunMigrations(dbCtx, db)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()
	}

	// 4. Data tables and scripts
	printSection("data")
	patterns, err := loadPatterns(ctx, cfg, db)
	if err != nil {
		return err
	}
	printStat("patterns", patterns.Count())

	scenario, err := data.LoadScenario(cfg.Data.Scenario)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}
	printStat("scenario entities", scenario.Count())

	lua, err := scripting.NewEngine(cfg.Data.Scripts, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer lua.Close()
	printStat("volley scripts", len(lua.Volleys()))
	for _, e := range scenario.Entities {
		if e.Emitter != nil && !lua.Has(e.Emitter.Script) {
			return fmt.Errorf("scenario entity %s: unknown volley %q", e.Name, e.Emitter.Script)
		}
	}

	// 5. World
	tags, err := world.NewTagRegistry(cfg.Sim.Tags)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	pairs, err := system.CollisionPairs(tags, cfg.Pairs())
	if err != nil {
		return fmt.Errorf("collision: %w", err)
	}
	bus := event.NewBus()
	ws := world.NewState(tags, bus)
	ids, err := ws.SpawnScenario(scenario, patterns)
	if err != nil {
		return fmt.Errorf("spawn scenario: %w", err)
	}
	printStat("spawned", len(ids))
	fmt.Println()

	// 6. Spectator feed
	var pub system.Publisher
	var hub *gonet.Hub
	if cfg.Spectator.Enabled {
		hub = gonet.NewHub(cfg.Spectator.OutQueueSize, cfg.Spectator.WriteTimeout, cfg.Spectator.PublishEvery, log)
		pub = hub
	}

	// 7. Create systems and register with runner
	runner := coresys.NewRunner()
	dispatch := system.NewEventDispatchSystem(bus)
	stats := system.NewStatsSystem(ws, bus, cfg.Sim.ChecksumEvery, log)
	arena := mgl32.Vec2{cfg.Sim.ArenaWidth / 2, cfg.Sim.ArenaHeight / 2}

	runner.Register(dispatch)
	runner.Register(system.NewEmitterSystem(ws, lua, patterns, log))
	runner.Register(system.NewKinematicsSystem(ws))
	runner.Register(system.NewActionSystem(ws, log))
	runner.Register(system.NewCollisionSystem(ws, bus, pairs, cfg.Sim.CellSize))
	runner.Register(system.NewLifetimeSystem(ws))
	runner.Register(system.NewCullSystem(ws, arena, cfg.Sim.CullMargin))
	runner.Register(system.NewCommitSystem(ws, log))
	runner.Register(stats)
	runner.Register(system.NewSnapshotSystem(ws, stats, pub, runID.String()))

	// 8. Start game loop and spectator server
	printSection("ready")
	if hub != nil {
		printReady(fmt.Sprintf("spectators on %s%s", cfg.Spectator.BindAddress, cfg.Spectator.Path))
	}
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Sim.TickRate))
	fmt.Println()

	startedAt := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoop := context.WithCancel(gctx)
	defer stopLoop()

	if hub != nil {
		g.Go(func() error {
			if err := hub.Serve(loopCtx, cfg.Spectator.BindAddress, cfg.Spectator.Path); err != nil {
				return fmt.Errorf("spectator server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer stopLoop()
		return gameLoop(loopCtx, runner, cfg.Sim, log)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	dispatch.Flush()
	stats.LogSummary()

	if db != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		rec := persist.RunRecord{
			RunID:     runID,
			Scenario:  scenario.Name,
			StartedAt: startedAt,
			Ticks:     ws.Tick(),
			Live:      ws.Live(),
			Checksum:  ws.Checksum(),
			Counters:  stats.Counters(),
		}
		if err := persist.NewRunRepo(db).Record(saveCtx, rec); err != nil {
			log.Error("record run failed", zap.Error(err))
		}
	}
	log.Info("server stopped")
	return nil
}

// gameLoop ticks the runner at the fixed rate until ctx is done or the
// configured tick budget is spent.
func gameLoop(ctx context.Context, runner *coresys.Runner, sim config.SimConfig, log *zap.Logger) error {
	ticker := time.NewTicker(sim.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runner.Tick(sim.TickRate)
			if sim.MaxTicks > 0 && runner.Ticks() >= sim.MaxTicks {
				log.Info("tick budget reached", zap.Int64("ticks", runner.Ticks()))
				return nil
			}
		case <-ctx.Done():
			log.Info("shutdown requested")
			return nil
		}
	}
}

func loadPatterns(ctx context.Context, cfg *config.Config, db *persist.DB) (*data.PatternTable, error) {
	if !cfg.Data.PatternsFromDB {
		tbl, err := data.LoadPatternTable(cfg.Data.Patterns)
		if err != nil {
			return nil, fmt.Errorf("load patterns: %w", err)
		}
		return tbl, nil
	}
	entries, err := persist.NewPatternRepo(db).LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	tbl, err := data.NewPatternTable(entries)
	if err != nil {
		return nil, fmt.Errorf("database patterns: %w", err)
	}
	return tbl, nil
}
