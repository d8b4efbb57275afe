package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/renderer"
	"github.com/pthm-cable/affinity/store"
)

const flushTimeout = 30 * time.Second

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults, or the resumed run's config)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and hall of fame")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per headless update call")
	dbPath := flag.String("db", "", "SQLite database for step persistence (empty = no persistence)")
	name := flag.String("name", "", "Name recorded for a new simulation")
	resume := flag.Int64("resume", 0, "Resume the simulation with this id from its latest saved step")
	hall := flag.String("hall", "", "Seed founders from a hall_of_fame.json")
	debug := flag.Bool("debug", false, "Log every step at debug level")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx, sessionFlags{
		configPath: *configPath,
		dbPath:     *dbPath,
		name:       *name,
		resume:     *resume,
		seed:       rngSeed,
	})
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer sess.close()

	opts := game.Options{
		Seed:           sess.seed,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
		HallOfFamePath: *hall,
		Initial:        sess.initial,
		IDFloor:        sess.idFloor,
		Logger:         logger,
	}
	if sess.saver != nil {
		opts.Sink = sess.saver
	}

	// The saver outlives the simulation loop so queued steps can be flushed.
	saveCtx, stopSaver := context.WithCancel(context.Background())
	var eg errgroup.Group
	if sess.saver != nil {
		eg.Go(func() error { return sess.saver.Run(saveCtx) })
	}

	var runErr error
	if *headless {
		eg.Go(func() error {
			defer stopSaver()
			err := runHeadless(ctx, sess.cfg, opts, *maxTicks)
			sess.flush()
			return err
		})
	} else {
		// raylib must stay on the main goroutine.
		runErr = runGraphical(sess.cfg, opts, sess.saver, *maxTicks)
		sess.flush()
		stopSaver()
	}

	if err := eg.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		slog.Error("simulation failed", "error", runErr)
		sess.close()
		os.Exit(1)
	}
}

func runHeadless(ctx context.Context, cfg *config.Config, opts game.Options, maxTicks int) error {
	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"start", g.Tick(),
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", g.Tick())
			g.LogWorldState()
			return nil
		default:
		}

		g.UpdateHeadless()

		if maxTicks > 0 && g.Tick() >= int64(maxTicks) {
			slog.Info("max ticks reached", "tick", g.Tick())
			g.LogWorldState()
			return nil
		}
	}
}

func runGraphical(cfg *config.Config, opts game.Options, saver *store.Saver, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Affinity")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(rl.KeyEscape)

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	var status renderer.SaveStatus
	if saver != nil {
		status = saver
	}
	view := renderer.NewView(g, status)

	for !rl.WindowShouldClose() {
		view.Frame()

		if maxTicks > 0 && g.Latest() >= int64(maxTicks) {
			break
		}
	}
	g.LogWorldState()
	return nil
}

type sessionFlags struct {
	configPath string
	dbPath     string
	name       string
	resume     int64
	seed       int64
}

// session holds what a run needs besides the game: its configuration, the
// store and saver when persisting, and the step to resume from.
type session struct {
	cfg     *config.Config
	seed    int64
	store   store.Store
	saver   *store.Saver
	simID   int64
	initial *game.SimulationStep
	idFloor uint64
}

func openSession(ctx context.Context, f sessionFlags) (*session, error) {
	s := &session{seed: f.seed}

	if f.dbPath == "" {
		if f.resume != 0 {
			return nil, errors.New("-resume requires -db")
		}
		cfg, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		s.cfg = cfg
		return s, nil
	}

	st, err := store.OpenSQLite(f.dbPath)
	if err != nil {
		return nil, err
	}
	s.store = st

	if f.resume != 0 {
		err = s.resumeFrom(ctx, f)
	} else {
		err = s.create(ctx, f)
	}
	if err != nil {
		st.Close()
		return nil, err
	}

	s.saver = store.NewSaver(st, s.simID, s.cfg.Store, slog.Default())
	return s, nil
}

func (s *session) create(ctx context.Context, f sessionFlags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	snapshot, err := cfg.MarshalYAMLBytes()
	if err != nil {
		return err
	}
	name := f.name
	if name == "" {
		name = fmt.Sprintf("run-%d", f.seed)
	}
	id, err := s.store.CreateSimulation(ctx, store.Simulation{Name: name, Seed: f.seed, Config: snapshot})
	if err != nil {
		return fmt.Errorf("creating simulation: %w", err)
	}
	s.cfg = cfg
	s.simID = id
	slog.Info("created simulation", "sim_id", id, "name", name)
	return nil
}

func (s *session) resumeFrom(ctx context.Context, f sessionFlags) error {
	sim, err := store.FindSimulation(ctx, s.store, f.resume)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.Parse(sim.Config)
	}
	if err != nil {
		return err
	}

	latest, err := s.store.LatestStep(ctx, sim.ID)
	if err != nil {
		return fmt.Errorf("loading latest step of simulation %d: %w", sim.ID, err)
	}
	floor, err := s.store.MaxEntityID(ctx, sim.ID)
	if err != nil {
		return fmt.Errorf("loading entity ids of simulation %d: %w", sim.ID, err)
	}
	s.cfg = cfg
	s.simID = sim.ID
	s.initial = &latest
	s.idFloor = floor
	slog.Info("resuming simulation", "sim_id", sim.ID, "name", sim.Name, "step", latest.Number,
		"entities", len(latest.Objects), "max_entity_id", floor)
	return nil
}

// flush waits for queued steps to be written and reports what could not be.
func (s *session) flush() {
	if s.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := s.saver.Flush(ctx); err != nil {
		slog.Warn("flush timed out", "pending", s.saver.Pending(), "error", err)
	}
	if failed := s.saver.Failed(); len(failed) > 0 {
		slog.Warn("retrying parked steps", "count", len(failed))
		s.saver.Retry()
		if err := s.saver.Flush(ctx); err != nil {
			slog.Warn("flush timed out", "pending", s.saver.Pending(), "error", err)
		}
	}
	slog.Info("saver stopped", "saved", s.saver.Saved(), "failed", len(s.saver.Failed()))
}

func (s *session) close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
}
