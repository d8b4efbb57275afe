package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/systems"
	"github.com/pthm-cable/affinity/telemetry"
)

const (
	defaultHistoryLimit = 600
	defaultHallSize     = 20
	bookmarkHistory     = 10
	maxSpeed            = 10
)

// StepSink receives every newly computed step, e.g. for persistence.
// Enqueue must not block the simulation.
type StepSink interface {
	Enqueue(step SimulationStep)
}

// Options configures a simulation session.
type Options struct {
	Seed           int64
	LogStats       bool   // log window stats and bookmarks via slog
	OutputDir      string // CSV output; empty disables it
	StepsPerUpdate int    // steps per UpdateHeadless call
	HistoryLimit   int    // retained steps for scrubbing; 0 uses a default

	// HallOfFamePath seeds founders from a saved hall of fame. Lineages
	// missing from the file fall back to their template.
	HallOfFamePath string
	HallSize       int

	// Initial resumes from a stored step instead of seeding a new world.
	Initial *SimulationStep
	// IDFloor is the highest entity id already issued by earlier runs of
	// this simulation. New ids start above it and above Initial's ids.
	IDFloor uint64

	Sink        StepSink
	Logger      *slog.Logger
	Diagnostics Diagnostics
	OnStats     func(telemetry.WindowStats)
}

// Game is a running simulation session: the engine, the timeline of computed
// steps and the telemetry fed by each new step.
type Game struct {
	cfg *config.Config
	rng *rand.Rand
	log *slog.Logger

	engine   *Engine
	timeline *Timeline
	report   StepReport

	paused         bool
	speed          int
	stepsPerUpdate int

	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	marks     []telemetry.Bookmark
	lineages  *telemetry.LineageTracker
	hall      *telemetry.HallOfFame
	output    *telemetry.OutputManager

	logStats bool
	sink     StepSink
	onStats  func(telemetry.WindowStats)
}

// NewGameWithOptions creates a session and its first step.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	g := &Game{
		cfg:            cfg,
		rng:            rng,
		log:            logger,
		speed:          1,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		bookmarks:      telemetry.NewBookmarkDetector(bookmarkHistory),
		lineages:       telemetry.NewLineageTracker(),
		logStats:       opts.LogStats,
		sink:           opts.Sink,
		onStats:        opts.OnStats,
	}

	hallSize := opts.HallSize
	if hallSize <= 0 {
		hallSize = defaultHallSize
	}
	g.hall = telemetry.NewHallOfFame(hallSize, rng)
	if opts.HallOfFamePath != "" {
		hall, err := telemetry.LoadHallOfFameFromFile(opts.HallOfFamePath, rng)
		if err != nil {
			return nil, err
		}
		g.hall = hall
	}

	after := opts.IDFloor
	if opts.Initial != nil {
		after = max(after, opts.Initial.MaxID())
	}
	engineOpts := []Option{
		WithIDSource(systems.NewIDSource(after)),
		WithLogger(logger),
	}
	if opts.Diagnostics != nil {
		engineOpts = append(engineOpts, WithDiagnostics(opts.Diagnostics))
	}
	g.engine = NewEngine(cfg, rng, engineOpts...)

	first, err := g.firstStep(opts)
	if err != nil {
		return nil, err
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	g.timeline = NewTimeline(first, limit)
	g.lineages.Sync(first.Number, first.Objects)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.output = output
	if output != nil {
		if err := output.WriteConfig(cfg); err != nil {
			output.Close()
			return nil, err
		}
	}

	if g.sink != nil && opts.Initial == nil {
		g.sink.Enqueue(first.Clone())
	}
	return g, nil
}

func (g *Game) firstStep(opts Options) (SimulationStep, error) {
	if opts.Initial != nil {
		return opts.Initial.Clone(), nil
	}
	if opts.HallOfFamePath == "" {
		return g.engine.Seed()
	}

	names := g.cfg.Population.Founders
	if len(names) == 0 {
		names = genome.TemplateNames()
	}
	founders := make([]*genome.DNA, len(names))
	for i, name := range names {
		if dna := g.hall.Sample(name); dna != nil {
			founders[i] = dna
			continue
		}
		dna, err := genome.Template(name)
		if err != nil {
			return SimulationStep{}, fmt.Errorf("seeding founders: %w", err)
		}
		founders[i] = dna
	}
	g.log.Info("seeding from hall of fame", "path", opts.HallOfFamePath, "lineages", g.hall.Lineages())
	return g.engine.SeedFrom(founders), nil
}

// Update advances the simulation by the current speed unless paused.
func (g *Game) Update() {
	if g.paused {
		return
	}
	for i := 0; i < g.speed; i++ {
		g.Forward()
	}
}

// UpdateHeadless advances StepsPerUpdate steps, ignoring pause.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Forward()
	}
}

// Forward moves one step ahead. Retained steps are revisited; new steps
// are computed and observed.
func (g *Game) Forward() {
	step, report, computed := g.timeline.Forward(g.engine)
	if computed {
		g.observe(step, report)
	}
}

// Back moves the view one retained step back.
func (g *Game) Back() bool {
	return g.timeline.Back()
}

// observe feeds a newly computed step to telemetry and the sink.
func (g *Game) observe(step SimulationStep, report StepReport) {
	g.report = report
	g.logReport(report)

	for _, ev := range report.Events {
		g.collector.Record(ev)
		if ev.Type == telemetry.EventBite {
			g.lineages.RecordBite(ev.EntityID, ev.Amount)
		}
	}

	gone := g.lineages.Sync(step.Number, step.Objects)
	for _, s := range gone {
		g.hall.Consider(s)
	}
	if g.output != nil && len(gone) > 0 {
		if err := g.output.WriteLifetimes(gone); err != nil {
			g.log.Error("failed to write lifetimes", "error", err)
		}
	}

	g.flushTelemetry(step)

	if g.sink != nil {
		g.sink.Enqueue(step.Clone())
	}
}

// Tick returns the number of the step being viewed.
func (g *Game) Tick() int64 {
	return g.timeline.Current().Number
}

// Latest returns the number of the newest computed step.
func (g *Game) Latest() int64 {
	return g.timeline.Latest().Number
}

// Current returns the step being viewed.
func (g *Game) Current() SimulationStep {
	return g.timeline.Current()
}

// Timeline exposes the retained steps for scrubbing.
func (g *Game) Timeline() *Timeline { return g.timeline }

// LastReport returns the report of the newest computed step.
func (g *Game) LastReport() StepReport { return g.report }

// Lineages returns the lineage tracker.
func (g *Game) Lineages() *telemetry.LineageTracker { return g.lineages }

// Bookmarks returns every bookmark detected so far, oldest first.
func (g *Game) Bookmarks() []telemetry.Bookmark { return g.marks }

// HallOfFame returns the hall of fame.
func (g *Game) HallOfFame() *telemetry.HallOfFame { return g.hall }

// Perf returns the engine's perf collector.
func (g *Game) Perf() *telemetry.PerfCollector { return g.engine.Perf() }

// Config returns the session configuration.
func (g *Game) Config() *config.Config { return g.cfg }

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool { return g.paused }

// SetPaused suspends or resumes Update.
func (g *Game) SetPaused(p bool) { g.paused = p }

// TogglePause flips the pause state.
func (g *Game) TogglePause() { g.paused = !g.paused }

// Speed returns the number of steps taken per Update.
func (g *Game) Speed() int { return g.speed }

// SetSpeed sets the steps per Update, clamped to [1, 10].
func (g *Game) SetSpeed(n int) {
	g.speed = min(max(n, 1), maxSpeed)
}

// Unload writes the hall of fame and closes output files.
func (g *Game) Unload() {
	if g.output == nil {
		return
	}
	if err := g.output.WriteHallOfFame(g.hall); err != nil {
		g.log.Error("failed to write hall of fame", "error", err)
	}
	if err := g.output.Close(); err != nil {
		g.log.Error("failed to close output", "error", err)
	}
	g.output = nil
}

// HallOfFameFile returns where Unload writes the hall of fame, or "" when
// output is disabled.
func (g *Game) HallOfFameFile() string {
	if g.output == nil {
		return ""
	}
	return filepath.Join(g.output.Dir(), telemetry.HallOfFameFile)
}
