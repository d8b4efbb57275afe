package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Step phases, in pipeline order.
const (
	PhaseIsolate   = "isolate"
	PhasePhysics   = "physics"
	PhaseReisolate = "reisolate"
	PhaseBehavior  = "behavior"
	PhaseSafety    = "safety"
)

// Phases lists the step phases in pipeline order.
var Phases = []string{PhaseIsolate, PhasePhysics, PhaseReisolate, PhaseBehavior, PhaseSafety}

// PerfSample is the timing of one step.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
	Organisms    []time.Duration // per-organism behavior time, in processing order
}

// PerfCollector keeps the timing of the last windowSize steps and the
// interval between rendered frames.
type PerfCollector struct {
	now func() time.Time

	ring  []PerfSample
	next  int
	count int

	cur        PerfSample
	tickStart  time.Time
	phase      string
	phaseStart time.Time

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize steps.
func NewPerfCollector(windowSize int) *PerfCollector {
	return newPerfCollector(windowSize, time.Now)
}

func newPerfCollector(windowSize int, now func() time.Time) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{now: now, ring: make([]PerfSample, windowSize)}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = PerfSample{Phases: make(map[string]time.Duration)}
	p.phase = ""
}

// StartPhase closes the running phase, if any, and opens the named one.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.cur.Phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// RecordOrganism adds one organism's behavior time to the running step.
func (p *PerfCollector) RecordOrganism(d time.Duration) {
	p.cur.Organisms = append(p.cur.Organisms, d)
}

// EndTick closes the running step and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.cur.TickDuration = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
	p.phase = ""
}

// Last returns the most recently completed step.
func (p *PerfCollector) Last() (PerfSample, bool) {
	if p.count == 0 {
		return PerfSample{}, false
	}
	return p.ring[(p.next-1+len(p.ring))%len(p.ring)], true
}

// RecordFrame marks a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Mean phase durations and their share of the mean step, in percent.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	AvgOrganismDuration time.Duration
	MaxOrganismDuration time.Duration
	OrganismSamples     int

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats summarises the steps currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	ticks := make([]float64, 0, p.count)
	var orgs []float64
	phaseSum := make(map[string]time.Duration)
	for _, sample := range p.ring[:p.count] {
		ticks = append(ticks, float64(sample.TickDuration))
		for phase, d := range sample.Phases {
			phaseSum[phase] += d
		}
		for _, d := range sample.Organisms {
			orgs = append(orgs, float64(d))
		}
	}
	slices.Sort(ticks)

	s.AvgTickDuration = time.Duration(stat.Mean(ticks, nil))
	s.MinTickDuration = time.Duration(ticks[0])
	s.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	s.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}

	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.count)
		s.PhaseAvg[phase] = avg
		if s.AvgTickDuration > 0 {
			s.PhasePct[phase] = float64(avg) / float64(s.AvgTickDuration) * 100
		}
	}

	if len(orgs) > 0 {
		s.OrganismSamples = len(orgs)
		s.AvgOrganismDuration = time.Duration(stat.Mean(orgs, nil))
		s.MaxOrganismDuration = time.Duration(slices.Max(orgs))
	}
	return s
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"avg_organism_us", s.AvgOrganismDuration.Microseconds(),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct := s.PhasePct[phase]; pct > 0.1 {
			attrs = append(attrs, phase+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Int64("avg_organism_us", s.AvgOrganismDuration.Microseconds()),
		slog.Int64("max_organism_us", s.MaxOrganismDuration.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd     int64   `csv:"window_end"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	P95TickUS     int64   `csv:"p95_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	AvgOrganismUS int64   `csv:"avg_organism_us"`
	MaxOrganismUS int64   `csv:"max_organism_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	FPS           float64 `csv:"fps"`
	IsolatePct    float64 `csv:"isolate_pct"`
	PhysicsPct    float64 `csv:"physics_pct"`
	ReisolatePct  float64 `csv:"reisolate_pct"`
	BehaviorPct   float64 `csv:"behavior_pct"`
	SafetyPct     float64 `csv:"safety_pct"`
}

// ToCSV flattens the summary for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		P95TickUS:     s.P95TickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		AvgOrganismUS: s.AvgOrganismDuration.Microseconds(),
		MaxOrganismUS: s.MaxOrganismDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		FPS:           s.FPS,
		IsolatePct:    s.PhasePct[PhaseIsolate],
		PhysicsPct:    s.PhasePct[PhasePhysics],
		ReisolatePct:  s.PhasePct[PhaseReisolate],
		BehaviorPct:   s.PhasePct[PhaseBehavior],
		SafetyPct:     s.PhasePct[PhaseSafety],
	}
}
