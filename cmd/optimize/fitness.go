package main

import (
	"log/slog"
	"math"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/affinity/config"
	"github.com/pthm-cable/affinity/game"
	"github.com/pthm-cable/affinity/telemetry"
	"github.com/pthm-cable/affinity/traits"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	last           evalSummary
}

// evalSummary describes the most recent evaluation for progress output.
type evalSummary struct {
	survival float64 // mean ticks survived across seeds
	quality  float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// Last returns mean survival and quality from the most recent evaluation.
func (fe *FitnessEvaluator) Last() (survival, quality float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last.survival, fe.last.quality
}

// Organisms below minViablePop for extinctionGrace consecutive ticks count
// as functionally extinct.
const (
	minViablePop    = 2
	extinctionGrace = 200
	warmupTicks     = 50
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks int64 // ticks before functional extinction (or maxTicks if survived)
	windowStats   []telemetry.WindowStats
	hallOfFame    *telemetry.HallOfFame
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness    float64
	survival   float64
	quality    float64
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))

	var eg errgroup.Group
	for i, seed := range fe.seeds {
		eg.Go(func() error {
			r, err := fe.runSimulation(x, seed)
			if err != nil {
				return err
			}
			quality := computeQuality(r.windowStats)
			results[i] = seedResult{
				fitness:    computeFitness(r.survivalTicks, quality),
				survival:   float64(r.survivalTicks),
				quality:    quality,
				hallOfFame: r.hallOfFame,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		slog.Warn("evaluation failed", "error", err)
		return math.Inf(1)
	}

	var totalFitness, totalSurvival, totalQuality float64
	bestSeedFitness := math.Inf(1)
	var bestSeedHallOfFame *telemetry.HallOfFame
	for _, r := range results {
		totalFitness += r.fitness
		totalSurvival += r.survival
		totalQuality += r.quality
		if r.fitness < bestSeedFitness {
			bestSeedFitness = r.fitness
			bestSeedHallOfFame = r.hallOfFame
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestHallOfFame = bestSeedHallOfFame
	}
	fe.last = evalSummary{survival: totalSurvival / n, quality: totalQuality / n}
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation runs one seed until functional extinction or maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (*runResult, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	g, err := game.NewGameWithOptions(cfg, game.Options{
		Seed:           seed,
		StepsPerUpdate: 1,
		HistoryLimit:   1,
		Logger:         slog.New(slog.DiscardHandler),
		OnStats: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Unload()

	var below int64
	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		tick := g.Tick()
		if tick < warmupTicks {
			continue
		}

		organisms := g.Current().Count(traits.Organism)
		if organisms == 0 {
			break
		}
		if organisms < minViablePop {
			below++
		} else {
			below = 0
		}
		if below >= extinctionGrace {
			break
		}
	}

	result.survivalTicks = g.Tick()
	result.hallOfFame = g.HallOfFame()
	return result, nil
}

// copyConfig returns a copy of the base config that a run may modify.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Population.Founders = slices.Clone(fe.baseConfig.Population.Founders)
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to a 20% bonus to separate configs
// that survive equally long.
func computeFitness(survivalTicks int64, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightDiversity = 0.35
	qualityWeightStability = 0.25
	qualityWeightEnergy    = 0.20
	qualityWeightFeeding   = 0.20

	qualityWarmupWindows = 2 // skip first N windows
	qualityMinPop        = 2 // exclude windows with fewer organisms
	targetEnergy         = 300.0
)

// computeQuality scores ecosystem health in [0, 1] from window stats:
// lineages that coexist, a steady population, organisms that are neither
// starving nor saturated, and regular feeding.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var diversitySum, energySum, feedSum float64
	var counts []float64

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Organisms < qualityMinPop {
			continue
		}
		counts = append(counts, float64(w.Organisms))

		diversitySum += 1 - math.Exp(-float64(max(w.ActiveLineages-1, 0)))

		e := (w.OrganismEnergyP50 - targetEnergy) / targetEnergy
		energySum += math.Exp(-e * e)

		bitesPerOrganism := float64(w.Bites) / float64(w.Organisms)
		feedSum += 1 - math.Exp(-bitesPerOrganism/5)
	}
	if len(counts) == 0 {
		return 0
	}
	n := float64(len(counts))

	stability := 0.0
	if len(counts) >= 2 {
		c := cv(counts)
		stability = math.Exp(-c * c)
	}

	quality := qualityWeightDiversity*diversitySum/n +
		qualityWeightStability*stability +
		qualityWeightEnergy*energySum/n +
		qualityWeightFeeding*feedSum/n

	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	mean, variance := stat.PopMeanVariance(values, nil)
	if mean == 0 {
		return 0
	}
	return math.Sqrt(variance) / mean
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
