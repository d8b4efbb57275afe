package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Population counts at window end
	Organisms int `csv:"organisms"`
	Nutrients int `csv:"nutrients"`

	// Events during window
	OrganismBirths int     `csv:"organism_births"`
	NutrientBirths int     `csv:"nutrient_births"`
	OrganismDeaths int     `csv:"organism_deaths"`
	NutrientDeaths int     `csv:"nutrient_deaths"`
	Bites          int     `csv:"bites"`
	EnergyEaten    float64 `csv:"energy_eaten"`
	Dropped        int     `csv:"dropped"`
	Repaired       int     `csv:"repaired"`

	// Energy distribution (sampled at window end)
	OrganismEnergyMean float64 `csv:"organism_energy_mean"`
	OrganismEnergyStd  float64 `csv:"organism_energy_std"`
	OrganismEnergyP10  float64 `csv:"organism_energy_p10"`
	OrganismEnergyP50  float64 `csv:"organism_energy_p50"`
	OrganismEnergyP90  float64 `csv:"organism_energy_p90"`
	NutrientEnergy     float64 `csv:"nutrient_energy"`

	// Mean allele values across living organisms
	NutrientAffinityMean float64 `csv:"nutrient_affinity_mean"`
	OrganismAffinityMean float64 `csv:"organism_affinity_mean"`
	OrganismEatingMean   float64 `csv:"organism_eating_mean"`
	VisualSearchMean     float64 `csv:"visual_search_mean"`
	ReproductionMean     float64 `csv:"reproduction_mean"`
	GenotypeLengthMean   float64 `csv:"genotype_length_mean"`

	ActiveLineages int `csv:"active_lineages"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// EnergyStats summarises an energy distribution.
type EnergyStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// ComputeEnergyStats calculates mean, population standard deviation and
// percentiles from energy values.
func ComputeEnergyStats(values []float64) EnergyStats {
	if len(values) == 0 {
		return EnergyStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, variance := stat.PopMeanVariance(sorted, nil)
	return EnergyStats{
		Mean: mean,
		Std:  math.Sqrt(variance),
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// Census is a point-in-time summary of a population.
type Census struct {
	Organisms, Nutrients int
	OrganismEnergy       EnergyStats
	NutrientEnergy       float64
	TraitMeans           map[traits.Trait]float64
	GenotypeLengthMean   float64
}

var censusTraits = []traits.Trait{
	traits.NutrientAffinity,
	traits.OrganismAffinity,
	traits.OrganismEating,
	traits.VisualSearch,
	traits.ReproductionProbability,
}

// TakeCensus counts a population and averages the allele means of its
// organisms. Organisms without DNA contribute to counts only.
func TakeCensus(pop []components.Entity) Census {
	c := Census{TraitMeans: make(map[traits.Trait]float64, len(censusTraits))}
	var energies, lengths []float64
	alleles := make(map[traits.Trait][]float64, len(censusTraits))

	for i := range pop {
		e := &pop[i]
		switch e.Kind {
		case traits.Nutrient:
			c.Nutrients++
			c.NutrientEnergy += e.Energy
		case traits.Organism:
			c.Organisms++
			energies = append(energies, e.Energy)
			if e.DNA == nil {
				continue
			}
			for _, t := range censusTraits {
				if len(e.DNA.Genotype(t)) > 0 {
					alleles[t] = append(alleles[t], genome.Mean(e.DNA, t))
				}
			}
			var total int
			for _, g := range e.DNA.Genes {
				total += len(g)
			}
			if len(e.DNA.Genes) > 0 {
				lengths = append(lengths, float64(total)/float64(len(e.DNA.Genes)))
			}
		}
	}

	c.OrganismEnergy = ComputeEnergyStats(energies)
	for t, vs := range alleles {
		c.TraitMeans[t] = stat.Mean(vs, nil)
	}
	if len(lengths) > 0 {
		c.GenotypeLengthMean = stat.Mean(lengths, nil)
	}
	return c
}

func (c Census) apply(s *WindowStats) {
	s.Organisms = c.Organisms
	s.Nutrients = c.Nutrients
	s.OrganismEnergyMean = c.OrganismEnergy.Mean
	s.OrganismEnergyStd = c.OrganismEnergy.Std
	s.OrganismEnergyP10 = c.OrganismEnergy.P10
	s.OrganismEnergyP50 = c.OrganismEnergy.P50
	s.OrganismEnergyP90 = c.OrganismEnergy.P90
	s.NutrientEnergy = c.NutrientEnergy
	s.NutrientAffinityMean = c.TraitMeans[traits.NutrientAffinity]
	s.OrganismAffinityMean = c.TraitMeans[traits.OrganismAffinity]
	s.OrganismEatingMean = c.TraitMeans[traits.OrganismEating]
	s.VisualSearchMean = c.TraitMeans[traits.VisualSearch]
	s.ReproductionMean = c.TraitMeans[traits.ReproductionProbability]
	s.GenotypeLengthMean = c.GenotypeLengthMean
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("organisms", s.Organisms),
		slog.Int("nutrients", s.Nutrients),
		slog.Int("organism_births", s.OrganismBirths),
		slog.Int("nutrient_births", s.NutrientBirths),
		slog.Int("organism_deaths", s.OrganismDeaths),
		slog.Int("nutrient_deaths", s.NutrientDeaths),
		slog.Int("bites", s.Bites),
		slog.Float64("energy_eaten", s.EnergyEaten),
		slog.Int("dropped", s.Dropped),
		slog.Int("repaired", s.Repaired),
		slog.Float64("organism_energy_mean", s.OrganismEnergyMean),
		slog.Float64("organism_energy_p50", s.OrganismEnergyP50),
		slog.Float64("nutrient_energy", s.NutrientEnergy),
		slog.Float64("visual_search_mean", s.VisualSearchMean),
		slog.Float64("reproduction_mean", s.ReproductionMean),
		slog.Int("active_lineages", s.ActiveLineages),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"organisms", s.Organisms,
		"nutrients", s.Nutrients,
		"organism_births", s.OrganismBirths,
		"nutrient_births", s.NutrientBirths,
		"organism_deaths", s.OrganismDeaths,
		"nutrient_deaths", s.NutrientDeaths,
		"bites", s.Bites,
		"energy_eaten", s.EnergyEaten,
		"dropped", s.Dropped,
		"repaired", s.Repaired,
		"organism_energy_mean", s.OrganismEnergyMean,
		"organism_energy_std", s.OrganismEnergyStd,
		"organism_energy_p10", s.OrganismEnergyP10,
		"organism_energy_p50", s.OrganismEnergyP50,
		"organism_energy_p90", s.OrganismEnergyP90,
		"nutrient_energy", s.NutrientEnergy,
		"nutrient_affinity_mean", s.NutrientAffinityMean,
		"organism_affinity_mean", s.OrganismAffinityMean,
		"organism_eating_mean", s.OrganismEatingMean,
		"visual_search_mean", s.VisualSearchMean,
		"reproduction_mean", s.ReproductionMean,
		"genotype_length_mean", s.GenotypeLengthMean,
		"active_lineages", s.ActiveLineages,
	)
}
