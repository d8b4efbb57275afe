package main

import (
	"math"

	"github.com/pthm-cable/affinity/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Mutation
			{Name: "mutation_magnitude", Path: "mutation.magnitude", Min: 0.02, Max: 0.6, Default: 0.2,
				get: func(c *config.Config) float64 { return c.Mutation.Magnitude },
				set: func(c *config.Config, v float64) { c.Mutation.Magnitude = v }},
			{Name: "copy_gene_rate", Path: "mutation.copy_gene_rate", Min: 0, Max: 0.1, Default: 0.025,
				get: func(c *config.Config) float64 { return c.Mutation.CopyGeneRate },
				set: func(c *config.Config, v float64) { c.Mutation.CopyGeneRate = v }},
			{Name: "mutation_rate", Path: "organism.mutation_rate", Min: 0.05, Max: 1, Default: 0.5,
				get: func(c *config.Config) float64 { return c.Organism.MutationRate },
				set: func(c *config.Config, v float64) { c.Organism.MutationRate = v }},
			// Organism metabolism
			{Name: "baseline_cost", Path: "organism.baseline_cost", Min: 0.02, Max: 0.6, Default: 0.2,
				get: func(c *config.Config) float64 { return c.Organism.BaselineCost },
				set: func(c *config.Config, v float64) { c.Organism.BaselineCost = v }},
			{Name: "max_bite_size", Path: "organism.max_bite_size", Min: 2, Max: 30, Default: 10,
				get: func(c *config.Config) float64 { return c.Organism.MaxBiteSize },
				set: func(c *config.Config, v float64) { c.Organism.MaxBiteSize = v }},
			{Name: "maturity_age", Path: "organism.maturity_age", Min: 5, Max: 200, Default: 20,
				get: func(c *config.Config) float64 { return float64(c.Organism.MaturityAge) },
				set: func(c *config.Config, v float64) { c.Organism.MaturityAge = int(math.Round(v)) }},
			// Nutrients
			{Name: "nutrient_energy", Path: "nutrient.energy", Min: 5, Max: 100, Default: 25,
				get: func(c *config.Config) float64 { return c.Nutrient.Energy },
				set: func(c *config.Config, v float64) { c.Nutrient.Energy = v }},
			{Name: "nutrient_reproduce_chance", Path: "nutrient.reproduce_chance", Min: 0.001, Max: 0.05, Default: 0.01,
				get: func(c *config.Config) float64 { return c.Nutrient.ReproduceChance },
				set: func(c *config.Config, v float64) { c.Nutrient.ReproduceChance = v }},
			// Population
			{Name: "max_nutrients", Path: "population.max_nutrients", Min: 20, Max: 200, Default: 50,
				get: func(c *config.Config) float64 { return float64(c.Population.MaxNutrients) },
				set: func(c *config.Config, v float64) { c.Population.MaxNutrients = int(math.Round(v)) }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
