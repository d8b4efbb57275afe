// Package traits defines entity kinds and the registry of genetic traits.
package traits

import "fmt"

// Kind identifies what sort of entity something is.
type Kind uint8

const (
	Organism Kind = iota
	Nutrient
)

// Kinds lists every entity kind in registry order.
var Kinds = []Kind{Organism, Nutrient}

// String returns the display name for a Kind.
func (k Kind) String() string {
	switch k {
	case Organism:
		return "Organism"
	case Nutrient:
		return "Nutrient"
	default:
		return "Unknown"
	}
}

// ParseKind converts a display name back to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Trait names a heritable, array-valued gene.
type Trait string

const (
	OrganismAffinity Trait = "OrganismAffinity"
	NutrientAffinity Trait = "NutrientAffinity"
	OrganismEating   Trait = "OrganismEating"
	NutrientEating   Trait = "NutrientEating"

	VisualSearch             Trait = "visualSearch"
	StayEnergyMultiplier     Trait = "stayEnergyMultiplier"
	EatEnergyMultiplier      Trait = "eatEnergyMultiplier"
	EnergyGiftToOffspring    Trait = "energyGiftToOffspring"
	ReproductionProbability  Trait = "reproductionProbability"
	MinimumEnergyToReproduce Trait = "minimumEnergyToReproduce"

	// LineageName is the only non-array field of a genome. It is never
	// expressed or mutated.
	LineageName Trait = "lineageName"
)

// Range is the closed interval a trait's alleles are clamped into.
type Range struct {
	Min, Max float64
}

// Clamp returns v limited to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var ranges = map[Trait]Range{
	OrganismAffinity:         {-1, 1},
	NutrientAffinity:         {-1, 1},
	OrganismEating:           {-1, 1},
	NutrientEating:           {-1, 1},
	VisualSearch:             {0, 50},
	StayEnergyMultiplier:     {0, 2},
	EatEnergyMultiplier:      {0, 2},
	EnergyGiftToOffspring:    {0, 1},
	ReproductionProbability:  {0.00001, 0.1},
	MinimumEnergyToReproduce: {0, 1000},
}

// All returns every array-valued trait in a stable order.
func All() []Trait {
	return []Trait{
		OrganismAffinity,
		NutrientAffinity,
		OrganismEating,
		NutrientEating,
		VisualSearch,
		StayEnergyMultiplier,
		EatEnergyMultiplier,
		EnergyGiftToOffspring,
		ReproductionProbability,
		MinimumEnergyToReproduce,
	}
}

// RangeOf returns the declared range for a trait.
func RangeOf(t Trait) (Range, bool) {
	r, ok := ranges[t]
	return r, ok
}

// Affinity returns the trait holding an observer's attraction toward k.
func Affinity(k Kind) Trait {
	switch k {
	case Nutrient:
		return NutrientAffinity
	default:
		return OrganismAffinity
	}
}

// Eating returns the trait holding an observer's eating propensity toward k.
func Eating(k Kind) Trait {
	switch k {
	case Nutrient:
		return NutrientEating
	default:
		return OrganismEating
	}
}
