// Package genome holds organism DNA: validation, gene expression and mutation.
package genome

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/pthm-cable/affinity/traits"
)

var (
	// ErrEmptyGenotype is returned when a trait has no alleles.
	ErrEmptyGenotype = errors.New("genome: empty genotype")
	// ErrMissingTrait is returned when a required trait is absent.
	ErrMissingTrait = errors.New("genome: missing trait")
)

// DNA maps each trait to its ordered allele list.
type DNA struct {
	Lineage string                     `json:"lineageName" yaml:"lineage"`
	Genes   map[traits.Trait][]float64 `json:"genes" yaml:"genes"`
}

// Genotype returns the allele list for a trait.
// The returned slice is shared with d and must not be modified.
func (d *DNA) Genotype(t traits.Trait) []float64 {
	if d == nil {
		return nil
	}
	return d.Genes[t]
}

// Validate checks that every registered trait is present, non-empty and finite.
func Validate(d *DNA) error {
	if d == nil {
		return fmt.Errorf("%w: nil dna", ErrMissingTrait)
	}
	for _, t := range traits.All() {
		alleles, ok := d.Genes[t]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingTrait, t)
		}
		if len(alleles) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyGenotype, t)
		}
		for i, v := range alleles {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("genome: trait %s allele %d is not finite", t, i)
			}
		}
	}
	return nil
}

// Clone returns a structurally independent copy of d.
func Clone(d *DNA) *DNA {
	if d == nil {
		return nil
	}
	out := &DNA{
		Lineage: d.Lineage,
		Genes:   make(map[traits.Trait][]float64, len(d.Genes)),
	}
	for t, alleles := range d.Genes {
		out.Genes[t] = append([]float64(nil), alleles...)
	}
	return out
}

// Traits returns the traits present in d in sorted order.
func (d *DNA) Traits() []traits.Trait {
	if d == nil {
		return nil
	}
	names := make([]traits.Trait, 0, len(d.Genes))
	for t := range d.Genes {
		names = append(names, t)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
