package genome

import (
	"math/rand"

	"github.com/pthm-cable/affinity/traits"
)

// Default mutation parameters.
const (
	DefaultMagnitude    = 0.2
	DefaultCopyGeneRate = 0.025
)

// MutationParams controls how a child genome diverges from its parent.
type MutationParams struct {
	Rate         float64 // per-trait probability of perturbing one allele
	Magnitude    float64 // width of the uniform perturbation, centered on zero
	CopyGeneRate float64 // per-trait probability of appending a copy of an allele
}

// Mutate returns a child genome derived from parent.
//
// Each array trait is visited in registry order. With probability Rate one
// random allele is perturbed by U(-Magnitude/2, +Magnitude/2) and clamped into
// the trait's range. Independently, with probability CopyGeneRate a random
// existing allele is appended. Allele lists never shrink. The lineage name is
// carried through unchanged and the result shares no slices with parent.
func Mutate(rng *rand.Rand, parent *DNA, p MutationParams) *DNA {
	child := Clone(parent)
	if child == nil {
		return nil
	}

	for _, t := range child.Traits() {
		alleles := child.Genes[t]
		if len(alleles) == 0 {
			continue
		}

		if rng.Float64() < p.Rate {
			i := rng.Intn(len(alleles))
			v := alleles[i] + (rng.Float64()-0.5)*p.Magnitude
			if r, ok := traits.RangeOf(t); ok {
				v = r.Clamp(v)
			}
			alleles[i] = v
		}

		if rng.Float64() < p.CopyGeneRate {
			alleles = append(alleles, alleles[rng.Intn(len(alleles))])
		}

		child.Genes[t] = alleles
	}

	return child
}
