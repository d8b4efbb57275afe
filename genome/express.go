package genome

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/affinity/traits"
)

// Express resolves a trait to a single value by drawing a uniformly random
// allele. Repeated calls may return different values when the genotype has
// more than one allele.
//
// Expressing LineageName or a missing/empty genotype is a programming error
// and panics. Organisms are validated with Validate before they are processed.
func Express(rng *rand.Rand, d *DNA, t traits.Trait) float64 {
	if t == traits.LineageName {
		panic("genome: lineageName is not an expressible trait")
	}
	alleles := d.Genotype(t)
	if len(alleles) == 0 {
		panic(fmt.Sprintf("genome: cannot express %s: %v", t, ErrEmptyGenotype))
	}
	return alleles[rng.Intn(len(alleles))]
}

// Mean returns the average allele value of a trait, or 0 if absent.
// Used for reporting, never for behavior.
func Mean(d *DNA, t traits.Trait) float64 {
	alleles := d.Genotype(t)
	if len(alleles) == 0 {
		return 0
	}
	var sum float64
	for _, v := range alleles {
		sum += v
	}
	return sum / float64(len(alleles))
}
