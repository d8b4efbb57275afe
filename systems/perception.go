package systems

import (
	"math"
	"math/rand"
	"sort"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// SampleSize returns the requested field-of-view size for an organism.
func SampleSize(rng *rand.Rand, e *components.Entity) int {
	n := math.Round(genome.Express(rng, e.DNA, traits.VisualSearch))
	if n < 0 || math.IsNaN(n) {
		return 0
	}
	return int(n)
}

// RandomSample picks intendedSize+1 distinct entities other than current,
// uniformly without replacement. When fewer remain, all of them are returned.
// The returned pointers alias all and must be treated as read-only.
func RandomSample(rng *rand.Rand, current *components.Entity, all []components.Entity, intendedSize int) []*components.Entity {
	others := make([]*components.Entity, 0, len(all))
	for i := range all {
		if all[i].ID != current.ID {
			others = append(others, &all[i])
		}
	}

	want := intendedSize + 1
	if len(others) <= want {
		return others
	}

	// Partial Fisher-Yates over the candidate list.
	for i := 0; i < want; i++ {
		j := i + rng.Intn(len(others)-i)
		others[i], others[j] = others[j], others[i]
	}
	return others[:want]
}

// WorkingMemory merges a fresh sample into the previous memory and keeps the
// nearest capacity entries.
//
// Sampled entities get a fresh percept and distance. If they were already
// remembered the original CreatedAt is kept and UpdatedAt moves to tick.
// Remembered entities absent from the sample keep their stale entry. Ties in
// distance keep sampled entries ahead of stale ones.
func WorkingMemory(current *components.Entity, sample []*components.Entity, tick int64, capacity int) []components.Engram {
	prev := make(map[uint64]components.Engram, len(current.Engrams))
	for _, g := range current.Engrams {
		prev[g.Subject.ID] = g
	}

	merged := make([]components.Engram, 0, len(sample)+len(current.Engrams))
	seen := make(map[uint64]bool, len(sample))
	for _, other := range sample {
		if seen[other.ID] {
			continue
		}
		seen[other.ID] = true

		g := components.Engram{
			Subject:   components.PerceptOf(other),
			Distance:  distance(current.Position, other.Position),
			CreatedAt: tick,
			UpdatedAt: tick,
		}
		if old, ok := prev[other.ID]; ok {
			g.CreatedAt = old.CreatedAt
		}
		merged = append(merged, g)
	}
	for _, g := range current.Engrams {
		if seen[g.Subject.ID] || g.Subject.ID == current.ID {
			continue
		}
		seen[g.Subject.ID] = true
		merged = append(merged, g)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Distance < merged[j].Distance
	})
	if len(merged) > capacity {
		merged = merged[:capacity]
	}

	// Fresh backing array, nothing shared with the previous memory.
	out := make([]components.Engram, len(merged))
	copy(out, merged)
	return out
}
