package telemetry

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/pthm-cable/affinity/genome"
)

// Fitness weights and entry thresholds for the hall of fame.
const (
	childrenWeight = 10.0
	ageWeight      = 0.01
	eatenWeight    = 0.005

	minChildren   = 1
	minAgeNoIssue = 500
)

// HallEntry is a successful organism's genome and record.
type HallEntry struct {
	ID       uint64      `json:"id"`
	Fitness  float64     `json:"fitness"`
	Children int         `json:"children"`
	Age      int         `json:"age"`
	Eaten    float64     `json:"eaten"`
	DNA      *genome.DNA `json:"dna"`
}

// HallOfFame keeps the fittest dead organisms of each lineage so their
// genomes can seed later runs.
type HallOfFame struct {
	halls   map[string][]HallEntry
	maxSize int
	rng     *rand.Rand
}

// NewHallOfFame creates a hall of fame holding up to maxSize entries per lineage.
func NewHallOfFame(maxSize int, rng *rand.Rand) *HallOfFame {
	return &HallOfFame{
		halls:   make(map[string][]HallEntry),
		maxSize: maxSize,
		rng:     rng,
	}
}

// Fitness scores a finished lifetime.
func Fitness(s LifetimeStats) float64 {
	return float64(s.Children)*childrenWeight + float64(s.Age)*ageWeight + s.Eaten*eatenWeight
}

// Consider evaluates a dead organism for entry. Returns true if it was added.
func (hof *HallOfFame) Consider(s LifetimeStats) bool {
	if s.DNA == nil {
		return false
	}
	if s.Children < minChildren && s.Age < minAgeNoIssue {
		return false
	}

	entry := HallEntry{
		ID:       s.ID,
		Fitness:  Fitness(s),
		Children: s.Children,
		Age:      s.Age,
		Eaten:    s.Eaten,
		DNA:      genome.Clone(s.DNA),
	}
	hall := hof.insertEntry(hof.halls[s.Lineage], entry)
	hof.halls[s.Lineage] = hall
	return containsID(hall, s.ID)
}

func containsID(hall []HallEntry, id uint64) bool {
	for _, e := range hall {
		if e.ID == id {
			return true
		}
	}
	return false
}

// insertEntry adds an entry keeping the hall sorted by descending fitness,
// dropping the weakest when over capacity.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Fitness < entry.Fitness
	})
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry

	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	return hall
}

// Sample picks a genome from a lineage's hall by tournament selection
// (k=3) and returns a copy. Returns nil if the hall is empty.
func (hof *HallOfFame) Sample(lineage string) *genome.DNA {
	hall := hof.halls[lineage]
	if len(hall) == 0 {
		return nil
	}

	const tournamentSize = 3
	best := &hall[hof.rng.Intn(len(hall))]
	for i := 1; i < tournamentSize; i++ {
		if c := &hall[hof.rng.Intn(len(hall))]; c.Fitness > best.Fitness {
			best = c
		}
	}
	return genome.Clone(best.DNA)
}

// Lineages returns the lineages with at least one entry, sorted.
func (hof *HallOfFame) Lineages() []string {
	var out []string
	for name, hall := range hof.halls {
		if len(hall) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Size returns the number of entries for a lineage.
func (hof *HallOfFame) Size(lineage string) int {
	return len(hof.halls[lineage])
}

// TopFitness returns the best fitness recorded for a lineage, or 0.
func (hof *HallOfFame) TopFitness(lineage string) float64 {
	if hall := hof.halls[lineage]; len(hall) > 0 {
		return hall[0].Fitness
	}
	return 0
}

// MarshalJSON serializes the halls keyed by lineage.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.halls, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame written by MarshalJSON.
func LoadHallOfFameFromFile(path string, rng *rand.Rand) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw map[string][]HallEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	maxSize := 30
	for _, entries := range raw {
		if len(entries) > maxSize {
			maxSize = len(entries)
		}
	}

	hof := NewHallOfFame(maxSize, rng)
	for lineage, entries := range raw {
		for _, e := range entries {
			if err := genome.Validate(e.DNA); err != nil {
				return nil, fmt.Errorf("hall of fame entry %d in %q: %w", e.ID, lineage, err)
			}
			hof.halls[lineage] = hof.insertEntry(hof.halls[lineage], e)
		}
	}
	return hof, nil
}
