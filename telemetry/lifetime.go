package telemetry

import (
	"sort"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// LifetimeStats tracks per-entity statistics over its lifetime.
type LifetimeStats struct {
	ID        uint64      `csv:"id"`
	Kind      traits.Kind `csv:"kind"`
	Lineage   string      `csv:"lineage"`
	ParentID  uint64      `csv:"parent_id"` // zero for founders
	BirthTick int64       `csv:"birth_tick"`
	LastTick  int64       `csv:"last_tick"`
	Age       int         `csv:"age"`
	Children  int         `csv:"children"`
	Bites     int         `csv:"bites"`
	Eaten     float64     `csv:"eaten"`

	PeakEnergy float64     `csv:"peak_energy"`
	DNA        *genome.DNA `csv:"-"`
}

// LineageTracker follows organisms across steps: who descended from whom
// and which lineages still have living members.
type LineageTracker struct {
	stats map[uint64]*LifetimeStats
}

// NewLineageTracker creates an empty tracker.
func NewLineageTracker() *LineageTracker {
	return &LineageTracker{stats: make(map[uint64]*LifetimeStats)}
}

// Sync reconciles the tracker with a step's organisms. New organisms are
// registered (crediting their parent), survivors are refreshed, and stats of
// organisms that vanished are removed and returned ordered by id.
func (lt *LineageTracker) Sync(tick int64, pop []components.Entity) []LifetimeStats {
	present := make(map[uint64]struct{}, len(pop))
	for i := range pop {
		e := &pop[i]
		if !e.IsOrganism() {
			continue
		}
		present[e.ID] = struct{}{}

		s, ok := lt.stats[e.ID]
		if !ok {
			s = &LifetimeStats{ID: e.ID, Kind: e.Kind, Lineage: e.Lineage(), BirthTick: tick}
			if e.ParentID != nil {
				s.ParentID = *e.ParentID
				if p := lt.stats[*e.ParentID]; p != nil {
					p.Children++
				}
			}
			lt.stats[e.ID] = s
		}
		s.LastTick = tick
		s.DNA = e.DNA
		s.Age = e.Age
		if e.Energy > s.PeakEnergy {
			s.PeakEnergy = e.Energy
		}
	}

	var gone []LifetimeStats
	for id, s := range lt.stats {
		if _, ok := present[id]; !ok {
			gone = append(gone, *s)
			delete(lt.stats, id)
		}
	}
	sort.Slice(gone, func(i, j int) bool { return gone[i].ID < gone[j].ID })
	return gone
}

// RecordBite credits an eater with a bite of the given size.
func (lt *LineageTracker) RecordBite(eaterID uint64, amount float64) {
	if s := lt.stats[eaterID]; s != nil {
		s.Bites++
		s.Eaten += amount
	}
}

// Get returns the lifetime stats for an entity, or nil if not found.
func (lt *LineageTracker) Get(id uint64) *LifetimeStats {
	return lt.stats[id]
}

// Count returns the number of tracked organisms.
func (lt *LineageTracker) Count() int {
	return len(lt.stats)
}

// ActiveLineages returns living organism counts keyed by lineage name.
func (lt *LineageTracker) ActiveLineages() map[string]int {
	out := make(map[string]int)
	for _, s := range lt.stats {
		out[s.Lineage]++
	}
	return out
}

// ActiveLineageCount returns the number of lineages with a living member.
func (lt *LineageTracker) ActiveLineageCount() int {
	return len(lt.ActiveLineages())
}

// Ancestry walks parent links from id through organisms still tracked,
// nearest first.
func (lt *LineageTracker) Ancestry(id uint64) []uint64 {
	var out []uint64
	seen := map[uint64]bool{id: true}
	for s := lt.stats[id]; s != nil && s.ParentID != 0 && !seen[s.ParentID]; s = lt.stats[s.ParentID] {
		out = append(out, s.ParentID)
		seen[s.ParentID] = true
	}
	return out
}
