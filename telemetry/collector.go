package telemetry

import (
	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/traits"
)

// Collector accumulates events during a stats window.
type Collector struct {
	windowTicks int64
	windowStart int64

	births  [2]int
	deaths  [2]int
	bites   int
	eaten   float64
	dropped int
	repairs int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

// RecordBirth counts a new entity of the given kind.
func (c *Collector) RecordBirth(kind traits.Kind) {
	if int(kind) < len(c.births) {
		c.births[kind]++
	}
}

// RecordDeath counts an entity of the given kind leaving the population.
func (c *Collector) RecordDeath(kind traits.Kind) {
	if int(kind) < len(c.deaths) {
		c.deaths[kind]++
	}
}

// RecordBite counts a successful bite and the energy it transferred.
func (c *Collector) RecordBite(amount float64) {
	c.bites++
	c.eaten += amount
}

// RecordDrop counts an entity removed for failing validation.
func (c *Collector) RecordDrop() {
	c.dropped++
}

// RecordRepairs counts safety repairs.
func (c *Collector) RecordRepairs(n int) {
	c.repairs += n
}

// Record dispatches an engine event to the matching counter.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventBirth:
		c.RecordBirth(ev.Kind)
	case EventDeath:
		c.RecordDeath(ev.Kind)
	case EventBite:
		c.RecordBite(ev.Amount)
	case EventDrop:
		c.RecordDrop()
	case EventRepair:
		c.RecordRepairs(1)
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStart >= c.windowTicks
}

// Flush produces a WindowStats from the counters and a census of pop, then
// resets counters for the next window.
func (c *Collector) Flush(currentTick int64, pop []components.Entity, activeLineages int) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   currentTick,

		OrganismBirths: c.births[traits.Organism],
		NutrientBirths: c.births[traits.Nutrient],
		OrganismDeaths: c.deaths[traits.Organism],
		NutrientDeaths: c.deaths[traits.Nutrient],
		Bites:          c.bites,
		EnergyEaten:    c.eaten,
		Dropped:        c.dropped,
		Repaired:       c.repairs,

		ActiveLineages: activeLineages,
	}
	TakeCensus(pop).apply(&stats)

	// Reset for next window
	c.windowStart = currentTick
	c.births = [2]int{}
	c.deaths = [2]int{}
	c.bites = 0
	c.eaten = 0
	c.dropped = 0
	c.repairs = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int64 {
	return c.windowTicks
}
