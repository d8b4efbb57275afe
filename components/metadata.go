package components

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/affinity/genome"
	"github.com/pthm-cable/affinity/traits"
)

// FieldDescriptor describes an entity field for UI display.
type FieldDescriptor struct {
	ID     string  // Unique identifier
	Label  string  // Display name
	Format string  // Printf format (e.g., "%.2f")
	Min    float64 // Minimum value (for bars)
	Max    float64 // Maximum value (for bars)
	IsBar  bool    // True to render as progress bar
	Group  string  // Logical grouping
}

// EntityFieldDescriptors returns metadata for the fields shown for any entity.
func EntityFieldDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{ID: "energy", Label: "Energy", Format: "%.1f", Min: 0, Max: 1000, IsBar: true, Group: "vitals"},
		{ID: "age", Label: "Age", Format: "%.0f", Min: 0, Max: 2000, IsBar: true, Group: "vitals"},
		{ID: "speed", Label: "Speed", Format: "%.2f", Group: "motion"},
		{ID: "force", Label: "Force", Format: "%.3f", Group: "motion"},
		{ID: "memory", Label: "Memory", Format: "%.0f", Group: "mind"},
		{ID: "actions", Label: "Actions", Format: "%.0f", Group: "mind"},
	}
}

// GeneFieldDescriptors returns one descriptor per trait, showing the allele mean.
func GeneFieldDescriptors() []FieldDescriptor {
	all := traits.All()
	out := make([]FieldDescriptor, 0, len(all))
	for _, t := range all {
		r, _ := traits.RangeOf(t)
		out = append(out, FieldDescriptor{
			ID:     string(t),
			Label:  string(t),
			Format: "%.3f",
			Min:    r.Min,
			Max:    r.Max,
			IsBar:  true,
			Group:  "genes",
		})
	}
	return out
}

// GetEntityValue extracts an entity field value by ID.
// Gene IDs return the mean of the trait's alleles.
func GetEntityValue(e *Entity, fieldID string) float64 {
	switch fieldID {
	case "energy":
		return e.Energy
	case "age":
		return float64(e.Age)
	case "speed":
		return r2.Norm(e.Velocity)
	case "force":
		return r2.Norm(e.Force)
	case "memory":
		return float64(len(e.Engrams))
	case "actions":
		return float64(len(e.Actions))
	default:
		return genome.Mean(e.DNA, traits.Trait(fieldID))
	}
}

// FieldLine is a formatted label/value pair.
type FieldLine struct {
	Label string
	Value string
	Fill  float64 // 0..1 for bars, -1 otherwise
}

// Describe formats every field applicable to e.
func Describe(e *Entity) []FieldLine {
	fields := EntityFieldDescriptors()
	if e.IsOrganism() {
		fields = append(fields, GeneFieldDescriptors()...)
	}

	lines := make([]FieldLine, 0, len(fields)+2)
	lines = append(lines, FieldLine{Label: "ID", Value: fmt.Sprintf("%d %s", e.ID, e.Kind), Fill: -1})
	if lin := e.Lineage(); lin != "" {
		lines = append(lines, FieldLine{Label: "Lineage", Value: lin, Fill: -1})
	}
	for _, f := range fields {
		if f.Group == "mind" && !e.IsOrganism() {
			continue
		}
		v := GetEntityValue(e, f.ID)
		fill := -1.0
		if f.IsBar && f.Max > f.Min {
			fill = (v - f.Min) / (f.Max - f.Min)
			fill = max(0, min(1, fill))
		}
		lines = append(lines, FieldLine{Label: f.Label, Value: fmt.Sprintf(f.Format, v), Fill: fill})
	}
	return lines
}
