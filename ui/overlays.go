package ui

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayMemoryLinks  OverlayID = "memory_links"
	OverlayMemoryRange  OverlayID = "memory_range"
	OverlayVelocity     OverlayID = "velocity"
	OverlayForce        OverlayID = "force"
	OverlayLineageColor OverlayID = "lineage_color"
	OverlayEnergyColor  OverlayID = "energy_color"
	OverlayPerf         OverlayID = "perf"
	OverlayLegend       OverlayID = "legend"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // 0 = no key
	KeyLabel    string // e.g. "M"
	Category    string
	Exclusive   []OverlayID // disabled when this one is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// defaultOverlays are registered by NewOverlayRegistry, in legend order.
var defaultOverlays = []OverlayDescriptor{
	{OverlayMemoryLinks, "Memory Links", "Lines from the selected organism to remembered entities", rl.KeyM, "M", "perception", nil},
	{OverlayMemoryRange, "Memory Range", "Circle through the farthest remembered entity", rl.KeyV, "V", "perception", nil},
	{OverlayLineageColor, "Lineage Colors", "Color organisms by lineage name", rl.KeyL, "L", "visual", []OverlayID{OverlayEnergyColor}},
	{OverlayEnergyColor, "Energy Colors", "Shade entities by remaining energy", rl.KeyE, "E", "visual", []OverlayID{OverlayLineageColor}},
	{OverlayVelocity, "Velocity", "Velocity vectors", rl.KeyG, "G", "debug", nil},
	{OverlayForce, "Force", "Force input for the next physics step", rl.KeyF, "F", "debug", nil},
	{OverlayPerf, "Performance", "Per-phase step timings", rl.KeyP, "P", "debug", nil},
	{OverlayLegend, "Key Legend", "", rl.KeyH, "H", "debug", nil},
}

// NewOverlayRegistry creates a registry with the default overlays. Memory
// links and the legend start enabled.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	for _, desc := range defaultOverlays {
		reg.Register(desc)
	}
	reg.SetEnabled(OverlayMemoryLinks, true)
	reg.SetEnabled(OverlayLegend, true)
	return reg
}

// Register adds an overlay to the registry, disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	on := !r.enabled[id]
	r.SetEnabled(id, on)
	return on
}

// SetEnabled sets an overlay's state, disabling its exclusive peers when
// it is turned on.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key. It reports the overlay,
// its new state and whether any overlay matched.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// Legend returns one "category: [K] Name ..." entry per category with bound
// overlays.
func (r *OverlayRegistry) Legend() []string {
	var out []string
	for _, cat := range r.Categories() {
		var keys []string
		for _, desc := range r.ByCategory(cat) {
			if desc.KeyLabel != "" {
				keys = append(keys, "["+desc.KeyLabel+"] "+desc.Name)
			}
		}
		if len(keys) > 0 {
			out = append(out, cat+": "+strings.Join(keys, " "))
		}
	}
	return out
}
