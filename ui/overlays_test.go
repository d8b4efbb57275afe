package ui

import (
	"strings"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayDefaults(t *testing.T) {
	r := NewOverlayRegistry()
	for id, want := range map[OverlayID]bool{
		OverlayMemoryLinks:  true,
		OverlayLegend:       true,
		OverlayLineageColor: false,
		OverlayPerf:         false,
	} {
		if r.IsEnabled(id) != want {
			t.Errorf("%s enabled = %v, want %v", id, !want, want)
		}
	}
}

func TestOverlayExclusive(t *testing.T) {
	r := NewOverlayRegistry()
	r.SetEnabled(OverlayLineageColor, true)
	r.SetEnabled(OverlayEnergyColor, true)
	if r.IsEnabled(OverlayLineageColor) {
		t.Error("energy colors should disable lineage colors")
	}
	if !r.IsEnabled(OverlayEnergyColor) {
		t.Error("energy colors not enabled")
	}
}

func TestOverlayKeyPress(t *testing.T) {
	tests := []struct {
		name    string
		key     int32
		id      OverlayID
		on      bool
		matched bool
	}{
		{"velocity on", rl.KeyG, OverlayVelocity, true, true},
		{"memory links off", rl.KeyM, OverlayMemoryLinks, false, true},
		{"unbound", rl.KeyZ, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewOverlayRegistry()
			id, on, matched := r.HandleKeyPress(tt.key)
			if id != tt.id || on != tt.on || matched != tt.matched {
				t.Errorf("got (%q, %v, %v), want (%q, %v, %v)", id, on, matched, tt.id, tt.on, tt.matched)
			}
		})
	}
}

func TestOverlayLegend(t *testing.T) {
	r := NewOverlayRegistry()
	legend := r.Legend()
	if len(legend) != len(r.Categories()) {
		t.Fatalf("legend has %d entries for %d categories", len(legend), len(r.Categories()))
	}
	if !strings.HasPrefix(legend[0], "perception: [M] Memory Links") {
		t.Errorf("first entry = %q", legend[0])
	}
}
