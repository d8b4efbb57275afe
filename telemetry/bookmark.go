package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFeedingBreakthrough BookmarkType = "feeding_breakthrough"
	BookmarkOrganismRecovery    BookmarkType = "organism_recovery"
	BookmarkOrganismCrash       BookmarkType = "organism_crash"
	BookmarkLineageLost         BookmarkType = "lineage_lost"
	BookmarkStableEcosystem     BookmarkType = "stable_ecosystem"
)

// Bookmark marks a window worth revisiting in the timeline.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

const stableWindows = 5

// BookmarkDetector watches consecutive WindowStats for notable shifts.
type BookmarkDetector struct {
	history []WindowStats
	size    int
	next    int
	full    bool

	organismLow  int
	organismPeak int
	lineages     int
	stableRun    int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < stableWindows {
		historySize = stableWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		size:        historySize,
		organismLow: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var out []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			out = append(out, *b)
		}
	}

	if bd.full || bd.next > 0 {
		add(bd.feedingBreakthrough(stats))
		add(bd.organismRecovery(stats))
		add(bd.organismCrash(stats))
		add(bd.lineageLost(stats))
	}
	add(bd.stableEcosystem(stats))

	bd.history[bd.next] = stats
	bd.next = (bd.next + 1) % bd.size
	if bd.next == 0 {
		bd.full = true
	}

	if bd.organismLow < 0 || stats.Organisms < bd.organismLow {
		bd.organismLow = stats.Organisms
	}
	if stats.Organisms > bd.organismPeak {
		bd.organismPeak = stats.Organisms
	}
	bd.lineages = stats.ActiveLineages

	return out
}

// recent returns retained windows oldest first.
func (bd *BookmarkDetector) recent() []WindowStats {
	if !bd.full {
		return bd.history[:bd.next]
	}
	ordered := make([]WindowStats, 0, bd.size)
	ordered = append(ordered, bd.history[bd.next:]...)
	return append(ordered, bd.history[:bd.next]...)
}

func (bd *BookmarkDetector) feedingBreakthrough(stats WindowStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 {
		return nil
	}
	bites := make([]float64, len(history))
	for i, h := range history {
		bites[i] = float64(h.Bites)
	}
	avg := stat.Mean(bites, nil)
	if avg == 0 || float64(stats.Bites) <= avg*2 || stats.Bites < 5 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFeedingBreakthrough,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d bites is %.1fx the recent average (%.1f)", stats.Bites, float64(stats.Bites)/avg, avg),
	}
}

func (bd *BookmarkDetector) organismRecovery(stats WindowStats) *Bookmark {
	if bd.organismLow < 1 || bd.organismLow > 3 {
		return nil
	}
	if stats.Organisms < bd.organismLow*3 || stats.Organisms < 6 {
		return nil
	}
	low := bd.organismLow
	bd.organismLow = stats.Organisms
	return &Bookmark{
		Type:        BookmarkOrganismRecovery,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Organisms recovered from %d to %d", low, stats.Organisms),
	}
}

func (bd *BookmarkDetector) organismCrash(stats WindowStats) *Bookmark {
	if bd.organismPeak == 0 {
		return nil
	}
	drop := 1 - float64(stats.Organisms)/float64(bd.organismPeak)
	if drop <= 0.30 || stats.Organisms > bd.organismPeak-5 {
		return nil
	}
	peak := bd.organismPeak
	bd.organismPeak = stats.Organisms
	return &Bookmark{
		Type:        BookmarkOrganismCrash,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Organisms crashed %.0f%% from peak %d to %d", drop*100, peak, stats.Organisms),
	}
}

func (bd *BookmarkDetector) lineageLost(stats WindowStats) *Bookmark {
	if stats.ActiveLineages >= bd.lineages {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkLineageLost,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Active lineages fell from %d to %d", bd.lineages, stats.ActiveLineages),
	}
}

// stableEcosystem fires once after both populations hold steady for
// stableWindows consecutive windows (coefficient of variation under 0.2).
func (bd *BookmarkDetector) stableEcosystem(stats WindowStats) *Bookmark {
	if stats.Organisms < 5 || stats.Nutrients < 10 {
		bd.stableRun = 0
		return nil
	}
	history := bd.recent()
	if len(history) < stableWindows-1 {
		return nil
	}

	var organisms, nutrients []float64
	for _, h := range history[len(history)-(stableWindows-1):] {
		organisms = append(organisms, float64(h.Organisms))
		nutrients = append(nutrients, float64(h.Nutrients))
	}
	organisms = append(organisms, float64(stats.Organisms))
	nutrients = append(nutrients, float64(stats.Nutrients))

	if cv(organisms) < 0.2 && cv(nutrients) < 0.2 {
		bd.stableRun++
	} else {
		bd.stableRun = 0
	}
	if bd.stableRun != stableWindows {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStableEcosystem,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Stable with %d organisms and %d nutrients over %d windows", stats.Organisms, stats.Nutrients, stableWindows),
	}
}

func cv(xs []float64) float64 {
	mean, std := stat.PopMeanStdDev(xs, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
