package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FeedingBreakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), Bites: 4})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Bites: 12})
	if !hasBookmark(bookmarks, BookmarkFeedingBreakthrough) {
		t.Errorf("expected feeding_breakthrough, got %+v", bookmarks)
	}
}

func TestBookmarkDetector_OrganismCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), Organisms: 40, Nutrients: 30})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, Organisms: 20, Nutrients: 30})
	if !hasBookmark(bookmarks, BookmarkOrganismCrash) {
		t.Errorf("expected organism_crash, got %+v", bookmarks)
	}
}

func TestBookmarkDetector_OrganismRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 100), Organisms: 2})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 300, Organisms: 10})
	if !hasBookmark(bookmarks, BookmarkOrganismRecovery) {
		t.Errorf("expected organism_recovery, got %+v", bookmarks)
	}
}

func TestBookmarkDetector_LineageLost(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{WindowEndTick: 100, ActiveLineages: 2})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 200, ActiveLineages: 1})
	if !hasBookmark(bookmarks, BookmarkLineageLost) {
		t.Errorf("expected lineage_lost, got %+v", bookmarks)
	}
	if again := bd.Check(WindowStats{WindowEndTick: 300, ActiveLineages: 1}); hasBookmark(again, BookmarkLineageLost) {
		t.Error("lineage_lost repeated without a further loss")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10)

	fired := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int64(i * 100), Organisms: 20, Nutrients: 40})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable_ecosystem fired %d times, want 1", fired)
	}
}
