package store

import (
	"testing"

	"github.com/flywheel-dev/flywheel/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaVersionAfterOpen(t *testing.T) {
	db := openTestDB(t)
	if v := db.SchemaVersion(); v != 5 {
		t.Fatalf("SchemaVersion = %d, want 5", v)
	}
}

func TestUpsertAndListEntities(t *testing.T) {
	db := openTestDB(t)
	e := entity.NewEntity("MCP", "tech/mcp.md", entity.CategoryTechnology, 6, []string{"Model Context Protocol"})

	if _, err := db.UpsertEntity(e); err != nil {
		t.Fatalf("UpsertEntity: %v", err)
	}

	list, err := db.ListEntities()
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	if len(list) != 1 || list[0].CanonicalName != "MCP" || len(list[0].Aliases) != 1 {
		t.Fatalf("unexpected entity list: %+v", list)
	}

	// Upserting again with a changed hub score should update in place, not duplicate.
	e.HubScore = 9
	if _, err := db.UpsertEntity(e); err != nil {
		t.Fatalf("second UpsertEntity: %v", err)
	}
	list, err = db.ListEntities()
	if err != nil {
		t.Fatalf("ListEntities: %v", err)
	}
	if len(list) != 1 || list[0].HubScore != 9 {
		t.Fatalf("expected in-place update, got: %+v", list)
	}
}

func TestRecencyMaxOnConflict(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertRecency("mcp", 1000, 2000); err != nil {
		t.Fatalf("UpsertRecency: %v", err)
	}
	if err := db.UpsertRecency("mcp", 500, 3000); err != nil {
		t.Fatalf("UpsertRecency: %v", err)
	}
	r, ok, err := db.GetRecency("mcp")
	if err != nil || !ok {
		t.Fatalf("GetRecency: %v %v", ok, err)
	}
	if r.LastMentionEpochMs != 1000 {
		t.Fatalf("expected max(1000,500)=1000, got %d", r.LastMentionEpochMs)
	}
	if r.ScanFinishedAtEpochMs != 3000 {
		t.Fatalf("expected latest scan timestamp 3000, got %d", r.ScanFinishedAtEpochMs)
	}
}

func TestCoOccurrenceRoundTrip(t *testing.T) {
	db := openTestDB(t)
	c := CoOccurrence{
		Associations: map[string]map[string]int{
			"mcp": {"api": 3},
			"api": {"mcp": 3},
		},
		DocumentFrequency: map[string]int{"mcp": 5, "api": 4},
		TotalNotesScanned: 10,
		MinCountThreshold: 1,
		GeneratedAt:       12345,
	}
	if err := db.ReplaceCoOccurrence(c); err != nil {
		t.Fatalf("ReplaceCoOccurrence: %v", err)
	}
	got, err := db.LoadCoOccurrence()
	if err != nil {
		t.Fatalf("LoadCoOccurrence: %v", err)
	}
	if got.Associations["mcp"]["api"] != 3 || got.Associations["api"]["mcp"] != 3 {
		t.Fatalf("unexpected associations: %+v", got.Associations)
	}
	if got.TotalNotesScanned != 10 || got.GeneratedAt != 12345 {
		t.Fatalf("unexpected meta: %+v", got)
	}
}

func TestMutationHintsFIFOCap(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < MaxMutationHints+10; i++ {
		h := MutationHint{Timestamp: int64(i), Path: "note.md", Operation: "add_to_section", BeforeHash: "a", AfterHash: "b"}
		if err := db.RecordMutationHint(h); err != nil {
			t.Fatalf("RecordMutationHint: %v", err)
		}
	}
	hints, err := db.RecentMutationHints(MaxMutationHints + 10)
	if err != nil {
		t.Fatalf("RecentMutationHints: %v", err)
	}
	if len(hints) != MaxMutationHints {
		t.Fatalf("expected FIFO cap %d, got %d", MaxMutationHints, len(hints))
	}
	if hints[0].Timestamp != int64(MaxMutationHints+9) {
		t.Fatalf("expected newest-first, got %d", hints[0].Timestamp)
	}
}

func TestSweepExpiredMemories(t *testing.T) {
	db := openTestDB(t)
	ttl := 1
	if err := db.UpsertMemory(Memory{
		Key: "stale", Value: "v", MemoryType: "fact", Confidence: 0.5,
		CreatedAt: 0, UpdatedAt: 0, AccessedAt: 0, TTLDays: &ttl,
	}); err != nil {
		t.Fatalf("UpsertMemory: %v", err)
	}
	const msPerDay = 24 * 60 * 60 * 1000
	n, err := db.SweepExpiredMemories(2 * msPerDay)
	if err != nil {
		t.Fatalf("SweepExpiredMemories: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept memory, got %d", n)
	}
}

func TestNoteLinkHistorySurvivalCounter(t *testing.T) {
	db := openTestDB(t)
	if err := db.IncrementEditsSurvived("daily/today.md", "mcp"); err != nil {
		t.Fatalf("IncrementEditsSurvived: %v", err)
	}
	if err := db.IncrementEditsSurvived("daily/today.md", "mcp"); err != nil {
		t.Fatalf("IncrementEditsSurvived: %v", err)
	}
	n, err := db.EditsSurvived("daily/today.md", "mcp")
	if err != nil {
		t.Fatalf("EditsSurvived: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 survived edits, got %d", n)
	}
	if err := db.ResetEditsSurvived("daily/today.md", "mcp"); err != nil {
		t.Fatalf("ResetEditsSurvived: %v", err)
	}
	n, _ = db.EditsSurvived("daily/today.md", "mcp")
	if n != 0 {
		t.Fatalf("expected reset to 0, got %d", n)
	}
}

func TestSuppressionAndFeedback(t *testing.T) {
	db := openTestDB(t)
	if suppressed, err := db.IsSuppressed("MCP", "daily-notes"); err != nil || suppressed {
		t.Fatalf("expected not suppressed initially, got %v %v", suppressed, err)
	}
	if err := db.Suppress("MCP", "daily-notes", 1000); err != nil {
		t.Fatalf("Suppress: %v", err)
	}
	if suppressed, err := db.IsSuppressed("MCP", "daily-notes"); err != nil || !suppressed {
		t.Fatalf("expected suppressed after Suppress, got %v %v", suppressed, err)
	}

	if err := db.RecordFeedback("MCP", "daily-notes", true, 1, 1000); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}
	if err := db.RecordFeedback("MCP", "daily-notes", false, 1, 1001); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}
	pos, neg, err := db.FeedbackCounts("MCP", "daily-notes")
	if err != nil {
		t.Fatalf("FeedbackCounts: %v", err)
	}
	if pos != 1 || neg != 1 {
		t.Fatalf("expected pos=1 neg=1, got pos=%v neg=%v", pos, neg)
	}
}
