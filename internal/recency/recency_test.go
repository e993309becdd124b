package recency

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flywheel-dev/flywheel/internal/entity"
)

type fakeLoader struct{ entities []entity.Entity }

func (f fakeLoader) ListEntities() ([]entity.Entity, error) { return f.entities, nil }

type fakeStore struct {
	recorded map[string][2]int64
}

func (f *fakeStore) UpsertRecency(nameLower string, lastMentionEpochMs, scanFinishedAtEpochMs int64) error {
	if f.recorded == nil {
		f.recorded = make(map[string][2]int64)
	}
	f.recorded[nameLower] = [2]int64{lastMentionEpochMs, scanFinishedAtEpochMs}
	return nil
}

func TestScanFindsWholeWordMentions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "note.md"), []byte("Using MCP today, not mcpx or amcp."), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "daily-notes"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "daily-notes", "skip.md"), []byte("MCP MCP MCP"), 0o644); err != nil {
		t.Fatal(err)
	}

	mcp := entity.NewEntity("MCP", "", entity.CategoryTechnology, 0, nil)
	idx, err := entity.Build(fakeLoader{entities: []entity.Entity{mcp}})
	if err != nil {
		t.Fatal(err)
	}

	st := &fakeStore{}
	b := NewBuilder(dir, idx, st, nil)
	b.Now = func() time.Time { return time.UnixMilli(99999) }

	res, err := b.Scan()
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.FilesScanned != 1 {
		t.Fatalf("expected excluded daily-notes folder to be skipped, scanned %d files", res.FilesScanned)
	}
	if _, ok := st.recorded["mcp"]; !ok {
		t.Fatal("expected mcp recency to be recorded")
	}
	if st.recorded["mcp"][1] != 99999 {
		t.Fatalf("unexpected scan_finished_at: %v", st.recorded["mcp"])
	}
}

func TestBoostTable(t *testing.T) {
	cases := []struct {
		hours float64
		want  int
	}{
		{0.5, 8}, {1, 8}, {23, 5}, {24, 5}, {71, 3}, {72, 3}, {167, 1}, {168, 1}, {200, 0},
	}
	for _, c := range cases {
		if got := Boost(c.hours); got != c.want {
			t.Errorf("Boost(%v) = %d, want %d", c.hours, got, c.want)
		}
	}
}
