package edgeweight

import (
	"testing"
	"time"
)

type fakeStore struct {
	links        []Link
	edits        map[string]int
	coSession    map[string]int
	sourceAccess map[string]int
	written      map[string]float64
}

func (f *fakeStore) AllNoteLinks() ([]Link, error) { return f.links, nil }

func (f *fakeStore) EditsSurvived(notePath, target string) (int, error) {
	return f.edits[notePath+"|"+target], nil
}

func (f *fakeStore) CoSessionCount(notePath string, targetPaths []string) (int, error) {
	return f.coSession[notePath], nil
}

func (f *fakeStore) SourceAccessCount(notePath string) (int, error) {
	return f.sourceAccess[notePath], nil
}

func (f *fakeStore) SetNoteLinkWeight(notePath, target string, weight float64, updatedAt int64) error {
	if f.written == nil {
		f.written = make(map[string]float64)
	}
	f.written[notePath+"|"+target] = weight
	return nil
}

func (f *fakeStore) PathsForTarget(target string) ([]string, error) {
	return []string{"target.md"}, nil
}

func TestWeightFormula(t *testing.T) {
	if w := Weight(0, 0, 0); w != 1 {
		t.Errorf("Weight(0,0,0) = %v, want 1", w)
	}
	// Every term saturates: 1 + 3 + 3 + 2 = 9, below MaxWeight.
	if w := Weight(100, 100, 100); w != 9 {
		t.Errorf("Weight(100,100,100) = %v, want saturated 9", w)
	}
	// 1 + min(2*0.5,3) + min(1*0.5,3) + min(5*0.2,2) = 1 + 1 + 0.5 + 1 = 3.5
	if w := Weight(2, 1, 5); w != 3.5 {
		t.Errorf("Weight(2,1,5) = %v, want 3.5", w)
	}
}

func TestRecomputeWritesWeights(t *testing.T) {
	s := &fakeStore{
		links: []Link{{NotePath: "a.md", Target: "mcp"}},
		edits: map[string]int{"a.md|mcp": 2},
	}
	res, err := Recompute(s, func() time.Time { return time.UnixMilli(500) })
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if res.EdgesUpdated != 1 {
		t.Fatalf("expected 1 edge updated, got %d", res.EdgesUpdated)
	}
	if s.written["a.md|mcp"] != Weight(2, 0, 0) {
		t.Fatalf("unexpected written weight: %v", s.written)
	}
}
