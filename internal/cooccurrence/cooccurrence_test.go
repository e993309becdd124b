package cooccurrence

import "testing"

func TestBuildPairsAndDocumentFrequency(t *testing.T) {
	notes := []Note{
		{Targets: map[string]bool{"mcp": true, "api": true}},
		{Targets: map[string]bool{"mcp": true}},
		{Targets: map[string]bool{"api": true, "sdk": true, "mcp": true}},
	}
	data := Build(notes, 1, 1000)

	if data.DocumentFrequency["mcp"] != 3 || data.DocumentFrequency["api"] != 2 || data.DocumentFrequency["sdk"] != 1 {
		t.Fatalf("unexpected document frequency: %+v", data.DocumentFrequency)
	}
	if data.Associations["mcp"]["api"] != 2 || data.Associations["api"]["mcp"] != 2 {
		t.Fatalf("unexpected mcp/api association: %+v", data.Associations)
	}
	if data.TotalNotesScanned != 3 {
		t.Fatalf("expected 3 notes scanned, got %d", data.TotalNotesScanned)
	}
}

func TestNPMIZeroInputs(t *testing.T) {
	if v := NPMI(0, 5, 5, 10); v != 0 {
		t.Errorf("expected 0 for zero cooc count, got %v", v)
	}
	if v := NPMI(5, 0, 5, 10); v != 0 {
		t.Errorf("expected 0 for zero df, got %v", v)
	}
	if v := NPMI(5, 5, 5, 0); v != 0 {
		t.Errorf("expected 0 for zero total, got %v", v)
	}
}

func TestNPMIPerfectCoOccurrence(t *testing.T) {
	// Every note contains both, so p_xy = 1: maximal association, not 0/0.
	if v := NPMI(100, 100, 100, 100); v != 1 {
		t.Errorf("expected 1 for perfect co-occurrence, got %v", v)
	}
}

func TestNPMIClampedToUnitRange(t *testing.T) {
	v := NPMI(5, 5, 5, 100)
	if v < 0 || v > 1 {
		t.Fatalf("NPMI out of range: %v", v)
	}
	if v <= 0.9 {
		t.Fatalf("expected strong association close to 1, got %v", v)
	}
}
