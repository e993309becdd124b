package entity

import "testing"

type fakeLoader struct {
	entities []Entity
}

func (f fakeLoader) ListEntities() ([]Entity, error) {
	return f.entities, nil
}

func TestBuildIndexLookups(t *testing.T) {
	mcp := NewEntity("MCP", "tech/mcp.md", CategoryTechnology, 6, []string{"Model Context Protocol"})
	api := NewEntity("API", "tech/api.md", CategoryTechnology, 0, nil)

	idx, err := Build(fakeLoader{entities: []Entity{mcp, api}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !idx.Ready() {
		t.Fatal("expected index to be ready after Build")
	}

	got, ok := idx.ByNameLower("mcp")
	if !ok || got.CanonicalName != "MCP" {
		t.Fatalf("ByNameLower(mcp) = %+v, %v", got, ok)
	}

	hit, alias, ok := idx.ByAlias("model context protocol")
	if !ok || hit.CanonicalName != "MCP" || alias != "Model Context Protocol" {
		t.Fatalf("ByAlias mismatch: %+v %q %v", hit, alias, ok)
	}

	if len(idx.All()) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(idx.All()))
	}

	targets := idx.PathToTargets("tech/mcp.md")
	if !targets["mcp"] || !targets["model context protocol"] {
		t.Fatalf("unexpected path targets: %v", targets)
	}

	stats := idx.Stats()
	if len(stats) != 1 || stats[0].Category != CategoryTechnology || stats[0].Count != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestBuildSkipsCorruptedRows(t *testing.T) {
	bad := Entity{CanonicalName: "Broken", NameLower: ""}
	good := NewEntity("Good", "", CategoryOther, 0, nil)

	idx, err := Build(fakeLoader{entities: []Entity{bad, good}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(idx.All()) != 1 {
		t.Fatalf("expected corrupted row to be skipped, got %d entities", len(idx.All()))
	}
}

func TestNewEntityFiltersInvalidAliases(t *testing.T) {
	e := NewEntity("Flywheel", "", CategoryConcept, 0, []string{
		"this alias has way too many words to keep",
		"FW",
		"fw", // duplicate, case-insensitive
		"flywheel",
	})
	if len(e.Aliases) != 1 || e.Aliases[0] != "FW" {
		t.Fatalf("unexpected aliases: %v", e.Aliases)
	}
}

func TestValidAlias(t *testing.T) {
	if ValidAlias("") {
		t.Error("empty alias should be invalid")
	}
	if ValidAlias("this is definitely way too many tokens") {
		t.Error("alias with >3 tokens should be invalid")
	}
	long := "012345678901234567890123456" // 27 chars
	if ValidAlias(long) {
		t.Error("alias over 25 chars should be invalid")
	}
	if !ValidAlias("MCP") {
		t.Error("short alias should be valid")
	}
}
