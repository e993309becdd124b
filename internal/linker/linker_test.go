package linker

import (
	"strings"
	"testing"

	"github.com/flywheel-dev/flywheel/internal/entity"
)

type fakeLoader struct{ entities []entity.Entity }

func (f fakeLoader) ListEntities() ([]entity.Entity, error) { return f.entities, nil }

func buildIndex(t *testing.T, entities []entity.Entity) *entity.Index {
	t.Helper()
	idx, err := entity.Build(fakeLoader{entities: entities})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestAliasResolutionRewritesToCanonical(t *testing.T) {
	idx := buildIndex(t, []entity.Entity{
		entity.NewEntity("Model Context Protocol", "tech/mcp.md", entity.CategoryTechnology, 0, []string{"MCP"}),
	})
	content := "We used [[MCP]] today."
	res := Apply(content, idx, nil)
	want := "We used [[Model Context Protocol|MCP]] today."
	if res.Content != want {
		t.Fatalf("got %q, want %q", res.Content, want)
	}
	if res.LinksAdded != 1 {
		t.Fatalf("expected 1 rewrite, got %d", res.LinksAdded)
	}
}

func TestAliasResolutionPreservesExplicitDisplay(t *testing.T) {
	idx := buildIndex(t, []entity.Entity{
		entity.NewEntity("Model Context Protocol", "tech/mcp.md", entity.CategoryTechnology, 0, []string{"MCP"}),
	})
	content := "We used [[MCP|the protocol]] today."
	res := Apply(content, idx, nil)
	want := "We used [[Model Context Protocol|the protocol]] today."
	if res.Content != want {
		t.Fatalf("got %q, want %q", res.Content, want)
	}
}

func TestAutoLinkFirstOccurrenceOnly(t *testing.T) {
	idx := buildIndex(t, nil)
	e := entity.NewEntity("Kubernetes", "tech/kubernetes.md", entity.CategoryTechnology, 0, nil)
	content := "Kubernetes orchestrates pods. Kubernetes also manages services."
	res := Apply(content, idx, []entity.Entity{e})
	if strings.Count(res.Content, "[[Kubernetes]]") != 1 {
		t.Fatalf("expected exactly one auto-link, got content: %q", res.Content)
	}
	if res.LinksAdded != 1 {
		t.Fatalf("expected LinksAdded=1, got %d", res.LinksAdded)
	}
}

func TestAutoLinkSkipsFencedCode(t *testing.T) {
	idx := buildIndex(t, nil)
	e := entity.NewEntity("Kubernetes", "tech/kubernetes.md", entity.CategoryTechnology, 0, nil)
	content := "```\nKubernetes inside code\n```\nKubernetes outside code.\n"
	res := Apply(content, idx, []entity.Entity{e})
	if strings.Contains(res.Content, "Kubernetes inside code") == false {
		t.Fatalf("fenced code block content missing")
	}
	if strings.Contains(res.Content, "[[Kubernetes]] inside code") {
		t.Fatalf("should not link inside fenced code: %q", res.Content)
	}
	if !strings.Contains(res.Content, "[[Kubernetes]] outside code.") {
		t.Fatalf("expected link outside code block, got %q", res.Content)
	}
}

func TestAutoLinkSkipsTablesBlockQuotesAndRules(t *testing.T) {
	idx := buildIndex(t, nil)
	e := entity.NewEntity("Kubernetes", "tech/kubernetes.md", entity.CategoryTechnology, 0, nil)
	content := "| Kubernetes | version |\n> Kubernetes is great\n---\nKubernetes is the target line.\n"
	res := Apply(content, idx, []entity.Entity{e})
	if !strings.Contains(res.Content, "[[Kubernetes]] is the target line.") {
		t.Fatalf("expected the unguarded line to be linked, got %q", res.Content)
	}
	if strings.Contains(res.Content, "| [[Kubernetes]]") || strings.Contains(res.Content, "> [[Kubernetes]]") {
		t.Fatalf("table/blockquote lines must not be linked: %q", res.Content)
	}
}

func TestAutoLinkNeverDoubleWraps(t *testing.T) {
	idx := buildIndex(t, nil)
	e := entity.NewEntity("Kubernetes", "tech/kubernetes.md", entity.CategoryTechnology, 0, nil)
	content := "See [[Kubernetes]] for details."
	res := Apply(content, idx, []entity.Entity{e})
	if strings.Contains(res.Content, "[[[") {
		t.Fatalf("double-wrapped link produced: %q", res.Content)
	}
	if res.Content != content {
		t.Fatalf("already-linked content should be unchanged, got %q", res.Content)
	}
}

func TestLinkerIsIdempotent(t *testing.T) {
	idx := buildIndex(t, nil)
	e := entity.NewEntity("Kubernetes", "tech/kubernetes.md", entity.CategoryTechnology, 0, []string{"K8s"})
	content := "Kubernetes runs containers. K8s scales them."
	first := Apply(content, idx, []entity.Entity{e})
	second := Apply(first.Content, idx, []entity.Entity{e})
	if first.Content != second.Content {
		t.Fatalf("linker is not idempotent:\nfirst:  %q\nsecond: %q", first.Content, second.Content)
	}
}
