package orchestrator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flywheel-dev/flywheel/internal/store"
	"github.com/flywheel-dev/flywheel/internal/vcs"
)

type fakeStore struct {
	hints []store.MutationHint
}

func (f *fakeStore) RecordMutationHint(h store.MutationHint) error {
	f.hints = append(f.hints, h)
	return nil
}

func testEngine(st Store) *Engine {
	return New(st, nil, Clock{
		NowMs:   func() int64 { return 1000 },
		NowHour: func() (int, int) { return 9, 30 },
	})
}

func writeVaultNote(t *testing.T, vault, rel, content string) {
	t.Helper()
	full := filepath.Join(vault, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAddToSectionAppendsAndRecordsHint(t *testing.T) {
	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "## Priorities\n1. \n\n## Next\n")

	st := &fakeStore{}
	e := testEngine(st)
	ctx := Context{Vault: vault, NotePath: "note.md", Section: "Priorities"}
	req := Request{Kind: AddToSection, Content: "First priority", Format: "numbered", Position: "append"}

	result, err := e.Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	got, _ := os.ReadFile(filepath.Join(vault, "note.md"))
	want := "## Priorities\n1. First priority\n\n## Next\n"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if len(st.hints) != 1 || st.hints[0].Operation != string(AddToSection) {
		t.Fatalf("expected one recorded hint, got %+v", st.hints)
	}
}

func TestAddToSectionMissingSectionReturnsNotFoundWithSuggestions(t *testing.T) {
	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "## Priorities\n- a\n\n## Next\n")

	e := testEngine(nil)
	ctx := Context{Vault: vault, NotePath: "note.md", Section: "Nope"}
	_, err := e.Run(ctx, Request{Kind: AddToSection, Content: "x", Format: "bullet", Position: "append"})
	ee, ok := err.(*EngineError)
	if !ok || ee.Kind != NotFound {
		t.Fatalf("expected NotFound error, got %v", err)
	}
	if !strings.Contains(ee.Message, "Priorities") || !strings.Contains(ee.Message, "Next") {
		t.Fatalf("expected available section names in message, got %q", ee.Message)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	vault := t.TempDir()
	e := testEngine(nil)
	ctx := Context{Vault: vault, NotePath: "../outside.md"}
	_, err := e.Run(ctx, Request{Kind: AddToSection, Section: "x"})
	ee, ok := err.(*EngineError)
	if !ok || ee.Kind != PathRejected {
		t.Fatalf("expected PathRejected, got %v", err)
	}
	if ExitCode(err, false) != 2 {
		t.Fatalf("expected exit code 2, got %d", ExitCode(err, false))
	}
}

func TestReplaceInSectionRejectsUnsafePattern(t *testing.T) {
	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "## Notes\nhello world\n")

	e := testEngine(nil)
	ctx := Context{Vault: vault, NotePath: "note.md", Section: "Notes"}
	_, err := e.Run(ctx, Request{Kind: ReplaceInSection, Pattern: "(.*)*", Replacement: "x"})
	ee, ok := err.(*EngineError)
	if !ok || ee.Kind != RegexUnsafe {
		t.Fatalf("expected RegexUnsafe, got %v", err)
	}
}

func TestUpdateFrontMatterMergesAndDeletes(t *testing.T) {
	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "---\ntitle: Old\nkeep: yes\n---\nbody\n")

	e := testEngine(nil)
	ctx := Context{Vault: vault, NotePath: "note.md"}
	_, err := e.Run(ctx, Request{Kind: UpdateFrontMatter, FrontMatterPatch: map[string]any{"title": "New", "keep": nil}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(vault, "note.md"))
	if !strings.Contains(string(got), "title: New") {
		t.Fatalf("expected updated title, got %q", got)
	}
	if strings.Contains(string(got), "keep:") {
		t.Fatalf("expected keep removed, got %q", got)
	}
}

func TestToggleTaskFlipsCheckbox(t *testing.T) {
	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "## Tasks\n- [ ] write tests\n")

	e := testEngine(nil)
	ctx := Context{Vault: vault, NotePath: "note.md"}
	_, err := e.Run(ctx, Request{Kind: ToggleTask, TaskText: "write tests"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(vault, "note.md"))
	if !strings.Contains(string(got), "[x] write tests") {
		t.Fatalf("expected checked task, got %q", got)
	}
}

func TestCreateAndDeleteNote(t *testing.T) {
	vault := t.TempDir()
	e := testEngine(nil)
	ctx := Context{Vault: vault, NotePath: "fresh.md"}

	_, err := e.Run(ctx, Request{Kind: CreateNote, InitialContent: "hello"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := os.Stat(filepath.Join(vault, "fresh.md")); err != nil {
		t.Fatalf("expected note created: %v", err)
	}

	if _, err := e.Run(ctx, Request{Kind: CreateNote, InitialContent: "again"}); err == nil {
		t.Fatalf("expected error creating over an existing note")
	}

	if _, err := e.Run(ctx, Request{Kind: DeleteNote}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(vault, "fresh.md")); !os.IsNotExist(err) {
		t.Fatalf("expected note removed")
	}
}

func TestCommitFailureYieldsExitCode3ButMutationSurvives(t *testing.T) {
	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "## Tasks\n- [ ] write tests\n")

	e := testEngine(nil)
	e.Vcs = vcs.New()
	ctx := Context{Vault: vault, NotePath: "note.md", Commit: true, CommitPrefix: "[Flywheel]"}
	result, err := e.Run(ctx, Request{Kind: ToggleTask, TaskText: "write tests"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3 on commit failure, got %d", result.ExitCode)
	}
	if result.GitError == "" {
		t.Fatalf("expected a populated git error")
	}
	got, _ := os.ReadFile(filepath.Join(vault, "note.md"))
	if !strings.Contains(string(got), "[x]") {
		t.Fatalf("expected mutation to survive a failed commit, got %q", got)
	}
}
