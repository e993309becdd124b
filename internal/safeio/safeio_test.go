package safeio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathSecureRejectsTraversal(t *testing.T) {
	vault := t.TempDir()
	if _, err := ValidatePathSecure(vault, "../outside.md"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestValidatePathSecureRejectsSensitivePatterns(t *testing.T) {
	vault := t.TempDir()
	cases := []string{".env", "id_rsa", "notes/secrets.yaml", "a.pem", "x.key"}
	for _, c := range cases {
		if _, err := ValidatePathSecure(vault, c); err == nil {
			t.Errorf("expected %q to be rejected as sensitive", c)
		}
	}
}

func TestValidatePathSecureAcceptsOrdinaryNote(t *testing.T) {
	vault := t.TempDir()
	full, err := ValidatePathSecure(vault, "notes/today.md")
	if err != nil {
		t.Fatalf("expected ordinary note path to be accepted: %v", err)
	}
	want, _ := filepath.Abs(filepath.Join(vault, "notes/today.md"))
	if full != want {
		t.Fatalf("got %q, want %q", full, want)
	}
}

func TestValidatePathSecureRejectsSymlinkEscape(t *testing.T) {
	vault := t.TempDir()
	outside := t.TempDir()
	outsideFile := filepath.Join(outside, "secret.md")
	if err := os.WriteFile(outsideFile, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(vault, "escape.md")
	if err := os.Symlink(outsideFile, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if _, err := ValidatePathSecure(vault, "escape.md"); err == nil {
		t.Fatalf("expected symlink escape to be rejected")
	}
}

func TestWriteAtomicReplacesExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteAtomic(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "updated" {
		t.Fatalf("got %q, want %q", got, "updated")
	}
}

func TestWriteAtomicNoLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := WriteAtomic(path, []byte("content"), 0644); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in dir, got %d", len(entries))
	}
}
