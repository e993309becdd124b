// Package vcs wraps git as a best-effort commit/undo collaborator for the
// mutation orchestrator, following the same shell-out style as the
// teacher's git context collector.
package vcs

import (
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// CommitResult is what Commit returns.
type CommitResult struct {
	Success bool
	Hash    string
	Error   string
}

// Commit is a single commit's metadata.
type Commit struct {
	Hash      string
	Message   string
	Timestamp string
}

// UndoResult is what UndoLast returns.
type UndoResult struct {
	Success      bool
	Message      string
	UndoneCommit string
}

// Ops is the engine's VCS collaborator, tracking the last commit it
// originated so external commits never silently corrupt that pointer.
type Ops struct {
	mu                sync.Mutex
	lastTrackedCommit string
}

// New returns a fresh Ops with no tracked commit.
func New() *Ops {
	return &Ops{}
}

// IsRepo reports whether vault is inside a git working tree.
func (o *Ops) IsRepo(vault string) bool {
	return findGitRoot(vault) != ""
}

// Commit stages and commits notePath with a message prefixed by
// messagePrefix. It never rolls back a file mutation already performed by
// the caller: on failure the error is surfaced, not raised.
func (o *Ops) Commit(vault, notePath, messagePrefix string) CommitResult {
	root := findGitRoot(vault)
	if root == "" {
		return CommitResult{Success: false, Error: "not a git repository"}
	}

	if _, err := runGit(root, "add", "--", notePath); err != nil {
		if isLockError(err) {
			return CommitResult{Success: false, Error: "lock contention: " + err.Error()}
		}
		return CommitResult{Success: false, Error: err.Error()}
	}

	message := messagePrefix + " update " + notePath
	out, err := runGit(root, "commit", "--message", message)
	if err != nil {
		if isLockError(err) {
			return CommitResult{Success: false, Error: "lock contention: " + err.Error()}
		}
		if strings.Contains(out, "nothing to commit") {
			return CommitResult{Success: true, Error: "nothing to commit"}
		}
		return CommitResult{Success: false, Error: err.Error()}
	}

	hash, _ := runGit(root, "rev-parse", "HEAD")
	hash = strings.TrimSpace(hash)

	o.mu.Lock()
	if strings.Contains(message, messagePrefix) {
		o.lastTrackedCommit = hash
	}
	o.mu.Unlock()

	return CommitResult{Success: true, Hash: hash}
}

// LastCommit returns HEAD's metadata, or nil if there are no commits.
func (o *Ops) LastCommit(vault string) *Commit {
	root := findGitRoot(vault)
	if root == "" {
		return nil
	}
	out, err := runGit(root, "log", "-1", "--format=%H%n%s%n%cI")
	if err != nil {
		return nil
	}
	lines := strings.SplitN(strings.TrimSpace(out), "\n", 3)
	if len(lines) < 3 {
		return nil
	}
	return &Commit{Hash: lines[0], Message: lines[1], Timestamp: lines[2]}
}

// UndoLast applies the reverse of HEAD, failing when no commits exist.
func (o *Ops) UndoLast(vault string) UndoResult {
	root := findGitRoot(vault)
	if root == "" {
		return UndoResult{Success: false, Message: "not a git repository"}
	}
	last := o.LastCommit(vault)
	if last == nil {
		return UndoResult{Success: false, Message: "no commits to undo"}
	}
	if _, err := runGit(root, "revert", "--no-edit", "HEAD"); err != nil {
		if isLockError(err) {
			return UndoResult{Success: false, Message: "lock contention: " + err.Error()}
		}
		return UndoResult{Success: false, Message: err.Error()}
	}
	return UndoResult{Success: true, Message: "reverted", UndoneCommit: last.Hash}
}

// LastTrackedCommit returns the hash of the most recent engine-originated
// commit, or "" if none has happened yet.
func (o *Ops) LastTrackedCommit() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastTrackedCommit
}

// ClearTracking resets the engine's tracked-commit pointer.
func (o *Ops) ClearTracking() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastTrackedCommit = ""
}

func isLockError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "lock") || strings.Contains(msg, "index")
}

func findGitRoot(startPath string) string {
	dir, err := filepath.Abs(startPath)
	if err != nil {
		return ""
	}
	if _, err := exec.LookPath("git"); err != nil {
		return ""
	}
	out, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil || out == "" {
		return ""
	}
	return strings.TrimSpace(out)
}

func runGit(root string, args ...string) (string, error) {
	cmdArgs := append([]string{"-C", root}, args...)
	cmd := exec.Command("git", cmdArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", err
		}
		return string(out), errors.New(strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
