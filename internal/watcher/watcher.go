// Package watcher monitors a vault for file changes and reports debounced
// batches of changed paths to a Reindexer.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flywheel-dev/flywheel/internal/config"
)

// Reindexer is invoked with the set of vault-relative paths that changed
// since the last debounce window flushed, plus the set of paths removed.
// The caller owns what "reindex" means (recency scan, cooccurrence rebuild,
// entity index reload) — the watcher only detects and debounces change.
type Reindexer interface {
	Changed(paths []string)
	Removed(path string)
}

// Watch starts watching the vault for changes and reports them to r. It
// blocks until the watcher is closed by an unrecoverable error.
func Watch(vaultPath string, r Reindexer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dirs := walkDirs(vaultPath)
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			fmt.Fprintf(os.Stderr, "  [WARN] could not watch %s: %v\n", d, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Watching %d directories in %s\n", len(dirs), vaultPath)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop.\n\n")

	var (
		mu      sync.Mutex
		pending = make(map[string]bool)
		timer   *time.Timer
	)

	const debounceDelay = 2 * time.Second

	flush := func() {
		mu.Lock()
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, relativePath(p, vaultPath))
		}
		pending = make(map[string]bool)
		mu.Unlock()

		if len(paths) == 0 {
			return
		}
		fmt.Fprintf(os.Stderr, "  Reindexing %d changed file(s)...\n", len(paths))
		r.Changed(paths)
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !strings.HasSuffix(event.Name, ".md") || config.SkipFiles[filepath.Base(event.Name)] {
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						name := filepath.Base(event.Name)
						if !config.SkipDirs[name] {
							w.Add(event.Name)
						}
					}
				}
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				mu.Lock()
				pending[event.Name] = true
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounceDelay, flush)
				mu.Unlock()
			}

			if event.Has(fsnotify.Remove) {
				relPath := relativePath(event.Name, vaultPath)
				r.Removed(relPath)
				fmt.Fprintf(os.Stderr, "  Removed from index: %s\n", relPath)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "  [WARN] watch error: %v\n", err)
		}
	}
}

func walkDirs(root string) []string {
	var dirs []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if config.SkipDirs[name] {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

func relativePath(filePath, vaultPath string) string {
	rel, err := filepath.Rel(vaultPath, filePath)
	if err != nil {
		return filePath
	}
	return filepath.ToSlash(rel)
}
