// Package recency walks the vault and tracks the last time each entity was
// mentioned, grounded in the teacher's vault-walking indexer and its
// recency/confidence scoring in internal/memory/confidence.go.
package recency

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/flywheel-dev/flywheel/internal/entity"
)

// defaultExcludedFolders are always skipped in addition to any
// vault-configured exclusions.
var defaultExcludedFolders = map[string]bool{
	"node_modules": true,
	".git":         true,
	"daily-notes":  true,
	"journal":      true,
	"templates":    true,
	"inbox":        true,
	"weekly":       true,
	"monthly":      true,
	"quarterly":    true,
	"periodic":     true,
}

// Store is the StateStore write path the builder needs.
type Store interface {
	UpsertRecency(nameLower string, lastMentionEpochMs, scanFinishedAtEpochMs int64) error
}

// BoostTable maps an age-in-hours bucket to the Scorer's recency_boost.
// Entries are evaluated in order; the first matching upper bound applies.
var BoostTable = []struct {
	MaxHours float64
	Boost    int
}{
	{1, 8},
	{24, 5},
	{72, 3},
	{168, 1},
}

// Boost returns the recency_boost for an age, or 0 if it exceeds every
// bucket or the entity has no recorded mention.
func Boost(ageHours float64) int {
	for _, b := range BoostTable {
		if ageHours <= b.MaxHours {
			return b.Boost
		}
	}
	return 0
}

// Builder walks the vault and updates EntityRecency for every entity found.
type Builder struct {
	VaultPath       string
	ExcludedFolders map[string]bool
	Index           *entity.Index
	Store           Store
	Now             func() time.Time
}

// NewBuilder constructs a Builder with the default exclusion set merged
// with any vault-configured additions.
func NewBuilder(vaultPath string, index *entity.Index, store Store, extraExcluded []string) *Builder {
	excluded := make(map[string]bool, len(defaultExcludedFolders)+len(extraExcluded))
	for k := range defaultExcludedFolders {
		excluded[k] = true
	}
	for _, f := range extraExcluded {
		excluded[f] = true
	}
	return &Builder{
		VaultPath:       vaultPath,
		ExcludedFolders: excluded,
		Index:           index,
		Store:           store,
		Now:             time.Now,
	}
}

// Result summarizes a completed scan.
type Result struct {
	FilesScanned     int
	EntitiesTouched  int
	ScanFinishedAtMs int64
}

// Scan walks every Markdown file in the vault, skipping excluded folders,
// and updates last_mention_epoch_ms for every entity whose name_lower
// (length >= 3), or one of its aliases of length >= 3, appears as a whole
// word, case-insensitively. Alias hits are recorded under the entity's
// name_lower.
func (b *Builder) Scan() (Result, error) {
	entities := b.Index.All()
	matchers := make([]wholeWordMatcher, 0, len(entities))
	for _, e := range entities {
		if len(e.NameLower) < 3 {
			continue
		}
		matchers = append(matchers, newWholeWordMatcher(e.NameLower))
		for _, a := range e.Aliases {
			lower := strings.ToLower(a)
			if len(lower) >= 3 {
				m := newWholeWordMatcher(lower)
				m.nameLower = e.NameLower
				matchers = append(matchers, m)
			}
		}
	}

	touched := make(map[string]int64)
	filesScanned := 0

	err := filepath.WalkDir(b.VaultPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != b.VaultPath && b.ExcludedFolders[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtimeMs := info.ModTime().UnixMilli()

		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		lower := strings.ToLower(string(content))
		filesScanned++

		for _, m := range matchers {
			if m.MatchString(lower) {
				if existing, ok := touched[m.nameLower]; !ok || mtimeMs > existing {
					touched[m.nameLower] = mtimeMs
				}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	scanFinishedAt := b.Now().UnixMilli()
	for nameLower, mtimeMs := range touched {
		if err := b.Store.UpsertRecency(nameLower, mtimeMs, scanFinishedAt); err != nil {
			return Result{}, err
		}
	}

	return Result{
		FilesScanned:     filesScanned,
		EntitiesTouched:  len(touched),
		ScanFinishedAtMs: scanFinishedAt,
	}, nil
}

// wholeWordMatcher tests whether a name appears as a whole word; built once
// per entity/alias and reused across every file in the scan.
type wholeWordMatcher struct {
	nameLower string
	re        *regexp.Regexp
}

func newWholeWordMatcher(nameLower string) wholeWordMatcher {
	return wholeWordMatcher{nameLower: nameLower, re: regexp.MustCompile(`\b` + regexp.QuoteMeta(nameLower) + `\b`)}
}

func (m wholeWordMatcher) MatchString(s string) bool {
	return m.re.MatchString(s)
}
