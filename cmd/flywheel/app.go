package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/flywheel-dev/flywheel/internal/config"
	"github.com/flywheel-dev/flywheel/internal/entity"
	"github.com/flywheel-dev/flywheel/internal/scorer"
	"github.com/flywheel-dev/flywheel/internal/store"
	"github.com/flywheel-dev/flywheel/internal/vcs"
)

// app bundles the collaborators every command needs: the vault path, the
// open StateStore, and the entity index built from it.
type app struct {
	vault string
	db    *store.DB
	index *entity.Index
	vcs   *vcs.Ops
}

// openApp resolves the vault, opens the StateStore, and builds the entity
// index. Commands that only need the vault path (init) skip this.
func openApp() (*app, error) {
	vault := config.VaultPath()
	if vault == "" {
		return nil, config.ErrNoVault
	}
	db, err := store.Open(vault)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	idx, err := entity.Build(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build entity index: %w", err)
	}
	return &app{vault: vault, db: db, index: idx, vcs: vcs.New()}, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// scorerDeps builds the Scorer's read-only collaborator set from the open
// store: recency lookups, NPMI-derived co-occurrence, feedback counts,
// suppressions, and a context tag derived from the note's top-level
// vault folder (the same grouping contextBoost/crossFolderBoost use).
func (a *app) scorerDeps() scorer.Deps {
	cooc, _ := a.db.LoadCoOccurrence()
	return scorer.Deps{
		Index: a.index,
		Recency: func(nameLower string) (int64, bool) {
			rec, ok, err := a.db.GetRecency(nameLower)
			if err != nil || !ok {
				return 0, false
			}
			return rec.LastMentionEpochMs, true
		},
		CoOccurrence: func(x, y string) (int, int, int, int) {
			count := 0
			if m, ok := cooc.Associations[x]; ok {
				count = m[y]
			}
			return count, cooc.DocumentFrequency[x], cooc.DocumentFrequency[y], cooc.TotalNotesScanned
		},
		FeedbackCounts: func(entityName, contextTag string) (float64, float64) {
			pos, neg, err := a.db.FeedbackCounts(entityName, contextTag)
			if err != nil {
				return 0, 0
			}
			return pos, neg
		},
		IsSuppressed: func(entityName, contextTag string) bool {
			suppressed, err := a.db.IsSuppressed(entityName, contextTag)
			return err == nil && suppressed
		},
		ContextTag: contextTag,
	}
}

// contextTag derives a SuggestionEvent's context tag from the note's
// top-level vault folder, e.g. "projects/flywheel.md" -> "projects".
func contextTag(notePath string) string {
	if i := strings.Index(notePath, "/"); i >= 0 {
		return notePath[:i]
	}
	return "(root)"
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func nowHourMinute() (int, int) {
	now := time.Now()
	return now.Hour(), now.Minute()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
