package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/flywheel-dev/flywheel/internal/cli"
	"github.com/flywheel-dev/flywheel/internal/config"
	"github.com/flywheel-dev/flywheel/internal/cooccurrence"
	"github.com/flywheel-dev/flywheel/internal/edgeweight"
	"github.com/flywheel-dev/flywheel/internal/entity"
	"github.com/flywheel-dev/flywheel/internal/entitygraph"
	"github.com/flywheel-dev/flywheel/internal/frontmatter"
	"github.com/flywheel-dev/flywheel/internal/recency"
	"github.com/flywheel-dev/flywheel/internal/store"
	"github.com/flywheel-dev/flywheel/internal/tokenizer"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the entity index, recency cache, co-occurrence table, and edge weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex()
		},
	}
}

// runIndex walks the vault once, upserting an Entity for every note whose
// front matter declares a category (the entity-population contract: a note
// becomes a linkable entity when it opts in via front matter; a name that
// is only ever a wikilink target, with no such note, does not become an
// entity). It then rebuilds every
// derived cache in dependency order: index -> recency -> co-occurrence ->
// edge weights -> graph snapshot nodes/edges.
func runIndex() error {
	vault := config.VaultPath()
	if vault == "" {
		return config.ErrNoVault
	}
	db, err := store.Open(vault)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	notes, err := walkNotes(vault)
	if err != nil {
		return fmt.Errorf("walk vault: %w", err)
	}

	entitiesUpserted := 0
	for _, relPath := range notes {
		raw, err := os.ReadFile(filepath.Join(vault, relPath))
		if err != nil {
			continue
		}
		note, err := frontmatter.Read(raw)
		if err != nil {
			continue
		}
		cat, ok := categoryFromFrontMatter(note.FrontMatter)
		if !ok {
			continue
		}
		name := titleFromFrontMatter(note.FrontMatter, relPath)
		aliases := aliasesFromFrontMatter(note.FrontMatter)
		hubScore := intFromFrontMatter(note.FrontMatter, "hub_score")
		e := entity.NewEntity(name, relPath, cat, hubScore, aliases)
		if _, err := db.UpsertEntity(e); err != nil {
			return fmt.Errorf("upsert entity %s: %w", relPath, err)
		}
		entitiesUpserted++
	}

	idx, err := entity.Build(db)
	if err != nil {
		return fmt.Errorf("build entity index: %w", err)
	}

	rb := recency.NewBuilder(vault, idx, db, config.ExcludedFolders())
	recencyResult, err := rb.Scan()
	if err != nil {
		return fmt.Errorf("recency scan: %w", err)
	}

	coocNotes := make([]cooccurrence.Note, 0, len(notes))
	for _, relPath := range notes {
		raw, err := os.ReadFile(filepath.Join(vault, relPath))
		if err != nil {
			continue
		}
		targets := tokenizer.ExtractLinkedTargets(string(raw))
		resolved := make(map[string]bool, len(targets))
		for t := range targets {
			if e, ok := idx.ByNameLower(strings.ToLower(t)); ok {
				resolved[e.NameLower] = true
			} else if e, _, ok := idx.ByAlias(strings.ToLower(t)); ok {
				resolved[e.NameLower] = true
			}
		}
		if len(resolved) > 0 {
			coocNotes = append(coocNotes, cooccurrence.Note{Targets: resolved})
		}
	}
	coocData := cooccurrence.Build(coocNotes, 1, time.Now().UnixMilli())
	if err := db.ReplaceCoOccurrence(store.CoOccurrence{
		Associations:      coocData.Associations,
		DocumentFrequency: coocData.DocumentFrequency,
		TotalNotesScanned: coocData.TotalNotesScanned,
		MinCountThreshold: coocData.MinCountThreshold,
		GeneratedAt:       coocData.GeneratedAt,
	}); err != nil {
		return fmt.Errorf("store co-occurrence: %w", err)
	}

	edgeResult, err := edgeweight.Recompute(store.EdgeWeightStore{DB: db}, time.Now)
	if err != nil {
		return fmt.Errorf("recompute edge weights: %w", err)
	}

	graphUpdated, err := rebuildEntityGraph(db, idx, coocData)
	if err != nil {
		return fmt.Errorf("rebuild entity graph: %w", err)
	}

	fmt.Printf("%sIndexed%s %s\n", cli.Bold, cli.Reset, cli.ShortenHome(vault))
	fmt.Printf("  entities upserted:   %s\n", cli.FormatNumber(entitiesUpserted))
	fmt.Printf("  files scanned:       %s\n", cli.FormatNumber(recencyResult.FilesScanned))
	fmt.Printf("  entities w/ mention: %s\n", cli.FormatNumber(recencyResult.EntitiesTouched))
	fmt.Printf("  edges updated:       %s (%dms)\n", cli.FormatNumber(edgeResult.EdgesUpdated), edgeResult.DurationMs)
	fmt.Printf("  graph nodes/edges:   %s\n", cli.FormatNumber(graphUpdated))
	return nil
}

// walkNotes returns every Markdown file in the vault, vault-relative, with
// excluded directories and skip-files pruned.
func walkNotes(vault string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(vault, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != vault && config.SkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".md") || config.SkipFiles[d.Name()] {
			return nil
		}
		rel, err := filepath.Rel(vault, path)
		if err != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func categoryFromFrontMatter(fm map[string]any) (entity.Category, bool) {
	raw, ok := fm["category"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	switch entity.Category(s) {
	case entity.CategoryTechnology, entity.CategoryPerson, entity.CategoryProject,
		entity.CategoryOrganization, entity.CategoryLocation, entity.CategoryConcept,
		entity.CategoryAcronym, entity.CategoryOther:
		return entity.Category(s), true
	default:
		return "", false
	}
}

func titleFromFrontMatter(fm map[string]any, relPath string) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	base := filepath.Base(relPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func aliasesFromFrontMatter(fm map[string]any) []string {
	raw, ok := fm["aliases"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intFromFrontMatter(fm map[string]any, key string) int {
	switch v := fm[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// rebuildEntityGraph replaces the entity-graph nodes/edges with the current
// entity set and their co-occurrence pairs, the input GraphSnapshot stats
// (cmd/flywheel snapshot) are computed from.
func rebuildEntityGraph(db *store.DB, idx *entity.Index, cooc cooccurrence.CoOccurrenceData) (int, error) {
	g := entitygraph.NewDB(db.Conn())
	nodeIDs := make(map[string]int64, len(idx.All()))
	for _, e := range idx.All() {
		id, err := g.UpsertNode("entity", e.NameLower)
		if err != nil {
			return 0, err
		}
		nodeIDs[e.NameLower] = id
	}
	count := 0
	for a, neighbors := range cooc.Associations {
		for b, weight := range neighbors {
			if a >= b {
				continue
			}
			srcID, ok1 := nodeIDs[a]
			dstID, ok2 := nodeIDs[b]
			if !ok1 || !ok2 {
				continue
			}
			if err := g.UpsertEdge(srcID, dstID, "co_occurs_with", float64(weight)); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
