// Package mcpsurface exposes the wikilink engine over MCP: suggest_links,
// apply_links, and add_to_section, so an agent client can drive suggestion
// and mutation the same way the CLI does. Registration follows the
// teacher's internal/mcp/server.go shape (mcp.NewServer, per-tool
// Annotations, typed input structs, textResult helper) adapted from
// note-search/decision-log tools to the scoring/linking/mutation surface.
package mcpsurface

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/flywheel-dev/flywheel/internal/contentsafety"
	"github.com/flywheel-dev/flywheel/internal/entity"
	"github.com/flywheel-dev/flywheel/internal/linker"
	"github.com/flywheel-dev/flywheel/internal/orchestrator"
	"github.com/flywheel-dev/flywheel/internal/safeio"
	"github.com/flywheel-dev/flywheel/internal/scorer"
	"github.com/flywheel-dev/flywheel/internal/store"
	"github.com/flywheel-dev/flywheel/internal/vcs"
)

// Version is set by the caller before Serve.
var Version = "dev"

var (
	db    *store.DB
	index *entity.Index
	vault string
	vcsOp *vcs.Ops
)

// Deps bundles what Serve needs from the caller's already-open app state,
// so the MCP surface shares one StateStore handle with the rest of the
// process instead of opening its own.
type Deps struct {
	Vault string
	DB    *store.DB
	Index *entity.Index
	Vcs   *vcs.Ops
}

// Serve starts the MCP server on stdio using deps for every tool call.
func Serve(deps Deps) error {
	vault = deps.Vault
	db = deps.DB
	index = deps.Index
	vcsOp = deps.Vcs

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "flywheel",
		Version: Version,
	}, nil)

	registerTools(server)

	return server.Run(context.Background(), &mcp.StdioTransport{})
}

func registerTools(server *mcp.Server) {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}
	boolPtr := func(b bool) *bool { return &b }
	writeNonDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(false), IdempotentHint: true}
	writeDestructive := &mcp.ToolAnnotations{DestructiveHint: boolPtr(true)}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_links",
		Description: "Score a note's content against the vault's entity index and return ranked wikilink suggestions with their final scores, without modifying the file.\n\nArgs:\n  path: Relative path from the vault root\n  strictness: conservative|balanced|aggressive (default conservative)\n  max_suggestions: cap on suggestions returned (default 3)\n\nReturns the ranked suggestion list and the adaptive threshold used.",
		Annotations: readOnly,
	}, handleSuggestLinks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_links",
		Description: "Resolve alias wikilinks to their canonical form and insert first-occurrence auto-links for the note's top scored candidates, writing the result back to disk.\n\nArgs:\n  path: Relative path from the vault root\n  strictness: conservative|balanced|aggressive (default conservative)\n  max_suggestions: cap on auto-links inserted (default 3)\n\nReturns the number of links added and the entities linked.",
		Annotations: writeNonDestructive,
	}, handleApplyLinks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_section",
		Description: "Insert content under an existing Markdown section heading in a note; if the section does not exist, nothing is written and the error lists the note's sections. Runs through the same validate/transform/write/record lifecycle as the CLI's add-to-section command.\n\nArgs:\n  path: Relative path from the vault root\n  section: heading text of the target section\n  content: text to insert\n  format: plain|bullet|task|numbered|timestamp-bullet (default plain)\n  position: append|prepend (default append)\n\nReturns a confirmation message and any non-fatal warnings.",
		Annotations: writeDestructive,
	}, handleAddToSection)
}

type suggestLinksInput struct {
	Path           string `json:"path" jsonschema:"Relative path from the vault root"`
	Strictness     string `json:"strictness,omitempty" jsonschema:"conservative, balanced, or aggressive"`
	MaxSuggestions int    `json:"max_suggestions,omitempty" jsonschema:"Cap on suggestions returned (default 3)"`
}

type applyLinksInput struct {
	Path           string `json:"path" jsonschema:"Relative path from the vault root"`
	Strictness     string `json:"strictness,omitempty" jsonschema:"conservative, balanced, or aggressive"`
	MaxSuggestions int    `json:"max_suggestions,omitempty" jsonschema:"Cap on auto-links inserted (default 3)"`
}

type addToSectionInput struct {
	Path     string `json:"path" jsonschema:"Relative path from the vault root"`
	Section  string `json:"section" jsonschema:"Heading text of the target section"`
	Content  string `json:"content" jsonschema:"Text to insert"`
	Format   string `json:"format,omitempty" jsonschema:"plain, bullet, task, numbered, or timestamp-bullet"`
	Position string `json:"position,omitempty" jsonschema:"append or prepend"`
}

func handleSuggestLinks(ctx context.Context, req *mcp.CallToolRequest, input suggestLinksInput) (*mcp.CallToolResult, any, error) {
	relPath, abs, err := resolveVaultPath(input.Path)
	if err != nil {
		return textResult("Error: " + err.Error()), nil, nil
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return textResult("Error reading file."), nil, nil
	}

	opts, err := buildOptions(relPath, input.Strictness, input.MaxSuggestions)
	if err != nil {
		return textResult("Error: " + err.Error()), nil, nil
	}

	result := scorer.Score(string(content), opts, scorerDeps())
	if len(result.Suggestions) == 0 {
		return textResult(fmt.Sprintf("No suggestions for %s (threshold %.1f).", relPath, result.Threshold)), nil, nil
	}

	contentsafety.Check("mcp suggest_links for "+relPath, result.Suffix)

	var b strings.Builder
	fmt.Fprintf(&b, "Suggestions for %s (threshold %.1f):\n", relPath, result.Threshold)
	for _, c := range result.Suggestions {
		fmt.Fprintf(&b, "  [[%s]] score=%.1f\n", c.Entity.CanonicalName, c.FinalScore)
	}
	return textResult(b.String()), nil, nil
}

func handleApplyLinks(ctx context.Context, req *mcp.CallToolRequest, input applyLinksInput) (*mcp.CallToolResult, any, error) {
	relPath, abs, err := resolveVaultPath(input.Path)
	if err != nil {
		return textResult("Error: " + err.Error()), nil, nil
	}
	verifiedAbs, err := safeio.ValidatePathSecure(vault, relPath)
	if err != nil {
		return textResult("Error: " + err.Error()), nil, nil
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return textResult("Error reading file."), nil, nil
	}

	opts, err := buildOptions(relPath, input.Strictness, input.MaxSuggestions)
	if err != nil {
		return textResult("Error: " + err.Error()), nil, nil
	}

	result := scorer.Score(string(content), opts, scorerDeps())
	candidates := make([]entity.Entity, 0, len(result.Suggestions))
	for _, c := range result.Suggestions {
		candidates = append(candidates, c.Entity)
	}

	applied := linker.Apply(string(content), index, candidates)
	if applied.LinksAdded == 0 {
		return textResult(fmt.Sprintf("No links applied to %s.", relPath)), nil, nil
	}
	if err := safeio.WriteAtomic(verifiedAbs, []byte(applied.Content), 0o644); err != nil {
		return textResult("Error writing file: " + err.Error()), nil, nil
	}

	return textResult(fmt.Sprintf("Linked %s: %d link(s) added (%s).", relPath, applied.LinksAdded, strings.Join(applied.LinkedEntities, ", "))), nil, nil
}

func handleAddToSection(ctx context.Context, req *mcp.CallToolRequest, input addToSectionInput) (*mcp.CallToolResult, any, error) {
	relPath, _, err := resolveVaultPath(input.Path)
	if err != nil {
		return textResult("Error: " + err.Error()), nil, nil
	}
	if strings.TrimSpace(input.Section) == "" || strings.TrimSpace(input.Content) == "" {
		return textResult("Error: section and content are required."), nil, nil
	}
	format := input.Format
	if format == "" {
		format = "plain"
	}
	position := input.Position
	if position == "" {
		position = "append"
	}

	engine := orchestrator.New(db, vcsOp, orchestrator.Clock{
		NowMs:   func() int64 { return time.Now().UnixMilli() },
		NowHour: func() (int, int) { n := time.Now(); return n.Hour(), n.Minute() },
	})
	result, err := engine.Run(orchestrator.Context{
		Vault:        vault,
		NotePath:     relPath,
		CommitPrefix: "[Flywheel]",
		Section:      input.Section,
	}, orchestrator.Request{
		Kind:     orchestrator.AddToSection,
		Content:  input.Content,
		Format:   format,
		Position: position,
	})
	if err != nil {
		return textResult("Error: " + err.Error()), nil, nil
	}

	msg := result.Message
	if len(result.Warnings) > 0 {
		msg += " (warnings: " + strings.Join(result.Warnings, "; ") + ")"
	}
	return textResult(msg), nil, nil
}

func buildOptions(relPath, strictness string, maxSuggestions int) (scorer.Options, error) {
	opts := scorer.DefaultOptions()
	opts.NotePath = relPath
	opts.NowMs = time.Now().UnixMilli()
	if maxSuggestions > 0 {
		opts.MaxSuggestions = maxSuggestions
	}
	if strictness == "" {
		return opts, nil
	}
	switch scorer.Strictness(strictness) {
	case scorer.Conservative, scorer.Balanced, scorer.Aggressive:
		opts.Strictness = scorer.Strictness(strictness)
		return opts, nil
	default:
		return opts, fmt.Errorf("unknown strictness %q", strictness)
	}
}

func scorerDeps() scorer.Deps {
	cooc, _ := db.LoadCoOccurrence()
	return scorer.Deps{
		Index: index,
		Recency: func(nameLower string) (int64, bool) {
			rec, ok, err := db.GetRecency(nameLower)
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
			pos, neg, err := db.FeedbackCounts(entityName, contextTag)
			if err != nil {
				return 0, 0
			}
			return pos, neg
		},
		IsSuppressed: func(entityName, contextTag string) bool {
			suppressed, err := db.IsSuppressed(entityName, contextTag)
			return err == nil && suppressed
		},
		ContextTag: func(notePath string) string {
			if i := strings.Index(notePath, "/"); i >= 0 {
				return notePath[:i]
			}
			return "(root)"
		},
	}
}

// resolveVaultPath accepts a path relative to the vault and returns
// (vault-relative slash path, absolute path), rejecting anything outside it.
func resolveVaultPath(notePath string) (string, string, error) {
	if notePath == "" {
		return "", "", fmt.Errorf("path is required")
	}
	abs := filepath.Join(vault, notePath)
	if _, err := os.Stat(abs); err != nil {
		return "", "", fmt.Errorf("%s: not found", notePath)
	}
	rel, err := filepath.Rel(vault, abs)
	if err != nil {
		return "", "", err
	}
	return filepath.ToSlash(rel), abs, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}
