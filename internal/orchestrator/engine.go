package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"regexp"
	"strings"

	"github.com/flywheel-dev/flywheel/internal/contentsafety"
	"github.com/flywheel-dev/flywheel/internal/frontmatter"
	"github.com/flywheel-dev/flywheel/internal/safeio"
	"github.com/flywheel-dev/flywheel/internal/section"
	"github.com/flywheel-dev/flywheel/internal/store"
	"github.com/flywheel-dev/flywheel/internal/vcs"
)

// Store is the narrow StateStore slice the orchestrator persists through:
// mutation hints (best-effort) and nothing else — suggestion events and
// feedback are the Scorer/Feedback layers' concern, not the mutation
// lifecycle's.
type Store interface {
	RecordMutationHint(h store.MutationHint) error
}

// Clock supplies the orchestrator's notion of "now", in milliseconds and as
// an hour/minute pair for FormatTimestampBullet, so tests can inject a
// fixed time instead of depending on the host clock.
type Clock struct {
	NowMs   func() int64
	NowHour func() (hour, minute int)
}

// Engine drives every mutating operation through
// read -> validate -> transform -> write -> record -> commit.
type Engine struct {
	Store Store
	Vcs   *vcs.Ops
	Clock Clock
}

// New builds an Engine from its collaborators.
func New(st Store, vcsOps *vcs.Ops, clock Clock) *Engine {
	return &Engine{Store: st, Vcs: vcsOps, Clock: clock}
}

// Run executes req against ctx and returns the fully-resolved Result,
// including the CLI exit code. A non-nil error is always an *EngineError.
func (e *Engine) Run(ctx Context, req Request) (Result, error) {
	fullPath, err := safeio.ValidatePathSecure(ctx.Vault, ctx.NotePath)
	if err != nil {
		return Result{ExitCode: 2}, newErr(PathRejected, "%v", err)
	}

	if req.Kind == CreateNote {
		return e.runCreateNote(ctx, req, fullPath)
	}
	if req.Kind == DeleteNote {
		return e.runDeleteNote(ctx, fullPath)
	}

	raw, readErr := os.ReadFile(fullPath)
	if readErr != nil {
		return Result{ExitCode: 4}, newErr(NotFound, "read %s: %v", ctx.NotePath, readErr)
	}
	before := raw

	note, parseErr := frontmatter.Read(raw)
	if parseErr != nil {
		return Result{ExitCode: 2}, newErr(ParseFailure, "%v", parseErr)
	}

	var outcome Outcome
	switch req.Kind {
	case AddToSection:
		outcome, err = e.transformAddToSection(note, ctx, req)
	case RemoveFromSection:
		outcome, err = e.transformRemoveFromSection(note, ctx, req)
	case ReplaceInSection:
		outcome, err = e.transformReplaceInSection(note, ctx, req)
	case UpdateFrontMatter:
		outcome, err = e.transformUpdateFrontMatter(note, req)
	case ToggleTask:
		outcome, err = e.transformToggleTask(note, req)
	default:
		err = newErr(NotFound, "unknown operation kind %q", req.Kind)
	}
	if err != nil {
		return Result{ExitCode: ExitCode(err, false)}, err
	}

	fm := note.FrontMatter
	if outcome.UpdatedFrontMatter != nil {
		fm = outcome.UpdatedFrontMatter
	}

	out, encodeErr := frontmatter.Write(fm, outcome.UpdatedContent, note.LineEnding, note.BOM)
	if encodeErr != nil {
		return Result{ExitCode: 2}, newErr(ParseFailure, "%v", encodeErr)
	}

	if writeErr := safeio.WriteAtomic(fullPath, out, 0o644); writeErr != nil {
		return Result{ExitCode: 4}, newErr(StoreError, "write %s: %v", ctx.NotePath, writeErr)
	}

	e.recordHint(ctx, string(req.Kind), before, out)

	result := Result{Outcome: outcome, ExitCode: 0}
	if ctx.Commit {
		e.tryCommit(ctx, &result)
	}
	return result, nil
}

func (e *Engine) runCreateNote(ctx Context, req Request, fullPath string) (Result, error) {
	if _, err := os.Stat(fullPath); err == nil {
		return Result{ExitCode: 2}, newErr(ParseFailure, "note already exists: %s", ctx.NotePath)
	}
	out, err := frontmatter.Write(req.InitialFrontMatter, req.InitialContent, frontmatter.LF, false)
	if err != nil {
		return Result{ExitCode: 2}, newErr(ParseFailure, "%v", err)
	}
	if err := safeio.WriteAtomic(fullPath, out, 0o644); err != nil {
		return Result{ExitCode: 4}, newErr(StoreError, "create %s: %v", ctx.NotePath, err)
	}
	e.recordHint(ctx, string(CreateNote), nil, out)

	result := Result{Outcome: Outcome{UpdatedContent: req.InitialContent, UpdatedFrontMatter: req.InitialFrontMatter, Message: "created " + ctx.NotePath}, ExitCode: 0}
	if ctx.Commit {
		e.tryCommit(ctx, &result)
	}
	return result, nil
}

func (e *Engine) runDeleteNote(ctx Context, fullPath string) (Result, error) {
	before, _ := os.ReadFile(fullPath)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return Result{ExitCode: 2}, newErr(NotFound, "note not found: %s", ctx.NotePath)
		}
		return Result{ExitCode: 4}, newErr(StoreError, "delete %s: %v", ctx.NotePath, err)
	}
	e.recordHint(ctx, string(DeleteNote), before, nil)

	result := Result{Outcome: Outcome{Message: "deleted " + ctx.NotePath}, ExitCode: 0}
	if ctx.Commit {
		e.tryCommit(ctx, &result)
	}
	return result, nil
}

func (e *Engine) transformAddToSection(note frontmatter.Note, ctx Context, req Request) (Outcome, error) {
	sec := section.FindSection(note.Content, ctx.Section)
	if sec == nil {
		return Outcome{}, newErr(NotFound, "section %q not found; available: %s", ctx.Section, availableSections(note.Content))
	}
	formatted := section.FormatContent(req.Content, section.Format(req.Format), e.nowClock())
	pos := section.Append
	if req.Position == string(section.Prepend) {
		pos = section.Prepend
	}
	updated := section.InsertInSection(note.Content, *sec, formatted, pos, section.InsertOptions{PreserveListNesting: true})
	return Outcome{UpdatedContent: updated, Message: "added to section " + sec.Name}, nil
}

func (e *Engine) transformRemoveFromSection(note frontmatter.Note, ctx Context, req Request) (Outcome, error) {
	sec := section.FindSection(note.Content, ctx.Section)
	if sec == nil {
		return Outcome{}, newErr(NotFound, "section %q not found; available: %s", ctx.Section, availableSections(note.Content))
	}
	lines := strings.Split(note.Content, "\n")
	end := sec.EndLine
	if end >= len(lines) {
		end = len(lines) - 1
	}
	out := make([]string, 0, len(lines))
	removed := false
	for i, line := range lines {
		if i >= sec.ContentStartLine && i <= end && strings.Contains(line, req.MatchText) {
			removed = true
			continue
		}
		out = append(out, line)
	}
	var warnings []string
	if !removed {
		warnings = append(warnings, "no matching line found in section "+sec.Name)
	}
	return Outcome{UpdatedContent: strings.Join(out, "\n"), Message: "removed from section " + sec.Name, Warnings: warnings}, nil
}

func (e *Engine) transformReplaceInSection(note frontmatter.Note, ctx Context, req Request) (Outcome, error) {
	sec := section.FindSection(note.Content, ctx.Section)
	if sec == nil {
		return Outcome{}, newErr(NotFound, "section %q not found; available: %s", ctx.Section, availableSections(note.Content))
	}
	if err := validatePattern(req.Pattern); err != nil {
		return Outcome{}, err
	}
	re, err := regexp.Compile(req.Pattern)
	if err != nil {
		return Outcome{}, newErr(RegexUnsafe, "invalid pattern: %v", err)
	}

	lines := strings.Split(note.Content, "\n")
	end := sec.EndLine
	if end >= len(lines) {
		end = len(lines) - 1
	}
	for i := sec.ContentStartLine; i <= end; i++ {
		lines[i] = re.ReplaceAllString(lines[i], req.Replacement)
	}
	return Outcome{UpdatedContent: strings.Join(lines, "\n"), Message: "replaced in section " + sec.Name}, nil
}

func (e *Engine) transformUpdateFrontMatter(note frontmatter.Note, req Request) (Outcome, error) {
	fm := make(map[string]any, len(note.FrontMatter)+len(req.FrontMatterPatch))
	for k, v := range note.FrontMatter {
		fm[k] = v
	}
	for k, v := range req.FrontMatterPatch {
		if v == nil {
			delete(fm, k)
			continue
		}
		fm[k] = v
	}
	return Outcome{UpdatedFrontMatter: fm, UpdatedContent: note.Content, Message: "front matter updated"}, nil
}

func (e *Engine) transformToggleTask(note frontmatter.Note, req Request) (Outcome, error) {
	lines := strings.Split(note.Content, "\n")
	toggled := false
	for i, line := range lines {
		if !strings.Contains(line, req.TaskText) {
			continue
		}
		switch {
		case strings.Contains(line, "[ ]"):
			lines[i] = strings.Replace(line, "[ ]", "[x]", 1)
			toggled = true
		case strings.Contains(line, "[x]"), strings.Contains(line, "[X]"):
			lines[i] = strings.NewReplacer("[x]", "[ ]", "[X]", "[ ]").Replace(line)
			toggled = true
		}
		if toggled {
			break
		}
	}
	if !toggled {
		return Outcome{}, newErr(NotFound, "no matching task line for %q", req.TaskText)
	}
	return Outcome{UpdatedContent: strings.Join(lines, "\n"), Message: "task toggled"}, nil
}

func (e *Engine) tryCommit(ctx Context, result *Result) {
	contentsafety.Check("commit message for "+ctx.NotePath, ctx.CommitPrefix+" update "+ctx.NotePath)
	res := e.Vcs.Commit(ctx.Vault, ctx.NotePath, ctx.CommitPrefix)
	if !res.Success {
		result.GitError = res.Error
		result.ExitCode = 3
	}
}

func (e *Engine) recordHint(ctx Context, operation string, before, after []byte) {
	if e.Store == nil {
		return
	}
	_ = e.Store.RecordMutationHint(store.MutationHint{
		Timestamp:  e.nowMs(),
		Path:       ctx.NotePath,
		Operation:  operation,
		BeforeHash: hashBytes(before),
		AfterHash:  hashBytes(after),
	})
}

func (e *Engine) nowMs() int64 {
	if e.Clock.NowMs != nil {
		return e.Clock.NowMs()
	}
	return 0
}

func (e *Engine) nowClock() func() (int, int) {
	if e.Clock.NowHour != nil {
		return e.Clock.NowHour
	}
	return func() (int, int) { return 0, 0 }
}

func hashBytes(b []byte) string {
	if b == nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func availableSections(md string) string {
	headings := section.ExtractHeadings(md)
	names := make([]string, 0, len(headings))
	for _, h := range headings {
		names = append(names, h.Text)
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
