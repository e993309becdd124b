// Package linker rewrites note content to resolve alias wikilinks to their
// canonical targets and to auto-insert first-occurrence wikilinks for
// scored candidates.
package linker

import (
	"regexp"
	"strings"

	"github.com/flywheel-dev/flywheel/internal/entity"
)

var (
	wikilinkRe   = regexp.MustCompile(`\[\[([^\]|]+)(\|([^\]]+))?\]\]`)
	fenceRe      = regexp.MustCompile("^\\s*```")
	blockQuoteRe = regexp.MustCompile(`^\s*>`)
	tableRowRe   = regexp.MustCompile(`^\s*\|`)
	hruleRe      = regexp.MustCompile(`^\s*(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)
)

// Result is what Apply returns.
type Result struct {
	Content         string
	LinksAdded      int
	LinkedEntities  []string
}

// Apply runs the alias-resolution pass then the auto-link pass over content,
// using idx to resolve aliases/canonical names and candidates as the ranked
// auto-link targets.
func Apply(content string, idx *entity.Index, candidates []entity.Entity) Result {
	content, aliasRewrites := resolveAliases(content, idx)
	alreadyLinked := existingLinkTargets(content)

	linked := make(map[string]bool)
	inserts := 0
	for _, cand := range candidates {
		if alreadyLinked[strings.ToLower(cand.CanonicalName)] {
			continue
		}
		surfaceForms := append([]string{cand.CanonicalName}, cand.Aliases...)
		newContent, ok := autoLinkFirst(content, cand, surfaceForms)
		if ok {
			content = newContent
			inserts++
			linked[cand.CanonicalName] = true
		}
	}

	names := make([]string, 0, len(linked))
	for name := range linked {
		names = append(names, name)
	}

	return Result{Content: content, LinksAdded: inserts + aliasRewrites, LinkedEntities: names}
}

// resolveAliases rewrites every existing [[X]] / [[X|Y]] wikilink whose
// target (lowercased) matches an entity alias (and not its canonical name)
// to [[canonical|X]] / [[canonical|Y]].
func resolveAliases(content string, idx *entity.Index) (string, int) {
	if idx == nil || !idx.Ready() {
		return content, 0
	}
	count := 0
	out := wikilinkRe.ReplaceAllStringFunc(content, func(m string) string {
		sub := wikilinkRe.FindStringSubmatch(m)
		target := sub[1]
		display := sub[3]

		targetLower := strings.ToLower(strings.TrimSpace(target))
		e, _, ok := idx.ByAlias(targetLower)
		if !ok || targetLower == strings.ToLower(e.CanonicalName) {
			return m
		}

		count++
		if display != "" {
			return "[[" + e.CanonicalName + "|" + display + "]]"
		}
		return "[[" + e.CanonicalName + "|" + target + "]]"
	})
	return out, count
}

// existingLinkTargets returns the lowercased canonical target of every
// [[Target]] / [[Target|Display]] link already in content, so an entity
// already linked anywhere is never auto-linked again — the invariant that
// makes repeated linker applications over the same candidate set a no-op.
func existingLinkTargets(content string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range wikilinkRe.FindAllStringSubmatch(content, -1) {
		out[strings.ToLower(strings.TrimSpace(m[1]))] = true
	}
	return out
}

// autoLinkFirst finds the first occurrence of any surface form as a whole
// word, outside exclusion zones, and replaces it with a wikilink. Returns
// the unmodified content and false if no eligible occurrence was found.
func autoLinkFirst(content string, e entity.Entity, surfaceForms []string) (string, bool) {
	lines := splitKeepEnds(content)
	inFence := false

	for li, line := range lines {
		bare := strings.TrimRight(line, "\r\n")
		if fenceRe.MatchString(bare) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if blockQuoteRe.MatchString(bare) || tableRowRe.MatchString(bare) || hruleRe.MatchString(bare) {
			continue
		}

		for _, surface := range surfaceForms {
			if surface == "" {
				continue
			}
			idx := findWholeWordOutsideLinks(bare, surface)
			if idx < 0 {
				continue
			}
			replacement := "[[" + e.CanonicalName + "]]"
			if !strings.EqualFold(surface, e.CanonicalName) {
				replacement = "[[" + e.CanonicalName + "|" + bare[idx:idx+len(surface)] + "]]"
			}
			newBare := bare[:idx] + replacement + bare[idx+len(surface):]
			lines[li] = newBare + lineEnd(line)
			return strings.Join(lines, ""), true
		}
	}
	return content, false
}

// findWholeWordOutsideLinks locates the first case-insensitive whole-word
// occurrence of surface in line that is not already inside [[...]] or
// `...` spans, and would not produce a double-wrap. Returns -1 if none.
func findWholeWordOutsideLinks(line, surface string) int {
	re := wholeWordRegexp(surface)
	locs := re.FindAllStringIndex(line, -1)
	if locs == nil {
		return -1
	}

	excluded := excludedSpans(line)
	for _, loc := range locs {
		if spanOverlaps(excluded, loc[0], loc[1]) {
			continue
		}
		return loc[0]
	}
	return -1
}

func wholeWordRegexp(surface string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(surface) + `\b`)
}

// excludedSpans returns byte ranges of the line covered by existing
// wikilinks or inline code, which auto-link must not touch (avoiding
// double-wraps like [[[...]]]).
func excludedSpans(line string) [][2]int {
	var spans [][2]int
	for _, loc := range wikilinkRe.FindAllStringIndex(line, -1) {
		spans = append(spans, [2]int{loc[0], loc[1]})
	}
	inlineCodeRe := regexp.MustCompile("`[^`]*`")
	for _, loc := range inlineCodeRe.FindAllStringIndex(line, -1) {
		spans = append(spans, [2]int{loc[0], loc[1]})
	}
	return spans
}

func spanOverlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

// splitKeepEnds splits content into lines, preserving each line's trailing
// newline (and CR, if present) so the original line endings survive.
func splitKeepEnds(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i+1])
			start = i + 1
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

func lineEnd(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return "\n"
	}
	return ""
}
