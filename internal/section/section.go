// Package section implements heading-aware reading and mutation of a single
// Markdown section: locating it by name, inserting payloads with
// list-aware indentation, and formatting content into the supported bullet
// styles.
package section

import (
	"fmt"
	"regexp"
	"strings"
)

// Heading is one extracted heading line.
type Heading struct {
	Level int
	Text  string
	Line  int // 0-indexed line number of the heading
}

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	fenceRe    = regexp.MustCompile("^\\s*```")
	listItemRe = regexp.MustCompile(`^(\s*)([-*+]\s|\d+\.\s)`)

	emptyBulletRe    = regexp.MustCompile(`^\s*[-*+]\s*$`)
	emptyNumberedRe  = regexp.MustCompile(`^\s*\d+\.\s*$`)
	emptyTaskRe      = regexp.MustCompile(`^\s*[-*+]\s*\[\s?[xX]?\]\s*$`)
	blankRunRe       = regexp.MustCompile(`\n{3,}`)
)

// ExtractHeadings scans md line-by-line, skipping fenced code blocks, and
// returns every ATX heading in document order.
func ExtractHeadings(md string) []Heading {
	lines := strings.Split(md, "\n")
	var out []Heading
	inFence := false
	for i, line := range lines {
		if fenceRe.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, Heading{Level: len(m[1]), Text: strings.TrimSpace(m[2]), Line: i})
	}
	return out
}

// Section is a located heading plus the line range of its body.
type Section struct {
	Name             string
	Level            int
	StartLine        int // the heading line
	ContentStartLine int // first line of body content
	EndLine          int // inclusive, last line before next heading of level <= this one, or EOF
}

// FindSection performs a case-insensitive exact-text match against heading
// names (accepting a name with or without leading "#" tokens) and returns
// the first match, or nil if none exists. Partial substring matches never
// match.
func FindSection(md string, name string) *Section {
	target := strings.ToLower(strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(name), "#")))
	target = strings.TrimSpace(target)

	headings := ExtractHeadings(md)
	lines := strings.Split(md, "\n")

	for i, h := range headings {
		if strings.ToLower(h.Text) != target {
			continue
		}
		end := len(lines) - 1
		for j := i + 1; j < len(headings); j++ {
			if headings[j].Level <= h.Level {
				end = headings[j].Line - 1
				break
			}
		}
		return &Section{
			Name:             h.Text,
			Level:            h.Level,
			StartLine:        h.Line,
			ContentStartLine: h.Line + 1,
			EndLine:          end,
		}
	}
	return nil
}

// Position selects where InsertInSection places the new payload.
type Position string

const (
	Append  Position = "append"
	Prepend Position = "prepend"
)

// InsertOptions controls list-aware indentation behavior.
type InsertOptions struct {
	PreserveListNesting bool
}

// InsertInSection inserts payload into the section's body per position,
// detecting surrounding list indentation, replacing an empty placeholder
// line when appending, and collapsing runs of blank lines left behind by
// repeated mutations.
func InsertInSection(md string, sec Section, payload string, pos Position, opts InsertOptions) string {
	lines := strings.Split(md, "\n")

	indent := ""
	if opts.PreserveListNesting {
		indent = detectListIndent(lines, sec, pos)
	}

	payloadLines := formatPayloadLines(payload, indent)

	bodyStart, bodyEnd := sec.ContentStartLine, sec.EndLine
	if bodyEnd >= len(lines) {
		bodyEnd = len(lines) - 1
	}

	if pos == Append && bodyEnd >= bodyStart && isEmptyPlaceholder(lines[bodyStart]) {
		lines = append(lines[:bodyStart], append(payloadLines, lines[bodyStart+1:]...)...)
	} else if pos == Prepend {
		insertAt := bodyStart
		out := make([]string, 0, len(lines)+len(payloadLines))
		out = append(out, lines[:insertAt]...)
		out = append(out, payloadLines...)
		out = append(out, lines[insertAt:]...)
		lines = out
	} else {
		insertAt := bodyEnd + 1
		if insertAt > len(lines) {
			insertAt = len(lines)
		}
		out := make([]string, 0, len(lines)+len(payloadLines))
		out = append(out, lines[:insertAt]...)
		out = append(out, payloadLines...)
		out = append(out, lines[insertAt:]...)
		lines = out
	}

	result := strings.Join(lines, "\n")
	return collapseBlankRuns(result)
}

// detectListIndent scans backward (append) or forward (prepend) within the
// section's lines for the first list item and returns its leading
// whitespace.
func detectListIndent(lines []string, sec Section, pos Position) string {
	start, end := sec.ContentStartLine, sec.EndLine
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if pos == Append {
		for i := end; i >= start; i-- {
			if m := listItemRe.FindStringSubmatch(lines[i]); m != nil {
				return m[1]
			}
		}
	} else {
		for i := start; i <= end; i++ {
			if m := listItemRe.FindStringSubmatch(lines[i]); m != nil {
				return m[1]
			}
		}
	}
	return ""
}

func isEmptyPlaceholder(line string) bool {
	return emptyBulletRe.MatchString(line) || emptyNumberedRe.MatchString(line) || emptyTaskRe.MatchString(line)
}

// formatPayloadLines splits a (possibly multi-line) payload into lines,
// indenting continuation lines to the marker column of the first line
// (2 for "-", 3 for "1.", 6 for "- [ ]", 2 for a timestamp bullet), and
// applying the caller-detected list indent as a prefix. Fenced code,
// tables, block quotes, and horizontal rules inside the payload are left
// unindented.
func formatPayloadLines(payload string, listIndent string) []string {
	raw := strings.Split(payload, "\n")
	if len(raw) == 0 {
		return raw
	}

	markerCol := continuationIndent(raw[0])
	inFence := false

	out := make([]string, len(raw))
	for i, line := range raw {
		if i == 0 {
			out[i] = listIndent + line
			continue
		}
		if fenceRe.MatchString(line) {
			inFence = !inFence
			out[i] = listIndent + line
			continue
		}
		if inFence || blockQuoteRe.MatchString(line) || tableRowRe.MatchString(line) || hruleRe.MatchString(line) {
			out[i] = listIndent + line
			continue
		}
		out[i] = listIndent + strings.Repeat(" ", markerCol) + line
	}
	return out
}

var (
	blockQuoteRe = regexp.MustCompile(`^\s*>`)
	tableRowRe   = regexp.MustCompile(`^\s*\|`)
	hruleRe      = regexp.MustCompile(`^\s*(?:(?:-\s*){3,}|(?:\*\s*){3,}|(?:_\s*){3,})$`)

	taskMarkerRe      = regexp.MustCompile(`^\s*[-*+]\s\[[ xX]\]\s`)
	numberedMarkerRe  = regexp.MustCompile(`^\s*\d+\.\s`)
	bulletMarkerRe    = regexp.MustCompile(`^\s*[-*+]\s`)
	timestampMarkerRe = regexp.MustCompile(`^\s*-\s\*\*\d{2}:\d{2}\*\*\s`)
)

func continuationIndent(firstLine string) int {
	switch {
	case emptyTaskRe.MatchString(firstLine), taskMarkerRe.MatchString(firstLine):
		return 6
	case numberedMarkerRe.MatchString(firstLine):
		return 3
	case timestampMarkerRe.MatchString(firstLine):
		return 2
	case bulletMarkerRe.MatchString(firstLine):
		return 2
	default:
		return 0
	}
}

func collapseBlankRuns(text string) string {
	return blankRunRe.ReplaceAllString(text, "\n\n")
}

// Format is a supported content style for FormatContent.
type Format string

const (
	FormatPlain           Format = "plain"
	FormatBullet          Format = "bullet"
	FormatTask            Format = "task"
	FormatNumbered        Format = "numbered"
	FormatTimestampBullet Format = "timestamp-bullet"
)

// FormatContent renders text in the given style. It is idempotent: if text
// already starts with the target marker, it is returned unchanged (nested
// list structure, if any, is preserved as-is).
func FormatContent(text string, format Format, now func() (hour, minute int)) string {
	switch format {
	case FormatBullet:
		if bulletMarkerRe.MatchString(text) {
			return text
		}
		return "- " + text
	case FormatTask:
		if emptyTaskRe.MatchString(text) || taskMarkerRe.MatchString(text) {
			return text
		}
		return "- [ ] " + text
	case FormatNumbered:
		if numberedMarkerRe.MatchString(text) {
			return text
		}
		return "1. " + text
	case FormatTimestampBullet:
		if timestampMarkerRe.MatchString(text) {
			return text
		}
		h, m := now()
		return fmt.Sprintf("- **%02d:%02d** %s", h, m, text)
	default:
		return text
	}
}
