package section

import (
	"strings"
	"testing"
)

func TestExtractHeadingsSkipsFencedCode(t *testing.T) {
	md := "# Title\n\n```\n## Not A Heading\n```\n\n## Real Heading\n"
	got := ExtractHeadings(md)
	if len(got) != 2 {
		t.Fatalf("expected 2 headings, got %d: %+v", len(got), got)
	}
	if got[1].Text != "Real Heading" {
		t.Fatalf("expected second heading 'Real Heading', got %q", got[1].Text)
	}
}

func TestFindSectionCaseInsensitiveExactMatch(t *testing.T) {
	md := "# Notes\n\n## Tasks\nfirst line\nsecond line\n\n## Done\nx\n"
	sec := FindSection(md, "tasks")
	if sec == nil {
		t.Fatalf("expected section to be found")
	}
	if sec.Name != "Tasks" || sec.Level != 2 {
		t.Fatalf("unexpected section: %+v", sec)
	}
	lines := strings.Split(md, "\n")
	// EndLine is inclusive of the last line before the next heading, which
	// here is the blank separator line directly above "## Done".
	if lines[sec.EndLine] != "" {
		t.Fatalf("expected blank end line before next heading, got %q", lines[sec.EndLine])
	}
	if lines[sec.EndLine-1] != "second line" {
		t.Fatalf("expected 'second line' just before end line, got %q", lines[sec.EndLine-1])
	}
}

func TestFindSectionRejectsPartialMatch(t *testing.T) {
	md := "## Tasks Today\ncontent\n"
	if sec := FindSection(md, "Tasks"); sec != nil {
		t.Fatalf("expected no match for partial substring, got %+v", sec)
	}
}

func TestFindSectionAcceptsLeadingHashTokens(t *testing.T) {
	md := "## Tasks\ncontent\n"
	sec := FindSection(md, "## Tasks")
	if sec == nil {
		t.Fatalf("expected section to be found when name includes leading hashes")
	}
}

func TestInsertInSectionReplacesEmptyPlaceholder(t *testing.T) {
	md := "## Tasks\n-\n## Done\n"
	sec := FindSection(md, "Tasks")
	out := InsertInSection(md, *sec, "- [ ] buy milk", Append, InsertOptions{})
	if strings.Contains(out, "## Tasks\n-\n") {
		t.Fatalf("expected placeholder to be replaced, got %q", out)
	}
	if !strings.Contains(out, "- [ ] buy milk") {
		t.Fatalf("expected payload inserted, got %q", out)
	}
}

func TestInsertInSectionReplacesEmptyPlaceholderMultiLineSection(t *testing.T) {
	md := "## Priorities\n1. \n\n## Next\n"
	sec := FindSection(md, "Priorities")
	out := InsertInSection(md, *sec, "1. First priority", Append, InsertOptions{})
	want := "## Priorities\n1. First priority\n\n## Next\n"
	if out != want {
		t.Fatalf("expected placeholder on the section's first content line replaced, got %q want %q", out, want)
	}
}

func TestInsertInSectionAppendOrdering(t *testing.T) {
	md := "## Log\n- first\n## Done\n"
	sec := FindSection(md, "Log")
	out := InsertInSection(md, *sec, "- second", Append, InsertOptions{})
	sec2 := FindSection(out, "Log")
	out2 := InsertInSection(out, *sec2, "- third", Append, InsertOptions{})
	idxFirst := strings.Index(out2, "- first")
	idxSecond := strings.Index(out2, "- second")
	idxThird := strings.Index(out2, "- third")
	if !(idxFirst < idxSecond && idxSecond < idxThird) {
		t.Fatalf("expected appends in order, got %q", out2)
	}
}

func TestInsertInSectionCollapsesBlankRuns(t *testing.T) {
	md := "## Notes\nfirst\n\n\n\nlast\n## Done\n"
	sec := FindSection(md, "Notes")
	out := InsertInSection(md, *sec, "middle", Append, InsertOptions{})
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("expected blank run collapsed, got %q", out)
	}
}

func TestFormatContentIdempotent(t *testing.T) {
	now := func() (int, int) { return 9, 30 }
	cases := []struct {
		text   string
		format Format
	}{
		{"buy milk", FormatBullet},
		{"- buy milk", FormatBullet},
		{"buy milk", FormatTask},
		{"- [ ] buy milk", FormatTask},
		{"buy milk", FormatNumbered},
		{"1. buy milk", FormatNumbered},
		{"buy milk", FormatTimestampBullet},
		{"- **09:30** buy milk", FormatTimestampBullet},
	}
	for _, c := range cases {
		once := FormatContent(c.text, c.format, now)
		twice := FormatContent(once, c.format, now)
		if once != twice {
			t.Errorf("format(%q, %s) not idempotent: once=%q twice=%q", c.text, c.format, once, twice)
		}
	}
}

func TestFormatContentTimestampUsesHostClock(t *testing.T) {
	now := func() (int, int) { return 14, 5 }
	got := FormatContent("standup notes", FormatTimestampBullet, now)
	want := "- **14:05** standup notes"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
