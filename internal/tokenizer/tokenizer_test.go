package tokenizer

import "testing"

func TestTokenizeStripsFrontMatterAndCode(t *testing.T) {
	text := "---\ntitle: Foo\n---\n\nSome `code here` and\n```go\nfunc weird() {}\n```\nMore words about testing.\n"
	res := Tokenize(text)
	if res.TokenSet["title"] {
		t.Error("front-matter key leaked into tokens")
	}
	if res.TokenSet["weird"] || res.TokenSet["func"] {
		t.Error("fenced code leaked into tokens")
	}
	if !res.TokenSet["code"] {
		t.Error("expected inline code content to be tokenized")
	}
}

func TestTokenizeDropsStopwordsAndShortTokens(t *testing.T) {
	res := Tokenize("We created a file today and it was good.")
	for _, w := range []string{"created", "today", "file", "good", "and"} {
		if res.TokenSet[w] {
			t.Errorf("expected %q to be filtered as stopword", w)
		}
	}
}

func TestTokenizeWikilinkAnchor(t *testing.T) {
	res := Tokenize("See [[Model Context Protocol|MCP]] for details.")
	if !res.TokenSet["model"] || !res.TokenSet["context"] || !res.TokenSet["protocol"] {
		t.Errorf("expected wikilink target words to be tokenized, got %v", res.Tokens)
	}
}

func TestExtractLinkedTargets(t *testing.T) {
	targets := ExtractLinkedTargets("Using [[MCP|model context protocol]] with [[API]] calls")
	if !targets["mcp"] || !targets["api"] {
		t.Errorf("unexpected targets: %v", targets)
	}
}

func TestStemBasics(t *testing.T) {
	cases := map[string]string{
		"caresses":   "caress",
		"ponies":     "poni",
		"ties":       "ti",
		"agreed":      "agre",
		"plastered":   "plaster",
		"motoring":    "motor",
		"relational":  "relat",
		"conditional": "condit",
		"rational":    "ration",
	}
	for in, want := range cases {
		if got := Stem(in); got != want {
			t.Errorf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSharesRoot(t *testing.T) {
	if !SharesRoot("connect", "connecting") {
		t.Error("expected connect/connecting to share a root")
	}
	if SharesRoot("cat", "car") {
		t.Error("did not expect cat/car to share a root (too short)")
	}
}
