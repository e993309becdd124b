// Package frontmatter reads and writes a note's YAML front-matter and body,
// preserving value types, line-ending style, BOM presence, and detecting
// duplicate top-level keys.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// LineEnding is the style a note file uses.
type LineEnding string

const (
	LF   LineEnding = "LF"
	CRLF LineEnding = "CRLF"
)

// Note is the structural read of a note file.
type Note struct {
	FrontMatter map[string]any
	Content     string
	LineEnding  LineEnding
	BOM         bool
}

const bomPrefix = "﻿"

// Read parses raw note bytes into front-matter, body, and the file's
// formatting characteristics. Front-matter is the YAML between the first
// two "---" delimiter lines; its absence yields an empty map. Duplicate
// top-level keys are an error. Invalid YAML errors carry a line hint.
func Read(raw []byte) (Note, error) {
	text := string(raw)

	bom := strings.HasPrefix(text, bomPrefix)
	if bom {
		text = strings.TrimPrefix(text, bomPrefix)
	}

	crlf := detectCRLF(text)
	lineEnding := LF
	if crlf {
		lineEnding = CRLF
	}

	var node yaml.Node
	body, err := frontmatter.Parse(strings.NewReader(text), &node)
	if err != nil {
		return Note{}, fmt.Errorf("parse front matter: %w", err)
	}

	fm := map[string]any{}
	if node.Kind != 0 {
		if err := checkDuplicateKeys(&node); err != nil {
			return Note{}, err
		}
		if err := node.Decode(&fm); err != nil {
			return Note{}, fmt.Errorf("decode front matter (line %d): %w", node.Line, err)
		}
	}

	return Note{
		FrontMatter: fm,
		Content:     normalizeLineEndings(string(body), LF),
		LineEnding:  lineEnding,
		BOM:         bom,
	}, nil
}

func detectCRLF(text string) bool {
	i := strings.IndexByte(text, '\n')
	return i > 0 && text[i-1] == '\r'
}

// checkDuplicateKeys walks the front-matter document's top-level mapping
// node and errors on any key appearing more than once.
func checkDuplicateKeys(doc *yaml.Node) error {
	content := doc.Content
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		content = doc.Content[0].Content
	} else if doc.Kind == yaml.MappingNode {
		content = doc.Content
	} else {
		return nil
	}

	seen := make(map[string]bool)
	for i := 0; i+1 < len(content); i += 2 {
		key := content[i].Value
		if seen[key] {
			return fmt.Errorf("duplicate front matter key %q at line %d", key, content[i].Line)
		}
		seen[key] = true
	}
	return nil
}

// Write serializes frontmatter and content, normalizes to lineEnding,
// restores the BOM if bom is true, and returns the exact bytes to persist.
// The result always ends in exactly one trailing line ending.
func Write(fm map[string]any, content string, lineEnding LineEnding, bom bool) ([]byte, error) {
	var buf bytes.Buffer

	if len(fm) > 0 {
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(fm); err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
		enc.Close()
		buf.WriteString("---\n")
	}

	buf.WriteString(strings.TrimRight(content, "\n"))
	buf.WriteString("\n")

	out := buf.String()
	if lineEnding == CRLF {
		out = toCRLF(out)
	}
	if bom {
		out = bomPrefix + out
	}
	return []byte(out), nil
}

func normalizeLineEndings(text string, target LineEnding) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	if target == CRLF {
		return toCRLF(normalized)
	}
	return normalized
}

func toCRLF(text string) string {
	lf := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(lf, "\n", "\r\n")
}
