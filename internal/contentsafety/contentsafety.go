// Package contentsafety is a best-effort scan for prompt-injection and
// secret-leak patterns in generated text — suggestion suffixes and commit
// messages assembled from vault content before they are written or
// committed. It never blocks; a flagged string is logged and passed
// through unchanged, matching the orchestrator's best-effort recording
// paths (mutation hints, suggestion events).
package contentsafety

import (
	"context"
	"log"

	"github.com/mdombrov-33/go-promptguard/detector"
)

// scanner is the package-level detector instance, initialized once with
// every pattern/statistical detector enabled and no LLM judge — vault
// content is scanned at commit/suggest time, so sub-millisecond latency
// matters more than judge-grade recall.
var scanner = detector.New(
	detector.WithThreshold(0.6),
	detector.WithAllDetectors(),
	detector.WithMaxInputLength(2000),
)

// Check scans text and logs a warning if it looks unsafe (injected
// instructions, leaked secrets). It never returns an error and never
// alters text — callers always proceed with the original string.
func Check(label, text string) {
	if text == "" {
		return
	}
	result := scanner.Detect(context.Background(), text)
	if !result.Safe {
		log.Printf("contentsafety: %s flagged by scanner, proceeding anyway", label)
	}
}
