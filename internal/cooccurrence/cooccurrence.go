// Package cooccurrence builds the CoOccurrence association table from
// wikilink co-mentions and computes NPMI (normalized pointwise mutual
// information) between entity pairs for the Scorer's co-occurrence layer.
package cooccurrence

import "math"

// CoOccurrenceData mirrors store.CoOccurrence, kept as a local type so this
// package does not need to import internal/store (it is a pure builder
// over caller-supplied note data); callers convert field-for-field when
// persisting.
type CoOccurrenceData struct {
	Associations      map[string]map[string]int
	DocumentFrequency map[string]int
	TotalNotesScanned int
	MinCountThreshold int
	GeneratedAt       int64
}

// Note is a single note's alias-resolved wikilink target set, the input to
// Build.
type Note struct {
	Targets map[string]bool // name_lower set, already alias-resolved
}

// Build computes associations and document frequency over a set of notes:
// every unordered pair of targets in a note increments associations, and
// every target increments its document frequency once per note.
func Build(notes []Note, minCountThreshold int, generatedAt int64) CoOccurrenceData {
	assoc := make(map[string]map[string]int)
	df := make(map[string]int)

	for _, n := range notes {
		targets := make([]string, 0, len(n.Targets))
		for t := range n.Targets {
			targets = append(targets, t)
		}
		for _, t := range targets {
			df[t]++
		}
		for i := 0; i < len(targets); i++ {
			for j := i + 1; j < len(targets); j++ {
				a, b := targets[i], targets[j]
				if a > b {
					a, b = b, a
				}
				incr(assoc, a, b)
				incr(assoc, b, a)
			}
		}
	}

	return CoOccurrenceData{
		Associations:      assoc,
		DocumentFrequency: df,
		TotalNotesScanned: len(notes),
		MinCountThreshold: minCountThreshold,
		GeneratedAt:       generatedAt,
	}
}

func incr(m map[string]map[string]int, a, b string) {
	inner, ok := m[a]
	if !ok {
		inner = make(map[string]int)
		m[a] = inner
	}
	inner[b]++
}

// DefaultWeight is the multiplier the Scorer applies to NPMI in its
// cooccurrence_boost layer.
const DefaultWeight = 2.0

// NPMI computes normalized pointwise mutual information for a pair,
// clamped to [0, 1]. Returns 0 when any input is zero. Perfect
// co-occurrence (the pair appears together in every scanned note,
// i.e. p_xy == 1) is the maximum possible association
// and returns 1 rather than the division result -log2(p_xy) would
// otherwise force a 0/0 through.
func NPMI(coocCount, dfX, dfY, totalNotes int) float64 {
	if coocCount == 0 || dfX == 0 || dfY == 0 || totalNotes == 0 {
		return 0
	}
	pXY := float64(coocCount) / float64(totalNotes)
	pX := float64(dfX) / float64(totalNotes)
	pY := float64(dfY) / float64(totalNotes)

	if pXY >= 1 {
		return 1
	}

	negLogPXY := -math.Log2(pXY)
	pmi := math.Log2(pXY / (pX * pY))
	npmi := pmi / negLogPXY
	if npmi < 0 {
		npmi = 0
	}
	if npmi > 1 {
		npmi = 1
	}
	return npmi
}
