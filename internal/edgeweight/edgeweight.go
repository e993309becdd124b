// Package edgeweight recomputes note_links weights from edit-survival,
// co-session, and source-access signals.
package edgeweight

import "time"

// MaxWeight caps the recomputed weight per the data model's edge formula.
const MaxWeight = 10

// Link is a single edge the engine recomputes a weight for.
type Link struct {
	NotePath string
	Target   string
}

// Store is the StateStore read/write path the engine needs. The StateStore
// satisfies this via a thin adapter (store.EdgeWeightStore) that converts its
// richer store.NoteLink rows down to Link.
type Store interface {
	AllNoteLinks() ([]Link, error)
	EditsSurvived(notePath, target string) (int, error)
	CoSessionCount(notePath string, targetPaths []string) (int, error)
	SourceAccessCount(notePath string) (int, error)
	SetNoteLinkWeight(notePath, target string, weight float64, updatedAt int64) error
	PathsForTarget(target string) ([]string, error)
}

// Result is what Recompute returns.
type Result struct {
	EdgesUpdated int
	DurationMs   int64
}

// Weight implements the capped formula from the data model:
// 1 + min(editsSurvived*0.5, 3) + min(coSessionCount*0.5, 3) + min(sourceAccessCount*0.2, 2),
// capped at MaxWeight.
func Weight(editsSurvived, coSessionCount, sourceAccessCount int) float64 {
	w := 1.0
	w += capped(float64(editsSurvived)*0.5, 3)
	w += capped(float64(coSessionCount)*0.5, 3)
	w += capped(float64(sourceAccessCount)*0.2, 2)
	if w > MaxWeight {
		w = MaxWeight
	}
	return w
}

func capped(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

// Recompute walks every stored edge and writes a fresh weight in place.
func Recompute(s Store, now func() time.Time) (Result, error) {
	start := now()
	links, err := s.AllNoteLinks()
	if err != nil {
		return Result{}, err
	}

	updatedAt := start.UnixMilli()
	for _, l := range links {
		edits, err := s.EditsSurvived(l.NotePath, l.Target)
		if err != nil {
			return Result{}, err
		}
		targetPaths, err := s.PathsForTarget(l.Target)
		if err != nil {
			return Result{}, err
		}
		coSession, err := s.CoSessionCount(l.NotePath, targetPaths)
		if err != nil {
			return Result{}, err
		}
		sourceAccess, err := s.SourceAccessCount(l.NotePath)
		if err != nil {
			return Result{}, err
		}

		weight := Weight(edits, coSession, sourceAccess)
		if err := s.SetNoteLinkWeight(l.NotePath, l.Target, weight, updatedAt); err != nil {
			return Result{}, err
		}
	}

	return Result{
		EdgesUpdated: len(links),
		DurationMs:   now().Sub(start).Milliseconds(),
	}, nil
}
