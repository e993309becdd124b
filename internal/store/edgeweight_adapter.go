package store

import "github.com/flywheel-dev/flywheel/internal/edgeweight"

// EdgeWeightStore adapts *DB to edgeweight.Store, narrowing NoteLink rows
// down to the (note_path, target) pairs the engine recomputes weights for.
type EdgeWeightStore struct {
	*DB
}

// AllNoteLinks implements edgeweight.Store.
func (s EdgeWeightStore) AllNoteLinks() ([]edgeweight.Link, error) {
	links, err := s.DB.AllNoteLinks()
	if err != nil {
		return nil, err
	}
	out := make([]edgeweight.Link, len(links))
	for i, l := range links {
		out[i] = edgeweight.Link{NotePath: l.NotePath, Target: l.Target}
	}
	return out, nil
}
