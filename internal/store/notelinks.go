package store

// NoteLink is the data model's edge: a wikilink from note_path to target
// with a recomputed weight.
type NoteLink struct {
	NotePath        string
	Target          string
	Weight          float64
	WeightUpdatedAt int64
}

// UpsertNoteLink records (or refreshes) an edge, leaving weight untouched
// unless the edge is new — EdgeWeightEngine.Recompute owns weight updates.
func (db *DB) UpsertNoteLink(notePath, target string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(`
		INSERT INTO note_links (note_path, target, weight, weight_updated_at)
		VALUES (?, ?, 1, 0)
		ON CONFLICT(note_path, target) DO NOTHING
	`, notePath, target)
	return err
}

// SetNoteLinkWeight writes a recomputed weight for a single edge.
func (db *DB) SetNoteLinkWeight(notePath, target string, weight float64, updatedAt int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(
		`UPDATE note_links SET weight = ?, weight_updated_at = ? WHERE note_path = ? AND target = ?`,
		weight, updatedAt, notePath, target,
	)
	return err
}

// AllNoteLinks returns every stored edge.
func (db *DB) AllNoteLinks() ([]NoteLink, error) {
	rows, err := db.conn.Query(`SELECT note_path, target, weight, weight_updated_at FROM note_links`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NoteLink
	for rows.Next() {
		var l NoteLink
		if err := rows.Scan(&l.NotePath, &l.Target, &l.Weight, &l.WeightUpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// EditsSurvived returns the note_link_history count for an edge (0 if
// absent).
func (db *DB) EditsSurvived(notePath, target string) (int, error) {
	var n int
	err := db.conn.QueryRow(
		`SELECT edits_survived FROM note_link_history WHERE note_path = ? AND target = ?`,
		notePath, target,
	).Scan(&n)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

// IncrementEditsSurvived bumps the survival counter when a wikilink
// application is observed to have survived a subsequent mutation.
func (db *DB) IncrementEditsSurvived(notePath, target string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(`
		INSERT INTO note_link_history (note_path, target, edits_survived)
		VALUES (?, ?, 1)
		ON CONFLICT(note_path, target) DO UPDATE SET edits_survived = note_link_history.edits_survived + 1
	`, notePath, target)
	return err
}

// ResetEditsSurvived zeroes the survival counter when the link is removed.
func (db *DB) ResetEditsSurvived(notePath, target string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(`
		INSERT INTO note_link_history (note_path, target, edits_survived)
		VALUES (?, ?, 0)
		ON CONFLICT(note_path, target) DO UPDATE SET edits_survived = 0
	`, notePath, target)
	return err
}
