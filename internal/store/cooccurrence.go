package store

// CoOccurrence is the in-memory view of the data model's CoOccurrence
// entity: symmetric pairwise counts plus per-entity document frequency.
type CoOccurrence struct {
	Associations      map[string]map[string]int
	DocumentFrequency map[string]int
	TotalNotesScanned int
	MinCountThreshold int
	GeneratedAt       int64
}

// ReplaceCoOccurrence clears and rewrites the co-occurrence tables in a
// single transaction — the builder always recomputes from scratch.
func (db *DB) ReplaceCoOccurrence(c CoOccurrence) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cooccurrence_associations`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cooccurrence_document_frequency`); err != nil {
		return err
	}

	for a, inner := range c.Associations {
		for b, count := range inner {
			if a >= b {
				continue // store each unordered pair once, canonical order a < b
			}
			if _, err := tx.Exec(
				`INSERT INTO cooccurrence_associations (name_lower_a, name_lower_b, count) VALUES (?, ?, ?)`,
				a, b, count,
			); err != nil {
				return err
			}
		}
	}
	for name, count := range c.DocumentFrequency {
		if _, err := tx.Exec(
			`INSERT INTO cooccurrence_document_frequency (name_lower, count) VALUES (?, ?)`,
			name, count,
		); err != nil {
			return err
		}
	}

	meta := map[string]string{
		"total_notes_scanned": itoa(c.TotalNotesScanned),
		"min_count_threshold": itoa(c.MinCountThreshold),
		"generated_at":        itoa64(c.GeneratedAt),
	}
	for k, v := range meta {
		if _, err := tx.Exec(
			`INSERT INTO cooccurrence_meta (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadCoOccurrence reconstructs the CoOccurrence view from the store. Both
// directions of every stored pair are populated in the returned map so
// callers can look up by either key.
func (db *DB) LoadCoOccurrence() (CoOccurrence, error) {
	c := CoOccurrence{
		Associations:      make(map[string]map[string]int),
		DocumentFrequency: make(map[string]int),
	}

	rows, err := db.conn.Query(`SELECT name_lower_a, name_lower_b, count FROM cooccurrence_associations`)
	if err != nil {
		return CoOccurrence{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a, b string
		var count int
		if err := rows.Scan(&a, &b, &count); err != nil {
			return CoOccurrence{}, err
		}
		addAssociation(c.Associations, a, b, count)
		addAssociation(c.Associations, b, a, count)
	}
	if err := rows.Err(); err != nil {
		return CoOccurrence{}, err
	}

	dfRows, err := db.conn.Query(`SELECT name_lower, count FROM cooccurrence_document_frequency`)
	if err != nil {
		return CoOccurrence{}, err
	}
	defer dfRows.Close()
	for dfRows.Next() {
		var name string
		var count int
		if err := dfRows.Scan(&name, &count); err != nil {
			return CoOccurrence{}, err
		}
		c.DocumentFrequency[name] = count
	}

	if v, ok := db.getCoocMeta("total_notes_scanned"); ok {
		c.TotalNotesScanned = atoi(v)
	}
	if v, ok := db.getCoocMeta("min_count_threshold"); ok {
		c.MinCountThreshold = atoi(v)
	}
	if v, ok := db.getCoocMeta("generated_at"); ok {
		c.GeneratedAt = atoi64(v)
	}
	return c, nil
}

func (db *DB) getCoocMeta(key string) (string, bool) {
	var v string
	if err := db.conn.QueryRow(`SELECT value FROM cooccurrence_meta WHERE key = ?`, key).Scan(&v); err != nil {
		return "", false
	}
	return v, true
}

func addAssociation(m map[string]map[string]int, a, b string, count int) {
	inner, ok := m[a]
	if !ok {
		inner = make(map[string]int)
		m[a] = inner
	}
	inner[b] = count
}
