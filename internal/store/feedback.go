package store

// WikilinkApplication tracks an applied wikilink so later removals can be
// detected (feeds NoteLinkHistory resets).
type WikilinkApplication struct {
	ID          int64
	NotePath    string
	Target      string
	AppliedAtMs int64
	RemovedAtMs int64 // 0 means not removed
}

// RecordApplication logs a newly-applied wikilink.
func (db *DB) RecordApplication(notePath, target string, appliedAtMs int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(
		`INSERT INTO wikilink_applications (note_path, target, applied_at_ms) VALUES (?, ?, ?)`,
		notePath, target, appliedAtMs,
	)
	return err
}

// MarkApplicationsRemoved flags applications for (notePath, target) that
// have no removal timestamp yet, used when a subsequent mutation is
// observed to have dropped the link.
func (db *DB) MarkApplicationsRemoved(notePath, target string, removedAtMs int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(
		`UPDATE wikilink_applications SET removed_at_ms = ? WHERE note_path = ? AND target = ? AND removed_at_ms IS NULL`,
		removedAtMs, notePath, target,
	)
	return err
}

// RecordFeedback stores an explicit or implicit feedback signal.
func (db *DB) RecordFeedback(entityName, contextTag string, positive bool, weight float64, recordedAtMs int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(
		`INSERT INTO wikilink_feedback (entity_name, context_tag, positive, weight, recorded_at_ms) VALUES (?, ?, ?, ?, ?)`,
		entityName, contextTag, positive, weight, recordedAtMs,
	)
	return err
}

// FeedbackCounts returns the weighted positive and negative totals for an
// entity in a context, consumed by the Scorer's feedback_boost layer.
func (db *DB) FeedbackCounts(entityName, contextTag string) (positive, negative float64, err error) {
	rows, err := db.conn.Query(
		`SELECT positive, weight FROM wikilink_feedback WHERE entity_name = ? AND context_tag = ?`,
		entityName, contextTag,
	)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var isPositive bool
		var weight float64
		if err := rows.Scan(&isPositive, &weight); err != nil {
			return 0, 0, err
		}
		if isPositive {
			positive += weight
		} else {
			negative += weight
		}
	}
	return positive, negative, rows.Err()
}

// IsSuppressed reports whether an entity is suppressed for a context tag.
func (db *DB) IsSuppressed(entityName, contextTag string) (bool, error) {
	var n int
	err := db.conn.QueryRow(
		`SELECT 1 FROM wikilink_suppressions WHERE entity_name = ? AND context_tag = ?`,
		entityName, contextTag,
	).Scan(&n)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// Suppress records a suppression after repeated negative signal.
func (db *DB) Suppress(entityName, contextTag string, suppressedAtMs int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(`
		INSERT INTO wikilink_suppressions (entity_name, context_tag, suppressed_at_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(entity_name, context_tag) DO UPDATE SET suppressed_at_ms = excluded.suppressed_at_ms
	`, entityName, contextTag, suppressedAtMs)
	return err
}
