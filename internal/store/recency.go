package store

import "time"

// RecencyRecord mirrors the EntityRecency data model entry.
type RecencyRecord struct {
	NameLower             string
	LastMentionEpochMs    int64
	ScanFinishedAtEpochMs int64
}

// FreshnessWindow is the staleness window under which a cached recency scan
// is considered fresh (spec §4.3).
const FreshnessWindow = time.Hour

// UpsertRecency records the last-mention time for an entity, taking the max
// with any existing value, and stamps the scan's finish time.
func (db *DB) UpsertRecency(nameLower string, lastMentionEpochMs, scanFinishedAtEpochMs int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.conn.Exec(`
		INSERT INTO entity_recency (name_lower, last_mention_epoch_ms, scan_finished_at_epoch_ms)
		VALUES (?, ?, ?)
		ON CONFLICT(name_lower) DO UPDATE SET
			last_mention_epoch_ms = MAX(entity_recency.last_mention_epoch_ms, excluded.last_mention_epoch_ms),
			scan_finished_at_epoch_ms = excluded.scan_finished_at_epoch_ms
	`, nameLower, lastMentionEpochMs, scanFinishedAtEpochMs)
	return err
}

// GetRecency returns the recency record for an entity, if any.
func (db *DB) GetRecency(nameLower string) (RecencyRecord, bool, error) {
	var r RecencyRecord
	r.NameLower = nameLower
	err := db.conn.QueryRow(
		`SELECT last_mention_epoch_ms, scan_finished_at_epoch_ms FROM entity_recency WHERE name_lower = ?`,
		nameLower,
	).Scan(&r.LastMentionEpochMs, &r.ScanFinishedAtEpochMs)
	if err != nil {
		return RecencyRecord{}, false, nil
	}
	return r, true, nil
}

// AllRecency returns every recency record, keyed by name_lower.
func (db *DB) AllRecency() (map[string]RecencyRecord, error) {
	rows, err := db.conn.Query(`SELECT name_lower, last_mention_epoch_ms, scan_finished_at_epoch_ms FROM entity_recency`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]RecencyRecord)
	for rows.Next() {
		var r RecencyRecord
		if err := rows.Scan(&r.NameLower, &r.LastMentionEpochMs, &r.ScanFinishedAtEpochMs); err != nil {
			return nil, err
		}
		out[r.NameLower] = r
	}
	return out, rows.Err()
}

// IsFresh reports whether the most recent scan finished within the
// freshness window relative to nowMs.
func (r RecencyRecord) IsFresh(nowMs int64) bool {
	return nowMs-r.ScanFinishedAtEpochMs < FreshnessWindow.Milliseconds()
}
