package store

import "encoding/json"

// ToolInvocation mirrors the data model entry used for co-session signal.
type ToolInvocation struct {
	ID          int64
	ToolName    string
	SessionID   string
	NotePaths   []string
	TimestampMs int64
	DurationMs  int64
	Success     bool
}

// RecordInvocation appends a tool-invocation log row.
func (db *DB) RecordInvocation(inv ToolInvocation) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	paths, err := json.Marshal(inv.NotePaths)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO tool_invocations (tool_name, session_id, note_paths, timestamp_ms, duration_ms, success)
		VALUES (?, ?, ?, ?, ?, ?)
	`, inv.ToolName, inv.SessionID, string(paths), inv.TimestampMs, inv.DurationMs, inv.Success)
	return err
}

// CoSessionCount counts invocations whose note_paths include both notePath
// and any of the given target paths — the co-session signal consumed by
// EdgeWeightEngine.
func (db *DB) CoSessionCount(notePath string, targetPaths []string) (int, error) {
	if len(targetPaths) == 0 {
		return 0, nil
	}
	rows, err := db.conn.Query(`SELECT note_paths FROM tool_invocations`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	targetSet := make(map[string]bool, len(targetPaths))
	for _, p := range targetPaths {
		targetSet[p] = true
	}

	count := 0
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, err
		}
		var paths []string
		if err := json.Unmarshal([]byte(raw), &paths); err != nil {
			continue
		}
		hasNote, hasTarget := false, false
		for _, p := range paths {
			if p == notePath {
				hasNote = true
			}
			if targetSet[p] {
				hasTarget = true
			}
		}
		if hasNote && hasTarget {
			count++
		}
	}
	return count, rows.Err()
}

// SourceAccessCount counts invocations whose note_paths include notePath.
func (db *DB) SourceAccessCount(notePath string) (int, error) {
	rows, err := db.conn.Query(`SELECT note_paths FROM tool_invocations`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, err
		}
		var paths []string
		if err := json.Unmarshal([]byte(raw), &paths); err != nil {
			continue
		}
		for _, p := range paths {
			if p == notePath {
				count++
				break
			}
		}
	}
	return count, rows.Err()
}
