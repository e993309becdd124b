package store

import "encoding/json"

// GraphSnapshot mirrors the data model's point-in-time graph summary.
type GraphSnapshot struct {
	ID                 int64
	TakenAt            int64
	AvgDegree          float64
	MaxDegree          int
	ClusterCount       int
	LargestClusterSize int
	TopHubs            []string
}

// RecordSnapshot persists a computed GraphSnapshot.
func (db *DB) RecordSnapshot(s GraphSnapshot) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	hubs, err := json.Marshal(s.TopHubs)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO graph_snapshots (taken_at, avg_degree, max_degree, cluster_count, largest_cluster_size, top_hubs)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.TakenAt, s.AvgDegree, s.MaxDegree, s.ClusterCount, s.LargestClusterSize, string(hubs))
	return err
}

// LatestSnapshot returns the most recently taken GraphSnapshot.
func (db *DB) LatestSnapshot() (GraphSnapshot, bool, error) {
	var s GraphSnapshot
	var hubs string
	err := db.conn.QueryRow(`
		SELECT id, taken_at, avg_degree, max_degree, cluster_count, largest_cluster_size, top_hubs
		FROM graph_snapshots ORDER BY taken_at DESC LIMIT 1
	`).Scan(&s.ID, &s.TakenAt, &s.AvgDegree, &s.MaxDegree, &s.ClusterCount, &s.LargestClusterSize, &hubs)
	if err != nil {
		return GraphSnapshot{}, false, nil
	}
	_ = json.Unmarshal([]byte(hubs), &s.TopHubs)
	return s, true, nil
}

// SnapshotDiff returns the previous and latest snapshots for the
// observability snapshot-diff query (most recent two).
func (db *DB) SnapshotDiff() (prev, latest GraphSnapshot, ok bool, err error) {
	rows, err := db.conn.Query(`
		SELECT id, taken_at, avg_degree, max_degree, cluster_count, largest_cluster_size, top_hubs
		FROM graph_snapshots ORDER BY taken_at DESC LIMIT 2
	`)
	if err != nil {
		return GraphSnapshot{}, GraphSnapshot{}, false, err
	}
	defer rows.Close()

	var snaps []GraphSnapshot
	for rows.Next() {
		var s GraphSnapshot
		var hubs string
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.AvgDegree, &s.MaxDegree, &s.ClusterCount, &s.LargestClusterSize, &hubs); err != nil {
			return GraphSnapshot{}, GraphSnapshot{}, false, err
		}
		_ = json.Unmarshal([]byte(hubs), &s.TopHubs)
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return GraphSnapshot{}, GraphSnapshot{}, false, err
	}
	if len(snaps) < 2 {
		return GraphSnapshot{}, GraphSnapshot{}, false, nil
	}
	return snaps[1], snaps[0], true, nil
}
