package store

import (
	"encoding/json"
	"fmt"
	"sort"
)

// SuggestionEvent mirrors the data model's immutable suggestion log entry.
type SuggestionEvent struct {
	ID          int64
	TimestampMs int64
	NotePath    string // empty means null
	EntityName  string
	FinalScore  float64
	Threshold   float64
	Passed      bool
	Breakdown   map[string]float64
	Strictness  string
	ContextTag  string
}

// RecordSuggestionEvent persists a ranked candidate, passed or not.
func (db *DB) RecordSuggestionEvent(ev SuggestionEvent) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	breakdown, err := json.Marshal(ev.Breakdown)
	if err != nil {
		return err
	}
	var notePath any
	if ev.NotePath != "" {
		notePath = ev.NotePath
	}
	_, err = db.conn.Exec(`
		INSERT INTO suggestion_events
			(timestamp_ms, note_path, entity_name, final_score, threshold, passed, breakdown, strictness, context_tag)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.TimestampMs, notePath, ev.EntityName, ev.FinalScore, ev.Threshold, ev.Passed, string(breakdown), ev.Strictness, ev.ContextTag)
	return err
}

// EntityJourney returns every suggestion event for an entity, oldest first,
// for the journey observability query.
func (db *DB) EntityJourney(entityName string) ([]SuggestionEvent, error) {
	rows, err := db.conn.Query(`
		SELECT id, timestamp_ms, COALESCE(note_path, ''), entity_name, final_score, threshold, passed, breakdown, strictness, context_tag
		FROM suggestion_events WHERE entity_name = ? ORDER BY timestamp_ms ASC
	`, entityName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuggestionEvents(rows)
}

// ScoreTimeline returns every suggestion event for an entity within
// [sinceMs, untilMs], oldest first, for the score-timeline observability
// query.
func (db *DB) ScoreTimeline(entityName string, sinceMs, untilMs int64) ([]SuggestionEvent, error) {
	rows, err := db.conn.Query(`
		SELECT id, timestamp_ms, COALESCE(note_path, ''), entity_name, final_score, threshold, passed, breakdown, strictness, context_tag
		FROM suggestion_events
		WHERE entity_name = ? AND timestamp_ms BETWEEN ? AND ?
		ORDER BY timestamp_ms ASC
	`, entityName, sinceMs, untilMs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuggestionEvents(rows)
}

// LayerContributionBucket is one fixed-width time window of the
// layer-contribution-timeseries observability query: the average value
// each scoring layer contributed across every suggestion event whose
// timestamp falls in the window.
type LayerContributionBucket struct {
	BucketStartMs int64
	AvgByLayer    map[string]float64
}

// LayerContributionTimeseries buckets every recorded suggestion event by a
// bucketMs-wide time window and averages each layer's breakdown value
// within the window, oldest bucket first. It answers "which layers are
// driving scores, and how has that shifted over time" without re-scoring
// anything — a pure read over suggestion_events.breakdown.
func (db *DB) LayerContributionTimeseries(bucketMs int64) ([]LayerContributionBucket, error) {
	if bucketMs <= 0 {
		return nil, fmt.Errorf("bucket width must be positive, got %d", bucketMs)
	}

	rows, err := db.conn.Query(`SELECT timestamp_ms, breakdown FROM suggestion_events ORDER BY timestamp_ms ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type accum struct {
		sums   map[string]float64
		counts map[string]int
	}
	buckets := map[int64]*accum{}
	var order []int64

	for rows.Next() {
		var ts int64
		var breakdown string
		if err := rows.Scan(&ts, &breakdown); err != nil {
			return nil, err
		}
		var layers map[string]float64
		if err := json.Unmarshal([]byte(breakdown), &layers); err != nil {
			continue
		}
		key := (ts / bucketMs) * bucketMs
		a, ok := buckets[key]
		if !ok {
			a = &accum{sums: map[string]float64{}, counts: map[string]int{}}
			buckets[key] = a
			order = append(order, key)
		}
		for layer, v := range layers {
			a.sums[layer] += v
			a.counts[layer]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]LayerContributionBucket, 0, len(order))
	for _, key := range order {
		a := buckets[key]
		avg := make(map[string]float64, len(a.sums))
		for layer, sum := range a.sums {
			avg[layer] = sum / float64(a.counts[layer])
		}
		out = append(out, LayerContributionBucket{BucketStartMs: key, AvgByLayer: avg})
	}
	return out, nil
}

func scanSuggestionEvents(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]SuggestionEvent, error) {
	var out []SuggestionEvent
	for rows.Next() {
		var ev SuggestionEvent
		var breakdown string
		if err := rows.Scan(&ev.ID, &ev.TimestampMs, &ev.NotePath, &ev.EntityName, &ev.FinalScore, &ev.Threshold, &ev.Passed, &breakdown, &ev.Strictness, &ev.ContextTag); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(breakdown), &ev.Breakdown)
		out = append(out, ev)
	}
	return out, rows.Err()
}
