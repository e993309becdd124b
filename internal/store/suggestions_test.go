package store

import "testing"

func TestEntityJourneyAndScoreTimeline(t *testing.T) {
	db := openTestDB(t)
	ev1 := SuggestionEvent{TimestampMs: 1000, EntityName: "MCP", FinalScore: 12, Threshold: 8, Passed: true, Breakdown: map[string]float64{"exact_match": 10}, Strictness: "balanced"}
	ev2 := SuggestionEvent{TimestampMs: 2000, EntityName: "MCP", FinalScore: 4, Threshold: 8, Passed: false, Breakdown: map[string]float64{"exact_match": 4}, Strictness: "balanced"}
	if err := db.RecordSuggestionEvent(ev1); err != nil {
		t.Fatalf("RecordSuggestionEvent: %v", err)
	}
	if err := db.RecordSuggestionEvent(ev2); err != nil {
		t.Fatalf("RecordSuggestionEvent: %v", err)
	}

	journey, err := db.EntityJourney("MCP")
	if err != nil {
		t.Fatalf("EntityJourney: %v", err)
	}
	if len(journey) != 2 || !journey[0].Passed || journey[1].Passed {
		t.Fatalf("unexpected journey: %+v", journey)
	}

	timeline, err := db.ScoreTimeline("MCP", 1500, 2500)
	if err != nil {
		t.Fatalf("ScoreTimeline: %v", err)
	}
	if len(timeline) != 1 || timeline[0].TimestampMs != 2000 {
		t.Fatalf("expected single event at 2000, got %+v", timeline)
	}
}

func TestLayerContributionTimeseriesBucketsAndAverages(t *testing.T) {
	db := openTestDB(t)
	events := []SuggestionEvent{
		{TimestampMs: 0, EntityName: "MCP", Breakdown: map[string]float64{"exact_match": 10}, Strictness: "balanced"},
		{TimestampMs: 500, EntityName: "Kubernetes", Breakdown: map[string]float64{"exact_match": 20}, Strictness: "balanced"},
		{TimestampMs: 1500, EntityName: "MCP", Breakdown: map[string]float64{"exact_match": 6}, Strictness: "balanced"},
	}
	for _, ev := range events {
		if err := db.RecordSuggestionEvent(ev); err != nil {
			t.Fatalf("RecordSuggestionEvent: %v", err)
		}
	}

	buckets, err := db.LayerContributionTimeseries(1000)
	if err != nil {
		t.Fatalf("LayerContributionTimeseries: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(buckets), buckets)
	}
	if buckets[0].BucketStartMs != 0 || buckets[0].AvgByLayer["exact_match"] != 15 {
		t.Fatalf("expected first bucket avg 15, got %+v", buckets[0])
	}
	if buckets[1].BucketStartMs != 1000 || buckets[1].AvgByLayer["exact_match"] != 6 {
		t.Fatalf("expected second bucket avg 6, got %+v", buckets[1])
	}
}

func TestLayerContributionTimeseriesRejectsNonPositiveBucket(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LayerContributionTimeseries(0); err == nil {
		t.Fatalf("expected error for zero bucket width")
	}
}
