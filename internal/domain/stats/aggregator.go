package stats

import (
	"time"

	mstats "github.com/montanaflynn/stats"

	"verdant/internal/domain/record"
)

// Snapshot is the derived summary over historical prediction records.
// It is recomputed on demand and never the source of truth.
type Snapshot struct {
	TotalCount        int            `json:"total_count"`
	Distribution      map[string]int `json:"distribution"`
	AverageConfidence float64        `json:"average_confidence"`
	RecentCount       int            `json:"recent_count"`
	CropDistribution  map[string]int `json:"crop_distribution"`
}

// Aggregate folds a record sequence into a snapshot. It is a pure
// function of its arguments: same records and same now produce
// bit-identical output, and the input is never mutated. An empty
// sequence yields a zeroed snapshot, never an error.
func Aggregate(records []record.HistoricalRecord, now time.Time, window time.Duration) Snapshot {
	snapshot := Snapshot{
		Distribution:     make(map[string]int),
		CropDistribution: make(map[string]int),
	}

	if len(records) == 0 {
		return snapshot
	}

	from := now.Add(-window)
	confidences := make([]float64, 0, len(records))

	for _, r := range records {
		snapshot.Distribution[r.PredictedDisease]++
		snapshot.CropDistribution[r.CropType]++
		confidences = append(confidences, r.Confidence)

		// Window bounds are inclusive on both ends.
		if !r.CreatedAt.Before(from) && !r.CreatedAt.After(now) {
			snapshot.RecentCount++
		}
	}

	snapshot.TotalCount = len(records)

	mean, err := mstats.Mean(confidences)
	if err == nil {
		snapshot.AverageConfidence = mean
	}

	return snapshot
}
