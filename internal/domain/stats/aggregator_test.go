package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"verdant/internal/domain/record"
)

const week = 168 * time.Hour

func rec(crop, disease string, confidence float64, at time.Time) record.HistoricalRecord {
	return record.HistoricalRecord{
		ID:               uuid.New(),
		CropType:         crop,
		PredictedDisease: disease,
		Confidence:       confidence,
		CreatedAt:        at,
	}
}

func TestAggregate_Empty(t *testing.T) {
	snapshot := Aggregate(nil, time.Now(), week)

	assert.Equal(t, 0, snapshot.TotalCount)
	assert.Equal(t, 0, snapshot.RecentCount)
	assert.Zero(t, snapshot.AverageConfidence)
	assert.Empty(t, snapshot.Distribution)
	assert.Empty(t, snapshot.CropDistribution)
	// Maps are initialized, never nil, so consumers can index freely.
	assert.NotNil(t, snapshot.Distribution)
	assert.NotNil(t, snapshot.CropDistribution)
}

func TestAggregate_Distribution(t *testing.T) {
	now := time.Now().UTC()
	records := []record.HistoricalRecord{
		rec("Tomato", "Healthy", 0.9, now.Add(-time.Hour)),
		rec("Corn", "Healthy", 0.8, now.Add(-2*time.Hour)),
		rec("Wheat", "Rust", 0.5, now.Add(-3*time.Hour)),
	}

	snapshot := Aggregate(records, now, week)

	assert.Equal(t, 3, snapshot.TotalCount)
	assert.Equal(t, map[string]int{"Healthy": 2, "Rust": 1}, snapshot.Distribution)
	assert.Equal(t, map[string]int{"Tomato": 1, "Corn": 1, "Wheat": 1}, snapshot.CropDistribution)
	assert.InDelta(t, 0.733, snapshot.AverageConfidence, 1e-3)
	assert.Equal(t, 3, snapshot.RecentCount)
}

func TestAggregate_RecentWindow(t *testing.T) {
	now := time.Now().UTC()
	records := []record.HistoricalRecord{
		rec("Tomato", "Healthy", 0.9, now.Add(-time.Hour)),   // inside
		rec("Tomato", "Healthy", 0.9, now.Add(-200*time.Hour)), // outside
	}

	snapshot := Aggregate(records, now, week)

	// Old records still count toward the totals, only recency differs.
	assert.Equal(t, 2, snapshot.TotalCount)
	assert.Equal(t, 1, snapshot.RecentCount)
}

func TestAggregate_WindowBoundsInclusive(t *testing.T) {
	now := time.Now().UTC()
	records := []record.HistoricalRecord{
		rec("Tomato", "Healthy", 0.9, now),           // exactly now
		rec("Tomato", "Healthy", 0.9, now.Add(-week)), // exactly window edge
	}

	snapshot := Aggregate(records, now, week)
	assert.Equal(t, 2, snapshot.RecentCount)
}

func TestAggregate_FutureRecordsExcludedFromRecent(t *testing.T) {
	now := time.Now().UTC()
	records := []record.HistoricalRecord{
		rec("Tomato", "Healthy", 0.9, now.Add(time.Hour)),
	}

	snapshot := Aggregate(records, now, week)
	assert.Equal(t, 1, snapshot.TotalCount)
	assert.Equal(t, 0, snapshot.RecentCount)
}

func TestAggregate_Pure(t *testing.T) {
	now := time.Now().UTC()
	records := []record.HistoricalRecord{
		rec("Tomato", "Healthy", 0.9, now.Add(-time.Hour)),
		rec("Corn", "Rust", 0.5, now.Add(-2*time.Hour)),
	}

	first := Aggregate(records, now, week)
	second := Aggregate(records, now, week)

	assert.Equal(t, first, second)
	// Input slice is untouched.
	assert.Equal(t, "Tomato", records[0].CropType)
	assert.Equal(t, 0.9, records[0].Confidence)
}
