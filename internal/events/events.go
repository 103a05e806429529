package events

import (
	"time"

	"verdant/internal/domain/observation"
)

// PredictionCompletedEvent is emitted after every successful diagnosis.
type PredictionCompletedEvent struct {
	EventID      string                `json:"event_id"`
	CropType     string                `json:"crop_type"`
	Disease      string                `json:"disease"`
	Confidence   float64               `json:"confidence"`
	ModelVersion string                `json:"model_version"`
	Warnings     []observation.Warning `json:"warnings,omitempty"`
	UsedFallback bool                  `json:"used_fallback"`
	Timestamp    time.Time             `json:"timestamp"`
}

// ModelReloadedEvent is emitted after a hot model swap.
type ModelReloadedEvent struct {
	ModelVersion string    `json:"model_version"`
	LabelCount   int       `json:"label_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// RecordCreatedEvent is emitted when a new record enters the store.
type RecordCreatedEvent struct {
	RecordID         string    `json:"record_id"`
	CropType         string    `json:"crop_type"`
	PredictedDisease string    `json:"predicted_disease"`
	Confidence       float64   `json:"confidence"`
	Timestamp        time.Time `json:"timestamp"`
}

// RecordDeletedEvent is emitted when a stored record is removed.
type RecordDeletedEvent struct {
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}
