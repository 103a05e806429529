package api

import (
	"verdant/internal/domain/observation"
)

// PredictionResponse is the wire shape of a completed diagnosis.
type PredictionResponse struct {
	Prediction       string                `json:"prediction"`
	Confidence       float64               `json:"confidence"`
	AllProbabilities map[string]float64    `json:"all_probabilities"`
	Treatment        TreatmentInfo         `json:"treatment"`
	Warnings         []observation.Warning `json:"warnings,omitempty"`
	Timestamp        string                `json:"timestamp"`
}

// TreatmentInfo is the guidance block attached to a prediction.
type TreatmentInfo struct {
	Treatment  string   `json:"treatment"`
	Prevention string   `json:"prevention"`
	Chemicals  []string `json:"chemicals"`
	IsFallback bool     `json:"is_fallback"`
}

// StatsResponse is the dashboard statistics payload.
type StatsResponse struct {
	TotalPredictions    int            `json:"total_predictions"`
	DiseaseDistribution map[string]int `json:"disease_distribution"`
	AvgConfidence       float64        `json:"avg_confidence"`
	RecentPredictions   int            `json:"recent_predictions"`
	CropsAnalyzed       map[string]int `json:"crops_analyzed"`
}

// DiseasesResponse lists the closed label set of the active model.
type DiseasesResponse struct {
	Diseases []string `json:"diseases"`
	Count    int      `json:"count"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
