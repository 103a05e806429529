package api

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"verdant/internal/domain/observation"
	"verdant/internal/domain/record"
	"verdant/internal/events"
	"verdant/internal/ml"
	"verdant/internal/services/analytics"
	"verdant/internal/services/prediction"
	"verdant/pkg/errors"
	"verdant/pkg/logger"
)

const (
	maxBodyBytes     = 1 << 20 // 1 MiB, far above any legitimate observation
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Handlers carries the service dependencies for all API endpoints.
type Handlers struct {
	predictions    *prediction.Service
	analytics      *analytics.Service
	records        record.Repository
	holder         *ml.Holder
	publisher      *events.Publisher
	predictTimeout time.Duration
	serviceName    string
	log            *logger.Logger
}

// NewHandlers creates the API handler set.
func NewHandlers(
	predictions *prediction.Service,
	analyticsSvc *analytics.Service,
	records record.Repository,
	holder *ml.Holder,
	publisher *events.Publisher,
	predictTimeout time.Duration,
	serviceName string,
) *Handlers {
	return &Handlers{
		predictions:    predictions,
		analytics:      analyticsSvc,
		records:        records,
		holder:         holder,
		publisher:      publisher,
		predictTimeout: predictTimeout,
		serviceName:    serviceName,
		log:            logger.Get().With("component", "api"),
	}
}

// HandleRoot reports the service banner.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": h.serviceName + " API",
		"status":  "running",
	})
}

// HandlePredict runs one observation through the classifier.
func (h *Handlers) HandlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body", "")
		return
	}

	obs, err := observation.Decode(body)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.predictTimeout)
	defer cancel()

	result, err := h.predictions.Predict(ctx, obs)
	if err != nil {
		h.log.Warnf("Prediction failed: %v", err)
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, PredictionResponse{
		Prediction:       result.Diagnosis.TopLabel,
		Confidence:       result.Diagnosis.TopProbability,
		AllProbabilities: result.Diagnosis.Probabilities,
		Treatment: TreatmentInfo{
			Treatment:  result.Treatment.Treatment,
			Prevention: result.Treatment.Prevention,
			Chemicals:  result.Treatment.Chemicals,
			IsFallback: result.Treatment.IsFallback,
		},
		Warnings:  result.Warnings,
		Timestamp: result.Timestamp.Format(time.RFC3339),
	})
}

// HandleStats serves the aggregate dashboard statistics.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analytics.Snapshot(r.Context())
	if err != nil {
		h.log.Errorf("Stats aggregation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to compute statistics", "")
		return
	}

	respondJSON(w, http.StatusOK, StatsResponse{
		TotalPredictions:    snapshot.TotalCount,
		DiseaseDistribution: snapshot.Distribution,
		AvgConfidence:       math.Round(snapshot.AverageConfidence*10000) / 10000,
		RecentPredictions:   snapshot.RecentCount,
		CropsAnalyzed:       snapshot.CropDistribution,
	})
}

// HandleDiseases lists the label set of the active model.
func (h *Handlers) HandleDiseases(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.holder.Current()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	labels := bundle.Classifier.Labels()
	respondJSON(w, http.StatusOK, DiseasesResponse{
		Diseases: labels,
		Count:    len(labels),
	})
}

// HandleCreateRecord stores a submitted prediction record.
func (h *Handlers) HandleCreateRecord(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body", "")
		return
	}

	obs, err := observation.Decode(body)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	var outcome struct {
		PredictedDisease *string  `json:"predicted_disease"`
		Confidence       *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(body, &outcome); err != nil {
		respondError(w, http.StatusBadRequest, "invalid record payload", "")
		return
	}
	if outcome.PredictedDisease == nil || *outcome.PredictedDisease == "" {
		respondError(w, http.StatusBadRequest, "required field is missing", "predicted_disease")
		return
	}
	if outcome.Confidence == nil {
		respondError(w, http.StatusBadRequest, "required field is missing", "confidence")
		return
	}
	if *outcome.Confidence < 0 || *outcome.Confidence > 1 {
		respondError(w, http.StatusBadRequest, "confidence must be in [0, 1]", "confidence")
		return
	}

	rec := record.New(obs, *outcome.PredictedDisease, *outcome.Confidence, time.Now())
	if err := h.records.Create(r.Context(), rec); err != nil {
		h.log.Errorf("Record creation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save record", "")
		return
	}

	h.publisher.PublishRecordCreated(r.Context(), events.RecordCreatedEvent{
		RecordID:         rec.ID.String(),
		CropType:         rec.CropType,
		PredictedDisease: rec.PredictedDisease,
		Confidence:       rec.Confidence,
		Timestamp:        rec.CreatedAt,
	})

	respondJSON(w, http.StatusOK, rec)
}

// HandleListRecords pages through stored records, newest first.
func (h *Handlers) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit < 0 {
		respondError(w, http.StatusBadRequest, "limit must be a non-negative integer", "limit")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil || skip < 0 {
		respondError(w, http.StatusBadRequest, "skip must be a non-negative integer", "skip")
		return
	}

	records, err := h.records.List(r.Context(), limit, skip)
	if err != nil {
		h.log.Errorf("Record listing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch records", "")
		return
	}
	if records == nil {
		records = []record.HistoricalRecord{}
	}

	respondJSON(w, http.StatusOK, records)
}

// HandleGetRecord fetches a single record by ID.
func (h *Handlers) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id", "id")
		return
	}

	rec, err := h.records.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			respondError(w, http.StatusNotFound, "record not found", "")
			return
		}
		h.log.Errorf("Record fetch failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch record", "")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// HandleDeleteRecord removes a record by ID.
func (h *Handlers) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id", "id")
		return
	}

	if err := h.records.Delete(r.Context(), id); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			respondError(w, http.StatusNotFound, "record not found", "")
			return
		}
		h.log.Errorf("Record deletion failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to delete record", "")
		return
	}

	h.publisher.PublishRecordDeleted(r.Context(), events.RecordDeletedEvent{
		RecordID:  id.String(),
		Timestamp: time.Now().UTC(),
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Record deleted successfully",
		"id":      id.String(),
	})
}

// respondDomainError maps domain sentinels onto HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error) {
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Message, verr.Field)
		return
	}

	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, errors.ErrModelUnavailable):
		respondError(w, http.StatusServiceUnavailable, "model not loaded", "")
	case errors.Is(err, errors.ErrTimeout):
		respondError(w, http.StatusGatewayTimeout, "prediction timed out", "")
	default:
		respondError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, message, field string) {
	respondJSON(w, code, ErrorResponse{Error: message, Field: field})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
