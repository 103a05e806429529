package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"

	"verdant/internal/domain/diagnosis"
	"verdant/internal/domain/observation"
	"verdant/internal/domain/treatment"
	"verdant/internal/events"
	"verdant/internal/metrics"
	"verdant/internal/ml"
	"verdant/pkg/errors"
	"verdant/pkg/logger"
)

// Result is the full outcome of a single diagnosis request.
type Result struct {
	Diagnosis *diagnosis.Diagnosis
	Treatment treatment.Entry
	Warnings  []observation.Warning
	Timestamp time.Time
}

// Service runs observations through the currently loaded model bundle.
type Service struct {
	holder    *ml.Holder
	publisher *events.Publisher
	log       *logger.Logger
}

// NewService creates a prediction service. The publisher may be nil when
// event streaming is disabled.
func NewService(holder *ml.Holder, publisher *events.Publisher) *Service {
	return &Service{
		holder:    holder,
		publisher: publisher,
		log:       logger.Get(),
	}
}

type inferenceResult struct {
	probs []float64
	err   error
}

// Predict encodes the observation, runs the classifier and resolves the
// treatment for the winning label. Validation failures surface as
// *errors.ValidationError; a cancelled or expired context surfaces as
// ErrTimeout without waiting for the inference call to return.
func (s *Service) Predict(ctx context.Context, obs *observation.Observation) (*Result, error) {
	start := time.Now()

	bundle, err := s.holder.Current()
	if err != nil {
		metrics.RecordPrediction(obs.CropType, "", "model_unavailable", time.Since(start))
		return nil, err
	}

	vector, warnings, err := bundle.Encoder.Encode(obs)
	if err != nil {
		metrics.RecordPrediction(obs.CropType, "", "validation_error", time.Since(start))
		return nil, err
	}
	for _, w := range warnings {
		metrics.EncodeWarnings.WithLabelValues(w.Field).Inc()
	}

	probs, err := s.inferWithContext(ctx, bundle.Classifier, vector)
	if err != nil {
		metrics.RecordPrediction(obs.CropType, "", "inference_error", time.Since(start))
		return nil, err
	}

	diag, err := diagnosis.Rank(bundle.Classifier.Labels(), probs)
	if err != nil {
		metrics.RecordPrediction(obs.CropType, "", "ranking_error", time.Since(start))
		return nil, errors.Wrap(err, "ranking classifier output")
	}

	entry := bundle.Catalog.Lookup(diag.TopLabel)
	if entry.IsFallback {
		metrics.FallbackLookups.Inc()
		s.log.Warnf("No treatment entry for label %s, serving fallback guidance", diag.TopLabel)
	}

	now := time.Now().UTC()
	result := &Result{
		Diagnosis: diag,
		Treatment: entry,
		Warnings:  warnings,
		Timestamp: now,
	}

	s.publisher.PublishPredictionCompleted(ctx, events.PredictionCompletedEvent{
		EventID:      uuid.NewString(),
		CropType:     obs.CropType,
		Disease:      diag.TopLabel,
		Confidence:   diag.TopProbability,
		ModelVersion: bundle.Manifest.ModelVersion,
		Warnings:     warnings,
		UsedFallback: entry.IsFallback,
		Timestamp:    now,
	})

	metrics.RecordPrediction(obs.CropType, diag.TopLabel, "success", time.Since(start))
	return result, nil
}

// inferWithContext runs PredictProba in a goroutine so the caller's
// deadline is honored even when the runtime call blocks.
func (s *Service) inferWithContext(ctx context.Context, clf ml.Classifier, vector []float64) ([]float64, error) {
	ch := make(chan inferenceResult, 1)
	go func() {
		probs, err := clf.PredictProba(vector)
		ch <- inferenceResult{probs: probs, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(errors.ErrTimeout, "inference aborted: %v", ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, errors.Wrap(res.err, "running classifier")
		}
		return res.probs, nil
	}
}
