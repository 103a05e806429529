package events

import (
	"context"

	"verdant/internal/adapters/kafka"
	"verdant/pkg/logger"
)

// Publisher publishes service events. A nil *Publisher is a valid no-op,
// used when Kafka is disabled.
type Publisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(producer *kafka.Producer, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		log:      log,
	}
}

// PublishPredictionCompleted publishes a prediction completed event
func (p *Publisher) PublishPredictionCompleted(ctx context.Context, event PredictionCompletedEvent) {
	if p == nil {
		return
	}
	// Event delivery is best-effort; a broker outage must not fail the
	// prediction that triggered it.
	if err := p.producer.Publish(ctx, kafka.TopicPredictions, event.EventID, event); err != nil {
		p.log.Warnf("Failed to publish prediction event: %v", err)
	}
}

// PublishModelReloaded publishes a model reloaded event
func (p *Publisher) PublishModelReloaded(ctx context.Context, event ModelReloadedEvent) {
	if p == nil {
		return
	}
	if err := p.producer.Publish(ctx, kafka.TopicModelReloaded, event.ModelVersion, event); err != nil {
		p.log.Warnf("Failed to publish model reload event: %v", err)
	}
}

// PublishRecordCreated publishes a record created event
func (p *Publisher) PublishRecordCreated(ctx context.Context, event RecordCreatedEvent) {
	if p == nil {
		return
	}
	if err := p.producer.Publish(ctx, kafka.TopicRecordCreated, event.RecordID, event); err != nil {
		p.log.Warnf("Failed to publish record created event: %v", err)
	}
}

// PublishRecordDeleted publishes a record deleted event
func (p *Publisher) PublishRecordDeleted(ctx context.Context, event RecordDeletedEvent) {
	if p == nil {
		return
	}
	if err := p.producer.Publish(ctx, kafka.TopicRecordDeleted, event.RecordID, event); err != nil {
		p.log.Warnf("Failed to publish record deleted event: %v", err)
	}
}
