package kafka

// Topic definitions for event streaming
const (
	// Prediction lifecycle events
	TopicPredictions = "predictions.completed"

	// Record store events
	TopicRecordCreated = "records.created"
	TopicRecordDeleted = "records.deleted"

	// Model lifecycle events
	TopicModelReloaded = "model.reloaded"
)
