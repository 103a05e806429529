package record

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for prediction record storage. Any
// backend able to produce the record sequence is a valid collaborator;
// the aggregation layer never talks to storage directly.
type Repository interface {
	Create(ctx context.Context, rec *HistoricalRecord) error
	List(ctx context.Context, limit, offset int) ([]HistoricalRecord, error)
	All(ctx context.Context) ([]HistoricalRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*HistoricalRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
