package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"verdant/internal/domain/record"
	"verdant/internal/metrics"
	"verdant/pkg/errors"
)

// Compile-time check
var _ record.Repository = (*RecordRepository)(nil)

// RecordRepository implements record.Repository using sqlx
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// EnsureSchema creates the prediction_records table if it does not exist.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS prediction_records (
			id UUID PRIMARY KEY,
			crop_type TEXT NOT NULL,
			plant_age_days INTEGER NOT NULL,
			location_region TEXT NOT NULL,
			soil_ph DOUBLE PRECISION NOT NULL,
			soil_moisture_pct DOUBLE PRECISION NOT NULL,
			ambient_temperature_c DOUBLE PRECISION NOT NULL,
			ambient_humidity_pct DOUBLE PRECISION NOT NULL,
			leaf_color TEXT NOT NULL,
			lesion_present BOOLEAN NOT NULL,
			lesion_count INTEGER NOT NULL,
			spot_size_mm DOUBLE PRECISION NOT NULL,
			nutrient_deficiency_signs TEXT NOT NULL,
			predicted_disease TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_prediction_records_created_at
			ON prediction_records (created_at DESC);`

	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Create inserts a new prediction record
func (r *RecordRepository) Create(ctx context.Context, rec *record.HistoricalRecord) error {
	query := `
		INSERT INTO prediction_records (
			id, crop_type, plant_age_days, location_region,
			soil_ph, soil_moisture_pct, ambient_temperature_c, ambient_humidity_pct,
			leaf_color, lesion_present, lesion_count, spot_size_mm,
			nutrient_deficiency_signs, predicted_disease, confidence, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15, $16
		)`

	start := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.CropType, rec.PlantAgeDays, rec.LocationRegion,
		rec.SoilPH, rec.SoilMoisturePct, rec.AmbientTemperatureC, rec.AmbientHumidityPct,
		rec.LeafColor, rec.LesionPresent, rec.LesionCount, rec.SpotSizeMM,
		rec.NutrientDeficiencySigns, rec.PredictedDisease, rec.Confidence, rec.CreatedAt,
	)
	metrics.RecordDBQuery("postgres", "create", time.Since(start), err)

	return err
}

// List retrieves records newest first with limit/offset paging
func (r *RecordRepository) List(ctx context.Context, limit, offset int) ([]record.HistoricalRecord, error) {
	var records []record.HistoricalRecord

	query := `SELECT * FROM prediction_records ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	start := time.Now()
	err := r.db.SelectContext(ctx, &records, query, limit, offset)
	metrics.RecordDBQuery("postgres", "list", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// All retrieves the full record sequence for aggregation
func (r *RecordRepository) All(ctx context.Context) ([]record.HistoricalRecord, error) {
	var records []record.HistoricalRecord

	query := `SELECT * FROM prediction_records ORDER BY created_at DESC`

	start := time.Now()
	err := r.db.SelectContext(ctx, &records, query)
	metrics.RecordDBQuery("postgres", "all", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetByID retrieves a record by ID
func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.HistoricalRecord, error) {
	var rec record.HistoricalRecord

	query := `SELECT * FROM prediction_records WHERE id = $1`

	start := time.Now()
	err := r.db.GetContext(ctx, &rec, query, id)
	metrics.RecordDBQuery("postgres", "get", time.Since(start), err)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// Delete removes a record by ID
func (r *RecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM prediction_records WHERE id = $1`

	start := time.Now()
	res, err := r.db.ExecContext(ctx, query, id)
	metrics.RecordDBQuery("postgres", "delete", time.Since(start), err)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.ErrNotFound
	}

	return nil
}
