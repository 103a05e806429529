package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"verdant/internal/domain/record"
	"verdant/internal/metrics"
	"verdant/pkg/errors"
)

// Compile-time check
var _ record.Repository = (*RecordRepository)(nil)

// RecordRepository implements record.Repository on a MongoDB collection.
type RecordRepository struct {
	coll *mongo.Collection
}

// recordDoc is the stored document shape. The UUID is kept as a plain
// string so documents stay readable and queryable without a custom codec.
type recordDoc struct {
	ID                      string    `bson:"id"`
	CropType                string    `bson:"crop_type"`
	PlantAgeDays            int       `bson:"plant_age_days"`
	LocationRegion          string    `bson:"location_region"`
	SoilPH                  float64   `bson:"soil_ph"`
	SoilMoisturePct         float64   `bson:"soil_moisture_pct"`
	AmbientTemperatureC     float64   `bson:"ambient_temperature_c"`
	AmbientHumidityPct      float64   `bson:"ambient_humidity_pct"`
	LeafColor               string    `bson:"leaf_color"`
	LesionPresent           bool      `bson:"lesion_present"`
	LesionCount             int       `bson:"lesion_count"`
	SpotSizeMM              float64   `bson:"spot_size_mm"`
	NutrientDeficiencySigns string    `bson:"nutrient_deficiency_signs"`
	PredictedDisease        string    `bson:"predicted_disease"`
	Confidence              float64   `bson:"confidence"`
	CreatedAt               time.Time `bson:"created_at"`
}

func toDoc(rec *record.HistoricalRecord) recordDoc {
	return recordDoc{
		ID:                      rec.ID.String(),
		CropType:                rec.CropType,
		PlantAgeDays:            rec.PlantAgeDays,
		LocationRegion:          rec.LocationRegion,
		SoilPH:                  rec.SoilPH,
		SoilMoisturePct:         rec.SoilMoisturePct,
		AmbientTemperatureC:     rec.AmbientTemperatureC,
		AmbientHumidityPct:      rec.AmbientHumidityPct,
		LeafColor:               rec.LeafColor,
		LesionPresent:           rec.LesionPresent,
		LesionCount:             rec.LesionCount,
		SpotSizeMM:              rec.SpotSizeMM,
		NutrientDeficiencySigns: rec.NutrientDeficiencySigns,
		PredictedDisease:        rec.PredictedDisease,
		Confidence:              rec.Confidence,
		CreatedAt:               rec.CreatedAt,
	}
}

func fromDoc(d recordDoc) (record.HistoricalRecord, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return record.HistoricalRecord{}, errors.Wrapf(err, "malformed record id %q", d.ID)
	}
	return record.HistoricalRecord{
		ID:                      id,
		CropType:                d.CropType,
		PlantAgeDays:            d.PlantAgeDays,
		LocationRegion:          d.LocationRegion,
		SoilPH:                  d.SoilPH,
		SoilMoisturePct:         d.SoilMoisturePct,
		AmbientTemperatureC:     d.AmbientTemperatureC,
		AmbientHumidityPct:      d.AmbientHumidityPct,
		LeafColor:               d.LeafColor,
		LesionPresent:           d.LesionPresent,
		LesionCount:             d.LesionCount,
		SpotSizeMM:              d.SpotSizeMM,
		NutrientDeficiencySigns: d.NutrientDeficiencySigns,
		PredictedDisease:        d.PredictedDisease,
		Confidence:              d.Confidence,
		CreatedAt:               d.CreatedAt,
	}, nil
}

// NewRecordRepository creates the repository and ensures the created_at
// index used by newest-first listings.
func NewRecordRepository(ctx context.Context, db *mongo.Database) (*RecordRepository, error) {
	coll := db.Collection("predictions")

	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	}); err != nil {
		return nil, errors.Wrap(err, "failed to create predictions index")
	}

	return &RecordRepository{coll: coll}, nil
}

// Create inserts a new prediction record
func (r *RecordRepository) Create(ctx context.Context, rec *record.HistoricalRecord) error {
	start := time.Now()
	_, err := r.coll.InsertOne(ctx, toDoc(rec))
	metrics.RecordDBQuery("mongo", "create", time.Since(start), err)
	return err
}

// List retrieves records newest first with limit/offset paging
func (r *RecordRepository) List(ctx context.Context, limit, offset int) ([]record.HistoricalRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	start := time.Now()
	records, err := r.find(ctx, opts)
	metrics.RecordDBQuery("mongo", "list", time.Since(start), err)
	return records, err
}

// All retrieves the full record sequence for aggregation
func (r *RecordRepository) All(ctx context.Context) ([]record.HistoricalRecord, error) {
	start := time.Now()
	records, err := r.find(ctx, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	metrics.RecordDBQuery("mongo", "all", time.Since(start), err)
	return records, err
}

func (r *RecordRepository) find(ctx context.Context, opts *options.FindOptions) ([]record.HistoricalRecord, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []recordDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]record.HistoricalRecord, 0, len(docs))
	for _, d := range docs {
		rec, err := fromDoc(d)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetByID retrieves a record by ID
func (r *RecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*record.HistoricalRecord, error) {
	var d recordDoc

	start := time.Now()
	err := r.coll.FindOne(ctx, bson.M{"id": id.String()}).Decode(&d)
	metrics.RecordDBQuery("mongo", "get", time.Since(start), err)
	if err == mongo.ErrNoDocuments {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec, err := fromDoc(d)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a record by ID
func (r *RecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id.String()})
	metrics.RecordDBQuery("mongo", "delete", time.Since(start), err)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errors.ErrNotFound
	}
	return nil
}
