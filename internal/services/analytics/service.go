package analytics

import (
	"context"
	"time"

	redisadapter "verdant/internal/adapters/redis"
	"verdant/internal/domain/record"
	"verdant/internal/domain/stats"
	"verdant/pkg/errors"
	"verdant/pkg/logger"
)

const snapshotKey = "analytics:snapshot"

// Cache is the snapshot cache surface the service needs. Satisfied by
// the Redis adapter; nil disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service computes aggregate statistics over the full record history.
// Aggregation itself is pure; the service adds storage access and an
// optional cached snapshot so the hot read path skips the full scan.
type Service struct {
	records  record.Repository
	cache    Cache
	window   time.Duration
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewService creates an analytics service. cache may be nil.
func NewService(records record.Repository, cache Cache, window, cacheTTL time.Duration) *Service {
	return &Service{
		records:  records,
		cache:    cache,
		window:   window,
		cacheTTL: cacheTTL,
		log:      logger.Get(),
	}
}

// Snapshot returns the current aggregate statistics, preferring the
// cached copy when one is fresh.
func (s *Service) Snapshot(ctx context.Context) (stats.Snapshot, error) {
	if s.cache != nil {
		var cached stats.Snapshot
		err := s.cache.Get(ctx, snapshotKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !redisadapter.IsMiss(err) {
			// A broken cache degrades to a direct recompute.
			s.log.Warnf("Snapshot cache read failed: %v", err)
		}
	}

	return s.Refresh(ctx)
}

// Refresh recomputes the snapshot from the record store and repopulates
// the cache. The stats worker calls this on its interval so interactive
// reads mostly hit the cache.
func (s *Service) Refresh(ctx context.Context) (stats.Snapshot, error) {
	records, err := s.records.All(ctx)
	if err != nil {
		return stats.Snapshot{}, errors.Wrap(err, "loading records for aggregation")
	}

	snapshot := stats.Aggregate(records, time.Now().UTC(), s.window)

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotKey, snapshot, s.cacheTTL); err != nil {
			s.log.Warnf("Snapshot cache write failed: %v", err)
		}
	}

	return snapshot, nil
}
