package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"verdant/internal/adapters/config"
	"verdant/internal/adapters/errors/noop"
	"verdant/internal/adapters/errors/sentry"
	"verdant/internal/adapters/kafka"
	"verdant/internal/adapters/mongodb"
	"verdant/internal/adapters/postgres"
	redisadapter "verdant/internal/adapters/redis"
	"verdant/internal/api"
	"verdant/internal/api/health"
	"verdant/internal/domain/record"
	"verdant/internal/events"
	"verdant/internal/metrics"
	"verdant/internal/ml"
	mongorepo "verdant/internal/repository/mongo"
	pgrepo "verdant/internal/repository/postgres"
	"verdant/internal/services/analytics"
	"verdant/internal/services/prediction"
	"verdant/internal/workers"
	"verdant/pkg/errors"
	"verdant/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	// Model bundle: a missing or incompatible artifact set is fatal at
	// startup. Serving without a model would fail every prediction.
	paths := ml.BundlePaths{
		ONNX:       cfg.Model.ONNXPath,
		Manifest:   cfg.Model.ManifestPath,
		Schema:     cfg.Model.SchemaPath,
		Treatments: cfg.Model.TreatmentPath,
	}
	bundle, err := ml.LoadBundle(paths)
	if err != nil {
		log.Fatalf("Failed to load model bundle: %v", err)
	}
	holder := ml.NewHolder(bundle)
	log.Infof("Model bundle loaded: version %s, %d labels, %d features",
		bundle.Manifest.ModelVersion, len(bundle.Manifest.Labels), bundle.Schema.VectorLength())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store
	records, storePinger, storeClose := initRecordStore(ctx, cfg, log)
	defer storeClose()

	// Snapshot cache (optional)
	var cache *redisadapter.Client
	if cfg.Redis.Enabled {
		cache, err = redisadapter.NewClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer cache.Close()
		log.Info("Redis snapshot cache connected")
	}

	// Event stream (optional)
	var publisher *events.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		defer producer.Close()
		publisher = events.NewPublisher(producer, log)
		log.Infof("Kafka event publishing enabled, brokers: %v", cfg.Kafka.Brokers)
	}

	// Services
	predictionSvc := prediction.NewService(holder, publisher)
	analyticsSvc := analytics.NewService(records, cacheOrNil(cache), cfg.Workers.StatsWindow, cfg.Workers.StatsCacheTTL)

	// Workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewStatsRefresherWorker(analyticsSvc, cfg.Workers.StatsRefreshInterval, cache != nil))
	scheduler.RegisterWorker(workers.NewModelReloadWorker(holder, paths, publisher, cfg.Workers.ModelReloadInterval, true))
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	// HTTP server
	healthHandler := health.New(log, holder, storePinger, cachePinger(cache), cfg.App.Name, cfg.App.Version)
	handlers := api.NewHandlers(predictionSvc, analyticsSvc, records, holder, publisher, cfg.HTTP.PredictTimeout, cfg.App.Name)
	server := api.NewServer(api.ServerConfig{
		Port:           cfg.HTTP.Port,
		ServiceName:    cfg.App.Name,
		Version:        cfg.App.Version,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
	}, handlers, healthHandler, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, server, scheduler, holder, errorTracker, log)
}

// initRecordStore connects the configured record store backend and
// returns the repository, its health pinger, and a close function.
func initRecordStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (record.Repository, health.Pinger, func()) {
	switch cfg.Storage.Backend {
	case "mongo":
		client, err := mongodb.NewClient(ctx, cfg.Mongo)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		repo, err := mongorepo.NewRecordRepository(ctx, client.Database())
		if err != nil {
			log.Fatalf("Failed to initialize Mongo record repository: %v", err)
		}
		log.Infof("Record store: MongoDB (%s)", cfg.Mongo.Database)
		return repo, client, func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			_ = client.Close(closeCtx)
		}

	default: // "postgres", validated by config.Load
		client, err := postgres.NewClient(cfg.Postgres)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		repo := pgrepo.NewRecordRepository(client.DB())
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure PostgreSQL schema: %v", err)
		}
		log.Infof("Record store: PostgreSQL (%s)", cfg.Postgres.Database)
		return repo, client, func() { _ = client.Close() }
	}
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// cacheOrNil converts a possibly nil *redis.Client into the analytics
// cache interface without producing a typed nil.
func cacheOrNil(c *redisadapter.Client) analytics.Cache {
	if c == nil {
		return nil
	}
	return c
}

// cachePinger does the same for the health check surface.
func cachePinger(c *redisadapter.Client) health.Pinger {
	if c == nil {
		return nil
	}
	return c
}

// waitForShutdown waits for a shutdown signal and stops every component
// in reverse startup order.
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	server *api.Server,
	scheduler *workers.Scheduler,
	holder *ml.Holder,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-ctx.Done():
		log.Info("Shutting down after fatal component error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP shutdown error: %v", err)
	}

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown error: %v", err)
	}

	cancel()

	// Release the ONNX session last, after all in-flight work is done.
	if bundle, err := holder.Current(); err == nil {
		if err := bundle.Close(); err != nil {
			log.Warnf("Failed to close model bundle: %v", err)
		}
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
