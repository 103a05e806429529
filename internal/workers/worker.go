package workers

import (
	"context"
	"sync"
	"time"

	"verdant/pkg/logger"
)

// Worker is a periodic background task driven by the Scheduler.
type Worker interface {
	Name() string

	// Run executes one iteration and returns. The scheduler calls it
	// on every tick of Interval; a long iteration delays the next one.
	Run(ctx context.Context) error

	Interval() time.Duration
	Enabled() bool
}

// WorkerHealth is a point-in-time view of a worker's run history.
type WorkerHealth struct {
	LastRun     time.Time
	LastError   error
	RunCount    int64
	ErrorCount  int64
	AvgDuration time.Duration
	Enabled     bool
}

// BaseWorker carries the bookkeeping shared by all workers: identity,
// schedule, enable flag, and run statistics. Concrete workers embed it
// and call RecordRun/RecordError from their Run.
type BaseWorker struct {
	name     string
	interval time.Duration
	log      *logger.Logger

	mu       sync.RWMutex
	enabled  bool
	lastRun  time.Time
	lastErr  error
	runs     int64
	failures int64
	elapsed  time.Duration
}

func NewBaseWorker(name string, interval time.Duration, enabled bool) *BaseWorker {
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
		log:      logger.Get().With("worker", name),
	}
}

func (w *BaseWorker) Name() string            { return w.name }
func (w *BaseWorker) Interval() time.Duration { return w.interval }

// Log returns the worker-scoped logger.
func (w *BaseWorker) Log() *logger.Logger { return w.log }

func (w *BaseWorker) Enabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.enabled
}

func (w *BaseWorker) SetEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.enabled != enabled {
		w.enabled = enabled
		w.log.Infof("Worker enabled: %v", enabled)
	}
}

// Health reports accumulated run statistics.
func (w *BaseWorker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()

	h := WorkerHealth{
		LastRun:    w.lastRun,
		LastError:  w.lastErr,
		RunCount:   w.runs,
		ErrorCount: w.failures,
		Enabled:    w.enabled,
	}
	if w.runs > 0 {
		h.AvgDuration = w.elapsed / time.Duration(w.runs)
	}
	return h
}

// RecordRun notes a successful iteration and clears the last error.
func (w *BaseWorker) RecordRun(duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRun = time.Now()
	w.runs++
	w.elapsed += duration
	w.lastErr = nil
}

// RecordError notes a failed iteration.
func (w *BaseWorker) RecordError(err error, duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastRun = time.Now()
	w.runs++
	w.failures++
	w.elapsed += duration
	w.lastErr = err
}
