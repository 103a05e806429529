package workers

import (
	"context"
	"sync"
	"time"

	"verdant/internal/metrics"
	"verdant/pkg/errors"
	"verdant/pkg/logger"
)

// shutdownTimeout bounds how long Stop waits for in-flight iterations.
// A model reload or a full history scan finishes well within this;
// anything longer is stuck.
const shutdownTimeout = 30 * time.Second

// Scheduler runs each enabled worker on its own ticker goroutine.
// Workers are registered before Start; registration after Start is
// rejected.
type Scheduler struct {
	mu      sync.RWMutex
	workers []Worker
	started bool
	cancel  context.CancelFunc
	ctx     context.Context
	wg      sync.WaitGroup
	log     *logger.Logger
}

func NewScheduler() *Scheduler {
	return &Scheduler{log: logger.Get()}
}

// RegisterWorker adds a worker. No-op with a warning once started.
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnf("Ignoring worker %s registered after scheduler start", w.Name())
		return
	}
	s.workers = append(s.workers, w)
	s.log.Infof("Worker %s registered, interval %s", w.Name(), w.Interval())
}

// Start launches a goroutine per enabled worker. Each worker runs once
// immediately, then on every interval tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler already started")
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Infof("Starting %d workers", len(s.workers))

	for _, w := range s.workers {
		if !w.Enabled() {
			s.log.Infof("Worker %s disabled, skipping", w.Name())
			continue
		}
		s.wg.Add(1)
		go s.loop(w)
	}
	return nil
}

// Stop cancels every worker loop and waits, up to shutdownTimeout, for
// in-flight iterations to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		s.log.Info("All workers stopped")
	case <-time.After(shutdownTimeout):
		err = errors.Wrapf(errors.ErrInternal, "worker shutdown timed out after %s", shutdownTimeout)
		s.log.Warnf("Worker shutdown timed out after %s", shutdownTimeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	return err
}

func (s *Scheduler) loop(w Worker) {
	defer s.wg.Done()

	ticker := time.NewTicker(w.Interval())
	defer ticker.Stop()

	s.runOnce(w)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Infof("Worker %s stopping", w.Name())
			return
		case <-ticker.C:
			s.runOnce(w)
		}
	}
}

// runOnce executes a single iteration. A panicking worker is contained
// here so one bad iteration cannot take down the process or the other
// workers.
func (s *Scheduler) runOnce(w Worker) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("Worker %s panicked: %v", w.Name(), r)
		}
	}()

	err := w.Run(s.ctx)
	metrics.RecordWorkerExecution(w.Name(), time.Since(start), err)

	if err != nil {
		s.log.Errorf("Worker %s failed after %s: %v", w.Name(), time.Since(start), err)
	}
}

// GetWorkers returns a copy of the registered worker list.
func (s *Scheduler) GetWorkers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Worker, len(s.workers))
	copy(out, s.workers)
	return out
}

// IsRunning reports whether Start has been called without a matching Stop.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
