package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"verdant/internal/ml"
	"verdant/pkg/logger"
)

// Pinger is any dependency that can report its own connectivity.
type Pinger interface {
	Health(ctx context.Context) error
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	holder      *ml.Holder
	store       Pinger
	cache       Pinger
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. cache may be nil when the
// snapshot cache is disabled.
func New(log *logger.Logger, holder *ml.Holder, store Pinger, cache Pinger, serviceName, version string) *Handler {
	return &Handler{
		log:         log,
		holder:      holder,
		store:       store,
		cache:       cache,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Detail       string `json:"detail,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic
// Used by Kubernetes readiness probe
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, allHealthy := h.collect(ctx)

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Readiness check failed", "checks", status.Checks)
	}

	writeStatus(w, statusCode, status)
}

// HandleHealth returns detailed health status. A missing model bundle is
// always unhealthy: the service cannot answer its primary endpoint. A
// broken cache only degrades.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status, allHealthy := h.collect(ctx)

	statusCode := http.StatusOK
	switch {
	case status.Checks["model"].Status != "healthy" || status.Checks["record_store"].Status != "healthy":
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	case !allHealthy:
		status.Status = "degraded"
	}

	writeStatus(w, statusCode, status)
}

// collect runs every component check and reports whether all passed.
func (h *Handler) collect(ctx context.Context) (HealthStatus, bool) {
	checks := make(map[string]ComponentHealth)
	allHealthy := true

	modelHealth := h.checkModel()
	checks["model"] = modelHealth
	if modelHealth.Status != "healthy" {
		allHealthy = false
	}

	storeHealth := h.checkPinger(ctx, "record_store", h.store)
	checks["record_store"] = storeHealth
	if storeHealth.Status != "healthy" {
		allHealthy = false
	}

	if h.cache != nil {
		cacheHealth := h.checkPinger(ctx, "cache", h.cache)
		checks["cache"] = cacheHealth
		if cacheHealth.Status != "healthy" {
			allHealthy = false
		}
	}

	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}, allHealthy
}

// checkModel verifies a model bundle is loaded and reports its version.
func (h *Handler) checkModel() ComponentHealth {
	bundle, err := h.holder.Current()
	if err != nil {
		return ComponentHealth{
			Status: "unhealthy",
			Error:  err.Error(),
		}
	}
	return ComponentHealth{
		Status: "healthy",
		Detail: bundle.Manifest.ModelVersion,
	}
}

// checkPinger verifies connectivity of one dependency
func (h *Handler) checkPinger(ctx context.Context, name string, p Pinger) ComponentHealth {
	start := time.Now()
	err := p.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Error("Health check failed", "component", name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func writeStatus(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
