// Package health provides health checking functionality for the prescription assistant.
package health

import (
	"net/http"
	"time"

	"github.com/giygas/prescription-assistant/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store            interfaces.PrescriptionStore
	scheduler        interfaces.Scheduler
	evictionInterval time.Duration
	now              func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// A nil scheduler skips the eviction checks.
func NewHealthChecker(store interfaces.PrescriptionStore, scheduler interfaces.Scheduler,
	evictionInterval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:            store,
		scheduler:        scheduler,
		evictionInterval: evictionInterval,
		now:              time.Now,
	}
}

// HealthCheck returns health data used by the /health endpoint.
// The service is degraded when the eviction job falls behind, since idle
// prescriptions then accumulate in memory.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	if h.store == nil {
		return "unhealthy", map[string]any{"error": "prescription store unavailable"}, http.StatusServiceUnavailable
	}

	now := h.now()
	data = map[string]any{
		"prescriptions": h.store.Count(),
	}
	if lastUpdate := h.store.GetLastUpdated(); !lastUpdate.IsZero() {
		data["last_update"] = lastUpdate.Format(time.RFC3339)
	}

	status, httpStatus = "healthy", http.StatusOK

	if h.scheduler == nil {
		return status, data, httpStatus
	}

	lastRun := h.scheduler.LastRun()
	if !lastRun.IsZero() {
		data["last_eviction"] = lastRun.Format(time.RFC3339)
		data["next_eviction"] = h.CalculateNextEviction().Format(time.RFC3339)
	}

	var uptime time.Duration
	if start := h.store.GetServerStartTime(); !start.IsZero() {
		uptime = now.Sub(start)
	}

	switch {
	case lastRun.IsZero() && uptime > 2*h.evictionInterval:
		status, httpStatus = "degraded", http.StatusServiceUnavailable
		data["warning"] = "eviction job has not run"
	case !lastRun.IsZero() && now.Sub(lastRun) > 3*h.evictionInterval:
		status, httpStatus = "degraded", http.StatusServiceUnavailable
		data["warning"] = "eviction job is late"
	}

	return status, data, httpStatus
}

// CalculateNextEviction returns when the eviction job is expected to run next
func (h *HealthCheckerImpl) CalculateNextEviction() time.Time {
	if h.scheduler == nil {
		return time.Time{}
	}

	lastRun := h.scheduler.LastRun()
	if lastRun.IsZero() {
		return h.now()
	}
	return lastRun.Add(h.evictionInterval)
}
