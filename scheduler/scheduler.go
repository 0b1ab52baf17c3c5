// Package scheduler runs the background jobs of the prescription assistant:
// eviction of idle prescriptions and monitoring of that job.
package scheduler

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/giygas/prescription-assistant/interfaces"
	"github.com/giygas/prescription-assistant/logging"
	"github.com/giygas/prescription-assistant/metrics"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler evicts idle prescriptions using dependency injection
type Scheduler struct {
	store            interfaces.PrescriptionStore
	sessionTTL       time.Duration
	evictionInterval time.Duration
	scheduler        *gocron.Scheduler
	lastRun          atomic.Int64 // unix nanoseconds, 0 until the first run
	now              func() time.Time
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.PrescriptionStore, sessionTTL, evictionInterval time.Duration) *Scheduler {
	return &Scheduler{
		store:            store,
		sessionTTL:       sessionTTL,
		evictionInterval: evictionInterval,
		scheduler:        gocron.NewScheduler(time.Local),
		now:              time.Now,
	}
}

// Start schedules eviction every evictionInterval, starting immediately,
// and the hourly monitoring job
func (s *Scheduler) Start() error {
	if s.evictionInterval <= 0 || s.sessionTTL <= 0 {
		return fmt.Errorf("invalid schedule: session TTL %s, eviction interval %s", s.sessionTTL, s.evictionInterval)
	}

	if _, err := s.scheduler.Every(s.evictionInterval).Do(s.evictIdle); err != nil {
		logging.Error("Failed to schedule eviction", "error", err)
		return fmt.Errorf("failed to schedule eviction: %w", err)
	}

	if _, err := s.scheduler.Every(time.Hour).WaitForSchedule().Do(s.checkHealth); err != nil {
		logging.Error("Failed to schedule health monitoring", "error", err)
		return fmt.Errorf("failed to schedule health monitoring: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "session_ttl", s.sessionTTL.String(), "eviction_interval", s.evictionInterval.String())

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// LastRun returns when the eviction job last completed
func (s *Scheduler) LastRun() time.Time {
	ns := s.lastRun.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// evictIdle removes prescriptions not accessed within the session TTL
func (s *Scheduler) evictIdle() {
	now := s.now()
	removed := s.store.EvictIdle(now.Add(-s.sessionTTL))
	remaining := s.store.Count()

	s.lastRun.Store(now.UnixNano())
	metrics.PrescriptionsEvictedTotal.Add(float64(removed))
	metrics.PrescriptionsActive.Set(float64(remaining))

	if removed > 0 {
		logging.Info("Evicted idle prescriptions", "removed", removed, "remaining", remaining)
		return
	}
	logging.Debug("No idle prescriptions to evict", "remaining", remaining)
}

// checkHealth warns when the eviction job stops running
func (s *Scheduler) checkHealth() {
	lastRun := s.LastRun()
	if lastRun.IsZero() || s.now().Sub(lastRun) > 3*s.evictionInterval {
		logging.Warn("Prescription eviction is behind schedule",
			"last_run", lastRun.Format(time.RFC3339),
			"interval", s.evictionInterval.String())
	}
}
