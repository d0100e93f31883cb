// Package scheduler re-reads the crash dataset on a cron schedule so a
// refreshed locations.csv is picked up without a restart.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/crash-map-service/internal/pipeline"
	"github.com/robfig/cron/v3"
)

// Reloader publishes a fresh snapshot. *pipeline.Pipeline implements it.
type Reloader interface {
	Load(ctx context.Context) (*pipeline.Snapshot, error)
}

// Scheduler runs dataset reloads on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reloader Reloader
	logger   *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New parses schedule (standard five-field cron or a descriptor such as
// "@hourly" or "@every 30m") and prepares a stopped scheduler.
func New(schedule string, reloader Reloader, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		reloader: reloader,
		logger:   logger,
		ctx:      context.Background(),
	}
	if _, err := s.cron.AddFunc(schedule, s.reload); err != nil {
		return nil, fmt.Errorf("invalid RELOAD_SCHEDULE %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running reloads in the background. Reloads in flight are
// cancelled when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduled reloads started", "schedule", s.schedule)
}

// Stop halts the schedule and waits for a running reload to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}

func (s *Scheduler) reload() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if _, err := s.reloader.Load(ctx); err != nil {
		s.logger.Warn("scheduled reload failed, keeping previous snapshot", "error", err)
		return
	}
	s.logger.Debug("scheduled reload complete")
}
