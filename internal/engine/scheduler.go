package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the automatic sync pass on a fixed interval.
type Scheduler struct {
	cron   *cron.Cron
	engine *Engine
	log    *slog.Logger
}

// NewScheduler creates a Scheduler that syncs auto-enabled accounts every
// interval.
func NewScheduler(eng *Engine, interval time.Duration, log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:   c,
		engine: eng,
		log:    log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runAutoSync); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runAutoSync() {
	ctx := context.Background()
	s.log.Info("scheduled sync starting")

	results, err := s.engine.SyncAutoEnabled(ctx)
	if err != nil {
		s.log.Error("scheduled sync pass had failures", "error", err)
	}
	s.log.Info("scheduled sync finished", "accounts_synced", len(results))
}
