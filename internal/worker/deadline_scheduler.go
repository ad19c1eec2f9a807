package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/pkg/logger"
)

// DeadlineChecker runs one deadline check
type DeadlineChecker interface {
	RunDeadlineCheck(ctx context.Context, now time.Time) (*model.DeadlineCheckResult, error)
}

type DeadlineSchedulerConfig struct {
	// Schedule is a standard five-field cron expression
	Schedule string
	Location *time.Location
	// Timeout bounds a single run
	Timeout time.Duration
}

type DeadlineScheduler struct {
	checker DeadlineChecker
	cron    *cron.Cron
	config  DeadlineSchedulerConfig
	logger  *logger.Logger
	now     func() time.Time
}

func NewDeadlineScheduler(checker DeadlineChecker, config DeadlineSchedulerConfig, log *logger.Logger) (*DeadlineScheduler, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Minute
	}

	s := &DeadlineScheduler{
		checker: checker,
		config:  config,
		logger:  log.Named("deadline_scheduler"),
		now:     time.Now,
		cron: cron.New(
			cron.WithLocation(config.Location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}

	if _, err := s.cron.AddFunc(config.Schedule, s.tick); err != nil {
		return nil, fmt.Errorf("failed to schedule deadline check %q: %w", config.Schedule, err)
	}
	return s, nil
}

func (s *DeadlineScheduler) Start() {
	s.logger.Info("Starting deadline scheduler", "schedule", s.config.Schedule, "timezone", s.config.Location.String())
	s.cron.Start()
}

// Stop halts scheduling and waits for a running check, or for ctx to end
func (s *DeadlineScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Deadline check still running at shutdown")
	}
	s.logger.Info("Deadline scheduler stopped")
}

func (s *DeadlineScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error(err, "Scheduled deadline check failed")
	}
}

// RunOnce performs a single check at the current time
func (s *DeadlineScheduler) RunOnce(ctx context.Context) (*model.DeadlineCheckResult, error) {
	return s.checker.RunDeadlineCheck(ctx, s.now().In(s.config.Location))
}
