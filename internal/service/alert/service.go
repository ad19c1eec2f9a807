package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/procurement-api/internal/email"
	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/internal/repository"
	"github.com/jwalitptl/procurement-api/pkg/besteffort"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
)

type Config struct {
	Lookahead time.Duration
	// Location defines the calendar day used for deduplication
	Location *time.Location
}

type Service struct {
	items   repository.ItemRepository
	alerts  repository.AlertRepository
	mailer  email.AlertMailer
	log     *logger.Logger
	metrics *metrics.Metrics
	cfg     Config

	// serialises runs started from the scheduler and the manual trigger
	mu sync.Mutex
}

func NewService(items repository.ItemRepository, alerts repository.AlertRepository, mailer email.AlertMailer,
	log *logger.Logger, m *metrics.Metrics, cfg Config) *Service {
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = DefaultLookahead
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		items:   items,
		alerts:  alerts,
		mailer:  mailer,
		log:     log.Named("deadline_check"),
		metrics: m,
		cfg:     cfg,
	}
}

// RunDeadlineCheck raises at most one approaching and one overdue alert per
// item per calendar day. Failures on individual items are logged and counted
// but do not stop the run; only failing to load the items is returned.
func (s *Service) RunDeadlineCheck(ctx context.Context, now time.Time) (*model.DeadlineCheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.DeadlineCheckDuration.Observe(time.Since(started).Seconds())
		}
	}()

	candidates, err := s.items.ListOpenWithDeadline(ctx, now.Add(s.cfg.Lookahead))
	if err != nil {
		return nil, fmt.Errorf("failed to load items for deadline check: %w", err)
	}

	classified := Classify(candidates, now, s.cfg.Lookahead)
	dayStart := startOfDay(now, s.cfg.Location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	result := &model.DeadlineCheckResult{}

	for _, item := range classified.Approaching {
		alert := &model.Alert{
			Type:     model.AlertTypeDeadlineApproaching,
			Severity: model.SeverityMedium,
			Message:  fmt.Sprintf("Item %q deadline is in %d days", item.Name, ceilDays(item.Deadline.Sub(now))),
		}
		created, ok := s.raise(ctx, item, alert, now, dayStart, dayEnd)
		if created {
			result.ApproachingAlertsCreated++
		}
		if !ok {
			result.Failed++
		}
	}

	for _, item := range classified.Overdue {
		alert := &model.Alert{
			Type:     model.AlertTypeOverdue,
			Severity: model.SeverityHigh,
			Message:  fmt.Sprintf("Item %q is overdue by %d days", item.Name, ceilDays(now.Sub(*item.Deadline))),
		}
		created, ok := s.raise(ctx, item, alert, now, dayStart, dayEnd)
		if created {
			result.OverdueAlertsCreated++
		}
		if !ok {
			result.Failed++
		}
	}

	s.log.Info("deadline check finished",
		"approaching_created", result.ApproachingAlertsCreated,
		"overdue_created", result.OverdueAlertsCreated,
		"failed", result.Failed,
		"candidates", len(candidates),
	)
	return result, nil
}

// raise creates alert for item unless one of the same type exists in
// [dayStart, dayEnd). The assignee is emailed after a successful create.
func (s *Service) raise(ctx context.Context, item *model.Item, alert *model.Alert, now, dayStart, dayEnd time.Time) (created, ok bool) {
	ok = besteffort.Run(ctx, s.log, "create "+alert.Type+" alert", func(ctx context.Context) error {
		exists, err := s.alerts.ExistsInWindow(ctx, item.ID, alert.Type, dayStart, dayEnd)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		alert.ItemID = item.ID
		alert.ProjectID = item.ProjectID
		alert.TriggeredAt = now
		if err := s.alerts.Create(ctx, alert); err != nil {
			return err
		}
		created = true
		return nil
	}, "item_id", item.ID.String(), "project_id", item.ProjectID.String())

	if !ok {
		if s.metrics != nil {
			s.metrics.AlertFailures.Inc()
		}
		return false, false
	}
	if created {
		if s.metrics != nil {
			s.metrics.AlertsCreated.WithLabelValues(alert.Type).Inc()
		}
		if s.mailer != nil {
			s.mailer.SendAlert(ctx, alert, item)
		}
	}
	return created, true
}

// List returns alerts matching filters
func (s *Service) List(ctx context.Context, filters *model.AlertFilters) ([]*model.Alert, error) {
	alerts, err := s.alerts.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.alerts.MarkRead(ctx, id)
}
