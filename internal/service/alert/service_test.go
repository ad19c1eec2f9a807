package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
)

type fakeItemRepo struct {
	items []*model.Item
	err   error
}

func (f *fakeItemRepo) Create(context.Context, *model.Item) error { return nil }
func (f *fakeItemRepo) Get(context.Context, uuid.UUID) (*model.Item, error) { return nil, nil }
func (f *fakeItemRepo) Update(context.Context, *model.Item) error { return nil }
func (f *fakeItemRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (f *fakeItemRepo) List(context.Context, *model.ItemFilters) ([]*model.Item, error) {
	return f.items, nil
}

func (f *fakeItemRepo) ListOpenWithDeadline(_ context.Context, until time.Time) ([]*model.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.Item
	for _, i := range f.items {
		if i.Deadline != nil && !i.Deadline.After(until) && i.Status != model.ItemStatusCompleted {
			out = append(out, i)
		}
	}
	return out, nil
}

type fakeAlertRepo struct {
	alerts  []*model.Alert
	failFor map[uuid.UUID]bool
}

func (f *fakeAlertRepo) Create(_ context.Context, a *model.Alert) error {
	if f.failFor[a.ItemID] {
		return errors.New("insert failed")
	}
	a.ID = uuid.New()
	f.alerts = append(f.alerts, a)
	return nil
}

func (f *fakeAlertRepo) ExistsInWindow(_ context.Context, itemID uuid.UUID, alertType string, from, to time.Time) (bool, error) {
	for _, a := range f.alerts {
		if a.ItemID == itemID && a.Type == alertType && !a.TriggeredAt.Before(from) && a.TriggeredAt.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertRepo) List(context.Context, *model.AlertFilters) ([]*model.Alert, error) {
	return f.alerts, nil
}

func (f *fakeAlertRepo) MarkRead(context.Context, uuid.UUID) error { return nil }

type fakeMailer struct {
	sent []*model.Alert
}

func (f *fakeMailer) SendAlert(_ context.Context, a *model.Alert, _ *model.Item) {
	f.sent = append(f.sent, a)
}

type fixture struct {
	items   *fakeItemRepo
	alerts  *fakeAlertRepo
	mailer  *fakeMailer
	metrics *metrics.Metrics
	svc     *Service
}

func newFixture(items ...*model.Item) *fixture {
	f := &fixture{
		items:   &fakeItemRepo{items: items},
		alerts:  &fakeAlertRepo{failFor: map[uuid.UUID]bool{}},
		mailer:  &fakeMailer{},
		metrics: metrics.New("test"),
	}
	f.svc = NewService(f.items, f.alerts, f.mailer, logger.Nop(), f.metrics, Config{})
	return f
}

func newItem(name string, status model.ItemStatus, deadline *time.Time) *model.Item {
	return &model.Item{
		Base:      model.Base{ID: uuid.New()},
		ProjectID: uuid.New(),
		Name:      name,
		Status:    status,
		Deadline:  deadline,
	}
}

var checkTime = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func TestRunDeadlineCheck_ApproachingAlert(t *testing.T) {
	item := newItem("Cabling", model.ItemStatusPending, at(checkTime.Add(24*time.Hour)))
	f := newFixture(item)

	result, err := f.svc.RunDeadlineCheck(context.Background(), checkTime)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ApproachingAlertsCreated)
	assert.Equal(t, 0, result.OverdueAlertsCreated)

	require.Len(t, f.alerts.alerts, 1)
	a := f.alerts.alerts[0]
	assert.Equal(t, model.AlertTypeDeadlineApproaching, a.Type)
	assert.Equal(t, model.SeverityMedium, a.Severity)
	assert.Contains(t, a.Message, "Cabling")
	assert.Contains(t, a.Message, "1 days")
	assert.Equal(t, item.ProjectID, a.ProjectID)
	assert.Equal(t, checkTime, a.TriggeredAt)

	assert.Len(t, f.mailer.sent, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AlertsCreated.WithLabelValues(model.AlertTypeDeadlineApproaching)))
}

func TestRunDeadlineCheck_OverdueAlert(t *testing.T) {
	overdueBy := 5*24*time.Hour + 4*time.Hour + 48*time.Minute // 5.2 days
	f := newFixture(newItem("Permit", model.ItemStatusInProgress, at(checkTime.Add(-overdueBy))))

	result, err := f.svc.RunDeadlineCheck(context.Background(), checkTime)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OverdueAlertsCreated)

	require.Len(t, f.alerts.alerts, 1)
	a := f.alerts.alerts[0]
	assert.Equal(t, model.AlertTypeOverdue, a.Type)
	assert.Equal(t, model.SeverityHigh, a.Severity)
	assert.Contains(t, a.Message, "6 days")
}

func TestRunDeadlineCheck_CeilingDayCounts(t *testing.T) {
	f := newFixture(
		newItem("soon", model.ItemStatusPending, at(checkTime.Add(50*time.Hour+24*time.Minute))), // 2.1 days
		newItem("late", model.ItemStatusPending, at(checkTime.Add(-12*time.Hour))),                // 0.5 days
	)

	_, err := f.svc.RunDeadlineCheck(context.Background(), checkTime)
	require.NoError(t, err)

	messages := map[string]string{}
	for _, a := range f.alerts.alerts {
		messages[a.Type] = a.Message
	}
	assert.Contains(t, messages[model.AlertTypeDeadlineApproaching], "3 days")
	assert.Contains(t, messages[model.AlertTypeOverdue], "1 days")
}

func TestRunDeadlineCheck_IdempotentWithinDay(t *testing.T) {
	f := newFixture(
		newItem("Cabling", model.ItemStatusPending, at(checkTime.Add(24*time.Hour))),
		newItem("Permit", model.ItemStatusPending, at(checkTime.Add(-48*time.Hour))),
	)
	ctx := context.Background()

	first, err := f.svc.RunDeadlineCheck(ctx, checkTime)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ApproachingAlertsCreated)
	assert.Equal(t, 1, first.OverdueAlertsCreated)

	second, err := f.svc.RunDeadlineCheck(ctx, checkTime.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, second.ApproachingAlertsCreated)
	assert.Zero(t, second.OverdueAlertsCreated)
	assert.Len(t, f.alerts.alerts, 2)
	assert.Len(t, f.mailer.sent, 2)

	// next calendar day raises them again
	third, err := f.svc.RunDeadlineCheck(ctx, checkTime.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, third.OverdueAlertsCreated)
}

func TestRunDeadlineCheck_SkipsCompletedAndUndated(t *testing.T) {
	f := newFixture(
		newItem("done", model.ItemStatusCompleted, at(checkTime.Add(-time.Hour))),
		newItem("done soon", model.ItemStatusCompleted, at(checkTime.Add(time.Hour))),
		newItem("undated", model.ItemStatusPending, nil),
	)

	result, err := f.svc.RunDeadlineCheck(context.Background(), checkTime)
	require.NoError(t, err)
	assert.Equal(t, model.DeadlineCheckResult{}, *result)
	assert.Empty(t, f.alerts.alerts)
}

func TestRunDeadlineCheck_IsolatesItemFailures(t *testing.T) {
	broken := newItem("broken", model.ItemStatusPending, at(checkTime.Add(time.Hour)))
	healthy := newItem("healthy", model.ItemStatusPending, at(checkTime.Add(2*time.Hour)))
	f := newFixture(broken, healthy)
	f.alerts.failFor[broken.ID] = true

	result, err := f.svc.RunDeadlineCheck(context.Background(), checkTime)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ApproachingAlertsCreated)
	assert.Equal(t, 1, result.Failed)

	require.Len(t, f.alerts.alerts, 1)
	assert.Equal(t, healthy.ID, f.alerts.alerts[0].ItemID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AlertFailures))
}

func TestRunDeadlineCheck_LoadFailure(t *testing.T) {
	f := newFixture()
	f.items.err = errors.New("db down")

	_, err := f.svc.RunDeadlineCheck(context.Background(), checkTime)
	assert.ErrorContains(t, err, "db down")
}

func TestRunDeadlineCheck_DayFollowsLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	item := newItem("Cabling", model.ItemStatusPending, at(checkTime.Add(48*time.Hour)))
	f := newFixture(item)
	f.svc = NewService(f.items, f.alerts, f.mailer, logger.Nop(), nil, Config{Location: tokyo})
	ctx := context.Background()

	// 14:00 and 16:00 UTC fall on different Tokyo days
	_, err = f.svc.RunDeadlineCheck(ctx, time.Date(2026, 10, 14, 14, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	result, err := f.svc.RunDeadlineCheck(ctx, time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, result.ApproachingAlertsCreated)
	assert.Len(t, f.alerts.alerts, 2)
}
