package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/procurement-api/internal/config"
	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
)

type fakeSender struct {
	to, subject, body string
	calls             int
	err               error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.calls++
	f.to, f.subject, f.body = to, subject, body
	return f.err
}

func testItem() *model.Item {
	deadline := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	return &model.Item{
		Base:        model.Base{ID: uuid.New()},
		Name:        "Cabling",
		Status:      model.ItemStatusPending,
		Deadline:    &deadline,
		ProjectName: "Fit-out",
		Assignee:    &model.UserRef{ID: uuid.New(), Email: "ana@example.com"},
	}
}

func bufferLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.DebugLevel, Output: buf, JSON: true})
}

func TestAlertMailer_SendsToAssignee(t *testing.T) {
	sender := &fakeSender{}
	m := metrics.New("test")
	mailer := NewAlertMailer(sender, logger.Nop(), m)

	item := testItem()
	alert := &model.Alert{ID: uuid.New(), ItemID: item.ID, Type: model.AlertTypeOverdue, Message: `Item "Cabling" is overdue by 2 days`}
	mailer.SendAlert(context.Background(), alert, item)

	require.Equal(t, 1, sender.calls)
	assert.Equal(t, "ana@example.com", sender.to)
	assert.Equal(t, "Deadline overdue: Cabling", sender.subject)
	assert.Contains(t, sender.body, "Fit-out")
	assert.Contains(t, sender.body, "pending")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Emails.WithLabelValues("sent")))
}

func TestAlertMailer_UnconfiguredIsNoop(t *testing.T) {
	var buf bytes.Buffer
	mailer := NewAlertMailer(nil, bufferLogger(&buf), nil)

	item := testItem()
	mailer.SendAlert(context.Background(), &model.Alert{ID: uuid.New(), ItemID: item.ID}, item)

	assert.Contains(t, buf.String(), "mail transport not configured")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestAlertMailer_TransportFailureSwallowed(t *testing.T) {
	var buf bytes.Buffer
	sender := &fakeSender{err: errors.New("connection refused")}
	m := metrics.New("test")
	mailer := NewAlertMailer(sender, bufferLogger(&buf), m)

	item := testItem()
	assert.NotPanics(t, func() {
		mailer.SendAlert(context.Background(), &model.Alert{ID: uuid.New(), ItemID: item.ID, Type: model.AlertTypeDeadlineApproaching}, item)
	})

	assert.Equal(t, 1, sender.calls)
	assert.Contains(t, buf.String(), "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Emails.WithLabelValues("failed")))
}

func TestAlertMailer_NoAssignee(t *testing.T) {
	sender := &fakeSender{}
	mailer := NewAlertMailer(sender, logger.Nop(), nil)

	item := testItem()
	item.Assignee = nil
	mailer.SendAlert(context.Background(), &model.Alert{ID: uuid.New(), ItemID: item.ID}, item)

	assert.Zero(t, sender.calls)
}

func TestNewSMTPSender_RequiresCredentials(t *testing.T) {
	assert.Nil(t, NewSMTPSender(config.MailConfig{Host: "smtp.example.com"}))
	assert.NotNil(t, NewSMTPSender(config.MailConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"}))
}
