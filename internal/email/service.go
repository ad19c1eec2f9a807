package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/procurement-api/internal/model"
	"github.com/jwalitptl/procurement-api/pkg/besteffort"
	"github.com/jwalitptl/procurement-api/pkg/logger"
	"github.com/jwalitptl/procurement-api/pkg/metrics"
)

// Sender delivers a single plain-text message
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AlertMailer emails the assignee of an item about a freshly created alert.
// It never returns an error to the caller.
type AlertMailer interface {
	SendAlert(ctx context.Context, alert *model.Alert, item *model.Item)
}

type alertMailer struct {
	sender  Sender
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewAlertMailer returns a mailer that delivers through sender. A nil sender
// means the transport is not configured and every send is skipped.
func NewAlertMailer(sender Sender, log *logger.Logger, m *metrics.Metrics) AlertMailer {
	return &alertMailer{sender: sender, log: log.Named("alert_mailer"), metrics: m}
}

func (s *alertMailer) SendAlert(ctx context.Context, alert *model.Alert, item *model.Item) {
	if s.sender == nil {
		s.log.Warn("mail transport not configured, skipping alert email", "alert_id", alert.ID.String(), "item_id", alert.ItemID.String())
		s.count("skipped")
		return
	}
	if item == nil || item.Assignee == nil || item.Assignee.Email == "" {
		s.log.Debug("item has no assignee email, skipping alert email", "item_id", alert.ItemID.String())
		s.count("skipped")
		return
	}

	subject, body := composeAlert(alert, item)
	ok := besteffort.Run(ctx, s.log, "send alert email", func(ctx context.Context) error {
		return s.sender.Send(ctx, item.Assignee.Email, subject, body)
	}, "alert_id", alert.ID.String(), "item_id", item.ID.String(), "to", item.Assignee.Email)

	if ok {
		s.count("sent")
	} else {
		s.count("failed")
	}
}

func (s *alertMailer) count(status string) {
	if s.metrics != nil {
		s.metrics.Emails.WithLabelValues(status).Inc()
	}
}

func composeAlert(alert *model.Alert, item *model.Item) (string, string) {
	kind := "approaching"
	if alert.Type == model.AlertTypeOverdue {
		kind = "overdue"
	}

	subject := fmt.Sprintf("Deadline %s: %s", kind, item.Name)

	deadline := "none"
	if item.Deadline != nil {
		deadline = item.Deadline.Format(time.RFC1123)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", alert.Message)
	fmt.Fprintf(&b, "Item:     %s\n", item.Name)
	fmt.Fprintf(&b, "Project:  %s\n", item.ProjectName)
	fmt.Fprintf(&b, "Deadline: %s\n", deadline)
	fmt.Fprintf(&b, "Status:   %s\n", item.Status)

	return subject, b.String()
}
