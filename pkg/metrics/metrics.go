package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Deadline check metrics
	AlertsCreated         *prometheus.CounterVec
	AlertFailures         prometheus.Counter
	DeadlineCheckDuration prometheus.Histogram

	// Notification metrics
	NotificationsCreated      *prometheus.CounterVec
	NotificationsDeduplicated prometheus.Counter

	// Email metrics
	Emails *prometheus.CounterVec
}

// New creates the application metrics without registering them.
func New(namespace string) *Metrics {
	return &Metrics{
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "Total number of deadline alerts created",
		}, []string{"type"}),
		AlertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alert_failures_total",
			Help:      "Total number of items whose alert could not be checked or created",
		}),
		DeadlineCheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "deadline_check_duration_seconds",
			Help:      "Time spent running a deadline check",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		NotificationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Total number of notifications persisted",
		}, []string{"type"}),
		NotificationsDeduplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_deduplicated_total",
			Help:      "Total number of notify calls answered by an existing unread notification",
		}),
		Emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Alert emails by outcome",
		}, []string{"status"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.AlertsCreated,
		m.AlertFailures,
		m.DeadlineCheckDuration,
		m.NotificationsCreated,
		m.NotificationsDeduplicated,
		m.Emails,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
