package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Счетчики движка тревог. Регистрируются в дефолтном реестре,
// отдаются наружу через promhttp в composition root.
var (
	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_engine_alerts_created_total",
		Help: "Number of alerts created, by category.",
	}, []string{"category"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_engine_status_transitions_total",
		Help: "Number of successful status transitions, by source and target.",
	}, []string{"from", "to"})

	ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_engine_reports_submitted_total",
		Help: "Number of veracity reports submitted, by type.",
	}, []string{"type"})

	NotificationIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alert_engine_notification_intents_total",
		Help: "Number of notification intents produced, by kind and urgency.",
	}, []string{"kind", "urgent"})

	FanoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "alert_engine_fanout_duration_seconds",
		Help:    "Wall time of a single fan-out computation.",
		Buckets: prometheus.DefBuckets,
	})
)
