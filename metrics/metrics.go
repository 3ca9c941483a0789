package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocket metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sns_ws_connections",
			Help: "Current WebSocket connections",
		},
	)

	MessagesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sns_messages_delivered_total",
			Help: "Total messages delivered",
		},
		[]string{"kind"}, // "direct" or "room"
	)

	SendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sns_send_failures_total",
			Help: "Total failed send attempts",
		},
		[]string{"reason"},
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sns_notifications_created_total",
			Help: "Total notifications created",
		},
	)

	TypingEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sns_typing_events_total",
			Help: "Total typing signals relayed",
		},
	)
)
