package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Number of websocket connections currently joined to a group.",
	})

	messagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_messages_total",
		Help: "Number of messages broadcast to groups.",
	})

	slowDisconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_slow_disconnects_total",
		Help: "Number of connections dropped because their send queue was full.",
	})
)
