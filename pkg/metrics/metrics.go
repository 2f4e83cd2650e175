package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks live websocket connections.
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "banterbox_connections_active",
		Help: "Number of live websocket connections.",
	})

	// EventsTotal counts inbound named events by event name.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banterbox_events_total",
		Help: "Inbound client events handled, by event name.",
	}, []string{"event"})

	// MessagesSaved counts chat messages persisted to the store.
	MessagesSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "banterbox_messages_saved_total",
		Help: "Chat messages persisted to the message store.",
	})

	// DroppedFrames counts outbound frames dropped on full send buffers.
	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "banterbox_outbound_dropped_total",
		Help: "Outbound frames dropped because a client send buffer was full.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
