package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the agent's Prometheus instrumentation.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	eventsReceived *prometheus.CounterVec
	eventsDropped  prometheus.Counter
	reconnects     prometheus.Counter
	sendsDropped   prometheus.Counter
}

// New registers the agent's collectors. unreadFn is sampled on every
// scrape so the unread gauge always reflects the live store.
func New(unreadFn func() float64) *Metrics {
	registry := prometheus.NewRegistry()

	eventsReceived := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stream_events_received_total",
		Help: "Push events received, by event kind",
	}, []string{"event"})

	eventsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_events_dropped_total",
		Help: "Push events dropped as malformed or unhandled",
	})

	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_reconnect_attempts_total",
		Help: "Reconnection attempts after abnormal stream closes",
	})

	sendsDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stream_sends_dropped_total",
		Help: "Outbound messages dropped because the stream was not connected",
	})

	unreadGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "notifications_unread",
		Help: "Unread notifications currently held in the store",
	}, unreadFn)

	registry.MustRegister(eventsReceived, eventsDropped, reconnects, sendsDropped, unreadGauge)

	return &Metrics{
		registry:       registry,
		handler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		eventsReceived: eventsReceived,
		eventsDropped:  eventsDropped,
		reconnects:     reconnects,
		sendsDropped:   sendsDropped,
	}
}

// Handler exposes the registry for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// EventReceived counts a classified push event
func (m *Metrics) EventReceived(event string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(event).Inc()
}

// EventDropped counts a malformed or unhandled push event
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.eventsDropped.Inc()
}

// ReconnectAttempt counts a scheduled reconnection attempt
func (m *Metrics) ReconnectAttempt() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

// SendDropped counts an outbound message dropped while disconnected
func (m *Metrics) SendDropped() {
	if m == nil {
		return
	}
	m.sendsDropped.Inc()
}
