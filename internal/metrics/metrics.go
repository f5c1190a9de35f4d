package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay and intake outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeLocalError    = "local_error"
	OutcomeUnavailable   = "upstream_unavailable"
	OutcomeUpstreamError = "upstream_error"

	IntakeNew       = "new"
	IntakeDuplicate = "duplicate"
)

// Registry holds the service metrics. A nil *Registry is valid and records nothing.
type Registry struct {
	reg             *prometheus.Registry
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	RelayRequests   *prometheus.CounterVec
	OrdersReceived  *prometheus.CounterVec
	EventsPublished *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	relayRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_requests_total",
		Help: "Status relays by operation and outcome.",
	}, []string{"operation", "outcome"})
	ordersReceived := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_received_total",
		Help: "Intake requests by outcome.",
	}, []string{"outcome"})
	eventsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_published_total",
		Help: "Order events handed to the broker by type and result.",
	}, []string{"type", "result"})

	r.MustRegister(
		httpRequests, httpDuration, relayRequests, ordersReceived, eventsPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Registry{
		reg:             r,
		HTTPRequests:    httpRequests,
		HTTPDuration:    httpDuration,
		RelayRequests:   relayRequests,
		OrdersReceived:  ordersReceived,
		EventsPublished: eventsPublished,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// ObserveHTTP records one served request.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRelay records the outcome of a relay operation.
func (r *Registry) ObserveRelay(operation, outcome string) {
	if r == nil {
		return
	}

	r.RelayRequests.WithLabelValues(operation, outcome).Inc()
}

// ObserveIntake records a new or duplicate intake.
func (r *Registry) ObserveIntake(outcome string) {
	if r == nil {
		return
	}

	r.OrdersReceived.WithLabelValues(outcome).Inc()
}

// ObserveEvent records whether an event reached the broker.
func (r *Registry) ObserveEvent(eventType string, err error) {
	if r == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	r.EventsPublished.WithLabelValues(eventType, result).Inc()
}
