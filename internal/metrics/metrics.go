package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

const namespace = "driver_availability"

// Metrics holds the service collectors.
type Metrics struct {
	applyDays     *prometheus.CounterVec
	applyFailures prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		applyDays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_apply_days_total",
			Help:      "Dates processed by template applications, by outcome.",
		}, []string{"outcome"}),
		applyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_apply_failures_total",
			Help:      "Template applications aborted by an error.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(m.applyDays, m.applyFailures, m.httpRequests, m.httpDuration)
	return m
}

func (m *Metrics) ObserveApply(outcome model.WriteOutcome) {
	m.applyDays.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) ObserveApplyFailure() {
	m.applyFailures.Inc()
}

// ObserveHTTP records one finished request. route is the matched path template.
func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
