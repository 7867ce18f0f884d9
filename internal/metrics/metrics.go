// Package metrics exposes playlist build telemetry in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/desertthunder/tunename/internal/shared"
	"github.com/desertthunder/tunename/internal/tasks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tunename"

// Build results reported in tunename_builds_total.
const (
	ResultOK                  = "ok"
	ResultNoContacts          = "no_contacts"
	ResultContactsUnavailable = "contacts_unavailable"
	ResultTooManyErrors       = "too_many_errors"
	ResultNotEnoughSongs      = "not_enough_songs"
	ResultInvalid             = "invalid"
	ResultCancelled           = "cancelled"
	ResultError               = "error"
)

// Metrics owns a private registry and implements [tasks.Recorder].
type Metrics struct {
	registry *prometheus.Registry
	searches *prometheus.CounterVec
	builds   *prometheus.CounterVec
	rounds   prometheus.Histogram
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

var _ tasks.Recorder = (*Metrics)(nil)

// New registers every collector, including the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contact_searches_total",
			Help:      "Song searches issued for contacts, by outcome.",
		}, []string{"outcome"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Playlist builds, by result.",
		}, []string{"result"}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Wall time of a single search round.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.searches, m.builds, m.rounds, m.requests, m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveSearch(outcome tasks.SearchOutcome) {
	m.searches.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) ObserveRound(d time.Duration) {
	m.rounds.Observe(d.Seconds())
}

func (m *Metrics) ObserveBuild(err error) {
	m.builds.WithLabelValues(BuildResult(err)).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// BuildResult maps a build error to its result label.
func BuildResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, shared.ErrNoContacts):
		return ResultNoContacts
	case errors.Is(err, shared.ErrContactsUnavailable):
		return ResultContactsUnavailable
	case errors.Is(err, shared.ErrPlaylistGeneral):
		return ResultTooManyErrors
	case errors.Is(err, shared.ErrNotEnoughSongs):
		return ResultNotEnoughSongs
	case errors.Is(err, shared.ErrInvalidInput):
		return ResultInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCancelled
	default:
		return ResultError
	}
}
