package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes recorded per quote source.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeThrottled = "throttled"
)

// Recorder tracks outbound market data fetches and chain resolution.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	fetchTotal    *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	resolvedTotal *prometheus.CounterVec
	credRefresh   prometheus.Counter
}

// New creates a recorder registered on the default Prometheus registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		fetchTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxoptions_source_fetch_total",
				Help: "Outbound quote source requests by outcome",
			},
			[]string{"source", "outcome"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxoptions_source_fetch_duration_seconds",
				Help:    "Duration of outbound quote source requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		resolvedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxoptions_market_field_resolved_total",
				Help: "Market data fields by the kind of source that resolved them",
			},
			[]string{"field", "kind"},
		),
		credRefresh: f.NewCounter(
			prometheus.CounterOpts{
				Name: "fxoptions_yahoo_credential_refresh_total",
				Help: "Number of Yahoo cookie and crumb acquisitions",
			},
		),
	}
}

// RecordFetch records one outbound request.
func (r *Recorder) RecordFetch(source, outcome string, seconds float64) {
	if r == nil {
		return
	}
	r.fetchTotal.WithLabelValues(source, outcome).Inc()
	if outcome != OutcomeThrottled {
		r.fetchLatency.WithLabelValues(source).Observe(seconds)
	}
}

// RecordResolved records how a market data field was resolved: "live",
// "default", or "absent".
func (r *Recorder) RecordResolved(field, kind string) {
	if r == nil {
		return
	}
	r.resolvedTotal.WithLabelValues(field, kind).Inc()
}

// RecordCredentialRefresh counts a credential acquisition.
func (r *Recorder) RecordCredentialRefresh() {
	if r == nil {
		return
	}
	r.credRefresh.Inc()
}
