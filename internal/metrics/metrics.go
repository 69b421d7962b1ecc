// Package metrics counts classified messages for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emurenMRz/bounceview/bounce"
)

// Unclassified labels messages that produced no results.
const Unclassified = "unknown"

// Recorder holds the classification metrics.
type Recorder struct {
	messages *prometheus.CounterVec
	results  *prometheus.CounterVec
	duration prometheus.Histogram
}

// New registers the metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bounceview_messages_total",
				Help: "Messages parsed, by resulting email type",
			},
			[]string{"email_type"},
		),
		results: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bounceview_results_total",
				Help: "Per-recipient results produced",
			},
			[]string{"email_type", "action", "reason"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bounceview_parse_seconds",
				Help:    "Time spent parsing one message",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}
}

// Observe records the results of one message and how long it took.
func (r *Recorder) Observe(results []bounce.Result, took time.Duration) {
	if r == nil {
		return
	}
	r.duration.Observe(took.Seconds())

	if len(results) == 0 {
		r.messages.WithLabelValues(Unclassified).Inc()
		return
	}
	r.messages.WithLabelValues(string(results[0].EmailType)).Inc()
	for _, res := range results {
		r.results.WithLabelValues(string(res.EmailType), string(res.Action), string(res.Reason)).Inc()
	}
}

// Parse runs h on raw and records the outcome.
func (r *Recorder) Parse(h *bounce.Handler, raw string) []bounce.Result {
	start := time.Now()
	results := h.Parse(raw)
	r.Observe(results, time.Since(start))
	return results
}
