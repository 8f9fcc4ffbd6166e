// Package metrics exposes ingestion counters in the Prometheus text format.
// A batch run has no scrape endpoint, so the registry is written to a
// textfile for the node exporter's textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/warcsift/internal/model"
)

const namespace = "warcsift"

// Outcome label values of RecordsProcessed.
const (
	OutcomeRetained = "retained"
	OutcomeSkipped  = "skipped"
	OutcomeError    = "error"
)

// Collector holds all metrics of one process on a private registry.
type Collector struct {
	registry *prometheus.Registry

	RecordsProcessed *prometheus.CounterVec
	RecordsSkipped   *prometheus.CounterVec
	PagesStored      prometheus.Counter
	EdgesStored      prometheus.Counter
	RunDuration      prometheus.Gauge
	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewCollector creates and registers the metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		RecordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Response records processed, by outcome.",
		}, []string{"outcome"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Response records rejected by a gate, by reason.",
		}, []string{"reason"}),
		PagesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_stored_total",
			Help:      "Pages written to the store.",
		}),
		EdgesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "similarity_edges_stored_total",
			Help:      "Similarity edges written to the store.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed, 0 if it was cancelled.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	c.registry.MustRegister(
		c.RecordsProcessed,
		c.RecordsSkipped,
		c.PagesStored,
		c.EdgesStored,
		c.RunDuration,
		c.LastRunSuccess,
		c.LastRunTimestamp,
	)
	// Expose every reason so dashboards see zeros instead of gaps.
	for _, reason := range model.SkipReasons() {
		c.RecordsSkipped.WithLabelValues(reason.String())
	}
	return c
}

// Registry returns the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveOutcome counts one record outcome. Safe for concurrent use.
func (c *Collector) ObserveOutcome(o model.Outcome) {
	switch {
	case o.Failed():
		c.RecordsProcessed.WithLabelValues(OutcomeError).Inc()
	case o.Skip != model.SkipNone:
		c.RecordsProcessed.WithLabelValues(OutcomeSkipped).Inc()
		c.RecordsSkipped.WithLabelValues(o.Skip.String()).Inc()
	case o.Page != nil:
		c.RecordsProcessed.WithLabelValues(OutcomeRetained).Inc()
	}
}

// ObserveRun records the totals of a finished run.
func (c *Collector) ObserveRun(s *model.RunSummary) {
	if s == nil {
		return
	}
	c.PagesStored.Add(float64(s.PagesStored))
	c.EdgesStored.Add(float64(s.EdgesStored))
	c.RunDuration.Set(s.Elapsed().Seconds())
	if s.Cancelled {
		c.LastRunSuccess.Set(0)
	} else {
		c.LastRunSuccess.Set(1)
	}
	if !s.FinishedAt.IsZero() {
		c.LastRunTimestamp.Set(float64(s.FinishedAt.Unix()))
	}
}

// WriteTextfile writes the registry to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
