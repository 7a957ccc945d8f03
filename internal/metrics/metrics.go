// Package metrics provides Prometheus metrics for ranking runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for ranking runs.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	Iterations   prometheus.Gauge
	Documents    prometheus.Gauge
	Edges        prometheus.Gauge
	FinalDelta   prometheus.Gauge
	Converged    prometheus.Gauge
	LastRunStart prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkrank_runs_total",
				Help: "Total number of ranking runs",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkrank_run_duration_seconds",
				Help:    "Duration of ranking runs in seconds",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		Iterations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkrank_pagerank_iterations",
			Help: "Power-method iterations used by the last run",
		}),
		Documents: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkrank_graph_documents",
			Help: "Documents in the last ranked graph",
		}),
		Edges: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkrank_graph_edges",
			Help: "Distinct links in the last ranked graph",
		}),
		FinalDelta: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkrank_pagerank_final_delta",
			Help: "L1 distance of the last power-method iteration",
		}),
		Converged: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkrank_pagerank_converged",
			Help: "1 if the last run converged before the iteration cap",
		}),
		LastRunStart: factory.NewGauge(prometheus.GaugeOpts{
			Name: "linkrank_last_run_timestamp_seconds",
			Help: "Unix time the last run started",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RunSample is what a completed run reports.
type RunSample struct {
	Started    time.Time
	Duration   time.Duration
	Documents  int
	Edges      int
	Iterations int
	Delta      float64
	Converged  bool
}

// RecordRun records a successful run.
func (m *Metrics) RecordRun(s RunSample) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues("ok").Inc()
	m.RunDuration.Observe(s.Duration.Seconds())
	m.Iterations.Set(float64(s.Iterations))
	m.Documents.Set(float64(s.Documents))
	m.Edges.Set(float64(s.Edges))
	m.FinalDelta.Set(s.Delta)
	m.LastRunStart.Set(float64(s.Started.Unix()))
	if s.Converged {
		m.Converged.Set(1)
	} else {
		m.Converged.Set(0)
	}
}

// RecordFailure counts a run that returned an error.
func (m *Metrics) RecordFailure(duration time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues("error").Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// WriteTextfile writes the current metrics in the text exposition format,
// for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
