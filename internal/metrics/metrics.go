// ============================================================================
// Conversion Metrics - Prometheus
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Count what a conversion run read and produced
//
// The converter is a batch job, so nothing is scraped. After each run,
// failed ones included, the registry is written in the text exposition
// format to a file that node_exporter's textfile collector picks up.
//
// Metrics:
//   - jobtrace_events_total{kind}:        input events by kind
//   - jobtrace_records_total{phase}:      output records by phase
//   - jobtrace_failures_total{reason}:    aborted conversions by error class
//   - jobtrace_conversion_seconds:        wall time of the last run
//   - jobtrace_log_span_microseconds:     normalized timestamp of the last record
//
// Example queries:
//   jobtrace_records_total{phase="B"} - jobtrace_records_total{phase="E"}
//     → spans left open in the last trace (yield_wait_start half pairs)
//
// ============================================================================

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ChuLiYu/jobthread-trace/internal/tef"
	"github.com/ChuLiYu/jobthread-trace/pkg/types"
)

// Collector owns a private registry so several runs (and tests) never clash
// on the default registerer.
type Collector struct {
	registry *prometheus.Registry

	events   *prometheus.CounterVec
	records  *prometheus.CounterVec
	failures *prometheus.CounterVec

	duration prometheus.Gauge
	logSpan  prometheus.Gauge
}

// NewCollector creates and registers all metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrace_events_total",
			Help: "Scheduler events read from the instrumentation log",
		}, []string{"kind"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrace_records_total",
			Help: "Trace records emitted",
		}, []string{"phase"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobtrace_failures_total",
			Help: "Conversions aborted by an error",
		}, []string{"reason"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobtrace_conversion_seconds",
			Help: "Wall time of the last conversion",
		}),
		logSpan: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jobtrace_log_span_microseconds",
			Help: "Largest normalized timestamp in the last trace",
		}),
	}

	c.registry.MustRegister(c.events, c.records, c.failures, c.duration, c.logSpan)
	return c
}

// Registry exposes the collector's registry as a Gatherer.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveEvents counts input events by kind. Unrecognized kinds are folded
// into "other" to keep label cardinality bounded.
func (c *Collector) ObserveEvents(events []types.RawEvent) {
	for _, ev := range events {
		kind := string(ev.Kind)
		if !ev.Kind.IsKnown() {
			kind = "other"
		}
		c.events.WithLabelValues(kind).Inc()
	}
}

// ObserveRecords counts output records by phase and tracks the log span.
func (c *Collector) ObserveRecords(records []tef.Event) {
	var last int64
	for _, rec := range records {
		c.records.WithLabelValues(string(rec.Phase)).Inc()
		last = max(last, rec.Timestamp)
	}
	c.logSpan.Set(float64(last))
}

// ObserveFailure counts an aborted conversion.
func (c *Collector) ObserveFailure(reason string) {
	c.failures.WithLabelValues(reason).Inc()
}

// ObserveDuration records the wall time of a run.
func (c *Collector) ObserveDuration(d time.Duration) {
	c.duration.Set(d.Seconds())
}

// WriteTextfile writes the registry to path atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
