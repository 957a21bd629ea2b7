// Package metrics exposes Prometheus counters for check runs.
//
// A Collector registers on a caller-supplied registry so that tests and
// concurrent runs do not share global state. CI jobs can dump the values
// with WriteTextfile for the node exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yaklabco/gramlint/pkg/typo"
)

const namespace = "gramlint"

// Collector holds every metric gramlint records.
type Collector struct {
	registry *prometheus.Registry

	// FilesChecked counts linted files. Labels: language.
	FilesChecked *prometheus.CounterVec

	// FragmentsChecked counts fragments sent to the engine.
	FragmentsChecked prometheus.Counter

	// FragmentsSkipped counts fragments dropped by a failing rule.
	FragmentsSkipped prometheus.Counter

	// EngineErrors counts failed engine calls.
	EngineErrors prometheus.Counter

	// EngineSeconds observes engine call durations.
	EngineSeconds prometheus.Histogram

	// TyposFound counts reported typos. Labels: category.
	TyposFound *prometheus.CounterVec

	// TyposSuppressed counts typos removed by the category filter.
	TyposSuppressed prometheus.Counter
}

// New registers a Collector on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		FilesChecked: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_checked_total",
			Help:      "Files checked, by detected language.",
		}, []string{"language"}),
		FragmentsChecked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_checked_total",
			Help:      "Prose fragments analyzed by the grammar engine.",
		}),
		FragmentsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fragments_skipped_total",
			Help:      "Fragments skipped because a character rule failed.",
		}),
		EngineErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_errors_total",
			Help:      "Grammar engine calls that failed.",
		}),
		EngineSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_latency_seconds",
			Help:      "Grammar engine call latency.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		TyposFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "typos_found_total",
			Help:      "Typos reported after filtering, by category.",
		}, []string{"category"}),
		TyposSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "typos_suppressed_total",
			Help:      "Typos removed by context suppression or user settings.",
		}),
	}
}

// Registry returns the registry the collector lives on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// FragmentChecked implements grammar.Recorder.
func (c *Collector) FragmentChecked() { c.FragmentsChecked.Inc() }

// FragmentSkipped implements grammar.Recorder.
func (c *Collector) FragmentSkipped() { c.FragmentsSkipped.Inc() }

// EngineFailed implements grammar.Recorder.
func (c *Collector) EngineFailed() { c.EngineErrors.Inc() }

// EngineLatency implements grammar.Recorder.
func (c *Collector) EngineLatency(d time.Duration) {
	c.EngineSeconds.Observe(d.Seconds())
}

// RecordFile records one checked file and its surviving typos.
func (c *Collector) RecordFile(language string, kept []typo.Typo, suppressed int) {
	c.FilesChecked.WithLabelValues(language).Inc()
	for cat, n := range typo.CountByCategory(kept) {
		c.TyposFound.WithLabelValues(string(cat)).Add(float64(n))
	}
	if suppressed > 0 {
		c.TyposSuppressed.Add(float64(suppressed))
	}
}

// WriteTextfile writes the current values in the Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
