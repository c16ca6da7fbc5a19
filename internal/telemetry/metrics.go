// Package telemetry exports solver progress as Prometheus metrics.
package telemetry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/roach88/arcosphere/internal/solver"
)

const namespace = "arcosphere"

// Task outcomes used as the "outcome" label.
const (
	OutcomeFound = "found"
	OutcomeError = "error"
)

// Metrics implements solver.Observer on top of a Prometheus registry.
//
// Each Metrics owns its registry, so several solvers (or tests) never
// collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	tasks         *prometheus.CounterVec
	taskDuration  prometheus.Histogram
	statesVisited prometheus.Counter
	halfRounds    prometheus.Histogram
	pathsFound    prometheus.Counter
	catalystSize  prometheus.Gauge
	sizesExplored prometheus.Counter
}

var _ solver.Observer = (*Metrics)(nil)

// NewMetrics creates and registers the solver metrics on a fresh registry.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "tasks_total",
			Help:      "Searches completed, by outcome (found, or the lower-case error code).",
		}, []string{"outcome"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "task_duration_seconds",
			Help:      "Wall time of one (catalysts, count) search.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		statesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "states_visited_total",
			Help:      "States discovered by the bidirectional searches.",
		}),
		halfRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "half_rounds",
			Help:      "Half-rounds run by one search before it stopped.",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		}),
		pathsFound: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "paths_found_total",
			Help:      "Paths found before minimal filtering.",
		}),
		catalystSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "catalyst_size",
			Help:      "Catalyst set size explored last.",
		}),
		sizesExplored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "catalyst_sizes_explored_total",
			Help:      "Catalyst set sizes fully explored.",
		}),
	}

	collectors := []prometheus.Collector{
		m.tasks, m.taskDuration, m.statesVisited, m.halfRounds,
		m.pathsFound, m.catalystSize, m.sizesExplored,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering solver metrics: %w", err)
		}
	}
	return m, nil
}

// Registry exposes the registry, eg. for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TaskCompleted implements solver.Observer.
func (m *Metrics) TaskCompleted(report solver.TaskReport) {
	m.tasks.WithLabelValues(outcome(report)).Inc()
	m.taskDuration.Observe(report.Duration.Seconds())
	m.statesVisited.Add(float64(report.States))
	m.halfRounds.Observe(float64(report.HalfRounds))
	m.pathsFound.Add(float64(report.Paths))
}

// SizeExplored implements solver.Observer.
func (m *Metrics) SizeExplored(size, _, _ int) {
	m.catalystSize.Set(float64(size))
	m.sizesExplored.Inc()
}

func outcome(report solver.TaskReport) string {
	if report.Err == nil {
		return OutcomeFound
	}
	var re *solver.ResolutionError
	if errors.As(report.Err, &re) {
		return strings.ToLower(string(re.Code))
	}
	return OutcomeError
}

// Sample is one gathered metric value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// String renders the sample as "name{labels} value".
func (s Sample) String() string {
	if s.Labels == "" {
		return fmt.Sprintf("%s %g", s.Name, s.Value)
	}
	return fmt.Sprintf("%s{%s} %g", s.Name, s.Labels, s.Value)
}

// Snapshot gathers counters and gauges, sorted by name then labels.
// Histograms are summarized by their sample count as name_count.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gathering metrics: %w", err)
	}

	var samples []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := formatLabels(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				samples = append(samples, Sample{Name: mf.GetName(), Labels: labels, Value: metric.GetCounter().GetValue()})
			case dto.MetricType_GAUGE:
				samples = append(samples, Sample{Name: mf.GetName(), Labels: labels, Value: metric.GetGauge().GetValue()})
			case dto.MetricType_HISTOGRAM:
				samples = append(samples, Sample{Name: mf.GetName() + "_count", Labels: labels, Value: float64(metric.GetHistogram().GetSampleCount())})
			}
		}
	}

	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return strings.Join(parts, ",")
}
