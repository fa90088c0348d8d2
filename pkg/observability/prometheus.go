// Package observability provides Prometheus metrics for fstab-add runs.
package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// namespace is the Prometheus metric namespace prefix for all fstab-add metrics.
	namespace = "fstab_add"
)

// Run outcomes
const (
	OutcomeCommitted = "committed"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "failed"
)

// Metrics holds all Prometheus metrics for one fstab-add run.
type Metrics struct {
	registry *prometheus.Registry

	// Step metrics
	stepsTotal    *prometheus.CounterVec
	stepsDuration *prometheus.HistogramVec

	// Discovery metrics
	volumesDiscovered prometheus.Gauge
	fstypesDiscovered prometheus.Gauge

	// Run metrics
	runsTotal        *prometheus.CounterVec
	lastRunTimestamp prometheus.Gauge
	lastRunDuration  prometheus.Gauge
	auditEventsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
// Uses a custom registry so tests can create as many instances as they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of run steps by step and status",
			},
			[]string{"step", "status"},
		),

		stepsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of table backup and append steps in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"step"},
		),

		volumesDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "volumes_discovered",
			Help:      "Number of volumes listed in the stable identifier directory",
		}),

		fstypesDiscovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fstypes_discovered",
			Help:      "Number of filesystem types offered to the operator",
		}),

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of runs by outcome",
			},
			[]string{"outcome"},
		),

		lastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),

		lastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run, prompts included",
		}),

		auditEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_events_total",
				Help:      "Total number of audit events by type and outcome",
			},
			[]string{"type", "outcome"},
		),
	}

	// Register all metrics with the custom registry
	reg.MustRegister(
		m.stepsTotal,
		m.stepsDuration,
		m.volumesDiscovered,
		m.fstypesDiscovered,
		m.runsTotal,
		m.lastRunTimestamp,
		m.lastRunDuration,
		m.auditEventsTotal,
	)

	return m
}

// WriteTextfile writes the registry to path for the node_exporter textfile
// collector. The file is written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// RecordStep records the outcome of a run step.
// step should be one of: privilege, discover, select_volume, select_type,
// mountpoint, confirm, backup, append.
func (m *Metrics) RecordStep(step string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.stepsTotal.WithLabelValues(step, status).Inc()
}

// RecordTimedStep records a step outcome along with its duration.
func (m *Metrics) RecordTimedStep(step string, err error, duration time.Duration) {
	m.RecordStep(step, err)
	m.stepsDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// SetVolumesDiscovered records how many volumes were listed.
func (m *Metrics) SetVolumesDiscovered(n int) {
	m.volumesDiscovered.Set(float64(n))
}

// SetFilesystemTypesDiscovered records how many filesystem types were offered.
func (m *Metrics) SetFilesystemTypesDiscovered(n int) {
	m.fstypesDiscovered.Set(float64(n))
}

// RecordRun records how a run ended.
// outcome should be one of: committed, declined, failed.
func (m *Metrics) RecordRun(outcome string, duration time.Duration) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.lastRunDuration.Set(duration.Seconds())
	m.lastRunTimestamp.SetToCurrentTime()
}

// RecordAuditEvent counts an audit event.
func (m *Metrics) RecordAuditEvent(eventType, outcome string) {
	m.auditEventsTotal.WithLabelValues(eventType, outcome).Inc()
}
