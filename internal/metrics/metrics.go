// Package metrics exposes burn-in progress as Prometheus gauges so a
// multi-hour unattended run can be watched remotely.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"disk-burnin/pkg/types"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	PhaseStatus   *prometheus.GaugeVec
	PhaseProgress *prometheus.GaugeVec
	ScanBadBlocks *prometheus.GaugeVec
	BurninUp      prometheus.Gauge
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		PhaseStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "burnin_phase_status",
				Help: "Burn-in phase status (0=pending, 1=passed, 2=skipped, 3=failed, 4=aborted)",
			},
			[]string{"device", "phase"},
		),
		PhaseProgress: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "burnin_phase_progress_percent",
				Help: "Progress of the in-flight burn-in phase",
			},
			[]string{"device", "phase"},
		),
		ScanBadBlocks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "burnin_scan_bad_blocks",
				Help: "Bad blocks found by the destructive write/verify scan",
			},
			[]string{"device"},
		),
		BurninUp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "burnin_up",
				Help: "Whether a burn-in run is in progress",
			},
		),
	}

	prometheus.MustRegister(
		m.PhaseStatus,
		m.PhaseProgress,
		m.ScanBadBlocks,
		m.BurninUp,
	)

	return m
}

// SetPhaseProgress updates the progress gauge for one phase
func (m *Metrics) SetPhaseProgress(device, phase string, percent float64) {
	if m == nil {
		return
	}
	m.PhaseProgress.WithLabelValues(device, phase).Set(percent)
}

// RecordOutcome maps a phase outcome onto the status gauge
func (m *Metrics) RecordOutcome(device string, outcome types.PhaseOutcome) {
	if m == nil {
		return
	}
	m.PhaseStatus.WithLabelValues(device, string(outcome.Phase)).Set(statusValue(outcome.Status))
	if outcome.Phase == types.PhaseDestructiveScan {
		m.ScanBadBlocks.WithLabelValues(device).Set(float64(outcome.BadBlocks))
	}
}

// SetUp flags whether a run is in progress
func (m *Metrics) SetUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.BurninUp.Set(1)
	} else {
		m.BurninUp.Set(0)
	}
}

// Serve starts the /metrics listener in the background
func (m *Metrics) Serve(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(listen, mux)
}

// statusValue converts a phase status to its gauge value
func statusValue(status types.PhaseStatus) float64 {
	switch status {
	case types.StatusPassed:
		return 1
	case types.StatusSkipped:
		return 2
	case types.StatusFailed:
		return 3
	case types.StatusAborted:
		return 4
	default:
		return 0
	}
}
