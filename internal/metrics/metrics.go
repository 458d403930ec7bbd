// Package metrics defines the process-wide Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/overdrive/internal/override"
)

// Override channel metrics
var (
	// PacketsTotal counts override payloads by result (accepted/short)
	PacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdrive_packets_total",
			Help: "Override payloads handled by the receiver, by result",
		},
		[]string{"result"},
	)

	// StepsTotal counts stepper cycles by decision
	StepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdrive_steps_total",
			Help: "Actuation steps by mode (disabled/fresh/stale)",
		},
		[]string{"mode"},
	)

	// ModeTransitionsTotal counts changes between stepper decisions
	ModeTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdrive_mode_transitions_total",
			Help: "Stepper mode transitions by target mode",
		},
		[]string{"to"},
	)
)

// Transport metrics
var (
	// DatagramsDroppedTotal counts datagrams the link layer could not parse
	DatagramsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overdrive_datagrams_dropped_total",
			Help: "Datagrams dropped before dispatch, by reason",
		},
		[]string{"reason"},
	)

	// ReadErrorsTotal counts transport read failures
	ReadErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "overdrive_read_errors_total",
			Help: "Transport read errors",
		},
	)
)

// Observer feeds override notifications into the counters above.
type Observer struct{}

var _ override.Observer = Observer{}

func (Observer) OnPacket(accepted bool) {
	if accepted {
		PacketsTotal.WithLabelValues("accepted").Inc()
		return
	}
	PacketsTotal.WithLabelValues("short").Inc()
}

func (Observer) OnStep(mode override.Mode) {
	StepsTotal.WithLabelValues(mode.String()).Inc()
}

func (Observer) OnModeChange(_, current override.Mode) {
	ModeTransitionsTotal.WithLabelValues(current.String()).Inc()
}
