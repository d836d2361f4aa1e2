// Package metrics provides observability for the broker's authentication
// flows. All methods are safe on a nil receiver so callers can run without
// metrics wired, as tests do.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Authentication outcomes by result
	AuthenticateOutcome *prometheus.CounterVec

	// Silent attempts that fell through to the interactive gate
	SilentFallbacks prometheus.Counter

	// Per-phase wait latencies
	PhaseLatency *prometheus.HistogramVec

	// Accounts seen by the most recent completed discovery
	AccountsDiscovered prometheus.Gauge

	// Event pumps currently servicing an interactive wait
	ActivePumps prometheus.Gauge
}

// New creates a Metrics instance with all broker metrics registered.
func New() *Metrics {
	return &Metrics{
		AuthenticateOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "keybridge_authenticate_total",
			Help: "Total authentication requests by final result",
		}, []string{"result"}), // result: "silent_success", "interactive_success", "interaction_required", "timeout", "provider_error"

		SilentFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keybridge_silent_fallbacks_total",
			Help: "Total silent attempts that fell back to the interactive gate",
		}),

		PhaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "keybridge_phase_duration_seconds",
			Help:    "Duration of authentication phases",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60},
		}, []string{"phase"}), // phase: "silent", "interactive", "discovery", "signin_silent"

		AccountsDiscovered: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "keybridge_accounts_discovered",
			Help: "Accounts listed by the most recent completed discovery",
		}),

		ActivePumps: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "keybridge_active_pumps",
			Help: "Event pumps currently servicing an interactive wait",
		}),
	}
}

// IncrementOutcome records the final result of an authentication request.
func (m *Metrics) IncrementOutcome(result string) {
	if m != nil {
		m.AuthenticateOutcome.WithLabelValues(result).Inc()
	}
}

// IncrementSilentFallback records a silent attempt that did not satisfy the
// request.
func (m *Metrics) IncrementSilentFallback() {
	if m != nil {
		m.SilentFallbacks.Inc()
	}
}

// ObservePhase records how long one wait phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m != nil {
		m.PhaseLatency.WithLabelValues(phase).Observe(d.Seconds())
	}
}

// SetAccountsDiscovered records the size of the latest directory listing.
func (m *Metrics) SetAccountsDiscovered(count int) {
	if m != nil {
		m.AccountsDiscovered.Set(float64(count))
	}
}

// PumpStarted marks an interactive wait entering its pump loop.
func (m *Metrics) PumpStarted() {
	if m != nil {
		m.ActivePumps.Inc()
	}
}

// PumpFinished marks an interactive wait leaving its pump loop.
func (m *Metrics) PumpFinished() {
	if m != nil {
		m.ActivePumps.Dec()
	}
}
