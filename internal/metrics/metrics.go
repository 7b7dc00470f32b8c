// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Network modes as exported on zero2_network_mode.
var networkModes = []string{"client", "hotspot_fallback", "transitioning"}

// Battery states as exported on zero2_battery_state.
const (
	BatteryNormal   = 0
	BatteryLow      = 1
	BatteryWarning  = 2
	BatteryShutdown = 3
	breakerClosed   = 0
	breakerOpen     = 1
	breakerHalfOpen = 2
)

var (
	// Network reconciler
	NetworkMode = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zero2_network_mode",
			Help: "Current WiFi mode (1 for the active mode, 0 otherwise)",
		},
		[]string{"mode"},
	)

	NetworkTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_network_transitions_total",
			Help: "Total number of WiFi mode transitions",
		},
		[]string{"from", "to"},
	)

	ReconcileTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zero2_reconcile_ticks_total",
			Help: "Total number of network reconcile passes",
		},
	)

	LinkUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zero2_link_up",
			Help: "Whether a managed link is present, up and addressed",
		},
		[]string{"link"},
	)

	NetworkActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_network_actions_total",
			Help: "Total number of network actions by outcome",
		},
		[]string{"action", "outcome"}, // outcome: "ok", "error", "timeout", "backoff"
	)

	NetworkActionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zero2_network_action_duration_seconds",
			Help:    "Duration of network actions in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"action"},
	)

	// Hardware probes
	ProbeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_probe_failures_total",
			Help: "Total number of failed probe readings",
		},
		[]string{"probe"},
	)

	ProbeDegraded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zero2_probe_degraded",
			Help: "Whether a probe has crossed its consecutive failure threshold",
		},
		[]string{"probe"},
	)

	// Battery watchdog
	BatteryState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zero2_battery_state",
			Help: "Battery watchdog state (0=normal, 1=low, 2=warning, 3=shutting down)",
		},
	)

	BatteryShutdowns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zero2_battery_shutdowns_total",
			Help: "Total number of shutdowns issued by the battery watchdog",
		},
	)

	// Display
	DisplayRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_display_renders_total",
			Help: "Total number of display frame pushes by result",
		},
		[]string{"result"}, // "ok", "error", "skipped"
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zero2_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Configuration
	ConfigReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_config_reloads_total",
			Help: "Total number of configuration reloads by result",
		},
		[]string{"result"},
	)

	// Supervisor
	ServiceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_supervisor_events_total",
			Help: "Total number of supervisor events by type",
		},
		[]string{"type"},
	)

	// Status API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zero2_api_requests_total",
			Help: "Total number of status API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zero2_api_request_duration_seconds",
			Help:    "Duration of status API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// SetNetworkMode marks mode as the active WiFi mode.
func SetNetworkMode(mode string) {
	for _, m := range networkModes {
		v := 0.0
		if m == mode {
			v = 1
		}
		NetworkMode.WithLabelValues(m).Set(v)
	}
}

// RecordTransition counts a mode change.
func RecordTransition(from, to string) {
	NetworkTransitions.WithLabelValues(from, to).Inc()
}

// SetLinkUp records whether a managed link is healthy.
func SetLinkUp(link string, up bool) {
	LinkUp.WithLabelValues(link).Set(boolToFloat(up))
}

// RecordAction records a network action outcome and its duration.
func RecordAction(action, outcome string, duration time.Duration) {
	NetworkActions.WithLabelValues(action, outcome).Inc()
	if outcome != "backoff" {
		NetworkActionDuration.WithLabelValues(action).Observe(duration.Seconds())
	}
}

// RecordProbe records a probe reading and the probe's degraded flag.
func RecordProbe(probe string, ok, degraded bool) {
	if !ok {
		ProbeFailures.WithLabelValues(probe).Inc()
	}
	ProbeDegraded.WithLabelValues(probe).Set(boolToFloat(degraded))
}

// RecordDisplayRender counts a frame push.
func RecordDisplayRender(result string) {
	DisplayRenders.WithLabelValues(result).Inc()
}

// RecordBreakerTransition records a circuit breaker state change.
// States are the gobreaker names: "closed", "open", "half-open".
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

// RecordConfigReload counts a reload attempt.
func RecordConfigReload(err error) {
	if err != nil {
		ConfigReloads.WithLabelValues("error").Inc()
		return
	}
	ConfigReloads.WithLabelValues("ok").Inc()
}

// RecordAPIRequest records a status API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func breakerStateValue(state string) float64 {
	switch state {
	case "open":
		return breakerOpen
	case "half-open":
		return breakerHalfOpen
	default:
		return breakerClosed
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
