// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

/*
Package metrics exposes Prometheus instrumentation for the controller.

All collectors are registered on the default registry at package init via
promauto and are served by the status API at /metrics:

	curl http://127.0.0.1:9110/metrics

# Available Metrics

Network:
  - zero2_network_mode: one-hot gauge over client, hotspot_fallback, transitioning
  - zero2_network_transitions_total: mode changes (labels: from, to)
  - zero2_reconcile_ticks_total: reconcile passes
  - zero2_link_up: managed link health (label: link)
  - zero2_network_actions_total: action outcomes (labels: action, outcome)
  - zero2_network_action_duration_seconds: action latency (label: action)

Probes:
  - zero2_probe_failures_total: failed readings (label: probe)
  - zero2_probe_degraded: consecutive failure threshold crossed (label: probe)

Battery:
  - zero2_battery_state: 0=normal, 1=low, 2=warning, 3=shutting down
  - zero2_battery_shutdowns_total: shutdowns issued

Display and breakers:
  - zero2_display_renders_total: frame pushes (label: result)
  - zero2_circuit_breaker_state: 0=closed, 1=open, 2=half-open (label: name)
  - zero2_circuit_breaker_transitions_total: (labels: name, from, to)

Runtime:
  - zero2_config_reloads_total: SIGHUP reloads (label: result)
  - zero2_supervisor_events_total: suture events (label: type)
  - zero2_api_requests_total, zero2_api_request_duration_seconds
*/
package metrics
