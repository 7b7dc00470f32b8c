// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package network

import "time"

// Link names used in snapshots, logs and metrics.
const (
	LinkUSB       = "usb"
	LinkBluetooth = "bluetooth"
)

// LinkState is the reconciled state of one management link.
type LinkState struct {
	Name        string    `json:"name"`
	Interface   string    `json:"interface"`
	Enabled     bool      `json:"enabled"`
	Present     bool      `json:"present"`
	Up          bool      `json:"up"`
	Addressed   bool      `json:"addressed"`
	Unavailable bool      `json:"unavailable"`
	Failures    int       `json:"failures"`
	NextAttempt time.Time `json:"next_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Healthy reports whether an enabled link is fully configured.
func (l LinkState) Healthy() bool {
	return l.Enabled && l.Present && l.Up && l.Addressed
}

// Snapshot is the published reconciler state. Snapshots are immutable.
type Snapshot struct {
	Mode            Mode                 `json:"mode"`
	State           string               `json:"state"`
	WiFiConfigured  bool                 `json:"wifi_configured"`
	Associated      bool                 `json:"associated"`
	SSID            string               `json:"ssid,omitempty"`
	WiFiAddress     string               `json:"wifi_address,omitempty"`
	FailedChecks    int                  `json:"failed_checks"`
	LastAssociated  time.Time            `json:"last_associated"`
	LastTransition  time.Time            `json:"last_transition"`
	NextReprobe     time.Time            `json:"next_reprobe,omitempty"`
	ReprobeInFlight bool                 `json:"reprobe_in_flight"`
	Links           map[string]LinkState `json:"links"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// Link returns the named link state.
func (s *Snapshot) Link(name string) LinkState {
	if s == nil {
		return LinkState{Name: name}
	}
	return s.Links[name]
}
