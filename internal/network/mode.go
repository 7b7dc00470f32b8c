// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package network

// Mode is the externally visible WiFi role.
type Mode string

const (
	ModeClient          Mode = "client"
	ModeHotspotFallback Mode = "hotspot_fallback"
	ModeTransitioning   Mode = "transitioning"
)

// Label is the short form shown on the display.
func (m Mode) Label() string {
	switch m {
	case ModeClient:
		return "WiFi"
	case ModeHotspotFallback:
		return "AP"
	default:
		return "..."
	}
}

// wifiState is the reconciler's internal WiFi state.
type wifiState int

const (
	stateClient wifiState = iota
	stateProbing
	stateHotspot
	stateReprobing
)

func (s wifiState) String() string {
	switch s {
	case stateClient:
		return "client"
	case stateProbing:
		return "probing"
	case stateHotspot:
		return "hotspot_fallback"
	case stateReprobing:
		return "reprobing"
	default:
		return "unknown"
	}
}

// Mode maps the internal state onto the exported mode.
func (s wifiState) Mode() Mode {
	switch s {
	case stateClient:
		return ModeClient
	case stateHotspot:
		return ModeHotspotFallback
	default:
		return ModeTransitioning
	}
}
