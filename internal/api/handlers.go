// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/zero2-controller/internal/battery"
	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/network"
)

// ConfigSource provides the current configuration snapshot.
type ConfigSource interface {
	Current() *config.Config
}

// NetworkController is the reconciler as seen by the API.
type NetworkController interface {
	Snapshot() *network.Snapshot
	TriggerReprobe() error
}

// BatteryView exposes the watchdog state.
type BatteryView interface {
	Snapshot() *battery.Snapshot
}

// DisplayView exposes the last rendered display lines.
type DisplayView interface {
	Lines() []string
}

// Handler serves the status endpoints. Battery and Display may be nil when
// the corresponding feature is disabled.
type Handler struct {
	Config  ConfigSource
	Network NetworkController
	Battery BatteryView
	Display DisplayView
}

// Status is the body of GET /api/v1/status.
type Status struct {
	Network *network.Snapshot `json:"network"`
	Battery *battery.Snapshot `json:"battery,omitempty"`
	Display []string          `json:"display,omitempty"`
	Config  ConfigSummary     `json:"config"`
}

// ConfigSummary is the subset of configuration useful to an operator.
type ConfigSummary struct {
	Source             string `json:"source"`
	EnableLowBat       bool   `json:"enable_low_bat"`
	EnableDisplay      bool   `json:"enable_display"`
	EnableButtons      bool   `json:"enable_buttons"`
	EnableSSHBT        bool   `json:"enable_ssh_bt"`
	EnableUSBOTG       bool   `json:"enable_usb_otg"`
	EnableWiFiHotspot  bool   `json:"enable_wifi_hotspot"`
	USBIP              string `json:"usb_ip"`
	BTIP               string `json:"bt_ip"`
	HotspotIP          string `json:"hotspot_ip"`
	CheckIntervalSec   int    `json:"network_check_interval"`
	FallbackTimeoutSec int    `json:"wifi_fallback_timeout"`
	ReprobeIntervalSec int    `json:"hotspot_reprobe_interval"`
	Warnings           int    `json:"warnings"`
}

func summarize(cfg *config.Config) ConfigSummary {
	return ConfigSummary{
		Source:             cfg.Source(),
		EnableLowBat:       cfg.EnableLowBat,
		EnableDisplay:      cfg.EnableDisplay,
		EnableButtons:      cfg.EnableButtons,
		EnableSSHBT:        cfg.EnableSSHBT,
		EnableUSBOTG:       cfg.EnableUSBOTG,
		EnableWiFiHotspot:  cfg.EnableWiFiHotspot,
		USBIP:              cfg.USBIP,
		BTIP:               cfg.BTIP,
		HotspotIP:          cfg.HotspotIP,
		CheckIntervalSec:   cfg.NetworkCheckInterval,
		FallbackTimeoutSec: cfg.WiFiFallbackTimeout,
		ReprobeIntervalSec: cfg.HotspotReprobeInterval,
		Warnings:           len(cfg.Warnings()),
	}
}

// Healthz reports liveness. It fails only before the reconciler has
// published its first snapshot.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	snap := h.Network.Snapshot()
	if snap == nil {
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "network state not yet published")
		return
	}
	respondData(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   string(snap.Mode),
	})
}

// Status returns the full runtime state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st := Status{
		Network: h.Network.Snapshot(),
		Config:  summarize(h.Config.Current()),
	}
	if h.Battery != nil {
		st.Battery = h.Battery.Snapshot()
	}
	if h.Display != nil {
		st.Display = h.Display.Lines()
	}
	respondData(w, r, http.StatusOK, st)
}

// Reprobe requests an immediate hotspot re-probe.
func (h *Handler) Reprobe(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())

	err := h.Network.TriggerReprobe()
	switch {
	case err == nil:
		log.Info().Msg("re-probe requested over status API")
		respondData(w, r, http.StatusAccepted, map[string]string{"reprobe": "scheduled"})
	case errors.Is(err, network.ErrReprobeInFlight), errors.Is(err, network.ErrNotInFallback):
		log.Debug().Err(err).Msg("re-probe rejected")
		respondError(w, r, http.StatusConflict, CodeConflict, err.Error())
	default:
		log.Error().Err(err).Msg("re-probe failed")
		respondError(w, r, http.StatusInternalServerError, CodeInternalError, "re-probe failed")
	}
}
