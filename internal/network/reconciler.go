// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package network reconciles the controller's management paths: the USB
// Ethernet gadget, the Bluetooth PAN bridge, and WiFi client versus hotspot
// fallback.
//
// The Reconciler is driven by a single loop goroutine calling Tick. All state
// is owned by that goroutine; readers use Snapshot, which is published
// through an atomic pointer after every tick. TriggerReprobe is the only
// method that may be called concurrently with Tick.
//
// WiFi state machine:
//
//	Client --N failed checks--> Probing --fallback timeout--> HotspotFallback
//	  ^                           |                                |
//	  +-------- association ------+                  reprobe interval or trigger
//	  ^                                                            v
//	  +-------------------- association ------------------- Reprobing
//	                                      window elapsed: restart hotspot
//
// USB and Bluetooth links are reconciled independently on every tick and are
// never touched by WiFi transitions.
package network

import (
	"context"
	"errors"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/metrics"
	"github.com/tomtom215/zero2-controller/internal/netaction"
	"github.com/tomtom215/zero2-controller/internal/probe"
)

var (
	// ErrReprobeInFlight is returned by TriggerReprobe while a re-probe is pending or running.
	ErrReprobeInFlight = errors.New("hotspot re-probe already in flight")
	// ErrNotInFallback is returned by TriggerReprobe outside HotspotFallback.
	ErrNotInFallback = errors.New("not in hotspot fallback")
)

// ConfigSource provides the current configuration snapshot.
type ConfigSource interface {
	Current() *config.Config
}

// Prober reads interface and WiFi association state.
type Prober interface {
	Interface(ctx context.Context, name string) (probe.InterfaceStatus, error)
	WiFi(ctx context.Context, iface string) (probe.WiFiStatus, error)
}

// Actions performs corrective network actions.
type Actions interface {
	RunScript(ctx context.Context, dir, script string) error
	SetLinkUp(ctx context.Context, iface string) error
	ReplaceAddr(ctx context.Context, iface string, prefix netip.Prefix) error
	ReconnectWiFi(ctx context.Context, iface string) error
}

// Reconciler converges the network towards the configured management paths.
type Reconciler struct {
	cfg     ConfigSource
	probes  Prober
	actions Actions
	log     zerolog.Logger
	now     func() time.Time

	wifiConfigured func(path string) (bool, error)

	// owned by the Tick goroutine
	state          wifiState
	failedChecks   int
	lastAssociated time.Time
	lastTransition time.Time
	nextReprobe    time.Time
	reprobeStarted time.Time
	wifi           probe.WiFiStatus
	configured     bool
	reconnectGate  *netaction.Gate
	hotspotGate    *netaction.Gate
	stopGate       *netaction.Gate
	usb            *link
	bluetooth      *link

	inFallback       atomic.Bool
	reprobeInFlight  atomic.Bool
	reprobeRequested atomic.Bool
	snapshot         atomic.Pointer[Snapshot]
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// WithWiFiConfigured replaces the supplicant config check.
func WithWiFiConfigured(fn func(path string) (bool, error)) Option {
	return func(r *Reconciler) { r.wifiConfigured = fn }
}

// NewReconciler creates a reconciler starting in Client mode. The fallback
// timeout is measured from creation until the first association is observed.
func NewReconciler(cfg ConfigSource, probes Prober, actions Actions, opts ...Option) *Reconciler {
	r := &Reconciler{
		cfg:            cfg,
		probes:         probes,
		actions:        actions,
		log:            logging.Component("network"),
		now:            time.Now,
		wifiConfigured: WiFiConfigured,
		state:          stateClient,
	}
	for _, opt := range opts {
		opt(r)
	}

	c := cfg.Current()
	ceiling := c.ActionBackoffCeiling()
	r.reconnectGate = netaction.NewGate(netaction.DefaultInitialBackoff, ceiling)
	r.hotspotGate = netaction.NewGate(netaction.DefaultInitialBackoff, ceiling)
	r.stopGate = netaction.NewGate(netaction.DefaultInitialBackoff, ceiling)
	r.usb = newLink(LinkUSB, netaction.ScriptEnableUSB, netaction.ScriptDisableUSB, ceiling)
	r.bluetooth = newLink(LinkBluetooth, netaction.ScriptEnableBTPAN, netaction.ScriptDisableBTPAN, ceiling)

	start := r.now()
	r.lastAssociated = start
	r.lastTransition = start
	metrics.SetNetworkMode(string(ModeClient))
	r.publish(c, start)
	return r
}

// Snapshot returns the most recently published state.
func (r *Reconciler) Snapshot() *Snapshot {
	return r.snapshot.Load()
}

// Mode returns the current exported mode.
func (r *Reconciler) Mode() Mode {
	return r.snapshot.Load().Mode
}

// TriggerReprobe requests an immediate hotspot re-probe. It is a no-op
// returning ErrNotInFallback outside HotspotFallback, and ErrReprobeInFlight
// when a re-probe is already pending or running.
func (r *Reconciler) TriggerReprobe() error {
	if !r.inFallback.Load() {
		return ErrNotInFallback
	}
	if !r.reprobeInFlight.CompareAndSwap(false, true) {
		return ErrReprobeInFlight
	}
	r.reprobeRequested.Store(true)
	r.log.Info().Msg("hotspot re-probe requested")
	return nil
}

// Tick runs one reconcile pass. Every action started by the pass completes
// (or times out) before Tick returns.
func (r *Reconciler) Tick(ctx context.Context) {
	r.step(ctx, r.now())
}

func (r *Reconciler) step(ctx context.Context, now time.Time) {
	cfg := r.cfg.Current()
	metrics.ReconcileTicks.Inc()

	r.applyCeiling(cfg.ActionBackoffCeiling())
	r.usb.reconcile(ctx, r, cfg, now, cfg.EnableUSBOTG, cfg.USBInterface, cfg.USBIP)
	r.bluetooth.reconcile(ctx, r, cfg, now, cfg.EnableSSHBT, cfg.BTInterface, cfg.BTIP)
	r.reconcileWiFi(ctx, cfg, now)

	r.publish(cfg, now)
}

func (r *Reconciler) applyCeiling(ceiling time.Duration) {
	r.reconnectGate.SetCeiling(ceiling)
	r.hotspotGate.SetCeiling(ceiling)
	r.stopGate.SetCeiling(ceiling)
	r.usb.gate.SetCeiling(ceiling)
	r.bluetooth.gate.SetCeiling(ceiling)
}

func (r *Reconciler) reconcileWiFi(ctx context.Context, cfg *config.Config, now time.Time) {
	configured, err := r.wifiConfigured(cfg.WPASupplicantConf)
	if err != nil {
		r.log.Warn().Err(err).Str("path", cfg.WPASupplicantConf).Msg("cannot read supplicant config")
	}
	r.configured = configured

	// Unavailable readings count as failed checks.
	status, err := r.probes.WiFi(ctx, cfg.WiFiInterface)
	if err != nil {
		status = probe.WiFiStatus{}
	}
	r.wifi = status
	associated := status.Associated()
	if associated {
		r.lastAssociated = now
	}

	switch r.state {
	case stateClient:
		if associated || !configured {
			r.failedChecks = 0
			return
		}
		r.failedChecks++
		if r.failedChecks >= cfg.WiFiFailureThreshold {
			r.transition(stateProbing, now, "association lost")
		}

	case stateProbing:
		if associated {
			r.backToClient(now, "association restored")
			return
		}
		if !configured {
			r.backToClient(now, "wifi not configured")
			return
		}
		r.failedChecks++
		if cfg.EnableWiFiHotspot && now.Sub(r.lastAssociated) >= cfg.FallbackTimeout() {
			if r.startHotspot(ctx, cfg, now) {
				r.enterFallback(cfg, now, "fallback timeout elapsed")
			}
			return
		}
		r.reconnect(ctx, cfg, now)

	case stateHotspot:
		if !cfg.EnableWiFiHotspot {
			r.reprobeRequested.Store(false)
			r.reprobeInFlight.Store(false)
			if r.stopHotspot(ctx, cfg, now) {
				r.transition(stateProbing, now, "hotspot disabled")
			}
			return
		}
		requested := r.reprobeRequested.Load()
		if !requested && now.Before(r.nextReprobe) {
			return
		}
		if !requested && !r.reprobeInFlight.CompareAndSwap(false, true) {
			return
		}
		r.reprobeRequested.Store(false)
		if !r.stopHotspot(ctx, cfg, now) {
			r.reprobeInFlight.Store(false)
			r.nextReprobe = r.stopGate.NextAttempt()
			return
		}
		r.reprobeStarted = now
		r.transition(stateReprobing, now, "re-probing known networks")

	case stateReprobing:
		if associated {
			r.reprobeInFlight.Store(false)
			r.backToClient(now, "association restored during re-probe")
			return
		}
		if now.Sub(r.reprobeStarted) < cfg.ReprobeWindow() {
			return
		}
		r.reprobeInFlight.Store(false)
		if !cfg.EnableWiFiHotspot {
			r.transition(stateProbing, now, "re-probe window elapsed, hotspot disabled")
			return
		}
		if r.startHotspot(ctx, cfg, now) {
			r.enterFallback(cfg, now, "re-probe window elapsed")
			return
		}
		r.transition(stateProbing, now, "hotspot restart failed")
	}
}

func (r *Reconciler) backToClient(now time.Time, reason string) {
	r.failedChecks = 0
	r.reconnectGate.Success()
	r.hotspotGate.Success()
	r.transition(stateClient, now, reason)
}

// enterFallback drops any re-probe request left over from before the
// hotspot came up. TriggerReprobe cannot race this: inFallback is still
// false until transition.
func (r *Reconciler) enterFallback(cfg *config.Config, now time.Time, reason string) {
	r.reprobeRequested.Store(false)
	r.reprobeInFlight.Store(false)
	r.nextReprobe = now.Add(cfg.ReprobeInterval())
	r.transition(stateHotspot, now, reason)
}

// reconnect asks the supplicant to reassociate. Requests are spaced by the
// reconnect gate so that a struggling supplicant is not restarted every tick.
func (r *Reconciler) reconnect(ctx context.Context, cfg *config.Config, now time.Time) {
	if !r.reconnectGate.Ready(now) {
		return
	}
	err := r.actions.ReconnectWiFi(ctx, cfg.WiFiInterface)
	delay := r.reconnectGate.Failure(now)
	if err != nil {
		r.actionFailed(err, r.reconnectGate.Attempts(), delay)
	}
}

// startHotspot stops the client and starts the access point, then assigns
// the hotspot address. It reports whether the hotspot is up.
func (r *Reconciler) startHotspot(ctx context.Context, cfg *config.Config, now time.Time) bool {
	if !r.hotspotGate.Ready(now) {
		metrics.RecordAction("start_hotspot", "backoff", 0)
		return false
	}
	err := r.actions.RunScript(ctx, cfg.ScriptsDir, netaction.ScriptEnableHotspot)
	if err == nil {
		var prefix netip.Prefix
		prefix, err = hostPrefix(cfg, cfg.HotspotIP)
		if err == nil {
			err = r.actions.ReplaceAddr(ctx, cfg.WiFiInterface, prefix)
		}
	}
	if err != nil {
		delay := r.hotspotGate.Failure(now)
		r.actionFailed(err, r.hotspotGate.Attempts(), delay)
		return false
	}
	r.hotspotGate.Success()
	return true
}

// stopHotspot tears the access point down and restores the client.
func (r *Reconciler) stopHotspot(ctx context.Context, cfg *config.Config, now time.Time) bool {
	if !r.stopGate.Ready(now) {
		metrics.RecordAction("stop_hotspot", "backoff", 0)
		return false
	}
	if err := r.actions.RunScript(ctx, cfg.ScriptsDir, netaction.ScriptDisableHotspot); err != nil {
		delay := r.stopGate.Failure(now)
		r.actionFailed(err, r.stopGate.Attempts(), delay)
		return false
	}
	r.stopGate.Success()
	return true
}

func (r *Reconciler) actionFailed(err error, attempt int, retryIn time.Duration) {
	var aerr *netaction.Error
	if errors.As(err, &aerr) {
		aerr.Attempt = attempt
	}
	r.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", retryIn).Msg("network action failed")
}

func (r *Reconciler) transition(to wifiState, now time.Time, reason string) {
	from := r.state
	if from == to {
		return
	}
	r.state = to
	r.lastTransition = now
	r.inFallback.Store(to == stateHotspot)

	metrics.RecordTransition(from.String(), to.String())
	metrics.SetNetworkMode(string(to.Mode()))
	r.log.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("mode", string(to.Mode())).
		Str("reason", reason).
		Int("failed_checks", r.failedChecks).
		Msg("wifi mode transition")
}

func (r *Reconciler) publish(cfg *config.Config, now time.Time) {
	snap := &Snapshot{
		Mode:            r.state.Mode(),
		State:           r.state.String(),
		WiFiConfigured:  r.configured,
		Associated:      r.wifi.Associated(),
		SSID:            r.wifi.SSID,
		WiFiAddress:     r.wifi.IPAddress,
		FailedChecks:    r.failedChecks,
		LastAssociated:  r.lastAssociated,
		LastTransition:  r.lastTransition,
		ReprobeInFlight: r.reprobeInFlight.Load(),
		Links: map[string]LinkState{
			LinkUSB:       r.usb.state,
			LinkBluetooth: r.bluetooth.state,
		},
		UpdatedAt: now,
	}
	if r.state == stateHotspot {
		snap.NextReprobe = r.nextReprobe
	}
	if snap.Mode == ModeHotspotFallback {
		snap.WiFiAddress = cfg.HotspotIP
	}
	r.snapshot.Store(snap)
}

func hostPrefix(cfg *config.Config, ip string) (netip.Prefix, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, cfg.NetworkPrefixLen), nil
}
