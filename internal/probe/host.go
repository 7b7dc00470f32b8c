// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package probe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/zero2-controller/internal/execx"
)

// Host bundles the OS probes shared by the reconciler, the display and the
// status API. Each probed object (interface, WiFi client, stats) has its
// own tracker, created on first use.
type Host struct {
	runner  execx.Runner
	timeout atomic.Int64

	mu       sync.Mutex
	trackers map[string]*Tracker

	readInterface func(name string) (InterfaceStatus, error)
	readStats     func(ctx context.Context) (HostStats, error)
}

// NewHost creates the host probes. runner executes wpa_cli.
func NewHost(runner execx.Runner, timeout time.Duration) *Host {
	h := &Host{
		runner:        runner,
		trackers:      make(map[string]*Tracker),
		readInterface: ReadInterface,
		readStats:     ReadHostStats,
	}
	h.SetTimeout(timeout)
	return h
}

// SetTimeout changes the read timeout of every probe.
func (h *Host) SetTimeout(d time.Duration) {
	h.timeout.Store(int64(d))
}

func (h *Host) tracker(name string) *Tracker {
	h.mu.Lock()
	defer h.mu.Unlock()
	tr, ok := h.trackers[name]
	if !ok {
		tr = NewTracker(name)
		h.trackers[name] = tr
	}
	return tr
}

// Degraded reports whether the named probe has crossed its failure
// threshold. Names are "link_<iface>", "wifi_<iface>" and "stats".
func (h *Host) Degraded(name string) bool {
	h.mu.Lock()
	tr, ok := h.trackers[name]
	h.mu.Unlock()
	return ok && tr.Degraded()
}

// Interface reads one interface.
func (h *Host) Interface(ctx context.Context, name string) (InterfaceStatus, error) {
	return Read(ctx, h.tracker("link_"+name), time.Duration(h.timeout.Load()), func(context.Context) (InterfaceStatus, error) {
		return h.readInterface(name)
	})
}

// WiFi reads the supplicant association state of iface.
func (h *Host) WiFi(ctx context.Context, iface string) (WiFiStatus, error) {
	return Read(ctx, h.tracker("wifi_"+iface), time.Duration(h.timeout.Load()), func(ctx context.Context) (WiFiStatus, error) {
		return ReadWiFi(ctx, h.runner, iface)
	})
}

// Stats reads host load and addresses.
func (h *Host) Stats(ctx context.Context) (HostStats, error) {
	return Read(ctx, h.tracker("stats"), time.Duration(h.timeout.Load()), h.readStats)
}
