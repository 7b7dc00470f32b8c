// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package display drives the 128x64 SSD1306 status panel.
//
// Every tick the Display reads host stats and the latest network and battery
// snapshots, builds a Frame and pushes its four lines to the Renderer. Stats
// that cannot be read render as "--" rather than stopping the loop. Panel
// writes go through a circuit breaker so that a disconnected panel is not
// hammered on every tick.
package display

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2-controller/internal/battery"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/metrics"
	"github.com/tomtom215/zero2-controller/internal/network"
	"github.com/tomtom215/zero2-controller/internal/probe"
)

// StatsReader reads host stats.
type StatsReader interface {
	Stats(ctx context.Context) (probe.HostStats, error)
}

// NetworkView exposes the reconciler snapshot.
type NetworkView interface {
	Snapshot() *network.Snapshot
}

// BatteryView exposes the watchdog snapshot.
type BatteryView interface {
	Snapshot() *battery.Snapshot
}

// Display is the display loop state.
type Display struct {
	stats    StatsReader
	net      NetworkView
	bat      BatteryView
	renderer Renderer
	log      zerolog.Logger
	now      func() time.Time

	mu          sync.Mutex
	notice      string
	noticeUntil time.Time
	last        [Lines]string
}

// New creates a display loop. bat may be nil when the battery watchdog is
// disabled.
func New(stats StatsReader, net NetworkView, bat BatteryView, renderer Renderer) *Display {
	return &Display{
		stats:    stats,
		net:      net,
		bat:      bat,
		renderer: renderer,
		log:      logging.Component("display"),
		now:      time.Now,
	}
}

// ShowNotice overlays text on the last line for d.
func (d *Display) ShowNotice(text string, dur time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notice = text
	d.noticeUntil = d.now().Add(dur)
}

func (d *Display) currentNotice(now time.Time) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.notice != "" && !now.Before(d.noticeUntil) {
		d.notice = ""
	}
	return d.notice
}

// Lines returns the most recently rendered lines.
func (d *Display) Lines() [Lines]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Tick renders one frame.
func (d *Display) Tick(ctx context.Context) {
	now := d.now()

	stats, statsErr := d.stats.Stats(ctx)
	var netSnap *network.Snapshot
	if d.net != nil {
		netSnap = d.net.Snapshot()
	}
	var batSnap *battery.Snapshot
	if d.bat != nil {
		batSnap = d.bat.Snapshot()
	}

	lines := BuildFrame(stats, statsErr, netSnap, batSnap, d.currentNotice(now)).Text()

	err := d.renderer.Render(lines[:])
	switch {
	case err == nil:
		metrics.RecordDisplayRender("ok")
	case errors.Is(err, ErrSkipped):
		metrics.RecordDisplayRender("skipped")
	default:
		metrics.RecordDisplayRender("error")
		d.log.Warn().Err(err).Msg("display write failed")
	}

	d.mu.Lock()
	d.last = lines
	d.mu.Unlock()
}

// Idle blanks the panel while the display is disabled by configuration.
func (d *Display) Idle(_ context.Context) {
	var blank [Lines]string
	if err := d.renderer.Render(blank[:]); err != nil && !errors.Is(err, ErrSkipped) {
		d.log.Warn().Err(err).Msg("display blank failed")
	}
	d.mu.Lock()
	d.last = blank
	d.mu.Unlock()
	d.log.Info().Msg("display disabled")
}

// Close blanks the panel and releases it.
func (d *Display) Close() error {
	return d.renderer.Close()
}
