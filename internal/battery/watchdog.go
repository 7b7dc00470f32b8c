// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package battery watches the UPS low-battery GPIO signal and shuts the
// host down once the signal has been asserted long enough.
//
// Escalation within one episode is monotonic: Normal, then Warning, then
// ShuttingDown. The shutdown command is issued at most once per process. A
// clear signal halts escalation, and the episode ends once the signal has
// stayed clear for the debounce period.
package battery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/metrics"
)

// noticeDuration is how long battery notices stay on the display.
const noticeDuration = 10 * time.Second

// State is the watchdog state.
type State int

const (
	StateNormal State = iota
	StateWarning
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateWarning:
		return "warning"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// ConfigSource provides the current configuration snapshot.
type ConfigSource interface {
	Current() *config.Config
}

// Signal reads the low-battery line. probe.Probe[bool] satisfies it.
type Signal interface {
	Read(ctx context.Context) (bool, error)
}

// Actions are the host side effects of an escalation.
type Actions interface {
	Broadcast(ctx context.Context, msg string) error
	Shutdown(ctx context.Context) error
}

// Notifier shows a short message on the display.
type Notifier interface {
	ShowNotice(text string, d time.Duration)
}

// Snapshot is the published watchdog state.
type Snapshot struct {
	State         string    `json:"state"`
	Asserted      bool      `json:"asserted"`
	Unavailable   bool      `json:"unavailable"`
	Disabled      bool      `json:"disabled,omitempty"`
	Episode       string    `json:"episode,omitempty"`
	AssertedSince time.Time `json:"asserted_since,omitempty"`
	WarningAt     time.Time `json:"warning_at,omitempty"`
	ShutdownAt    time.Time `json:"shutdown_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Label is the short battery status shown on the display.
func (s *Snapshot) Label() string {
	if s == nil {
		return ""
	}
	switch {
	case s.State == StateShuttingDown.String():
		return "BAT: SHUTDOWN"
	case s.Disabled:
		return "BAT: off"
	case s.State == StateWarning.String():
		return "BAT: LOW!"
	case s.Unavailable:
		return "BAT: --"
	case s.Asserted:
		return "BAT: low?"
	default:
		return "BAT: OK"
	}
}

// Watchdog is the battery state machine. Tick is called by a single loop.
type Watchdog struct {
	cfg     ConfigSource
	signal  Signal
	actions Actions
	log     zerolog.Logger
	now     func() time.Time

	notifier atomic.Pointer[notifierRef]

	// owned by the Tick goroutine
	state         State
	asserted      bool
	assertedSince time.Time
	clearSince    time.Time
	episode       string
	epLog         zerolog.Logger
	disabled      bool

	shutdownOnce sync.Once
	snapshot     atomic.Pointer[Snapshot]
}

type notifierRef struct{ n Notifier }

// Option configures a Watchdog.
type Option func(*Watchdog)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Watchdog) { w.now = now }
}

// NewWatchdog creates a watchdog in the Normal state.
func NewWatchdog(cfg ConfigSource, signal Signal, actions Actions, opts ...Option) *Watchdog {
	w := &Watchdog{
		cfg:     cfg,
		signal:  signal,
		actions: actions,
		log:     logging.Component("battery"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.epLog = w.log
	w.publish(false, w.now())
	metrics.BatteryState.Set(metrics.BatteryNormal)
	return w
}

// SetNotifier attaches the display. Safe to call at any time.
func (w *Watchdog) SetNotifier(n Notifier) {
	w.notifier.Store(&notifierRef{n: n})
}

// Snapshot returns the most recently published state.
func (w *Watchdog) Snapshot() *Snapshot {
	return w.snapshot.Load()
}

// Tick reads the signal once and advances the state machine.
func (w *Watchdog) Tick(ctx context.Context) {
	w.step(ctx, w.now())
}

func (w *Watchdog) step(ctx context.Context, now time.Time) {
	cfg := w.cfg.Current()
	if !cfg.EnableLowBat {
		w.disable()
		w.publish(false, now)
		return
	}
	if w.disabled {
		w.disabled = false
		w.log.Info().Msg("low battery watchdog re-enabled")
	}

	asserted, err := w.signal.Read(ctx)
	if err != nil {
		// Hold: an unreadable line neither escalates nor clears.
		w.publish(true, now)
		return
	}

	if asserted {
		w.onAsserted(ctx, cfg, now)
	} else {
		w.onClear(now, cfg)
	}
	w.publish(false, now)
}

// disable drops any open episode while ENABLE_LOW_BAT is off. A shutdown
// already issued cannot be taken back, so ShuttingDown is kept.
func (w *Watchdog) disable() {
	if w.disabled {
		return
	}
	w.disabled = true
	if w.state == StateShuttingDown {
		w.log.Warn().Msg("low battery watchdog disabled after shutdown was issued")
		return
	}
	if w.state == StateWarning {
		w.epLog.Info().Msg("low battery watchdog disabled, shutdown cancelled")
		w.notify("Battery watch off")
	} else {
		w.log.Info().Msg("low battery watchdog disabled")
	}
	w.state = StateNormal
	w.asserted = false
	w.assertedSince = time.Time{}
	w.clearSince = time.Time{}
	w.episode = ""
	w.epLog = w.log
	metrics.BatteryState.Set(metrics.BatteryNormal)
}

// shutdownDelay is measured from the start of the continuous assertion.
// It is never shorter than the warning time plus the grace period.
func shutdownDelay(cfg *config.Config) time.Duration {
	d := cfg.PowerWarningDuration() + cfg.PowerGraceDuration()
	if t := cfg.PowerThresholdDuration(); t > d {
		d = t
	}
	return d
}

func (w *Watchdog) onAsserted(ctx context.Context, cfg *config.Config, now time.Time) {
	w.clearSince = time.Time{}
	if !w.asserted {
		w.asserted = true
		w.assertedSince = now
		if w.state == StateNormal {
			metrics.BatteryState.Set(metrics.BatteryLow)
			w.log.Info().Int("gpio", cfg.PowerGPIOPin).Msg("low battery signal asserted")
		} else {
			w.epLog.Warn().Msg("low battery signal re-asserted, continuity clock restarted")
		}
	}
	held := now.Sub(w.assertedSince)

	if w.state == StateNormal && held >= cfg.PowerWarningDuration() {
		w.enterWarning(ctx, cfg, held)
	}
	if w.state == StateWarning && held >= shutdownDelay(cfg) {
		w.enterShutdown(ctx, held)
	}
}

func (w *Watchdog) onClear(now time.Time, cfg *config.Config) {
	if w.asserted {
		w.asserted = false
		w.assertedSince = time.Time{}
		w.clearSince = now
		if w.state == StateNormal {
			metrics.BatteryState.Set(metrics.BatteryNormal)
			w.log.Info().Msg("low battery signal cleared")
		} else {
			w.epLog.Info().Msg("low battery signal cleared, escalation halted")
		}
	}
	if w.state != StateWarning {
		return
	}
	if now.Sub(w.clearSince) < cfg.PowerClearDuration() {
		return
	}

	w.epLog.Info().Dur("debounce", cfg.PowerClearDuration()).Msg("battery recovered, shutdown cancelled")
	w.state = StateNormal
	w.episode = ""
	w.epLog = w.log
	metrics.BatteryState.Set(metrics.BatteryNormal)
	w.notify("Battery OK")
}

func (w *Watchdog) enterWarning(ctx context.Context, cfg *config.Config, held time.Duration) {
	w.state = StateWarning
	w.episode = uuid.NewString()
	w.epLog = w.log.With().Str("episode", w.episode).Logger()
	metrics.BatteryState.Set(metrics.BatteryWarning)

	remaining := shutdownDelay(cfg) - held
	if remaining < 0 {
		remaining = 0
	}
	w.epLog.Warn().
		Dur("asserted_for", held).
		Dur("shutdown_in", remaining).
		Msg("low battery warning")

	msg := fmt.Sprintf("Low battery: Zero2 controller will shut down in %d seconds unless power is restored.",
		int(remaining.Round(time.Second)/time.Second))
	if cfg.PowerNotifyTerminal {
		if err := w.actions.Broadcast(ctx, msg); err != nil {
			w.epLog.Warn().Err(err).Msg("terminal broadcast failed")
		}
	}
	w.notify("LOW BATTERY")
}

func (w *Watchdog) enterShutdown(ctx context.Context, held time.Duration) {
	w.state = StateShuttingDown
	metrics.BatteryState.Set(metrics.BatteryShutdown)

	w.shutdownOnce.Do(func() {
		w.epLog.Error().Dur("asserted_for", held).Msg("low battery persisted, shutting down")
		w.notify("SHUTTING DOWN")
		metrics.BatteryShutdowns.Inc()
		if err := w.actions.Shutdown(ctx); err != nil {
			w.epLog.Error().Err(err).Msg("shutdown command failed")
		}
	})
}

func (w *Watchdog) notify(text string) {
	if ref := w.notifier.Load(); ref != nil && ref.n != nil {
		ref.n.ShowNotice(text, noticeDuration)
	}
}

func (w *Watchdog) publish(unavailable bool, now time.Time) {
	snap := &Snapshot{
		State:         w.state.String(),
		Asserted:      w.asserted,
		Unavailable:   unavailable,
		Disabled:      w.disabled,
		Episode:       w.episode,
		AssertedSince: w.assertedSince,
		UpdatedAt:     now,
	}
	if w.asserted && w.state != StateShuttingDown {
		cfg := w.cfg.Current()
		if w.state == StateNormal {
			snap.WarningAt = w.assertedSince.Add(cfg.PowerWarningDuration())
		}
		snap.ShutdownAt = w.assertedSince.Add(shutdownDelay(cfg))
	}
	w.snapshot.Store(snap)
}
