// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package battery

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/probe"
)

type staticConfig struct{ cfg *config.Config }

func (s staticConfig) Current() *config.Config { return s.cfg }

type mockSignal struct {
	asserted bool
	err      error
}

func (m *mockSignal) Read(context.Context) (bool, error) {
	return m.asserted, m.err
}

type mockActions struct {
	mu         sync.Mutex
	broadcasts []string
	shutdowns  int
}

func (m *mockActions) Broadcast(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, msg)
	return nil
}

func (m *mockActions) Shutdown(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdowns++
	return nil
}

type mockNotifier struct {
	mu      sync.Mutex
	notices []string
}

func (m *mockNotifier) ShowNotice(text string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, text)
}

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

type harness struct {
	cfg      *config.Config
	w        *Watchdog
	signal   *mockSignal
	actions  *mockActions
	notifier *mockNotifier
}

func newHarness(mutate func(*config.Config)) *harness {
	cfg := config.Defaults()
	if mutate != nil {
		mutate(cfg)
	}
	h := &harness{
		cfg:      cfg,
		signal:   &mockSignal{},
		actions:  &mockActions{},
		notifier: &mockNotifier{},
	}
	h.w = NewWatchdog(staticConfig{cfg}, h.signal, h.actions, WithClock(func() time.Time { return t0 }))
	h.w.SetNotifier(h.notifier)
	return h
}

// run polls once per second over [from, to] and returns the state seen at each second.
func (h *harness) run(from, to int) map[int]State {
	states := make(map[int]State)
	for s := from; s <= to; s++ {
		h.w.step(context.Background(), at(s))
		states[s] = h.w.state
	}
	return states
}

func TestWarningThenShutdownScenario(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 30
		c.PowerThreshold = 30
		c.PowerGraceTime = 5
	})
	h.signal.asserted = true

	states := h.run(0, 40)

	if states[29] != StateNormal {
		t.Errorf("t=29 state = %s, want normal", states[29])
	}
	if states[30] != StateWarning {
		t.Errorf("t=30 state = %s, want warning", states[30])
	}
	if states[34] != StateWarning {
		t.Errorf("t=34 state = %s, want warning", states[34])
	}
	if states[35] != StateShuttingDown {
		t.Errorf("t=35 state = %s, want shutting_down", states[35])
	}
	if h.actions.shutdowns != 1 {
		t.Errorf("shutdowns = %d, want 1", h.actions.shutdowns)
	}
	if len(h.actions.broadcasts) != 1 || !strings.Contains(h.actions.broadcasts[0], "5 seconds") {
		t.Errorf("broadcasts = %v", h.actions.broadcasts)
	}
}

func TestThresholdLongerThanWarningPlusGrace(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 10
		c.PowerGraceTime = 5
		c.PowerThreshold = 60
	})
	h.signal.asserted = true

	states := h.run(0, 60)

	if states[10] != StateWarning {
		t.Errorf("t=10 state = %s, want warning", states[10])
	}
	if states[59] != StateWarning || states[60] != StateShuttingDown {
		t.Errorf("shutdown should wait for the threshold: t=59 %s, t=60 %s", states[59], states[60])
	}
}

func TestClearDuringWarningReturnsToNormal(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 30
		c.PowerThreshold = 30
		c.PowerGraceTime = 30
		c.PowerClearDebounce = 5
	})
	h.signal.asserted = true
	h.run(0, 40)
	if h.w.state != StateWarning {
		t.Fatalf("setup: state = %s, want warning", h.w.state)
	}
	episode := h.w.Snapshot().Episode
	if episode == "" {
		t.Fatal("warning should open an episode")
	}

	h.signal.asserted = false
	states := h.run(41, 120)

	if states[45] != StateWarning {
		t.Errorf("t=45 state = %s, want warning (debounce not elapsed)", states[45])
	}
	if states[46] != StateNormal {
		t.Errorf("t=46 state = %s, want normal", states[46])
	}
	if h.actions.shutdowns != 0 {
		t.Error("cleared episode must not shut down")
	}
	if h.w.Snapshot().Episode != "" {
		t.Error("episode should end on return to normal")
	}
	if last := h.notifier.notices[len(h.notifier.notices)-1]; last != "Battery OK" {
		t.Errorf("last notice = %q", last)
	}
}

func TestReassertionWithinDebounceRestartsClock(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 30
		c.PowerThreshold = 30
		c.PowerGraceTime = 30
		c.PowerClearDebounce = 5
	})
	h.signal.asserted = true
	h.run(0, 40)
	episode := h.w.Snapshot().Episode

	h.signal.asserted = false
	h.run(41, 43)
	h.signal.asserted = true
	states := h.run(44, 110)

	if h.w.Snapshot().Episode != episode {
		t.Error("re-assertion within debounce must keep the episode")
	}
	if len(h.actions.broadcasts) != 1 {
		t.Errorf("warning should not be repeated, broadcasts = %d", len(h.actions.broadcasts))
	}
	// Continuity restarts at t=44; shutdown needs 60 s of continuous assertion.
	if states[103] != StateWarning || states[104] != StateShuttingDown {
		t.Errorf("t=103 %s, t=104 %s", states[103], states[104])
	}
}

func TestShortAssertionNeverWarns(t *testing.T) {
	h := newHarness(nil)
	h.signal.asserted = true
	h.run(0, 20)
	h.signal.asserted = false
	h.run(21, 100)
	h.signal.asserted = true
	states := h.run(101, 125)

	for s, st := range states {
		if st != StateNormal {
			t.Fatalf("t=%d state = %s, want normal", s, st)
		}
	}
	if len(h.actions.broadcasts) != 0 || h.actions.shutdowns != 0 {
		t.Error("no action expected for short assertions")
	}
}

func TestUnavailableReadingsHoldState(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 10
		c.PowerThreshold = 10
		c.PowerGraceTime = 10
	})
	h.signal.asserted = true
	h.run(0, 12)
	if h.w.state != StateWarning {
		t.Fatalf("setup: state = %s", h.w.state)
	}

	h.signal.err = probe.ErrUnavailable
	h.run(13, 60)

	if h.w.state != StateWarning {
		t.Errorf("state = %s, want warning held", h.w.state)
	}
	if h.actions.shutdowns != 0 {
		t.Error("unavailable readings must not escalate")
	}
	if !h.w.Snapshot().Unavailable || h.w.Snapshot().Label() != "BAT: LOW!" {
		t.Errorf("snapshot = %+v", h.w.Snapshot())
	}
}

func TestShutdownIssuedOncePerProcess(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 1
		c.PowerThreshold = 1
		c.PowerGraceTime = 1
	})
	h.signal.asserted = true
	h.run(0, 10)
	h.signal.asserted = false
	h.run(11, 30)
	h.signal.asserted = true
	h.run(31, 60)

	if h.actions.shutdowns != 1 {
		t.Errorf("shutdowns = %d, want 1", h.actions.shutdowns)
	}
	if h.w.state != StateShuttingDown {
		t.Errorf("state = %s, want shutting_down", h.w.state)
	}
}

func TestNotifyTerminalsDisabled(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 5
		c.PowerNotifyTerminal = false
	})
	h.signal.asserted = true
	h.run(0, 6)

	if len(h.actions.broadcasts) != 0 {
		t.Error("wall must not run when terminal notification is disabled")
	}
	if len(h.notifier.notices) == 0 || h.notifier.notices[0] != "LOW BATTERY" {
		t.Errorf("display notices = %v", h.notifier.notices)
	}
}

func TestSnapshotDeadlines(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 30
		c.PowerThreshold = 30
		c.PowerGraceTime = 5
	})
	h.signal.asserted = true
	h.run(10, 10)

	snap := h.w.Snapshot()
	if !snap.WarningAt.Equal(at(40)) || !snap.ShutdownAt.Equal(at(45)) {
		t.Errorf("WarningAt = %v, ShutdownAt = %v", snap.WarningAt, snap.ShutdownAt)
	}
	if snap.Label() != "BAT: low?" {
		t.Errorf("Label() = %q", snap.Label())
	}
}

func TestReloadDisablingWatchdogCancelsEpisode(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 30
		c.PowerThreshold = 30
		c.PowerGraceTime = 5
	})
	h.signal.asserted = true

	states := h.run(0, 31)
	if states[31] != StateWarning {
		t.Fatalf("t=31 state = %s, want warning", states[31])
	}

	h.cfg.EnableLowBat = false
	for s := 32; s <= 120; s += 2 {
		h.w.step(context.Background(), at(s))
		if h.w.state != StateNormal {
			t.Fatalf("t=%d state = %s, want normal while disabled", s, h.w.state)
		}
	}
	if h.actions.shutdowns != 0 {
		t.Errorf("shutdowns = %d, want 0 while disabled", h.actions.shutdowns)
	}
	snap := h.w.Snapshot()
	if !snap.Disabled || snap.Episode != "" || snap.Label() != "BAT: off" {
		t.Errorf("snapshot = %+v, want disabled with no episode", snap)
	}

	// Re-enabling starts a fresh continuity clock.
	h.cfg.EnableLowBat = true
	states = h.run(121, 160)
	if states[150] != StateNormal || states[151] != StateWarning {
		t.Errorf("after re-enable: t=150 %s, t=151 %s; want normal then warning", states[150], states[151])
	}
	if states[156] != StateShuttingDown || h.actions.shutdowns != 1 {
		t.Errorf("after re-enable: t=156 %s with %d shutdowns", states[156], h.actions.shutdowns)
	}
}

func TestDisablingAfterShutdownKeepsState(t *testing.T) {
	h := newHarness(func(c *config.Config) {
		c.PowerWarningTime = 1
		c.PowerThreshold = 1
		c.PowerGraceTime = 0
	})
	h.signal.asserted = true
	h.run(0, 2)
	if h.w.state != StateShuttingDown {
		t.Fatalf("state = %s, want shutting_down", h.w.state)
	}

	h.cfg.EnableLowBat = false
	h.run(3, 5)
	if h.w.state != StateShuttingDown || h.actions.shutdowns != 1 {
		t.Errorf("state = %s, shutdowns = %d; want shutting_down once", h.w.state, h.actions.shutdowns)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	if StateNormal.String() != "normal" || StateWarning.String() != "warning" || StateShuttingDown.String() != "shutting_down" {
		t.Error("unexpected state names")
	}
}
