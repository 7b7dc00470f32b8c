// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package network

import (
	"context"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/netaction"
	"github.com/tomtom215/zero2-controller/internal/probe"
)

// testConfig is a ConfigSource whose snapshot can be swapped mid-test.
type testConfig struct {
	cfg atomic.Pointer[config.Config]
}

func newTestConfig(mutate func(*config.Config)) *testConfig {
	cfg := config.Defaults()
	// Links are off unless a test enables them.
	cfg.EnableUSBOTG = false
	cfg.EnableSSHBT = false
	if mutate != nil {
		mutate(cfg)
	}
	tc := &testConfig{}
	tc.cfg.Store(cfg)
	return tc
}

func (c *testConfig) Current() *config.Config { return c.cfg.Load() }

func (c *testConfig) update(mutate func(*config.Config)) {
	next := *c.cfg.Load()
	mutate(&next)
	c.cfg.Store(&next)
}

type mockProber struct {
	mu         sync.Mutex
	ifaces     map[string]probe.InterfaceStatus
	ifaceErr   map[string]error
	associated bool
	wifiErr    error
}

func newMockProber() *mockProber {
	return &mockProber{
		ifaces:   make(map[string]probe.InterfaceStatus),
		ifaceErr: make(map[string]error),
	}
}

func (m *mockProber) Interface(_ context.Context, name string) (probe.InterfaceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ifaceErr[name]; err != nil {
		return probe.InterfaceStatus{}, err
	}
	st, ok := m.ifaces[name]
	if !ok {
		return probe.InterfaceStatus{Name: name}, nil
	}
	return st, nil
}

func (m *mockProber) WiFi(_ context.Context, _ string) (probe.WiFiStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wifiErr != nil {
		return probe.WiFiStatus{}, m.wifiErr
	}
	if m.associated {
		return probe.WiFiStatus{State: "COMPLETED", SSID: "home", IPAddress: "192.168.1.40"}, nil
	}
	return probe.WiFiStatus{State: "SCANNING"}, nil
}

func (m *mockProber) setAssociated(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.associated = v
}

type mockActions struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func newMockActions() *mockActions {
	return &mockActions{fail: make(map[string]error)}
}

func (m *mockActions) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	if err := m.fail[call]; err != nil {
		return &netaction.Error{Action: "test", Target: call, Err: err}
	}
	return nil
}

func (m *mockActions) RunScript(_ context.Context, _ string, script string) error {
	return m.record(script)
}

func (m *mockActions) SetLinkUp(_ context.Context, iface string) error {
	return m.record("up " + iface)
}

func (m *mockActions) ReplaceAddr(_ context.Context, iface string, prefix netip.Prefix) error {
	return m.record("addr " + iface + " " + prefix.String())
}

func (m *mockActions) ReconnectWiFi(_ context.Context, iface string) error {
	return m.record("reconnect " + iface)
}

func (m *mockActions) count(call string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (m *mockActions) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockActions) setFail(call string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, call)
		return
	}
	m.fail[call] = err
}

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

func newTestReconciler(cfg *testConfig, p *mockProber, a *mockActions, configured bool) *Reconciler {
	return NewReconciler(cfg, p, a,
		WithClock(func() time.Time { return t0 }),
		WithWiFiConfigured(func(string) (bool, error) { return configured, nil }),
	)
}

// stepUntil ticks every 5 s from `from` to `to` inclusive and returns the
// exported mode observed at each tick, keyed by second.
func stepUntil(r *Reconciler, from, to int) map[int]Mode {
	modes := make(map[int]Mode)
	for s := from; s <= to; s += 5 {
		r.step(context.Background(), at(s))
		modes[s] = r.Mode()
	}
	return modes
}

func TestFallbackScenario(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)

	modes := stepUntil(r, 5, 60)

	for _, s := range []int{5, 10} {
		if modes[s] != ModeClient {
			t.Errorf("t=%d mode = %s, want client", s, modes[s])
		}
	}
	for s := 15; s <= 55; s += 5 {
		if modes[s] != ModeTransitioning {
			t.Errorf("t=%d mode = %s, want transitioning", s, modes[s])
		}
	}
	if modes[60] != ModeHotspotFallback {
		t.Errorf("t=60 mode = %s, want hotspot_fallback", modes[60])
	}
	if a.count(netaction.ScriptEnableHotspot) != 1 {
		t.Errorf("enable-hotspot calls = %d, want 1", a.count(netaction.ScriptEnableHotspot))
	}
	if a.count("addr wlan0 192.168.4.1/24") != 1 {
		t.Errorf("hotspot address not assigned: %v", a.all())
	}
	if a.count("reconnect wlan0") == 0 {
		t.Error("probing should ask the supplicant to reconnect")
	}
}

func TestNeverClientToHotspotDirectly(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) {
		c.WiFiFailureThreshold = 1
		c.WiFiFallbackTimeout = 1
	})
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)

	prev := r.Snapshot().State
	for s := 5; s <= 60; s += 5 {
		r.step(context.Background(), at(s))
		cur := r.Snapshot().State
		if prev == stateClient.String() && cur == stateHotspot.String() {
			t.Fatalf("t=%d: direct client -> hotspot transition", s)
		}
		prev = cur
	}
	if r.Mode() != ModeHotspotFallback {
		t.Errorf("mode = %s, want hotspot_fallback", r.Mode())
	}
}

func TestHotspotDisabledNeverFallsBack(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) { c.EnableWiFiHotspot = false })
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)

	for s, m := range stepUntil(r, 5, 300) {
		if m == ModeHotspotFallback {
			t.Fatalf("t=%d: hotspot fallback with hotspot disabled", s)
		}
	}
	if a.count(netaction.ScriptEnableHotspot) != 0 {
		t.Error("hotspot must not be started when disabled")
	}
}

func TestUnconfiguredWiFiSkipsLogic(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, false)

	for s, m := range stepUntil(r, 5, 120) {
		if m != ModeClient {
			t.Fatalf("t=%d mode = %s, want client", s, m)
		}
	}
	if calls := a.all(); len(calls) != 0 {
		t.Errorf("unexpected actions %v", calls)
	}
	if r.Snapshot().WiFiConfigured {
		t.Error("snapshot should report wifi as unconfigured")
	}
}

func TestUnavailableWiFiProbeCountsAsFailure(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	p.wifiErr = probe.ErrUnavailable
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)

	modes := stepUntil(r, 5, 15)
	if modes[15] != ModeTransitioning {
		t.Errorf("t=15 mode = %s, want transitioning", modes[15])
	}
}

func TestAssociationRevertsToClient(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)

	stepUntil(r, 5, 20)
	if r.Mode() != ModeTransitioning {
		t.Fatalf("mode = %s, want transitioning", r.Mode())
	}

	p.setAssociated(true)
	r.step(context.Background(), at(25))
	if r.Mode() != ModeClient {
		t.Errorf("mode = %s, want client", r.Mode())
	}
	snap := r.Snapshot()
	if snap.FailedChecks != 0 || !snap.Associated || !snap.LastAssociated.Equal(at(25)) {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestFailedHotspotStartRetriesWithBackoff(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	a.setFail(netaction.ScriptEnableHotspot, errors.New("hostapd failed"))
	r := newTestReconciler(cfg, p, a, true)

	modes := stepUntil(r, 5, 75)

	for s := 60; s <= 75; s += 5 {
		if modes[s] != ModeTransitioning {
			t.Errorf("t=%d mode = %s, want transitioning", s, modes[s])
		}
	}
	// 60 fails (next 65), 65 fails (next 75), 70 suppressed, 75 fails.
	if got := a.count(netaction.ScriptEnableHotspot); got != 3 {
		t.Errorf("enable-hotspot calls = %d, want 3", got)
	}

	a.setFail(netaction.ScriptEnableHotspot, nil)
	stepUntil(r, 80, 100)
	if r.Mode() != ModeHotspotFallback {
		t.Errorf("mode = %s, want hotspot_fallback after recovery", r.Mode())
	}
}

func enterFallback(t *testing.T, r *Reconciler) {
	t.Helper()
	stepUntil(r, 5, 60)
	if r.Mode() != ModeHotspotFallback {
		t.Fatalf("setup: mode = %s, want hotspot_fallback", r.Mode())
	}
}

func TestTriggerReprobe(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)

	if err := r.TriggerReprobe(); !errors.Is(err, ErrNotInFallback) {
		t.Errorf("TriggerReprobe() in client = %v, want ErrNotInFallback", err)
	}

	enterFallback(t, r)

	if err := r.TriggerReprobe(); err != nil {
		t.Fatalf("TriggerReprobe() = %v", err)
	}
	if err := r.TriggerReprobe(); !errors.Is(err, ErrReprobeInFlight) {
		t.Errorf("second TriggerReprobe() = %v, want ErrReprobeInFlight", err)
	}

	r.step(context.Background(), at(65))
	if r.Snapshot().State != stateReprobing.String() {
		t.Fatalf("state = %s, want reprobing", r.Snapshot().State)
	}
	if a.count(netaction.ScriptDisableHotspot) != 1 {
		t.Errorf("disable-hotspot calls = %d, want 1", a.count(netaction.ScriptDisableHotspot))
	}
	if err := r.TriggerReprobe(); !errors.Is(err, ErrNotInFallback) {
		t.Errorf("TriggerReprobe() while reprobing = %v, want ErrNotInFallback", err)
	}

	p.setAssociated(true)
	r.step(context.Background(), at(70))
	if r.Mode() != ModeClient {
		t.Errorf("mode = %s, want client", r.Mode())
	}
	if r.Snapshot().ReprobeInFlight {
		t.Error("re-probe should no longer be in flight")
	}
}

func TestReprobeWindowRestartsHotspot(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) { c.HotspotReprobeWindow = 30 })
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)
	enterFallback(t, r)

	if err := r.TriggerReprobe(); err != nil {
		t.Fatal(err)
	}
	modes := stepUntil(r, 65, 95)

	for s := 65; s < 95; s += 5 {
		if modes[s] != ModeTransitioning {
			t.Errorf("t=%d mode = %s, want transitioning", s, modes[s])
		}
	}
	if modes[95] != ModeHotspotFallback {
		t.Errorf("t=95 mode = %s, want hotspot_fallback", modes[95])
	}
	if got := a.count(netaction.ScriptEnableHotspot); got != 2 {
		t.Errorf("enable-hotspot calls = %d, want 2", got)
	}
	if err := r.TriggerReprobe(); err != nil {
		t.Errorf("re-probe should be possible again, got %v", err)
	}
}

func TestScheduledReprobe(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) { c.HotspotReprobeInterval = 100 })
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)
	enterFallback(t, r)

	if next := r.Snapshot().NextReprobe; !next.Equal(at(160)) {
		t.Errorf("NextReprobe = %v, want %v", next, at(160))
	}

	stepUntil(r, 65, 155)
	if a.count(netaction.ScriptDisableHotspot) != 0 {
		t.Fatal("re-probe started before its interval")
	}
	r.step(context.Background(), at(160))
	if a.count(netaction.ScriptDisableHotspot) != 1 || r.Mode() != ModeTransitioning {
		t.Errorf("scheduled re-probe did not start: mode %s", r.Mode())
	}
}

func TestReloadDisablingHotspotStopsIt(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)
	enterFallback(t, r)

	cfg.update(func(c *config.Config) { c.EnableWiFiHotspot = false })
	r.step(context.Background(), at(65))

	if r.Mode() != ModeTransitioning {
		t.Errorf("mode = %s, want transitioning", r.Mode())
	}
	if a.count(netaction.ScriptDisableHotspot) != 1 {
		t.Error("hotspot should be stopped when disabled")
	}
	for s, m := range stepUntil(r, 70, 200) {
		if m == ModeHotspotFallback {
			t.Fatalf("t=%d: back in fallback with hotspot disabled", s)
		}
	}
}

func TestStaleReprobeRequestDroppedOnFallbackEntry(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)
	enterFallback(t, r)

	cfg.update(func(c *config.Config) { c.EnableWiFiHotspot = false })
	r.step(context.Background(), at(65))
	if r.Mode() != ModeTransitioning {
		t.Fatalf("mode = %s, want transitioning", r.Mode())
	}

	// A trigger accepted while the hotspot was being stopped.
	r.reprobeRequested.Store(true)
	r.reprobeInFlight.Store(true)

	cfg.update(func(c *config.Config) { c.EnableWiFiHotspot = true })
	r.step(context.Background(), at(70))
	if r.Mode() != ModeHotspotFallback {
		t.Fatalf("mode = %s, want hotspot_fallback", r.Mode())
	}
	if r.Snapshot().ReprobeInFlight {
		t.Error("stale re-probe still in flight after entering fallback")
	}

	r.step(context.Background(), at(75))
	if r.Mode() != ModeHotspotFallback {
		t.Errorf("mode = %s, want hotspot_fallback until the re-probe interval", r.Mode())
	}
	if got := a.count(netaction.ScriptDisableHotspot); got != 1 {
		t.Errorf("disable-hotspot calls = %d, want 1", got)
	}
	if err := r.TriggerReprobe(); err != nil {
		t.Errorf("TriggerReprobe() = %v, want accepted", err)
	}
}

func TestConcurrentTriggerReprobe(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)
	enterFallback(t, r)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.TriggerReprobe() == nil {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := accepted.Load(); got != 1 {
		t.Errorf("accepted re-probes = %d, want 1", got)
	}
}

func TestUSBLinkBringUp(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) { c.EnableUSBOTG = true })
	p := newMockProber()
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, false)

	r.step(context.Background(), at(5))

	want := []string{netaction.ScriptEnableUSB, "up usb0", "addr usb0 10.10.20.1/24"}
	got := a.all()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}

	p.ifaces["usb0"] = probe.InterfaceStatus{
		Name: "usb0", Present: true, Up: true,
		Addrs: []netip.Prefix{netip.MustParsePrefix("10.10.20.1/24")},
	}
	r.step(context.Background(), at(10))
	if len(a.all()) != len(want) {
		t.Errorf("healthy link should not be touched: %v", a.all())
	}
	if !r.Snapshot().Link(LinkUSB).Healthy() {
		t.Error("usb link should be healthy")
	}
}

func TestLinkConfigureOnly(t *testing.T) {
	tests := []struct {
		name   string
		status probe.InterfaceStatus
		want   []string
	}{
		{
			name:   "present but down",
			status: probe.InterfaceStatus{Name: "pan0", Present: true, Addrs: []netip.Prefix{netip.MustParsePrefix("10.10.10.1/24")}},
			want:   []string{"up pan0"},
		},
		{
			name:   "up without address",
			status: probe.InterfaceStatus{Name: "pan0", Present: true, Up: true},
			want:   []string{"addr pan0 10.10.10.1/24"},
		},
		{
			name:   "down with wrong address",
			status: probe.InterfaceStatus{Name: "pan0", Present: true, Addrs: []netip.Prefix{netip.MustParsePrefix("10.10.10.1/16")}},
			want:   []string{"up pan0", "addr pan0 10.10.10.1/24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(func(c *config.Config) { c.EnableSSHBT = true })
			p := newMockProber()
			p.ifaces["pan0"] = tt.status
			a := newMockActions()
			r := newTestReconciler(cfg, p, a, false)

			r.step(context.Background(), at(5))

			got := a.all()
			if len(got) != len(tt.want) {
				t.Fatalf("calls = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("call %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDisabledLinkTornDownOnce(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	p.ifaces["usb0"] = probe.InterfaceStatus{Name: "usb0", Present: true, Up: true}
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, false)

	stepUntil(r, 5, 30)

	if got := a.count(netaction.ScriptDisableUSB); got != 1 {
		t.Errorf("disable-usb-ether calls = %d, want 1", got)
	}
}

func TestDisabledLinkTornDownAgainWhenItReappears(t *testing.T) {
	cfg := newTestConfig(nil)
	p := newMockProber()
	present := probe.InterfaceStatus{Name: "usb0", Present: true, Up: true}
	p.ifaces["usb0"] = present
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, false)

	stepUntil(r, 5, 15)

	p.mu.Lock()
	delete(p.ifaces, "usb0")
	p.mu.Unlock()
	stepUntil(r, 20, 25)

	p.mu.Lock()
	p.ifaces["usb0"] = present
	p.mu.Unlock()
	stepUntil(r, 30, 40)

	if got := a.count(netaction.ScriptDisableUSB); got != 2 {
		t.Errorf("disable-usb-ether calls = %d, want 2", got)
	}
}

func TestLinkFailureBacksOff(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) { c.EnableSSHBT = true })
	p := newMockProber()
	a := newMockActions()
	a.setFail(netaction.ScriptEnableBTPAN, errors.New("bluetoothd not running"))
	r := newTestReconciler(cfg, p, a, false)

	// 5 fails (next 10), 10 fails (next 20), 15 suppressed, 20 fails (next 40).
	stepUntil(r, 5, 35)

	if got := a.count(netaction.ScriptEnableBTPAN); got != 3 {
		t.Errorf("enable-bt-pan calls = %d, want 3", got)
	}
	ls := r.Snapshot().Link(LinkBluetooth)
	if ls.Failures != 3 || ls.LastError == "" || !ls.NextAttempt.Equal(at(40)) {
		t.Errorf("link state = %+v", ls)
	}
	if a.count("up pan0") != 0 {
		t.Error("link up must not run after a failed bring-up script")
	}
}

func TestUnavailableLinkProbeHoldsState(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) { c.EnableUSBOTG = true })
	p := newMockProber()
	p.ifaceErr["usb0"] = probe.ErrUnavailable
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, false)

	stepUntil(r, 5, 30)

	if calls := a.all(); len(calls) != 0 {
		t.Errorf("unexpected actions %v", calls)
	}
	if !r.Snapshot().Link(LinkUSB).Unavailable {
		t.Error("link should be reported unavailable")
	}
}

func TestWiFiChangesNeverTouchLinks(t *testing.T) {
	cfg := newTestConfig(func(c *config.Config) {
		c.EnableUSBOTG = true
		c.EnableSSHBT = true
	})
	p := newMockProber()
	p.ifaces["usb0"] = probe.InterfaceStatus{Name: "usb0", Present: true, Up: true, Addrs: []netip.Prefix{netip.MustParsePrefix("10.10.20.1/24")}}
	p.ifaces["pan0"] = probe.InterfaceStatus{Name: "pan0", Present: true, Up: true, Addrs: []netip.Prefix{netip.MustParsePrefix("10.10.10.1/24")}}
	a := newMockActions()
	r := newTestReconciler(cfg, p, a, true)
	enterFallback(t, r)

	for _, call := range a.all() {
		switch call {
		case netaction.ScriptDisableUSB, netaction.ScriptDisableBTPAN, netaction.ScriptEnableUSB, netaction.ScriptEnableBTPAN:
			t.Errorf("wifi fallback touched a management link: %s", call)
		}
	}
}

func TestWiFiConfigured(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"missing file", filepath.Join(dir, "absent.conf"), false},
		{"no networks", write("empty.conf", "ctrl_interface=DIR=/var/run/wpa_supplicant\nupdate_config=1\n"), false},
		{"one network", write("home.conf", "country=US\nnetwork={\n\tssid=\"home\"\n\tpsk=\"secret\"\n}\n"), true},
		{"indented", write("indent.conf", "  network = {\n ssid=\"x\"\n}\n"), true},
		{"commented", write("comment.conf", "#network={\n"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WiFiConfigured(tt.path)
			if err != nil {
				t.Fatalf("WiFiConfigured() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("WiFiConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModeLabels(t *testing.T) {
	t.Parallel()

	if stateProbing.Mode() != ModeTransitioning || stateReprobing.Mode() != ModeTransitioning {
		t.Error("probing and reprobing must export as transitioning")
	}
	if ModeHotspotFallback.Label() != "AP" || ModeClient.Label() != "WiFi" {
		t.Error("unexpected display labels")
	}
}
