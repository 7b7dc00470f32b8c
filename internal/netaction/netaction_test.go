// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package netaction

import (
	"context"
	"errors"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/zero2-controller/internal/execx"
)

func TestRunScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := filepath.Join(dir, ScriptEnableHotspot)
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	runner := execx.NewFakeRunner()
	e := NewExecutor(runner, time.Second)

	if err := e.RunScript(context.Background(), dir, ScriptEnableHotspot); err != nil {
		t.Fatalf("RunScript() error = %v", err)
	}
	if runner.Count(script) != 1 {
		t.Errorf("calls = %v", runner.Calls())
	}
}

func TestRunScriptMissing(t *testing.T) {
	t.Parallel()

	runner := execx.NewFakeRunner()
	e := NewExecutor(runner, time.Second)

	err := e.RunScript(context.Background(), t.TempDir(), ScriptEnableBTPAN)
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if aerr.Target != ScriptEnableBTPAN || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("unexpected error %v", err)
	}
	if len(runner.Calls()) != 0 {
		t.Error("missing script must not be executed")
	}
}

func TestActionCommandLines(t *testing.T) {
	t.Parallel()

	runner := execx.NewFakeRunner()
	e := NewExecutor(runner, time.Second)
	ctx := context.Background()

	_ = e.SetLinkUp(ctx, "usb0")
	_ = e.ReplaceAddr(ctx, "usb0", netip.MustParsePrefix("10.10.20.1/24"))
	_ = e.ReconnectWiFi(ctx, "wlan0")
	_ = e.Broadcast(ctx, "Low battery")
	_ = e.Shutdown(ctx)

	want := []string{
		"ip link set dev usb0 up",
		"ip addr replace 10.10.20.1/24 dev usb0",
		"wpa_cli -i wlan0 reconnect",
		"wall",
		"shutdown -h now",
	}
	got := runner.Calls()
	if len(got) != len(want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
	if runner.Inputs()[3] != "Low battery\n" {
		t.Errorf("wall input = %q", runner.Inputs()[3])
	}
}

func TestActionDetachedFromCancellation(t *testing.T) {
	t.Parallel()

	runner := execx.NewFakeRunner()
	e := NewExecutor(runner, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.SetLinkUp(ctx, "pan0"); err != nil {
		t.Errorf("action should run on a detached context, got %v", err)
	}
}

func TestActionFailureIsTyped(t *testing.T) {
	t.Parallel()

	runner := execx.NewFakeRunner()
	runner.Set("ip link set dev pan0 up", execx.FakeResult{Err: errors.New("Cannot find device")})
	e := NewExecutor(runner, time.Second)

	err := e.SetLinkUp(context.Background(), "pan0")
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Action != "link_up" || aerr.Target != "pan0" {
		t.Fatalf("unexpected error %v", err)
	}
	aerr.Attempt = 2
	if aerr.Error() != "link_up pan0 (attempt 2): Cannot find device" {
		t.Errorf("Error() = %q", aerr.Error())
	}
}

func TestGateBackoff(t *testing.T) {
	t.Parallel()

	g := NewGate(5*time.Second, 30*time.Second)
	now := time.Unix(1000, 0)

	if !g.Ready(now) {
		t.Fatal("fresh gate should be ready")
	}

	wantDelays := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 30 * time.Second, 30 * time.Second}
	for i, want := range wantDelays {
		d := g.Failure(now)
		if d != want {
			t.Errorf("failure %d delay = %v, want %v", i+1, d, want)
		}
		if g.Ready(now.Add(d - time.Millisecond)) {
			t.Errorf("failure %d: gate open before backoff expired", i+1)
		}
		if !g.Ready(now.Add(d)) {
			t.Errorf("failure %d: gate closed after backoff expired", i+1)
		}
	}
	if g.Attempts() != len(wantDelays) {
		t.Errorf("Attempts() = %d", g.Attempts())
	}

	g.Success()
	if !g.Ready(now) || g.Attempts() != 0 {
		t.Error("success should reset the gate")
	}
	if d := g.Failure(now); d != 5*time.Second {
		t.Errorf("delay after reset = %v, want 5s", d)
	}
}
