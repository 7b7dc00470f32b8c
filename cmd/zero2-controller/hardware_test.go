// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package main

import (
	"testing"

	"github.com/tomtom215/zero2-controller/internal/config"
)

func TestButtonsEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		buttons, display, want bool
	}{
		{true, true, true},
		{true, false, false},
		{false, true, false},
		{false, false, false},
	}
	for _, tt := range tests {
		cfg := config.Defaults()
		cfg.EnableButtons = tt.buttons
		cfg.EnableDisplay = tt.display
		if got := buttonsEnabled(cfg); got != tt.want {
			t.Errorf("buttonsEnabled(buttons=%v, display=%v) = %v, want %v", tt.buttons, tt.display, got, tt.want)
		}
	}
}

func TestOpenHardwareAllDisabled(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.EnableLowBat = false
	cfg.EnableDisplay = false
	// Buttons without a display open nothing either.
	cfg.EnableButtons = true

	hw := openHardware(config.NewStore("", cfg), nil, nil, nil)
	if hw.watchdog != nil || hw.display != nil || hw.buttons != nil || hw.batteryPin != nil {
		t.Errorf("openHardware() = %+v, want an empty set", hw)
	}
	if fns := hw.applyFuncs(); len(fns) != 0 {
		t.Errorf("applyFuncs() = %d funcs, want none", len(fns))
	}
	hw.Close()
}
