// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package main

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/tomtom215/zero2-controller/internal/battery"
	"github.com/tomtom215/zero2-controller/internal/buttons"
	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/display"
	"github.com/tomtom215/zero2-controller/internal/hardware"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/netaction"
	"github.com/tomtom215/zero2-controller/internal/network"
	"github.com/tomtom215/zero2-controller/internal/probe"
	"github.com/tomtom215/zero2-controller/internal/supervisor"
	"github.com/tomtom215/zero2-controller/internal/supervisor/services"
)

const (
	// buttonNotice is how long a button press shows on the display.
	buttonNotice = 2 * time.Second

	// breakerOpen is how long display writes are skipped after the panel
	// failed three times in a row.
	breakerOpen = 30 * time.Second
)

// hardwareSet holds the loops that own GPIO or I2C handles. A nil field
// means the subsystem is disabled or its device could not be opened.
type hardwareSet struct {
	batteryPin   gpio.PinIn
	batteryProbe *probe.Probe[bool]
	watchdog     *battery.Watchdog
	display      *display.Display
	buttons      *buttons.Buttons
}

// openHardware opens every enabled device once. Open failures are
// *hardware.DeviceError and disable only the affected subsystem.
func openHardware(store *config.Store, host *probe.Host, reconciler *network.Reconciler, executor *netaction.Executor) *hardwareSet {
	cfg := store.Current()
	hw := &hardwareSet{}
	if !cfg.EnableLowBat && !cfg.EnableDisplay && !buttonsEnabled(cfg) {
		return hw
	}

	if err := hardware.Init(); err != nil {
		logging.Error().Err(err).Msg("Hardware drivers unavailable, battery watchdog, display and buttons disabled")
		return hw
	}

	if cfg.EnableLowBat {
		hw.openBattery(store, executor)
	}
	if cfg.EnableDisplay {
		hw.openDisplay(cfg, host, reconciler)
	}
	if hw.watchdog != nil && hw.display != nil {
		hw.watchdog.SetNotifier(hw.display)
	}
	if buttonsEnabled(cfg) {
		hw.openButtons(reconciler)
	}
	return hw
}

// buttonsEnabled reports whether the Bonnet buttons are read. Their only
// feedback is the display, so they follow ENABLE_DISPLAY as well.
func buttonsEnabled(c *config.Config) bool {
	return c.EnableButtons && c.EnableDisplay
}

func (hw *hardwareSet) openBattery(store *config.Store, executor *netaction.Executor) {
	cfg := store.Current()
	pin, err := hardware.OpenInput(cfg.PowerGPIOPin, gpio.Float)
	if err != nil {
		logging.Error().Err(err).Int("gpio", cfg.PowerGPIOPin).Msg("Low battery watchdog disabled")
		return
	}
	signal := probe.NewSignal(pin, cfg.PowerActiveLow)
	hw.batteryPin = pin
	hw.batteryProbe = probe.New("battery_gpio", cfg.ProbeTimeoutDuration(), signal.Asserted)
	hw.watchdog = battery.NewWatchdog(store, hw.batteryProbe, executor)
	logging.Info().
		Int("gpio", cfg.PowerGPIOPin).
		Bool("active_low", cfg.PowerActiveLow).
		Int("threshold_s", cfg.PowerThreshold).
		Msg("Low battery watchdog enabled")
}

func (hw *hardwareSet) openDisplay(cfg *config.Config, host *probe.Host, reconciler *network.Reconciler) {
	oled, err := display.OpenOLED(cfg.I2CBus())
	if err != nil {
		var derr *hardware.DeviceError
		if errors.As(err, &derr) {
			logging.Error().Err(derr.Err).Str("device", derr.Device).Str("bus", cfg.I2CBus()).Msg("Display disabled")
		} else {
			logging.Error().Err(err).Str("bus", cfg.I2CBus()).Msg("Display disabled")
		}
		return
	}
	var bat display.BatteryView
	if hw.watchdog != nil {
		bat = hw.watchdog
	}
	hw.display = display.New(host, reconciler, bat, display.NewBreakerRenderer(oled, breakerOpen))
	logging.Info().Str("bus", cfg.I2CBus()).Str("mode", cfg.I2CMode).Msg("Display enabled")
}

func (hw *hardwareSet) openButtons(reconciler *network.Reconciler) {
	b, err := buttons.OpenBonnet()
	if err != nil {
		logging.Error().Err(err).Msg("Buttons disabled")
		return
	}
	for _, name := range b.Names() {
		b.On(name, hw.buttonHandler(name, reconciler))
	}
	hw.buttons = b
	logging.Info().Strs("buttons", b.Names()).Msg("Buttons enabled")
}

// buttonHandler shows the button name; A also requests a hotspot re-probe.
func (hw *hardwareSet) buttonHandler(name string, reconciler *network.Reconciler) func() {
	return func() {
		text := name
		if name == "A" {
			if err := reconciler.TriggerReprobe(); err != nil {
				logging.Info().Err(err).Msg("Re-probe button ignored")
			} else {
				text = "A: re-probe"
			}
		}
		if hw.display != nil {
			hw.display.ShowNotice(text, buttonNotice)
		}
	}
}

func (hw *hardwareSet) addServices(tree *supervisor.SupervisorTree, store *config.Store) {
	if hw.watchdog != nil {
		tree.AddHardwareService(services.NewLoopService("battery-watchdog", hw.watchdog,
			func() time.Duration { return store.Current().PowerPollDuration() }))
	}
	if hw.display != nil {
		loop := services.WhenEnabled(func() bool { return store.Current().EnableDisplay }, hw.display)
		tree.AddHardwareService(services.NewLoopService("display", loop,
			func() time.Duration { return store.Current().DisplayInterval() }))
	}
	if hw.buttons != nil {
		loop := services.WhenEnabled(func() bool { return buttonsEnabled(store.Current()) }, hw.buttons)
		tree.AddHardwareService(services.NewLoopService("buttons", loop,
			func() time.Duration { return buttons.PollInterval }))
	}
}

func (hw *hardwareSet) applyFuncs() []services.ApplyFunc {
	if hw.batteryProbe == nil {
		return nil
	}
	return []services.ApplyFunc{
		func(c *config.Config) { hw.batteryProbe.SetTimeout(c.ProbeTimeoutDuration()) },
	}
}

// Close releases every device handle once the supervisor tree has stopped.
func (hw *hardwareSet) Close() {
	if hw.display != nil {
		if err := hw.display.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing display")
		}
	}
	if hw.buttons != nil {
		if err := hw.buttons.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error releasing buttons")
		}
	}
	if hw.batteryPin != nil {
		hardware.Release(hw.batteryPin)
	}
}

// displayLines adapts the display's fixed line array for the status API.
type displayLines struct {
	d *display.Display
}

func (l displayLines) Lines() []string {
	lines := l.d.Lines()
	return lines[:]
}
