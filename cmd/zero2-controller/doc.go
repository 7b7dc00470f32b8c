// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

/*
Command zero2-controller is the runtime supervisor of a headless Pi Zero 2W.

It keeps at least one management path to the board reachable (USB gadget
ethernet, Bluetooth PAN, WiFi client with a hotspot fallback), shows status
on an SSD1306 OLED, and shuts the board down cleanly when the low-battery
GPIO signal stays asserted.

# Process Structure

	RootSupervisor ("zero2-controller")
	├── HardwareSupervisor ("hardware-layer")
	│   ├── battery-watchdog   every POWER_POLL_INTERVAL
	│   ├── display            every DISPLAY_UPDATE_INTERVAL
	│   └── buttons            every 50ms
	├── NetworkSupervisor ("network-layer")
	│   └── network-reconciler every NETWORK_CHECK_INTERVAL
	└── ControlSupervisor ("control-layer")
	    ├── status-api         STATUS_ADDR
	    └── config-reload      SIGHUP

Startup order:

 1. Configuration: zero2.conf (KEY=VALUE or JSON) plus environment overrides
 2. Logging: zerolog to stderr and a rotating LOG_FILE
 3. Hardware: periph.io host drivers; GPIO and I2C handles are opened once
 4. Loops: reconciler, battery watchdog, display, buttons
 5. Supervisor tree and status API

A hardware device that cannot be opened disables only its subsystem. A
configuration error is fatal and exits with status 1.

# Configuration

The config file is $ZERO2_CONFIG, else config/zero2.conf in the working
directory for development, else /opt/zero2_controller/config/zero2.conf.
A missing file runs on defaults. Every key can be overridden by an
environment variable of the same name:

	ENABLE_WIFI_HOTSPOT=false zero2-controller

# Signals

	SIGINT, SIGTERM  finish the current tick of every loop, then exit 0
	SIGHUP           reload the configuration; a failed reload keeps the old one
*/
package main
