// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

/*
Package supervisor runs the controller's loops under a suture v4 tree.

	RootSupervisor ("zero2-controller")
	├── HardwareSupervisor ("hardware-layer")
	│   ├── battery watchdog   (ENABLE_LOW_BAT)
	│   ├── display            (ENABLE_DISPLAY)
	│   └── buttons            (ENABLE_BUTTONS)
	├── NetworkSupervisor ("network-layer")
	│   └── network reconciler
	└── ControlSupervisor ("control-layer")
	    ├── status API         (ENABLE_STATUS_API)
	    └── SIGHUP reload

Each loop is a services.LoopService. A panicking tick crashes only its own
loop, which suture restarts with backoff. Supervisor events are logged
through sutureslog into zerolog and counted in zero2_supervisor_events_total.

On SIGINT or SIGTERM the root context is canceled. Each service gets
TreeConfig.ShutdownTimeout to return; services that do not are listed by
UnstoppedServiceReport.
*/
package supervisor
