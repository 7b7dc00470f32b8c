// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

/*
Package services provides suture.Service wrappers for the controller's loops.

  - LoopService: runs a Ticker (reconciler, battery watchdog, display,
    buttons) on a cadence re-read from the live configuration
  - HTTPServerService: the status API with graceful shutdown
  - ReloadService: SIGHUP configuration reload

Every wrapper returns ctx.Err() on shutdown and implements fmt.Stringer so
suture can name it in log messages.
*/
package services
