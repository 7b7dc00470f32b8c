// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package logging provides centralized zerolog-based logging for the Zero2 controller.
//
// Every log line is written to stderr (picked up by the systemd journal) and,
// when a file is configured, to a size-rotated log file:
//
//	logging.Init(logging.Config{
//	    Level:      "INFO",
//	    Format:     "json",
//	    File:       "/var/log/zero2-controller.log",
//	    MaxBytes:   10 << 20,
//	    MaxBackups: 5,
//	})
//
//	logging.Info().Str("iface", "usb0").Msg("Link up")
//	logging.Warn().Err(err).Int("attempt", n).Msg("Bring-up failed")
//
// Always terminate log chains with .Msg() or .Send().
//
// # Component Loggers
//
// Each package logs through a component logger:
//
//	log := logging.Component("network")
//	log.Info().Str("from", "probing").Str("to", "hotspot").Msg("mode transition")
//
// # Correlation
//
// Status API requests carry their request id as correlation_id:
//
//	logging.Ctx(r.Context()).Info().Msg("re-probe requested")
//
// # slog Adapter
//
// NewSlogLogger bridges the global logger to slog for sutureslog, so
// supervisor events land in the same stream.
package logging
