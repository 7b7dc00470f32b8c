// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package netaction performs the corrective actions of the network
// reconciler and the battery watchdog: the installer's helper scripts,
// `ip` link configuration, wpa_cli, wall and shutdown.
//
// Every action is bounded by the action timeout and runs on a context that
// is detached from the caller's cancellation, so a shutdown signal never
// interrupts a half-applied hotspot or gadget change.
package netaction

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2-controller/internal/execx"
	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/metrics"
)

// Helper scripts installed in SCRIPTS_DIR.
const (
	ScriptEnableHotspot  = "enable-hotspot.sh"
	ScriptDisableHotspot = "disable-hotspot.sh"
	ScriptEnableBTPAN    = "enable-bt-pan.sh"
	ScriptDisableBTPAN   = "disable-bt-pan.sh"
	ScriptEnableUSB      = "enable-usb-ether.sh"
	ScriptDisableUSB     = "disable-usb-ether.sh"
)

// Error is a failed corrective action.
type Error struct {
	Action  string
	Target  string
	Attempt int
	Err     error
}

func (e *Error) Error() string {
	if e.Attempt > 0 {
		return fmt.Sprintf("%s %s (attempt %d): %v", e.Action, e.Target, e.Attempt, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Action, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Executor runs actions through a command runner.
type Executor struct {
	runner  execx.Runner
	log     zerolog.Logger
	timeout atomic.Int64
	stat    func(string) (fs.FileInfo, error)
}

// NewExecutor creates an executor bounded by timeout per action.
func NewExecutor(runner execx.Runner, timeout time.Duration) *Executor {
	e := &Executor{
		runner: runner,
		log:    logging.Component("netaction"),
		stat:   os.Stat,
	}
	e.SetTimeout(timeout)
	return e
}

// SetTimeout changes the per-action timeout. Used on config reload.
func (e *Executor) SetTimeout(d time.Duration) {
	e.timeout.Store(int64(d))
}

func (e *Executor) do(ctx context.Context, action, target string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(e.timeout.Load()))
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordAction(action, "ok", elapsed)
		e.log.Debug().Str("action", action).Str("target", target).Dur("duration", elapsed).Msg("action completed")
		return nil
	case execx.IsTimeout(err):
		metrics.RecordAction(action, "timeout", elapsed)
	default:
		metrics.RecordAction(action, "error", elapsed)
	}
	return &Error{Action: action, Target: target, Err: err}
}

// RunScript runs a helper script from dir.
func (e *Executor) RunScript(ctx context.Context, dir, script string) error {
	path := filepath.Join(dir, script)
	return e.do(ctx, "script", script, func(ctx context.Context) error {
		if _, err := e.stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("helper script not found: %s: %w", path, err)
			}
			return err
		}
		_, err := e.runner.Run(ctx, path)
		return err
	})
}

// SetLinkUp brings an interface administratively up.
func (e *Executor) SetLinkUp(ctx context.Context, iface string) error {
	return e.do(ctx, "link_up", iface, func(ctx context.Context) error {
		_, err := e.runner.Run(ctx, "ip", "link", "set", "dev", iface, "up")
		return err
	})
}

// ReplaceAddr assigns prefix to iface, replacing an existing assignment.
func (e *Executor) ReplaceAddr(ctx context.Context, iface string, prefix netip.Prefix) error {
	return e.do(ctx, "addr_replace", iface, func(ctx context.Context) error {
		_, err := e.runner.Run(ctx, "ip", "addr", "replace", prefix.String(), "dev", iface)
		return err
	})
}

// ReconnectWiFi asks wpa_supplicant to reassociate.
func (e *Executor) ReconnectWiFi(ctx context.Context, iface string) error {
	return e.do(ctx, "reconnect_wifi", iface, func(ctx context.Context) error {
		_, err := e.runner.Run(ctx, "wpa_cli", "-i", iface, "reconnect")
		return err
	})
}

// Broadcast writes msg to every logged-in terminal.
func (e *Executor) Broadcast(ctx context.Context, msg string) error {
	return e.do(ctx, "wall", "terminals", func(ctx context.Context) error {
		_, err := e.runner.RunInput(ctx, msg+"\n", "wall")
		return err
	})
}

// Shutdown halts the host.
func (e *Executor) Shutdown(ctx context.Context) error {
	return e.do(ctx, "shutdown", "host", func(ctx context.Context) error {
		_, err := e.runner.Run(ctx, "shutdown", "-h", "now")
		return err
	})
}
