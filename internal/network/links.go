// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package network

import (
	"context"
	"time"

	"github.com/tomtom215/zero2-controller/internal/config"
	"github.com/tomtom215/zero2-controller/internal/metrics"
	"github.com/tomtom215/zero2-controller/internal/netaction"
)

// link reconciles one management interface (USB gadget or Bluetooth PAN).
type link struct {
	name       string
	upScript   string
	downScript string
	gate       *netaction.Gate
	tornDown   bool
	state      LinkState
}

func newLink(name, upScript, downScript string, ceiling time.Duration) *link {
	return &link{
		name:       name,
		upScript:   upScript,
		downScript: downScript,
		gate:       netaction.NewGate(netaction.DefaultInitialBackoff, ceiling),
		state:      LinkState{Name: name},
	}
}

// reconcile brings the link to its desired state:
//   - enabled and absent: bring-up script, link up, address
//   - enabled, present but down or unaddressed: link up and/or address only
//   - disabled and present: teardown script, once per appearance
//
// Failures back off exponentially; an unavailable probe reading holds the
// link as it is.
func (l *link) reconcile(ctx context.Context, r *Reconciler, cfg *config.Config, now time.Time, enabled bool, iface, ip string) {
	l.state.Enabled = enabled
	l.state.Interface = iface
	if enabled {
		l.tornDown = false
	}

	st, err := r.probes.Interface(ctx, iface)
	if err != nil {
		l.state.Unavailable = true
		l.state.LastError = err.Error()
		metrics.SetLinkUp(l.name, false)
		return
	}
	l.state.Unavailable = false

	prefix, perr := hostPrefix(cfg, ip)
	l.state.Present = st.Present
	l.state.Up = st.Up
	l.state.Addressed = perr == nil && st.HasPrefix(prefix)

	if !enabled {
		metrics.SetLinkUp(l.name, false)
		if !st.Present {
			// Rearm: an interface that comes back is torn down again.
			l.tornDown = false
			return
		}
		if l.tornDown {
			return
		}
		if !l.gate.Ready(now) {
			metrics.RecordAction(l.downScript, "backoff", 0)
			return
		}
		if err := r.actions.RunScript(ctx, cfg.ScriptsDir, l.downScript); err != nil {
			l.failed(r, err, now)
			return
		}
		l.succeeded()
		l.tornDown = true
		r.log.Info().Str("link", l.name).Str("interface", iface).Msg("link disabled, torn down")
		return
	}

	if l.state.Healthy() {
		l.succeeded()
		metrics.SetLinkUp(l.name, true)
		return
	}
	metrics.SetLinkUp(l.name, false)
	if perr != nil {
		l.state.LastError = perr.Error()
		return
	}
	if !l.gate.Ready(now) {
		metrics.RecordAction(l.upScript, "backoff", 0)
		return
	}

	if !st.Present {
		if err := r.actions.RunScript(ctx, cfg.ScriptsDir, l.upScript); err != nil {
			l.failed(r, err, now)
			return
		}
	}
	if !st.Present || !st.Up {
		if err := r.actions.SetLinkUp(ctx, iface); err != nil {
			l.failed(r, err, now)
			return
		}
	}
	if !st.Present || !l.state.Addressed {
		if err := r.actions.ReplaceAddr(ctx, iface, prefix); err != nil {
			l.failed(r, err, now)
			return
		}
	}
	l.succeeded()
	r.log.Info().
		Str("link", l.name).
		Str("interface", iface).
		Str("address", prefix.String()).
		Bool("was_present", st.Present).
		Msg("link configured")
}

func (l *link) failed(r *Reconciler, err error, now time.Time) {
	delay := l.gate.Failure(now)
	r.actionFailed(err, l.gate.Attempts(), delay)
	l.state.Failures = l.gate.Attempts()
	l.state.NextAttempt = l.gate.NextAttempt()
	l.state.LastError = err.Error()
}

func (l *link) succeeded() {
	l.gate.Success()
	l.state.Failures = 0
	l.state.NextAttempt = time.Time{}
	l.state.LastError = ""
}
