// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2-controller/internal/logging"
)

// minInterval guards against a zero or negative interval from a bad reload.
const minInterval = 10 * time.Millisecond

// Ticker is one iteration of a control loop.
//
// Satisfied by *network.Reconciler, *battery.Watchdog, *display.Display and
// *buttons.Buttons.
type Ticker interface {
	Tick(ctx context.Context)
}

// LoopService runs a Ticker on a fixed cadence as a supervised service.
//
// The interval function is consulted after every tick, so a config reload
// that changes the cadence takes effect without restarting the loop:
//
//	svc := services.NewLoopService("network-reconciler", reconciler,
//	    func() time.Duration { return store.Current().CheckInterval() })
//	tree.AddNetworkService(svc)
type LoopService struct {
	name     string
	loop     Ticker
	interval func() time.Duration
	log      zerolog.Logger
}

// NewLoopService creates a new loop service wrapper.
func NewLoopService(name string, loop Ticker, interval func() time.Duration) *LoopService {
	return &LoopService{
		name:     name,
		loop:     loop,
		interval: interval,
		log:      logging.Component("supervisor").With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
//
// The first tick runs immediately. Cancellation is observed between ticks;
// a tick in progress runs to completion with the canceled context. The
// method returns ctx.Err() on normal shutdown and never returns otherwise.
func (l *LoopService) Serve(ctx context.Context) error {
	every := l.nextInterval()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	l.log.Debug().Dur("interval", every).Msg("loop started")
	l.loop.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			l.log.Debug().Msg("loop stopped")
			return ctx.Err()
		case <-ticker.C:
			l.loop.Tick(ctx)
			if next := l.nextInterval(); next != every {
				l.log.Info().Dur("from", every).Dur("to", next).Msg("loop interval changed")
				every = next
				ticker.Reset(every)
			}
		}
	}
}

func (l *LoopService) nextInterval() time.Duration {
	if d := l.interval(); d >= minInterval {
		return d
	}
	return minInterval
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (l *LoopService) String() string {
	return l.name
}

// Idler is implemented by loops that release their output while disabled.
type Idler interface {
	Idle(ctx context.Context)
}

// WhenEnabled runs loop only while enabled reports true. enabled is read
// before every tick, so a reload that clears a feature flag stops the loop
// on its next tick. On the first tick that finds the feature disabled,
// loop.Idle is called if loop implements Idler.
func WhenEnabled(enabled func() bool, loop Ticker) Ticker {
	return &gatedTicker{enabled: enabled, loop: loop}
}

type gatedTicker struct {
	enabled func() bool
	loop    Ticker
	idle    bool
}

func (g *gatedTicker) Tick(ctx context.Context) {
	if g.enabled() {
		g.idle = false
		g.loop.Tick(ctx)
		return
	}
	if g.idle {
		return
	}
	g.idle = true
	if i, ok := g.loop.(Idler); ok {
		i.Idle(ctx)
	}
}
