// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package netaction

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultInitialBackoff is the delay after the first failure of an action.
const DefaultInitialBackoff = 5 * time.Second

// Gate suppresses retries of a failing action until its backoff expires.
// Delays double up to the ceiling and reset after one success. Not safe for
// concurrent use; each gate belongs to the loop that acts.
type Gate struct {
	bo       *backoff.ExponentialBackOff
	next     time.Time
	attempts int
}

// NewGate creates a gate with the given ceiling.
func NewGate(initial, ceiling time.Duration) *Gate {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initial
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = ceiling
	bo.MaxElapsedTime = 0
	bo.Reset()
	return &Gate{bo: bo}
}

// Ready reports whether the action may be attempted at now.
func (g *Gate) Ready(now time.Time) bool {
	return g.next.IsZero() || !now.Before(g.next)
}

// Failure records a failed attempt and returns the delay before the next one.
func (g *Gate) Failure(now time.Time) time.Duration {
	g.attempts++
	d := g.bo.NextBackOff()
	if d == backoff.Stop || d > g.bo.MaxInterval {
		d = g.bo.MaxInterval
	}
	g.next = now.Add(d)
	return d
}

// Success clears the backoff.
func (g *Gate) Success() {
	g.attempts = 0
	g.next = time.Time{}
	g.bo.Reset()
}

// Attempts returns the number of consecutive failures.
func (g *Gate) Attempts() int {
	return g.attempts
}

// NextAttempt returns when the action may run again (zero when ready).
func (g *Gate) NextAttempt() time.Time {
	return g.next
}

// SetCeiling changes the maximum delay of future failures. Used on config reload.
func (g *Gate) SetCeiling(ceiling time.Duration) {
	g.bo.MaxInterval = ceiling
}
