// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package probe reads hardware and OS state under a bounded timeout.
//
// A probe never panics and never blocks longer than its timeout: every
// failure is returned wrapped in ErrUnavailable. Each probe has a Tracker
// that counts consecutive failures; after DegradedThreshold failures the
// probe reports Degraded until the next successful read.
package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/metrics"
)

// ErrUnavailable wraps every failed or timed out read.
var ErrUnavailable = errors.New("probe unavailable")

// DegradedThreshold is the number of consecutive failures after which a
// probe is reported as degraded.
const DegradedThreshold = 3

// Tracker counts consecutive failures of one probe.
type Tracker struct {
	name string
	log  zerolog.Logger

	mu       sync.Mutex
	failures int
	degraded bool
	// warnings while degraded are throttled to one per minute
	warn rate.Sometimes
}

// NewTracker creates a tracker for the named probe.
func NewTracker(name string) *Tracker {
	return &Tracker{
		name: name,
		log:  logging.Component("probe").With().Str("probe", name).Logger(),
		warn: rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

// Name returns the probe name.
func (t *Tracker) Name() string {
	return t.name
}

// Observe records the outcome of one read.
func (t *Tracker) Observe(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		if t.degraded {
			t.log.Info().Int("failures", t.failures).Msg("probe recovered")
		}
		t.failures = 0
		t.degraded = false
		metrics.RecordProbe(t.name, true, false)
		return
	}

	t.failures++
	if !t.degraded && t.failures >= DegradedThreshold {
		t.degraded = true
		t.log.Warn().Err(err).Int("failures", t.failures).Msg("probe degraded")
	} else if t.degraded {
		t.warn.Do(func() {
			t.log.Warn().Err(err).Int("failures", t.failures).Msg("probe still unavailable")
		})
	} else {
		t.log.Debug().Err(err).Int("failures", t.failures).Msg("probe read failed")
	}
	metrics.RecordProbe(t.name, false, t.degraded)
}

// Degraded reports whether the failure threshold has been crossed.
func (t *Tracker) Degraded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.degraded
}

// Failures returns the current consecutive failure count.
func (t *Tracker) Failures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures
}

type result[T any] struct {
	v   T
	err error
}

// Read runs fn bounded by timeout and records the outcome on tr.
// fn runs on its own goroutine so that a read that ignores ctx still
// cannot hold the caller past the timeout.
func Read[T any](ctx context.Context, tr *Tracker, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result[T]{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		v, err := fn(ctx)
		ch <- result[T]{v: v, err: err}
	}()

	var res result[T]
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	if res.err != nil {
		tr.Observe(res.err)
		var zero T
		return zero, fmt.Errorf("%w: %s: %w", ErrUnavailable, tr.Name(), res.err)
	}
	tr.Observe(nil)
	return res.v, nil
}

// Probe is a single-purpose probe with its own tracker and timeout.
type Probe[T any] struct {
	tracker *Tracker
	timeout atomic.Int64
	read    func(context.Context) (T, error)
}

// New creates a probe named name around read.
func New[T any](name string, timeout time.Duration, read func(context.Context) (T, error)) *Probe[T] {
	p := &Probe[T]{tracker: NewTracker(name), read: read}
	p.SetTimeout(timeout)
	return p
}

// Read performs one bounded read.
func (p *Probe[T]) Read(ctx context.Context) (T, error) {
	return Read(ctx, p.tracker, time.Duration(p.timeout.Load()), p.read)
}

// SetTimeout changes the read timeout. Used on config reload.
func (p *Probe[T]) SetTimeout(d time.Duration) {
	p.timeout.Store(int64(d))
}

// Degraded reports whether the probe has crossed its failure threshold.
func (p *Probe[T]) Degraded() bool {
	return p.tracker.Degraded()
}

// Name returns the probe name.
func (p *Probe[T]) Name() string {
	return p.tracker.Name()
}
