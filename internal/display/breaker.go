// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package display

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/zero2-controller/internal/logging"
	"github.com/tomtom215/zero2-controller/internal/metrics"
)

// ErrSkipped is returned while the breaker is open and writes are skipped.
var ErrSkipped = errors.New("display write skipped: circuit open")

// BreakerRenderer guards a Renderer with a circuit breaker.
// Three consecutive write failures open the circuit; after the timeout a
// single trial write is allowed through.
type BreakerRenderer struct {
	next Renderer
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerRenderer wraps next. timeout is how long the circuit stays open.
func NewBreakerRenderer(next Renderer, timeout time.Duration) *BreakerRenderer {
	const name = "ssd1306"
	log := logging.Component("display")
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("display breaker state change")
			metrics.RecordBreakerTransition(name, from.String(), to.String())
		},
	})
	return &BreakerRenderer{next: next, cb: cb}
}

// Render implements Renderer.
func (b *BreakerRenderer) Render(lines []string) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Render(lines)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrSkipped
	}
	return err
}

// State returns the breaker state name.
func (b *BreakerRenderer) State() string {
	return b.cb.State().String()
}

// Close implements Renderer.
func (b *BreakerRenderer) Close() error {
	return b.next.Close()
}
