// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package probe

import (
	"context"
	"errors"

	"periph.io/x/conn/v3/gpio"
)

var errNoPin = errors.New("gpio pin not open")

// Signal interprets a GPIO input as an asserted/clear signal.
type Signal struct {
	pin       gpio.PinIn
	activeLow bool
}

// NewSignal wraps pin. With activeLow a low level means asserted.
func NewSignal(pin gpio.PinIn, activeLow bool) *Signal {
	return &Signal{pin: pin, activeLow: activeLow}
}

// Asserted reads the pin once.
func (s *Signal) Asserted(_ context.Context) (bool, error) {
	if s == nil || s.pin == nil {
		return false, errNoPin
	}
	level := s.pin.Read()
	if s.activeLow {
		return level == gpio.Low, nil
	}
	return level == gpio.High, nil
}
