// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package buttons polls the Adafruit OLED Bonnet buttons.
package buttons

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"

	"github.com/tomtom215/zero2-controller/internal/hardware"
	"github.com/tomtom215/zero2-controller/internal/logging"
)

// PollInterval is how often the buttons are sampled.
const PollInterval = 50 * time.Millisecond

// Debounce is the minimum time between two presses of the same button.
const Debounce = 100 * time.Millisecond

// Button is a named push button on a BCM GPIO pin.
type Button struct {
	Name string
	Pin  int
}

// Bonnet is the button map of the Adafruit 128x64 OLED Bonnet.
var Bonnet = []Button{
	{Name: "A", Pin: 5},
	{Name: "B", Pin: 6},
	{Name: "UP", Pin: 23},
	{Name: "DOWN", Pin: 17},
	{Name: "LEFT", Pin: 22},
	{Name: "RIGHT", Pin: 27},
	{Name: "SELECT", Pin: 4},
}

// ErrNoButtons is returned when no button pin could be opened.
var ErrNoButtons = errors.New("no button could be opened")

// Opener opens a GPIO input; hardware.OpenInput in production.
type Opener func(bcm int, pull gpio.Pull) (gpio.PinIn, error)

type input struct {
	Button
	pin       gpio.PinIn
	pressed   bool
	lastPress time.Time
}

// Buttons polls a set of active-low buttons and calls the registered
// callback on each debounced press.
type Buttons struct {
	inputs   []*input
	handlers map[string]func()
	log      zerolog.Logger
	now      func() time.Time
}

// Open configures every button with a pull-up. Buttons that fail to open
// are logged and skipped.
func Open(buttons []Button, open Opener) (*Buttons, error) {
	b := &Buttons{
		handlers: make(map[string]func()),
		log:      logging.Component("buttons"),
		now:      time.Now,
	}
	for _, btn := range buttons {
		pin, err := open(btn.Pin, gpio.PullUp)
		if err != nil {
			b.log.Warn().Err(err).Str("button", btn.Name).Int("gpio", btn.Pin).Msg("cannot open button")
			continue
		}
		b.inputs = append(b.inputs, &input{Button: btn, pin: pin})
	}
	if len(b.inputs) == 0 {
		return nil, ErrNoButtons
	}
	return b, nil
}

// On registers fn for presses of the named button.
func (b *Buttons) On(name string, fn func()) {
	b.handlers[name] = fn
}

// Names returns the buttons that were opened.
func (b *Buttons) Names() []string {
	names := make([]string, 0, len(b.inputs))
	for _, in := range b.inputs {
		names = append(names, in.Name)
	}
	return names
}

// Tick samples every button once.
func (b *Buttons) Tick(_ context.Context) {
	now := b.now()
	for _, in := range b.inputs {
		down := in.pin.Read() == gpio.Low
		pressed := down && !in.pressed && now.Sub(in.lastPress) >= Debounce
		in.pressed = down
		if !pressed {
			continue
		}
		in.lastPress = now
		b.fire(in.Name)
	}
}

func (b *Buttons) fire(name string) {
	fn, ok := b.handlers[name]
	if !ok {
		b.log.Debug().Str("button", name).Msg("button pressed, no handler")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("button", name).Msg("button handler panicked")
		}
	}()
	b.log.Debug().Str("button", name).Msg("button pressed")
	fn()
}

// Close releases the button pins.
func (b *Buttons) Close() error {
	for _, in := range b.inputs {
		hardware.Release(in.pin)
	}
	return nil
}

// OpenBonnet opens the Bonnet buttons on the host GPIO.
func OpenBonnet() (*Buttons, error) {
	return Open(Bonnet, hardware.OpenInput)
}
