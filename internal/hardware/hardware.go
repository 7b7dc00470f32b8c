// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

// Package hardware opens the GPIO pins and I2C buses used by the controller.
//
// Handles are acquired once by the loop that owns them and released when the
// loop exits. Any failure to acquire a device is a *DeviceError; callers log
// it and disable the subsystem instead of exiting.
package hardware

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// ErrNotFound is returned when a named pin or bus is not registered.
var ErrNotFound = errors.New("device not found")

// DeviceError is a hardware acquisition failure.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("hardware %s: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

var (
	initOnce sync.Once
	initErr  error
)

// Init loads the periph.io host drivers. It is safe to call repeatedly;
// only the first call does any work.
func Init() error {
	initOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			initErr = &DeviceError{Device: "host", Err: err}
		}
	})
	return initErr
}

// PinName returns the periph.io registry name of a BCM GPIO number.
func PinName(bcm int) string {
	return "GPIO" + strconv.Itoa(bcm)
}

// OpenInput configures a BCM GPIO pin as an input with the given pull.
func OpenInput(bcm int, pull gpio.Pull) (gpio.PinIn, error) {
	name := PinName(bcm)
	if err := Init(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, &DeviceError{Device: name, Err: ErrNotFound}
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, &DeviceError{Device: name, Err: err}
	}
	return pin, nil
}

// OpenI2C opens an I2C bus by number ("1" for the hardware bus, the
// i2c-gpio overlay bus otherwise).
func OpenI2C(bus string) (i2c.BusCloser, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, &DeviceError{Device: "i2c-" + bus, Err: err}
	}
	return b, nil
}

// Release returns a pin to a floating input so that it is left in a safe
// state on exit.
func Release(pin gpio.PinIn) {
	if pin == nil {
		return
	}
	_ = pin.In(gpio.Float, gpio.NoEdge)
	_ = pin.Halt()
}
