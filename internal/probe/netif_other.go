// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

//go:build !linux

package probe

import (
	"errors"
	"time"
)

// ReadInterface is only implemented on Linux.
func ReadInterface(name string) (InterfaceStatus, error) {
	return InterfaceStatus{Name: name, CheckedAt: time.Now()}, errors.ErrUnsupported
}
