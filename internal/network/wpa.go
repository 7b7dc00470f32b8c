// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package network

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
)

var networkBlock = regexp.MustCompile(`(?m)^\s*network\s*=\s*\{`)

// WiFiConfigured reports whether the supplicant config at path declares at
// least one network. A missing file means no WiFi is configured. Any other
// read error is treated as configured so that fallback stays armed.
func WiFiConfigured(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return true, err
	}
	return networkBlock.Match(data), nil
}
