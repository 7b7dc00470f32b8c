// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package probe

import (
	"net/netip"
	"time"
)

// InterfaceStatus is one reading of a network interface.
type InterfaceStatus struct {
	Name      string         `json:"name"`
	Present   bool           `json:"present"`
	Up        bool           `json:"up"`
	Carrier   bool           `json:"carrier"`
	Addrs     []netip.Prefix `json:"addrs"`
	CheckedAt time.Time      `json:"checked_at"`
}

// HasAddr reports whether the interface holds addr.
func (s InterfaceStatus) HasAddr(addr netip.Addr) bool {
	for _, p := range s.Addrs {
		if p.Addr() == addr {
			return true
		}
	}
	return false
}

// HasPrefix reports whether the interface holds exactly p.
func (s InterfaceStatus) HasPrefix(p netip.Prefix) bool {
	for _, a := range s.Addrs {
		if a == p {
			return true
		}
	}
	return false
}

// IPv4 returns the interface's IPv4 addresses without prefix length.
func (s InterfaceStatus) IPv4() []string {
	out := make([]string, 0, len(s.Addrs))
	for _, p := range s.Addrs {
		if p.Addr().Is4() {
			out = append(out, p.Addr().String())
		}
	}
	return out
}
