// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package display

import (
	"fmt"
	"strings"

	"github.com/tomtom215/zero2-controller/internal/battery"
	"github.com/tomtom215/zero2-controller/internal/network"
	"github.com/tomtom215/zero2-controller/internal/probe"
)

// placeholder is rendered for values whose probe is unavailable.
const placeholder = "--"

const banner = "Zero2 Controller"

// Frame is the content of one display refresh.
type Frame struct {
	IP             string
	StatsAvailable bool
	CPUPercent     float64
	MemPercent     float64
	Modes          string
	Battery        string
	BatteryAlert   bool
	Notice         string
}

// BuildFrame assembles a frame from the latest readings. Any input may be
// missing; missing values render as placeholders.
func BuildFrame(stats probe.HostStats, statsErr error, net *network.Snapshot, bat *battery.Snapshot, notice string) Frame {
	f := Frame{
		StatsAvailable: statsErr == nil,
		Modes:          modesLabel(net),
		Notice:         notice,
	}
	if statsErr == nil {
		f.CPUPercent = stats.CPUPercent
		f.MemPercent = stats.MemPercent
	}

	switch {
	case net != nil && net.WiFiAddress != "":
		f.IP = net.WiFiAddress
	case statsErr == nil && len(stats.IPv4()) > 0:
		f.IP = stats.IPv4()[0]
	}

	if bat != nil {
		f.Battery = bat.Label()
		f.BatteryAlert = bat.State != battery.StateNormal.String()
	}
	return f
}

// Text returns the four display lines.
func (f Frame) Text() [Lines]string {
	var lines [Lines]string

	ip := f.IP
	if ip == "" {
		ip = placeholder
	}
	lines[0] = "IP: " + ip

	if f.StatsAvailable {
		lines[1] = fmt.Sprintf("CPU %.0f%% MEM %.0f%%", f.CPUPercent, f.MemPercent)
	} else {
		lines[1] = "CPU " + placeholder + " MEM " + placeholder
	}

	lines[2] = f.Modes

	switch {
	case f.Notice != "":
		lines[3] = f.Notice
	case f.BatteryAlert:
		lines[3] = f.Battery
	default:
		lines[3] = banner
	}
	return lines
}

func modesLabel(net *network.Snapshot) string {
	if net == nil {
		return "USB:" + placeholder + " BT:" + placeholder
	}
	parts := []string{
		"USB:" + linkLabel(net.Link(network.LinkUSB)),
		"BT:" + linkLabel(net.Link(network.LinkBluetooth)),
	}
	if net.WiFiConfigured || net.Mode != network.ModeClient {
		parts = append(parts, net.Mode.Label())
	}
	return strings.Join(parts, " ")
}

func linkLabel(l network.LinkState) string {
	switch {
	case !l.Enabled:
		return "off"
	case l.Healthy():
		return "ok"
	default:
		return placeholder
	}
}
