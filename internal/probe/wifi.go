// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package probe

import (
	"bufio"
	"context"
	"strings"

	"github.com/tomtom215/zero2-controller/internal/execx"
)

// wpa_state value reported once the supplicant has completed association.
const wpaCompleted = "COMPLETED"

// WiFiStatus is one reading of the WiFi client association.
type WiFiStatus struct {
	State     string `json:"state"`
	SSID      string `json:"ssid,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
}

// Associated reports whether the client is joined to a network and holds
// an IPv4 address.
func (s WiFiStatus) Associated() bool {
	return s.State == wpaCompleted && s.IPAddress != ""
}

// ReadWiFi runs `wpa_cli -i iface status` and parses its key=value output.
func ReadWiFi(ctx context.Context, runner execx.Runner, iface string) (WiFiStatus, error) {
	out, err := runner.Run(ctx, "wpa_cli", "-i", iface, "status")
	if err != nil {
		return WiFiStatus{}, err
	}
	return parseWPAStatus(out), nil
}

func parseWPAStatus(out string) WiFiStatus {
	var st WiFiStatus
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "wpa_state":
			st.State = value
		case "ssid":
			st.SSID = value
		case "ip_address":
			st.IPAddress = value
		}
	}
	return st
}
