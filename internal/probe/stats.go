// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package probe

import (
	"context"
	"net/netip"
	"sort"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// HostStats is one reading of the host load and addresses shown on the display.
type HostStats struct {
	CPUPercent float64             `json:"cpu_percent"`
	MemPercent float64             `json:"mem_percent"`
	Addrs      map[string][]string `json:"addrs"`
}

// IPv4 returns every non-loopback IPv4 address, ordered by interface name.
func (s HostStats) IPv4() []string {
	names := make([]string, 0, len(s.Addrs))
	for name := range s.Addrs {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []string
	for _, name := range names {
		out = append(out, s.Addrs[name]...)
	}
	return out
}

// ReadHostStats samples CPU, memory and interface addresses via gopsutil.
// CPU usage is measured since the previous call.
func ReadHostStats(ctx context.Context) (HostStats, error) {
	var st HostStats

	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return st, err
	}
	if len(pct) > 0 {
		st.CPUPercent = pct[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return st, err
	}
	st.MemPercent = vm.UsedPercent

	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return st, err
	}
	st.Addrs = ipv4ByInterface(ifaces)
	return st, nil
}

func ipv4ByInterface(ifaces psnet.InterfaceStatList) map[string][]string {
	out := make(map[string][]string)
	for _, iface := range ifaces {
		for _, a := range iface.Addrs {
			p, err := netip.ParsePrefix(a.Addr)
			if err != nil {
				continue
			}
			ip := p.Addr()
			if !ip.Is4() || ip.IsLoopback() {
				continue
			}
			out[iface.Name] = append(out[iface.Name], ip.String())
		}
	}
	return out
}
