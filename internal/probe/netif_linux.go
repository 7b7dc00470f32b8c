// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

//go:build linux

package probe

import (
	"errors"
	"net"
	"net/netip"
	"time"

	"github.com/vishvananda/netlink"
)

// ReadInterface queries the kernel interface table over netlink.
// An interface that does not exist is a valid reading with Present=false.
func ReadInterface(name string) (InterfaceStatus, error) {
	st := InterfaceStatus{Name: name, CheckedAt: time.Now()}

	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return st, nil
		}
		return st, err
	}

	attrs := link.Attrs()
	st.Present = true
	st.Up = attrs.Flags&net.FlagUp != 0
	st.Carrier = attrs.OperState == netlink.OperUp

	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return st, err
	}
	for _, a := range addrs {
		if a.IPNet == nil {
			continue
		}
		ip, ok := netip.AddrFromSlice(a.IP.To4())
		if !ok {
			continue
		}
		ones, _ := a.Mask.Size()
		st.Addrs = append(st.Addrs, netip.PrefixFrom(ip, ones))
	}
	return st, nil
}
