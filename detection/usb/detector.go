// go-nander
// Copyright (c) 2025 The Nander Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-nander.
//
// go-nander is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-nander is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-nander; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package usb detects CH341A programmers by USB descriptor.
package usb

import (
	"context"
	"fmt"

	"github.com/NanderProject/go-nander/detection"
	"github.com/google/gousb"
)

// Known programmer identifiers.
var knownDevices = map[[2]uint16]string{
	{0x1A86, 0x5512}: "CH341A programmer",
}

type detector struct{}

// New creates a USB descriptor detector.
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type.
func (*detector) Transport() string {
	return "ch341a"
}

// Detect walks the USB bus descriptors. No device is opened, so this is
// safe in passive mode.
func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	usbCtx := gousb.NewContext()
	defer func() { _ = usbCtx.Close() }()

	blocklist := opts.Blocklist
	if blocklist == nil {
		blocklist = detection.DefaultBlocklist()
	}

	var devices []detection.DeviceInfo
	// OpenDevices visits every descriptor; returning false skips the
	// open, so this never touches a device.
	devs, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if ctx.Err() != nil {
			return false
		}
		vid, pid := uint16(desc.Vendor), uint16(desc.Product)
		name, known := knownDevices[[2]uint16{vid, pid}]
		if !known {
			return false
		}
		vidpid := detection.FormatVIDPID(vid, pid)
		if detection.IsBlocked(vidpid, blocklist) {
			return false
		}
		devices = append(devices, detection.DeviceInfo{
			Transport: "ch341a",
			Path:      fmt.Sprintf("bus %d device %d", desc.Bus, desc.Address),
			Name:      name,
			Metadata: map[string]string{
				"vidpid":     vidpid,
				"accessible": fmt.Sprint(nodeAccessible(desc.Bus, desc.Address)),
			},
		})
		return false
	})
	for _, d := range devs {
		_ = d.Close()
	}
	if err != nil {
		// Descriptor enumeration errors on unrelated devices are
		// expected noise; results collected so far still stand.
		if len(devices) == 0 {
			return nil, fmt.Errorf("enumerating USB devices: %w", err)
		}
	}
	return devices, nil
}
