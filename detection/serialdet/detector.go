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

// Package serialdet spots CH341 bridges that enumerated in UART mode.
// Such a device is a programmer with the mode jumper unset; reporting it
// explains the otherwise confusing "no programmer found".
package serialdet

import (
	"context"
	"fmt"
	"strings"

	"github.com/NanderProject/go-nander/detection"
	"go.bug.st/serial/enumerator"
)

// serialModeVIDPID is the CH341 identity when strapped for UART.
const serialModeVIDPID = "1A86:5523"

type detector struct{}

// New creates a serial port detector.
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type.
func (*detector) Transport() string {
	return "serial"
}

// Detect lists serial ports and flags CH341 bridges in the wrong mode.
func (*detector) Detect(ctx context.Context, _ *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("listing serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		if ctx.Err() != nil {
			return devices, nil
		}
		if !port.IsUSB {
			continue
		}
		vidpid := strings.ToUpper(port.VID + ":" + port.PID)
		if vidpid != serialModeVIDPID {
			continue
		}
		devices = append(devices, detection.DeviceInfo{
			Transport: "serial",
			Path:      port.Name,
			Name:      "CH341 in UART mode (set the programmer jumper for SPI)",
			Metadata: map[string]string{
				"vidpid": vidpid,
				"serial": port.SerialNumber,
			},
		})
	}
	return devices, nil
}
