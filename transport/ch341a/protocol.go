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

package ch341a

// USB identifiers and endpoints.
const (
	vendorID  = 0x1A86
	productID = 0x5512

	epOut = 2
	epIn  = 2
)

// Command bytes, per the CH341 datasheet.
const (
	cmdSPIStream = 0xA8
	cmdI2CStream = 0xAA
	cmdUIOStream = 0xAB
	cmdGetStatus = 0xA1
)

// I2C stream sub-commands.
const (
	i2cStmStart = 0x74
	i2cStmStop  = 0x75
	i2cStmOut   = 0x80 // OR with length, 1-32
	i2cStmIn    = 0xC0 // OR with length, 1-32
	i2cStmSet   = 0x60 // OR with speed level
	i2cStmEnd   = 0x00
)

// UIO stream sub-commands.
const (
	uioStmOut = 0x80 // OR with output bits
	uioStmDir = 0x40 // OR with direction bits
	uioStmUS  = 0xC0 // OR with speed level
	uioStmEnd = 0x20
)

// Pin assignments on the D0-D7 port.
const (
	pinCS   = 0
	pinCLK  = 1
	pinDIN  = 2 // input: chip data out
	pinDOUT = 3 // output: chip data in
)

// Output byte patterns: all driven lines high except as noted. Bit 0 is
// chip select, active low on the wire.
const (
	outCSHigh = 0x37
	outCSLow  = 0x36

	// dirMask drives D0, D1, D3, D4, D5 as outputs; D2 stays an input.
	dirMask = 0x3B
)

const (
	// maxSPIChunk is the per-packet limit of the plain SPI stream command.
	maxSPIChunk = 32
	// maxBulk is the hardware limit for one bulk transfer.
	maxBulk = 4096
	// maxSPIStream is the largest SPI payload in one bulk transfer.
	maxSPIStream = maxBulk - 1
	// maxI2CData is the largest data run in one I2C OUT/IN sub-command.
	maxI2CData = 31
)

// DefaultSpeed is the power-on clock level (about 3 MHz).
const DefaultSpeed uint8 = 5

// speedDescriptions maps the 0-7 clock levels to rough frequencies.
var speedDescriptions = [...]string{
	"~21 kHz", "~100 kHz", "~400 kHz", "~750 kHz",
	"~1.5 MHz", "~3 MHz", "~6 MHz", "~12 MHz",
}

// SpeedDescription returns a human-readable name for a clock level.
func SpeedDescription(level uint8) string {
	if int(level) < len(speedDescriptions) {
		return speedDescriptions[level]
	}
	return speedDescriptions[DefaultSpeed]
}
