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

package nander

// JEDEC SPI flash command set shared by the NAND, NOR and 25xxx engines.
const (
	cmdJEDECID      byte = 0x9F
	cmdWriteEnable  byte = 0x06
	cmdWriteDisable byte = 0x04

	// NOR / 25xxx
	cmdNorRead        byte = 0x03
	cmdNorFastRead    byte = 0x0B
	cmdNorPageProgram byte = 0x02
	cmdNorBlockErase  byte = 0xD8
	cmdNorChipErase   byte = 0xC7
	cmdNorReadStatus  byte = 0x05
	cmdNorWriteStatus byte = 0x01
	cmdNorEnter4Byte  byte = 0xB7
	cmdNorExit4Byte   byte = 0xE9

	// SPI NAND
	cmdNandPageRead    byte = 0x13
	cmdNandReadCache   byte = 0x03
	cmdNandProgramLoad byte = 0x02
	cmdNandProgramExec byte = 0x10
	cmdNandBlockErase  byte = 0xD8
	cmdNandGetFeature  byte = 0x0F
	cmdNandSetFeature  byte = 0x1F

	// 25xxx SPI EEPROM
	cmdEepromRead        byte = 0x03
	cmdEepromWrite       byte = 0x02
	cmdEepromWriteEnable byte = 0x06
	cmdEepromReadStatus  byte = 0x05
	cmdEepromWriteStatus byte = 0x01
)

// NAND feature register addresses (get/set feature).
const (
	featureProtection byte = 0xA0
	featureConfig     byte = 0xB0
	featureStatus     byte = 0xC0
)

// NAND status register bits (feature C0h).
const (
	statusNandOIP   byte = 0x01
	statusNandPFail byte = 0x08
	statusNandEFail byte = 0x04

	statusNandEccMask          byte = 0x30
	statusNandEccCorrected     byte = 0x10
	statusNandEccCorrectedAlt  byte = 0x20
	statusNandEccUncorrectable byte = 0x30
)

// NAND configuration register bits (feature B0h).
const (
	configEccEnable byte = 0x10
)

// NOR / EEPROM status register bits.
const (
	statusWIP byte = 0x01
	statusWEL byte = 0x02
)

// Capacity above which NOR parts require 4-byte addressing (16 MiB).
const nor4ByteThreshold = 16 * 1024 * 1024

// Microwire 93Cxx opcodes: a start bit (1) followed by two opcode bits.
// The extended operations share opcode 00 and select the function with the
// top two address bits.
const (
	mwOpRead     byte = 0b10
	mwOpWrite    byte = 0b01
	mwOpErase    byte = 0b11
	mwOpExtended byte = 0b00
)
