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

package chipdb

import nander "github.com/NanderProject/go-nander"

func nandChip(name, vendor string, id [3]byte, capacityMbit, pageSize, oobSize, blockKiB uint32) nander.ChipLayout {
	return nander.ChipLayout{
		Name:      name,
		Vendor:    vendor,
		ID:        nander.JEDECID(id),
		Family:    nander.FamilyNAND,
		Capacity:  capacityMbit / 8 * 1024 * 1024,
		PageSize:  pageSize,
		OOBSize:   oobSize,
		BlockSize: blockKiB * 1024,
	}
}

// nandChips lists the supported SPI NAND parts.
func nandChips() []nander.ChipLayout {
	return []nander.ChipLayout{
		nandChip("W25N01GV", "Winbond", [3]byte{0xEF, 0xAA, 0x21}, 1024, 2048, 64, 128),
		nandChip("W25N02KV", "Winbond", [3]byte{0xEF, 0xAA, 0x22}, 2048, 2048, 64, 128),
		nandChip("GD5F1GQ4UA", "GigaDevice", [3]byte{0xC8, 0xF1, 0x00}, 1024, 2048, 64, 128),
		nandChip("GD5F1GM7UE", "GigaDevice", [3]byte{0xC8, 0x91, 0x00}, 1024, 2048, 64, 128),
		nandChip("MX35LF1GE4AB", "Macronix", [3]byte{0xC2, 0x12, 0x00}, 1024, 2048, 64, 128),
		nandChip("MX35LF2GE4AB", "Macronix", [3]byte{0xC2, 0x22, 0x00}, 2048, 2048, 64, 128),
		nandChip("MX35LF4GE4AD", "Macronix", [3]byte{0xC2, 0x32, 0x00}, 4096, 4096, 128, 256),
		nandChip("F50L1G41A", "ESMT", [3]byte{0xC8, 0x21, 0x7F}, 1024, 2048, 64, 128),
		nandChip("XT26G01A", "XTX", [3]byte{0x0B, 0xE1, 0x00}, 1024, 2048, 64, 128),
	}
}
