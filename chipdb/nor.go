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

func norChip(name, vendor string, id [3]byte, capacityMiB uint32) nander.ChipLayout {
	return nander.ChipLayout{
		Name:      name,
		Vendor:    vendor,
		ID:        nander.JEDECID(id),
		Family:    nander.FamilyNOR,
		Capacity:  capacityMiB * 1024 * 1024,
		PageSize:  256,
		BlockSize: 64 * 1024,
	}
}

// norChips lists the supported SPI NOR parts. Anything above 16 MiB runs
// in 4-byte address mode.
func norChips() []nander.ChipLayout {
	return []nander.ChipLayout{
		norChip("W25Q32JV", "Winbond", [3]byte{0xEF, 0x40, 0x16}, 4),
		norChip("W25Q64JV", "Winbond", [3]byte{0xEF, 0x40, 0x17}, 8),
		norChip("W25Q128JV", "Winbond", [3]byte{0xEF, 0x40, 0x18}, 16),
		norChip("W25Q256JV", "Winbond", [3]byte{0xEF, 0x40, 0x19}, 32),
		norChip("MX25L6405D", "Macronix", [3]byte{0xC2, 0x20, 0x17}, 8),
		norChip("MX25L12805D", "Macronix", [3]byte{0xC2, 0x20, 0x18}, 16),
		norChip("EN25Q64", "Eon", [3]byte{0x1C, 0x30, 0x17}, 8),
		norChip("GD25Q64", "GigaDevice", [3]byte{0xC8, 0x40, 0x17}, 8),
		norChip("GD25Q128", "GigaDevice", [3]byte{0xC8, 0x40, 0x18}, 16),
		norChip("N25Q256A", "Micron", [3]byte{0x20, 0xBA, 0x19}, 32),
	}
}
