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

// EEPROM parts answer no identification command, so these entries carry
// a zero identifier and must be selected by name.

func spiEEPROM(name, vendor string, capacity, pageSize uint32) nander.ChipLayout {
	return nander.ChipLayout{
		Name:      name,
		Vendor:    vendor,
		Family:    nander.FamilySPIEEPROM,
		Capacity:  capacity,
		PageSize:  pageSize,
		BlockSize: pageSize,
	}
}

func spiEEPROMChips() []nander.ChipLayout {
	return []nander.ChipLayout{
		spiEEPROM("25LC010", "Microchip", 128, 16),
		spiEEPROM("25LC020", "Microchip", 256, 16),
		spiEEPROM("25LC040", "Microchip", 512, 16),
		spiEEPROM("25LC080", "Microchip", 1024, 16),
		spiEEPROM("25LC160", "Microchip", 2048, 16),
		spiEEPROM("25LC256", "Microchip", 32768, 64),
		spiEEPROM("25LC512", "Microchip", 65536, 128),
		spiEEPROM("25LC1024", "Microchip", 131072, 256),
		spiEEPROM("AT25080", "Atmel", 1024, 32),
		spiEEPROM("AT25256", "Atmel", 32768, 64),
		spiEEPROM("M95256", "ST", 32768, 64),
	}
}

func i2cEEPROM(name string, capacity, pageSize uint32) nander.ChipLayout {
	return nander.ChipLayout{
		Name:      name,
		Vendor:    "Generic",
		Family:    nander.FamilyI2CEEPROM,
		Capacity:  capacity,
		PageSize:  pageSize,
		BlockSize: pageSize,
	}
}

func i2cEEPROMChips() []nander.ChipLayout {
	return []nander.ChipLayout{
		i2cEEPROM("24C01", 128, 8),
		i2cEEPROM("24C02", 256, 8),
		i2cEEPROM("24C04", 512, 16),
		i2cEEPROM("24C08", 1024, 16),
		i2cEEPROM("24C16", 2048, 16),
		i2cEEPROM("24C32", 4096, 32),
		i2cEEPROM("24C64", 8192, 32),
		i2cEEPROM("24C128", 16384, 64),
		i2cEEPROM("24C256", 32768, 64),
		i2cEEPROM("24C512", 65536, 128),
	}
}

func microwire(name string, capacity uint32) nander.ChipLayout {
	return nander.ChipLayout{
		Name:      name,
		Vendor:    "Generic",
		Family:    nander.FamilyMicrowireEEPROM,
		Capacity:  capacity,
		PageSize:  1,
		BlockSize: 1,
	}
}

func microwireChips() []nander.ChipLayout {
	return []nander.ChipLayout{
		microwire("93C06", 32),
		microwire("93C46", 128),
		microwire("93C56", 256),
		microwire("93C66", 512),
		microwire("93C76", 1024),
		microwire("93C86", 2048),
	}
}
