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

import "fmt"

// FlashFamily is the closed set of supported chip families. The family is
// resolved once at chip detection time and selects the protocol engine.
type FlashFamily uint8

const (
	// FamilyNAND is SPI NAND flash (paged, with out-of-band spare area).
	FamilyNAND FlashFamily = iota
	// FamilyNOR is SPI NOR flash (linear addressing).
	FamilyNOR
	// FamilySPIEEPROM is the 25xxx SPI EEPROM class.
	FamilySPIEEPROM
	// FamilyI2CEEPROM is the 24Cxx I2C EEPROM class.
	FamilyI2CEEPROM
	// FamilyMicrowireEEPROM is the 93Cxx Microwire EEPROM class.
	FamilyMicrowireEEPROM
)

// String returns the family name.
func (f FlashFamily) String() string {
	switch f {
	case FamilyNAND:
		return "SPI NAND"
	case FamilyNOR:
		return "SPI NOR"
	case FamilySPIEEPROM:
		return "SPI EEPROM"
	case FamilyI2CEEPROM:
		return "I2C EEPROM"
	case FamilyMicrowireEEPROM:
		return "Microwire EEPROM"
	default:
		return fmt.Sprintf("FlashFamily(%d)", uint8(f))
	}
}

// JEDECID is the 3-byte identifier read with the 9Fh command:
// manufacturer, device, density.
type JEDECID [3]byte

// String formats the identifier as hex bytes.
func (id JEDECID) String() string {
	return fmt.Sprintf("%02X %02X %02X", id[0], id[1], id[2])
}

// IsZero reports whether the identifier is all-zero or all-FF, which means
// no chip answered.
func (id JEDECID) IsZero() bool {
	return (id[0] == 0x00 && id[1] == 0x00 && id[2] == 0x00) ||
		(id[0] == 0xFF && id[1] == 0xFF && id[2] == 0xFF)
}

// ChipLayout is the immutable descriptor of a chip's geometry. It is owned
// by the registry and borrowed read-only by engines for the lifetime of an
// operation.
type ChipLayout struct {
	// Name is the part number, e.g. "W25N01GV".
	Name string
	// Vendor is the manufacturer name.
	Vendor string
	// ID is the JEDEC identifier.
	ID JEDECID
	// Family selects the protocol engine.
	Family FlashFamily
	// Capacity is the total addressable data size in bytes, excluding
	// out-of-band areas.
	Capacity uint32
	// PageSize is the program/read page size in bytes. For non-paged
	// parts it is the write page granularity.
	PageSize uint32
	// OOBSize is the out-of-band (spare) bytes per page. Zero for
	// anything but NAND.
	OOBSize uint32
	// BlockSize is the erase block size in bytes. Zero means the part
	// has no erase blocks (EEPROMs overwrite in place).
	BlockSize uint32
}

// PagesPerBlock returns the number of pages in an erase block.
func (l ChipLayout) PagesPerBlock() uint32 {
	if l.PageSize == 0 || l.BlockSize == 0 {
		return 0
	}
	return l.BlockSize / l.PageSize
}

// PageCount returns the total number of pages.
func (l ChipLayout) PageCount() uint32 {
	if l.PageSize == 0 {
		return 0
	}
	return l.Capacity / l.PageSize
}

// BlockCount returns the total number of erase blocks.
func (l ChipLayout) BlockCount() uint32 {
	if l.BlockSize == 0 {
		return 0
	}
	return l.Capacity / l.BlockSize
}

// RawPageSize returns the full page size including the out-of-band area.
func (l ChipLayout) RawPageSize() uint32 {
	return l.PageSize + l.OOBSize
}

// Validate checks the layout for internal consistency.
func (l ChipLayout) Validate() error {
	if l.Capacity == 0 {
		return fmt.Errorf("%w: chip %q has zero capacity", ErrInvalidRequest, l.Name)
	}
	if l.PageSize == 0 {
		return fmt.Errorf("%w: chip %q has zero page size", ErrInvalidRequest, l.Name)
	}
	if l.BlockSize != 0 && l.BlockSize%l.PageSize != 0 {
		return fmt.Errorf("%w: chip %q block size %d not a multiple of page size %d",
			ErrInvalidRequest, l.Name, l.BlockSize, l.PageSize)
	}
	if l.Family == FamilyNAND && l.OOBSize == 0 {
		return fmt.Errorf("%w: NAND chip %q has no OOB area", ErrInvalidRequest, l.Name)
	}
	return nil
}

// Address is a logical byte offset into the chip's data area.
type Address uint32

// Location is the decomposition of an Address for paged media. It is
// recomputed on demand from the active layout, never cached across
// operations.
type Location struct {
	// Block is the erase block index.
	Block uint32
	// Page is the absolute page index.
	Page uint32
	// Column is the byte offset within the page.
	Column uint32
}

// Location decomposes the address against the given layout. For parts
// without erase blocks, Block is zero.
func (a Address) Location(layout ChipLayout) Location {
	loc := Location{}
	if layout.PageSize > 0 {
		loc.Page = uint32(a) / layout.PageSize
		loc.Column = uint32(a) % layout.PageSize
	}
	if layout.BlockSize > 0 {
		loc.Block = uint32(a) / layout.BlockSize
	}
	return loc
}

// PageAddress returns the starting address of an absolute page index.
func PageAddress(page uint32, layout ChipLayout) Address {
	return Address(page * layout.PageSize)
}

// BlockAddress returns the starting address of a block index.
func BlockAddress(block uint32, layout ChipLayout) Address {
	return Address(block * layout.BlockSize)
}
