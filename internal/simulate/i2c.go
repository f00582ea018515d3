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

package simulate

import (
	"fmt"

	nander "github.com/NanderProject/go-nander"
)

// I2CEEPROM is an in-memory 24Cxx model reachable through the I2C
// capability. Small parts decode the high address bits from the device
// address; larger parts take two address bytes. The internal address
// pointer survives between transactions like on real silicon.
type I2CEEPROM struct {
	layout  nander.ChipLayout
	data    []byte
	pointer uint32
}

// NewI2CEEPROM creates a blank (0xFF) part with the given layout.
func NewI2CEEPROM(layout nander.ChipLayout) *I2CEEPROM {
	s := &I2CEEPROM{
		layout: layout,
		data:   make([]byte, layout.Capacity),
	}
	fill(s.data, 0xFF)
	return s
}

// Data returns the backing array for direct inspection.
func (s *I2CEEPROM) Data() []byte { return s.data }

// decode splits an I2C write payload into the target address and the
// data portion.
func (s *I2CEEPROM) decode(dev byte, payload []byte) (uint32, []byte, error) {
	if dev&0x78 != 0x50 {
		return 0, nil, fmt.Errorf("device address 0x%02X not a 24Cxx", dev)
	}
	var a uint32
	var data []byte
	if s.layout.Capacity <= 2048 {
		if len(payload) < 1 {
			return 0, nil, fmt.Errorf("missing address byte")
		}
		a = uint32(dev&0x07)<<8 | uint32(payload[0])
		data = payload[1:]
	} else {
		if len(payload) < 2 {
			return 0, nil, fmt.Errorf("missing address bytes")
		}
		a = uint32(payload[0])<<8 | uint32(payload[1])
		data = payload[2:]
	}
	if a >= uint32(len(s.data)) {
		return 0, nil, fmt.Errorf("address 0x%04X out of range", a)
	}
	return a, data, nil
}

// I2CWrite implements the I2C capability: a bare address sets the
// pointer, a longer payload writes with internal page wrap.
func (s *I2CEEPROM) I2CWrite(dev byte, payload []byte) error {
	a, data, err := s.decode(dev, payload)
	if err != nil {
		return err
	}
	s.pointer = a
	page := s.layout.PageSize
	base := a - a%page
	for i, b := range data {
		s.data[base+(a-base+uint32(i))%page] = b
	}
	return nil
}

// I2CRead implements the I2C capability: sequential read from the
// current pointer, wrapping at capacity.
func (s *I2CEEPROM) I2CRead(_ byte, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		out[i] = s.data[s.pointer]
		s.pointer = (s.pointer + 1) % uint32(len(s.data))
	}
	return out, nil
}

// MaxI2CChunk implements the I2C capability.
func (*I2CEEPROM) MaxI2CChunk() int { return 256 }

// Transaction implements the transport contract. 24Cxx parts have no
// SPI side; the engine never calls this.
func (*I2CEEPROM) Transaction([]byte, int) ([]byte, error) {
	return nil, nander.ErrNotSupported
}

// Transfer implements the transport contract.
func (*I2CEEPROM) Transfer([]byte) ([]byte, error) {
	return nil, nander.ErrNotSupported
}

// SetChipSelect implements the transport contract.
func (*I2CEEPROM) SetChipSelect(bool) error { return nander.ErrNotSupported }

// MaxTransferSize implements the transport contract.
func (*I2CEEPROM) MaxTransferSize() int { return 0 }

// SetSpeed implements the transport contract.
func (*I2CEEPROM) SetSpeed(uint8) error { return nil }

// Close implements the transport contract.
func (*I2CEEPROM) Close() error { return nil }

// Type implements the transport contract.
func (*I2CEEPROM) Type() nander.TransportType { return nander.TransportSim }
