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

const (
	eeCmdRead        = 0x03
	eeCmdWrite       = 0x02
	eeCmdWriteEnable = 0x06
	eeCmdReadStatus  = 0x05
	eeCmdWriteStatus = 0x01
)

// SPIEEPROM is an in-memory 25xxx model. The address field width follows
// capacity the same way real parts wire it, including the A8-in-opcode
// quirk of 512-byte devices.
type SPIEEPROM struct {
	layout nander.ChipLayout
	data   []byte
	status byte
	wel    bool
}

// NewSPIEEPROM creates a blank (0xFF) part with the given layout.
func NewSPIEEPROM(layout nander.ChipLayout) *SPIEEPROM {
	s := &SPIEEPROM{
		layout: layout,
		data:   make([]byte, layout.Capacity),
	}
	fill(s.data, 0xFF)
	return s
}

// Data returns the backing array for direct inspection.
func (s *SPIEEPROM) Data() []byte { return s.data }

// addr decodes the opcode and address field of tx.
func (s *SPIEEPROM) addr(tx []byte) (uint32, int, error) {
	var a uint32
	var n int
	switch {
	case s.layout.Capacity <= 256:
		a, n = uint32(tx[1]), 1
	case s.layout.Capacity <= 512:
		a, n = uint32(tx[1]), 1
		if tx[0]&0x08 != 0 {
			a |= 0x100
		}
	case s.layout.Capacity <= 64*1024:
		a, n = uint32(tx[1])<<8|uint32(tx[2]), 2
	default:
		a, n = uint32(tx[1])<<16|uint32(tx[2])<<8|uint32(tx[3]), 3
	}
	if a >= uint32(len(s.data)) {
		return 0, 0, fmt.Errorf("address 0x%04X out of range", a)
	}
	return a, n, nil
}

// Transaction implements the transport contract against the chip model.
func (s *SPIEEPROM) Transaction(tx []byte, rxLen int) ([]byte, error) {
	if len(tx) == 0 {
		return nil, fmt.Errorf("empty transaction")
	}
	// The 512-byte parts fold A8 into opcode bit 3; mask it out for
	// dispatch.
	op := tx[0] &^ 0x08
	switch op {
	case eeCmdReadStatus:
		return []byte{s.status}, nil

	case eeCmdWriteStatus:
		if s.wel {
			s.status = tx[1]
			s.wel = false
		}
		return nil, nil

	case eeCmdWriteEnable:
		s.wel = true
		return nil, nil

	case eeCmdRead:
		a, _, err := s.addr(tx)
		if err != nil {
			return nil, err
		}
		end := min(int(a)+rxLen, len(s.data))
		return append([]byte(nil), s.data[a:end]...), nil

	case eeCmdWrite:
		a, n, err := s.addr(tx)
		if err != nil {
			return nil, err
		}
		if !s.wel {
			return nil, nil
		}
		s.wel = false
		// writes wrap inside the internal page
		page := s.layout.PageSize
		base := a - a%page
		for i, b := range tx[1+n:] {
			s.data[base+(a-base+uint32(i))%page] = b
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown EEPROM command 0x%02X", tx[0])
	}
}

// Transfer implements the transport contract.
func (s *SPIEEPROM) Transfer(tx []byte) ([]byte, error) {
	return s.Transaction(tx, 0)
}

// SetChipSelect implements the transport contract.
func (*SPIEEPROM) SetChipSelect(bool) error { return nil }

// MaxTransferSize implements the transport contract.
func (*SPIEEPROM) MaxTransferSize() int { return 4096 }

// SetSpeed implements the transport contract.
func (*SPIEEPROM) SetSpeed(uint8) error { return nil }

// Close implements the transport contract.
func (*SPIEEPROM) Close() error { return nil }

// Type implements the transport contract.
func (*SPIEEPROM) Type() nander.TransportType { return nander.TransportSim }
