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
	norCmdRead        = 0x03
	norCmdFastRead    = 0x0B
	norCmdPageProgram = 0x02
	norCmdBlockErase  = 0xD8
	norCmdChipErase   = 0xC7
	norCmdReadStatus  = 0x05
	norCmdWriteStatus = 0x01
	norCmdWriteEnable = 0x06
	norCmdJEDECID     = 0x9F
	norCmdEnter4Byte  = 0xB7
	norCmdExit4Byte   = 0xE9
)

// NOR is an in-memory SPI NOR model with linear addressing, a
// write-enable latch and optional 4-byte address mode.
type NOR struct {
	layout nander.ChipLayout
	id     nander.JEDECID
	data   []byte

	status   byte
	wel      bool
	fourByte bool
}

// NewNOR creates an erased chip with the given layout and identifier.
func NewNOR(layout nander.ChipLayout, id nander.JEDECID) *NOR {
	s := &NOR{
		layout: layout,
		id:     id,
		data:   make([]byte, layout.Capacity),
	}
	fill(s.data, 0xFF)
	return s
}

// Data returns the backing array for direct inspection.
func (s *NOR) Data() []byte { return s.data }

// FourByteMode reports whether the enter-4-byte command was seen.
func (s *NOR) FourByteMode() bool { return s.fourByte }

// addr decodes the address field of tx and returns the address plus the
// number of bytes it occupied.
func (s *NOR) addr(tx []byte) (uint32, int, error) {
	n := 3
	if s.fourByte {
		n = 4
	}
	if len(tx) < 1+n {
		return 0, 0, fmt.Errorf("short address in command 0x%02X", tx[0])
	}
	var a uint32
	for _, b := range tx[1 : 1+n] {
		a = a<<8 | uint32(b)
	}
	if a >= uint32(len(s.data)) {
		return 0, 0, fmt.Errorf("address 0x%06X out of range", a)
	}
	return a, n, nil
}

// Transaction implements the transport contract against the chip model.
func (s *NOR) Transaction(tx []byte, rxLen int) ([]byte, error) {
	if len(tx) == 0 {
		return nil, fmt.Errorf("empty transaction")
	}
	switch tx[0] {
	case norCmdJEDECID:
		return []byte{s.id[0], s.id[1], s.id[2]}[:min(3, rxLen)], nil

	case norCmdReadStatus:
		return []byte{s.status}, nil

	case norCmdWriteStatus:
		if s.wel {
			s.status = tx[1]
			s.wel = false
		}
		return nil, nil

	case norCmdWriteEnable:
		s.wel = true
		return nil, nil

	case norCmdEnter4Byte:
		s.fourByte = true
		return nil, nil

	case norCmdExit4Byte:
		s.fourByte = false
		return nil, nil

	case norCmdRead, norCmdFastRead:
		a, _, err := s.addr(tx)
		if err != nil {
			return nil, err
		}
		end := min(int(a)+rxLen, len(s.data))
		return append([]byte(nil), s.data[a:end]...), nil

	case norCmdPageProgram:
		a, n, err := s.addr(tx)
		if err != nil {
			return nil, err
		}
		if !s.wel {
			return nil, nil
		}
		s.wel = false
		for i, b := range tx[1+n:] {
			if int(a)+i >= len(s.data) {
				break
			}
			// flash programming only clears bits
			s.data[int(a)+i] &= b
		}
		return nil, nil

	case norCmdBlockErase:
		a, _, err := s.addr(tx)
		if err != nil {
			return nil, err
		}
		if !s.wel {
			return nil, nil
		}
		s.wel = false
		start := a - a%s.layout.BlockSize
		end := min(int(start+s.layout.BlockSize), len(s.data))
		fill(s.data[start:end], 0xFF)
		return nil, nil

	case norCmdChipErase:
		if s.wel {
			s.wel = false
			fill(s.data, 0xFF)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown NOR command 0x%02X", tx[0])
	}
}

// Transfer implements the transport contract.
func (s *NOR) Transfer(tx []byte) ([]byte, error) {
	return s.Transaction(tx, 0)
}

// SetChipSelect implements the transport contract.
func (*NOR) SetChipSelect(bool) error { return nil }

// MaxTransferSize implements the transport contract.
func (*NOR) MaxTransferSize() int { return 4096 }

// SetSpeed implements the transport contract.
func (*NOR) SetSpeed(uint8) error { return nil }

// Close implements the transport contract.
func (*NOR) Close() error { return nil }

// Type implements the transport contract.
func (*NOR) Type() nander.TransportType { return nander.TransportSim }
