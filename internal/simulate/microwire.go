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
	mwIdle = iota
	mwHeader
	mwDataIn
	mwReading
	mwDone
)

// Microwire is a line-level 93Cxx model. It consumes individual chip
// select, clock and data transitions, decoding transactions one rising
// clock edge at a time, exactly as the silicon does. It keeps the
// write-enable latch and honors it: writes while protected are silently
// dropped, like on a real part.
type Microwire struct {
	layout   nander.ChipLayout
	data     []byte
	addrBits int

	ewen bool
	cs   bool
	clk  bool
	mosi bool

	state  int
	bits   []bool
	opAddr uint32

	out    []bool
	outIdx int
}

// NewMicrowire creates a blank (0xFF) part with the given layout.
func NewMicrowire(layout nander.ChipLayout) *Microwire {
	bits := 7
	switch {
	case layout.Capacity > 512:
		bits = 11
	case layout.Capacity > 128:
		bits = 9
	}
	s := &Microwire{
		layout:   layout,
		data:     make([]byte, layout.Capacity),
		addrBits: bits,
	}
	fill(s.data, 0xFF)
	return s
}

// Data returns the backing array for direct inspection.
func (s *Microwire) Data() []byte { return s.data }

// WriteEnabled reports the state of the write-enable latch.
func (s *Microwire) WriteEnabled() bool { return s.ewen }

// SetLine implements the line capability.
func (s *Microwire) SetLine(line nander.Line, high bool) error {
	switch line {
	case nander.LineCS:
		if high && !s.cs {
			s.state = mwIdle
			s.bits = s.bits[:0]
			s.out = nil
			s.outIdx = -1
		}
		s.cs = high
		return nil
	case nander.LineClock:
		rising := high && !s.clk
		s.clk = high
		if rising && s.cs {
			s.clockEdge()
		}
		return nil
	case nander.LineMOSI:
		s.mosi = high
		return nil
	default:
		return fmt.Errorf("line %d is not an input", line)
	}
}

// ReadLine implements the line capability. During a read transaction the
// data-out line shifts stored bits; otherwise it reports ready.
func (s *Microwire) ReadLine(line nander.Line) (bool, error) {
	if line != nander.LineMISO {
		return false, fmt.Errorf("line %d is not an output", line)
	}
	if s.state == mwReading && s.outIdx >= 0 && s.outIdx < len(s.out) {
		return s.out[s.outIdx], nil
	}
	return true, nil
}

func (s *Microwire) clockEdge() {
	switch s.state {
	case mwIdle:
		if s.mosi { // start bit
			s.state = mwHeader
			s.bits = s.bits[:0]
		}
	case mwHeader:
		s.bits = append(s.bits, s.mosi)
		if len(s.bits) == 2+s.addrBits {
			s.decodeHeader()
		}
	case mwDataIn:
		s.bits = append(s.bits, s.mosi)
		if len(s.bits) == 8 {
			if s.ewen {
				s.data[s.opAddr] = bitsToByte(s.bits)
			}
			s.state = mwDone
		}
	case mwReading:
		s.outIdx++
	case mwDone:
	}
}

func (s *Microwire) decodeHeader() {
	op := byte(0)
	if s.bits[0] {
		op |= 0b10
	}
	if s.bits[1] {
		op |= 0b01
	}
	var addr uint32
	for _, b := range s.bits[2:] {
		addr <<= 1
		if b {
			addr |= 1
		}
	}
	s.opAddr = addr % uint32(len(s.data))

	switch op {
	case 0b10: // read: dummy zero, then bytes from addr onward
		s.out = s.out[:0]
		s.out = append(s.out, false)
		for a := s.opAddr; a < uint32(len(s.data)); a++ {
			v := s.data[a]
			for i := 7; i >= 0; i-- {
				s.out = append(s.out, v&(1<<i) != 0)
			}
		}
		s.outIdx = -1
		s.state = mwReading
	case 0b01: // write: eight data bits follow
		s.bits = s.bits[:0]
		s.state = mwDataIn
	case 0b11: // erase
		if s.ewen {
			s.data[s.opAddr] = 0xFF
		}
		s.state = mwDone
	case 0b00: // extended: top two address bits select the action
		switch addr >> (s.addrBits - 2) {
		case 0b11:
			s.ewen = true
		case 0b00:
			s.ewen = false
		}
		s.state = mwDone
	}
}

func bitsToByte(bits []bool) byte {
	var v byte
	for _, b := range bits {
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v
}

// Transaction implements the transport contract. Microwire parts have no
// framed command protocol; the engine drives lines directly.
func (*Microwire) Transaction([]byte, int) ([]byte, error) {
	return nil, nander.ErrNotSupported
}

// Transfer implements the transport contract.
func (*Microwire) Transfer([]byte) ([]byte, error) {
	return nil, nander.ErrNotSupported
}

// SetChipSelect implements the transport contract.
func (s *Microwire) SetChipSelect(assert bool) error {
	return s.SetLine(nander.LineCS, assert)
}

// MaxTransferSize implements the transport contract.
func (*Microwire) MaxTransferSize() int { return 0 }

// SetSpeed implements the transport contract.
func (*Microwire) SetSpeed(uint8) error { return nil }

// Close implements the transport contract.
func (*Microwire) Close() error { return nil }

// Type implements the transport contract.
func (*Microwire) Type() nander.TransportType { return nander.TransportSim }
