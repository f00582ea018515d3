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

// MicrowireEngine drives 93Cxx three-wire EEPROMs in byte organization.
// Microwire has no fixed command framing, every transaction is a start
// bit, a two-bit opcode and a capacity-dependent address, shifted one
// line transition at a time. Chip select is active high and frames each
// transaction.
type MicrowireEngine struct {
	transport Transport
	lines     BitBangTransport
	layout    ChipLayout
	cfg       engineConfig
	addrBits  int
}

func newMicrowireEngine(t Transport, layout ChipLayout, cfg engineConfig) (*MicrowireEngine, error) {
	lines, ok := t.(BitBangTransport)
	if !ok {
		return nil, fmt.Errorf("transport %s cannot drive individual lines: %w",
			t.Type(), ErrNotSupported)
	}
	return &MicrowireEngine{
		transport: t,
		lines:     lines,
		layout:    layout,
		cfg:       cfg,
		addrBits:  microwireAddrBits(layout.Capacity),
	}, nil
}

// microwireAddrBits returns the address field width for a capacity.
// 93C46 class parts take 7 bits, 93C56/66 take 9, 93C76/86 take 11.
func microwireAddrBits(capacity uint32) int {
	switch {
	case capacity <= 128:
		return 7
	case capacity <= 512:
		return 9
	default:
		return 11
	}
}

// Layout returns the chip layout.
func (e *MicrowireEngine) Layout() ChipLayout { return e.layout }

func (e *MicrowireEngine) select_(on bool) error {
	return e.lines.SetLine(LineCS, on)
}

// clockBit shifts one bit out on the data line with a full clock cycle.
func (e *MicrowireEngine) clockBit(high bool) error {
	if err := e.lines.SetLine(LineMOSI, high); err != nil {
		return err
	}
	if err := e.lines.SetLine(LineClock, true); err != nil {
		return err
	}
	return e.lines.SetLine(LineClock, false)
}

// sampleBit clocks once and samples the data-out line on the rising edge.
func (e *MicrowireEngine) sampleBit() (bool, error) {
	if err := e.lines.SetLine(LineClock, true); err != nil {
		return false, err
	}
	bit, err := e.lines.ReadLine(LineMISO)
	if clkErr := e.lines.SetLine(LineClock, false); clkErr != nil && err == nil {
		err = clkErr
	}
	return bit, err
}

// shiftOut clocks the low n bits of value out, most significant first.
func (e *MicrowireEngine) shiftOut(value uint32, n int) error {
	for i := n - 1; i >= 0; i-- {
		if err := e.clockBit(value&(1<<i) != 0); err != nil {
			return err
		}
	}
	return nil
}

// header shifts the start bit, opcode and address of a transaction.
func (e *MicrowireEngine) header(op byte, addr uint32) error {
	if err := e.clockBit(true); err != nil { // start bit
		return err
	}
	if err := e.shiftOut(uint32(op), 2); err != nil {
		return err
	}
	return e.shiftOut(addr, e.addrBits)
}

// transact runs body between chip-select assert and release. Chip select
// is always dropped, even on error.
func (e *MicrowireEngine) transact(body func() error) error {
	if err := e.select_(true); err != nil {
		return err
	}
	err := body()
	if csErr := e.select_(false); csErr != nil && err == nil {
		err = csErr
	}
	return err
}

// writeEnable sends EWEN: the extended opcode with the address field
// starting 11. Stays in effect until EWDS or power-down.
func (e *MicrowireEngine) writeEnable() error {
	return e.transact(func() error {
		return e.header(mwOpExtended, uint32(0b11)<<(e.addrBits-2))
	})
}

// writeDisable sends EWDS, re-arming write protection.
func (e *MicrowireEngine) writeDisable() error {
	return e.transact(func() error {
		return e.header(mwOpExtended, 0)
	})
}

// waitWriteDone polls the ready line after a write transaction. The part
// reports busy by holding data-out low after chip select is re-asserted.
func (e *MicrowireEngine) waitWriteDone() error {
	if err := e.select_(true); err != nil {
		return err
	}
	err := pollUntil("microwire write", e.cfg.pollTimeout, e.cfg.pollInterval,
		func() (bool, error) {
			return e.lines.ReadLine(LineMISO)
		})
	if csErr := e.select_(false); csErr != nil && err == nil {
		err = csErr
	}
	return err
}

func (e *MicrowireEngine) readByteAt(addr uint32) (byte, error) {
	var value byte
	err := e.transact(func() error {
		if err := e.header(mwOpRead, addr); err != nil {
			return err
		}
		// A dummy zero precedes the data bits.
		if _, err := e.sampleBit(); err != nil {
			return err
		}
		for i := 7; i >= 0; i-- {
			bit, err := e.sampleBit()
			if err != nil {
				return err
			}
			if bit {
				value |= 1 << i
			}
		}
		return nil
	})
	return value, err
}

func (e *MicrowireEngine) writeByteAt(addr uint32, value byte) error {
	err := e.transact(func() error {
		if err := e.header(mwOpWrite, addr); err != nil {
			return err
		}
		return e.shiftOut(uint32(value), 8)
	})
	if err != nil {
		return err
	}
	return e.waitWriteDone()
}

// Read implements FlashEngine, one byte per transaction.
func (e *MicrowireEngine) Read(req ReadRequest, progress ProgressFunc) ([]byte, error) {
	if err := req.Validate(e.layout); err != nil {
		return nil, err
	}
	result := make([]byte, 0, req.Length)
	for i := uint32(0); i < req.Length; i++ {
		b, err := e.readByteAt(uint32(req.Address) + i)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
		progress.report(uint64(i+1), uint64(req.Length))
	}
	return result, nil
}

// Write implements FlashEngine. The write-enable latch is armed once,
// each byte is its own transaction with a ready poll, and protection is
// re-armed before returning.
func (e *MicrowireEngine) Write(req WriteRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}
	if err := e.writeEnable(); err != nil {
		return err
	}
	for i, b := range req.Data {
		if err := e.writeByteAt(uint32(req.Address)+uint32(i), b); err != nil {
			return err
		}
		progress.report(uint64(i+1), uint64(len(req.Data)))
	}
	return e.writeDisable()
}

// Erase implements FlashEngine with the dedicated per-address erase
// opcode, which leaves cells at 0xFF.
func (e *MicrowireEngine) Erase(req EraseRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}
	if err := e.writeEnable(); err != nil {
		return err
	}
	for i := uint32(0); i < req.Length; i++ {
		err := e.transact(func() error {
			return e.header(mwOpErase, uint32(req.Address)+i)
		})
		if err != nil {
			return err
		}
		if err := e.waitWriteDone(); err != nil {
			return err
		}
		progress.report(uint64(i+1), uint64(req.Length))
	}
	return e.writeDisable()
}

// ReadStatus implements FlashEngine. 93Cxx parts have no status register.
func (*MicrowireEngine) ReadStatus() ([]byte, error) {
	return nil, ErrNotSupported
}

// WriteStatus implements FlashEngine.
func (*MicrowireEngine) WriteStatus([]byte) error {
	return ErrNotSupported
}

// ScanBadBlocks implements FlashEngine.
func (*MicrowireEngine) ScanBadBlocks(ProgressFunc) (*BadBlockTable, error) {
	return nil, ErrNotSupported
}

// MarkBad implements FlashEngine.
func (*MicrowireEngine) MarkBad(uint32) error {
	return ErrNotSupported
}
