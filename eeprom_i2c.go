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

import (
	"fmt"
	"time"
)

// i2cEepromBase is the 7-bit device address family of 24Cxx parts.
const i2cEepromBase byte = 0x50

// i2cWriteSettle is the post-write cycle time. 24Cxx parts do not expose
// a busy flag over the data path, so the engine waits out the worst-case
// write cycle from the datasheets.
const i2cWriteSettle = 10 * time.Millisecond

// I2CEEPROMEngine drives 24Cxx serial EEPROMs over an I2C-capable bridge.
// Parts up to 2 KiB select the high address bits through the device
// address itself and send a single address byte; larger parts use a fixed
// device address and two address bytes.
type I2CEEPROMEngine struct {
	transport Transport
	i2c       I2CTransport
	layout    ChipLayout
	cfg       engineConfig
}

func newI2CEEPROMEngine(t Transport, layout ChipLayout, cfg engineConfig) (*I2CEEPROMEngine, error) {
	i2c, ok := t.(I2CTransport)
	if !ok {
		return nil, fmt.Errorf("transport %s cannot issue I2C transactions: %w",
			t.Type(), ErrNotSupported)
	}
	return &I2CEEPROMEngine{transport: t, i2c: i2c, layout: layout, cfg: cfg}, nil
}

// Layout returns the chip layout.
func (e *I2CEEPROMEngine) Layout() ChipLayout { return e.layout }

// deviceAddr returns the 7-bit device address and the memory address
// preamble for addr.
func (e *I2CEEPROMEngine) deviceAddr(addr uint32) (byte, []byte) {
	if e.layout.Capacity <= 2048 {
		// A10..A8 ride in the device address low bits.
		return i2cEepromBase | byte(addr>>8)&0x07, []byte{byte(addr)}
	}
	return i2cEepromBase, []byte{byte(addr >> 8), byte(addr)}
}

// Read implements FlashEngine. Each chunk re-seats the address pointer
// with a zero-length-data write, then streams a sequential read.
func (e *I2CEEPROMEngine) Read(req ReadRequest, progress ProgressFunc) ([]byte, error) {
	if err := req.Validate(e.layout); err != nil {
		return nil, err
	}

	chunk := uint32(e.i2c.MaxI2CChunk())
	if chunk == 0 {
		chunk = 1024
	}

	result := make([]byte, 0, req.Length)
	addr := uint32(req.Address)
	for uint32(len(result)) < req.Length {
		n := min(chunk, req.Length-uint32(len(result)))
		dev, preamble := e.deviceAddr(addr)
		if err := e.i2c.I2CWrite(dev, preamble); err != nil {
			return nil, err
		}
		data, err := e.i2c.I2CRead(dev, int(n))
		if err != nil {
			return nil, err
		}
		result = append(result, data...)
		addr += n
		progress.report(uint64(len(result)), uint64(req.Length))
	}
	return result, nil
}

// Write implements FlashEngine. Write bursts stay inside one internal
// page; each burst is followed by the fixed write-cycle settle.
func (e *I2CEEPROMEngine) Write(req WriteRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}

	pageSize := e.layout.PageSize
	addr := uint32(req.Address)
	offset := uint32(0)
	total := uint64(len(req.Data))

	for offset < uint32(len(req.Data)) {
		inPage := pageSize - addr%pageSize
		n := min(inPage, uint32(len(req.Data))-offset)

		dev, preamble := e.deviceAddr(addr)
		payload := append(preamble, req.Data[offset:offset+n]...)
		if err := e.i2c.I2CWrite(dev, payload); err != nil {
			return err
		}
		time.Sleep(i2cWriteSettle)

		offset += n
		addr += n
		progress.report(uint64(offset), total)
	}
	return nil
}

// Erase implements FlashEngine by writing 0xFF over the range.
func (e *I2CEEPROMEngine) Erase(req EraseRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}
	blank := make([]byte, req.Length)
	for i := range blank {
		blank[i] = 0xFF
	}
	return e.Write(WriteRequest{
		Address: req.Address,
		Data:    blank,
	}, progress)
}

// ReadStatus implements FlashEngine. 24Cxx parts have no status register.
func (*I2CEEPROMEngine) ReadStatus() ([]byte, error) {
	return nil, ErrNotSupported
}

// WriteStatus implements FlashEngine.
func (*I2CEEPROMEngine) WriteStatus([]byte) error {
	return ErrNotSupported
}

// ScanBadBlocks implements FlashEngine.
func (*I2CEEPROMEngine) ScanBadBlocks(ProgressFunc) (*BadBlockTable, error) {
	return nil, ErrNotSupported
}

// MarkBad implements FlashEngine.
func (*I2CEEPROMEngine) MarkBad(uint32) error {
	return ErrNotSupported
}
