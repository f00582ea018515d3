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

// SPIEEPROMEngine drives 25xxx serial EEPROMs. The address width follows
// capacity: one byte up to 256 B, two bytes up to 64 KiB, three bytes
// above. 512-byte parts are the odd case out: they keep a one-byte
// address and fold bit A8 into the opcode (25xx040 style).
type SPIEEPROMEngine struct {
	transport Transport
	layout    ChipLayout
	cfg       engineConfig
}

func newSPIEEPROMEngine(t Transport, layout ChipLayout, cfg engineConfig) *SPIEEPROMEngine {
	return &SPIEEPROMEngine{transport: t, layout: layout, cfg: cfg}
}

// Layout returns the chip layout.
func (e *SPIEEPROMEngine) Layout() ChipLayout { return e.layout }

// command builds the opcode plus address preamble for addr.
func (e *SPIEEPROMEngine) command(op byte, addr uint32) []byte {
	switch {
	case e.layout.Capacity <= 256:
		return []byte{op, byte(addr)}
	case e.layout.Capacity <= 512:
		// A8 rides in opcode bit 3.
		if addr&0x100 != 0 {
			op |= 0x08
		}
		return []byte{op, byte(addr)}
	case e.layout.Capacity <= 64*1024:
		return []byte{op, byte(addr >> 8), byte(addr)}
	default:
		return []byte{op, byte(addr >> 16), byte(addr >> 8), byte(addr)}
	}
}

func (e *SPIEEPROMEngine) readStatusReg() (byte, error) {
	rx, err := e.transport.Transaction([]byte{cmdEepromReadStatus}, 1)
	if err != nil {
		return 0, err
	}
	return rx[0], nil
}

func (e *SPIEEPROMEngine) waitReady() error {
	return pollUntil("eeprom wait-ready", e.cfg.pollTimeout, e.cfg.pollInterval,
		func() (bool, error) {
			status, err := e.readStatusReg()
			if err != nil {
				return false, err
			}
			return status&statusWIP == 0, nil
		})
}

// Read implements FlashEngine. EEPROM reads stream sequentially from the
// start address; chunking only bounds the transport transfer size.
func (e *SPIEEPROMEngine) Read(req ReadRequest, progress ProgressFunc) ([]byte, error) {
	if err := req.Validate(e.layout); err != nil {
		return nil, err
	}

	chunk := uint32(e.transport.MaxTransferSize())
	if chunk == 0 || chunk > 4096 {
		chunk = 4096
	}

	result := make([]byte, 0, req.Length)
	addr := uint32(req.Address)
	for uint32(len(result)) < req.Length {
		n := min(chunk, req.Length-uint32(len(result)))
		data, err := e.transport.Transaction(e.command(cmdEepromRead, addr), int(n))
		if err != nil {
			return nil, err
		}
		result = append(result, data...)
		addr += n
		progress.report(uint64(len(result)), uint64(req.Length))
	}
	return result, nil
}

// Write implements FlashEngine. Each write burst stays inside one internal
// page and is followed by a ready poll; EEPROM cells overwrite in place,
// no erase needed.
func (e *SPIEEPROMEngine) Write(req WriteRequest, progress ProgressFunc) error {
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

		if err := transactionWrite(e.transport, []byte{cmdEepromWriteEnable}); err != nil {
			return err
		}
		cmd := append(e.command(cmdEepromWrite, addr), req.Data[offset:offset+n]...)
		if err := transactionWrite(e.transport, cmd); err != nil {
			return err
		}
		if err := e.waitReady(); err != nil {
			return err
		}

		offset += n
		addr += n
		progress.report(uint64(offset), total)
	}
	return nil
}

// Erase implements FlashEngine by writing 0xFF over the range. EEPROMs
// have no erase command; this matches what an erased part reads back as.
func (e *SPIEEPROMEngine) Erase(req EraseRequest, progress ProgressFunc) error {
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

// ReadStatus implements FlashEngine.
func (e *SPIEEPROMEngine) ReadStatus() ([]byte, error) {
	status, err := e.readStatusReg()
	if err != nil {
		return nil, err
	}
	return []byte{status}, nil
}

// WriteStatus implements FlashEngine.
func (e *SPIEEPROMEngine) WriteStatus(status []byte) error {
	if len(status) == 0 {
		return nil
	}
	if err := transactionWrite(e.transport, []byte{cmdEepromWriteEnable}); err != nil {
		return err
	}
	if err := transactionWrite(e.transport, []byte{cmdEepromWriteStatus, status[0]}); err != nil {
		return err
	}
	return e.waitReady()
}

// ScanBadBlocks implements FlashEngine.
func (*SPIEEPROMEngine) ScanBadBlocks(ProgressFunc) (*BadBlockTable, error) {
	return nil, ErrNotSupported
}

// MarkBad implements FlashEngine.
func (*SPIEEPROMEngine) MarkBad(uint32) error {
	return ErrNotSupported
}
