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

import "time"

// NOREngine drives SPI NOR parts with linear addressing. Reads use the
// fast-read command over bulk-sized windows; chunking exists only to bound
// memory, the whole window is one low-level transaction where the
// transport batches.
type NOREngine struct {
	transport Transport
	layout    ChipLayout
	cfg       engineConfig
	// fourByte is true for parts above 16 MiB; the enter-4-byte-mode
	// command is sent once before the first operation.
	fourByte    bool
	modeEntered bool
}

func newNOREngine(t Transport, layout ChipLayout, cfg engineConfig) *NOREngine {
	// NOR chip erases can take tens of seconds.
	if cfg.pollTimeout < 30*time.Second {
		cfg.pollTimeout = 30 * time.Second
	}
	return &NOREngine{
		transport: t,
		layout:    layout,
		cfg:       cfg,
		fourByte:  layout.Capacity > nor4ByteThreshold,
	}
}

// Layout returns the chip layout.
func (e *NOREngine) Layout() ChipLayout { return e.layout }

// addrBytes returns the wire form of an address in the active width.
func (e *NOREngine) addrBytes(addr uint32) []byte {
	if e.fourByte {
		return []byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)}
	}
	return []byte{byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

func (e *NOREngine) ensureAddressMode() error {
	if !e.fourByte || e.modeEntered {
		return nil
	}
	if err := transactionWrite(e.transport, []byte{cmdNorEnter4Byte}); err != nil {
		return err
	}
	e.modeEntered = true
	return nil
}

func (e *NOREngine) readStatusReg() (byte, error) {
	rx, err := e.transport.Transaction([]byte{cmdNorReadStatus}, 1)
	if err != nil {
		return 0, err
	}
	return rx[0], nil
}

func (e *NOREngine) writeEnable() error {
	return transactionWrite(e.transport, []byte{cmdWriteEnable})
}

func (e *NOREngine) waitReady() error {
	return pollUntil("nor wait-ready", e.cfg.pollTimeout, e.cfg.pollInterval,
		func() (bool, error) {
			status, err := e.readStatusReg()
			if err != nil {
				return false, err
			}
			return status&statusWIP == 0, nil
		})
}

// Read implements FlashEngine.
func (e *NOREngine) Read(req ReadRequest, progress ProgressFunc) ([]byte, error) {
	if err := req.Validate(e.layout); err != nil {
		return nil, err
	}
	if err := e.ensureAddressMode(); err != nil {
		return nil, err
	}

	chunk := uint32(e.transport.MaxTransferSize())
	if chunk == 0 || chunk > 32*1024 {
		chunk = 32 * 1024
	}

	result := make([]byte, 0, req.Length)
	addr := uint32(req.Address)
	for uint32(len(result)) < req.Length {
		n := min(chunk, req.Length-uint32(len(result)))
		cmd := append([]byte{cmdNorFastRead}, e.addrBytes(addr)...)
		cmd = append(cmd, 0x00) // dummy cycle
		data, err := e.transport.Transaction(cmd, int(n))
		if err != nil {
			return nil, err
		}
		result = append(result, data...)
		addr += n
		progress.report(uint64(len(result)), uint64(req.Length))
	}
	return result, nil
}

// Write implements FlashEngine. Data is programmed in page-aligned chunks,
// each followed by a write-in-progress poll with a deadline.
func (e *NOREngine) Write(req WriteRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}
	if err := e.ensureAddressMode(); err != nil {
		return err
	}

	pageSize := e.layout.PageSize
	addr := uint32(req.Address)
	offset := uint32(0)
	total := uint64(len(req.Data))

	for offset < uint32(len(req.Data)) {
		inPage := pageSize - addr%pageSize
		n := min(inPage, uint32(len(req.Data))-offset)

		if err := e.writeEnable(); err != nil {
			return err
		}
		cmd := append([]byte{cmdNorPageProgram}, e.addrBytes(addr)...)
		cmd = append(cmd, req.Data[offset:offset+n]...)
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

// Erase implements FlashEngine using the 64 KiB block-erase command.
// Progress counts blocks.
func (e *NOREngine) Erase(req EraseRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}
	if err := e.ensureAddressMode(); err != nil {
		return err
	}

	totalBlocks := (req.Length + e.layout.BlockSize - 1) / e.layout.BlockSize
	for i := uint32(0); i < totalBlocks; i++ {
		addr := uint32(req.Address) + i*e.layout.BlockSize
		if err := e.writeEnable(); err != nil {
			return err
		}
		cmd := append([]byte{cmdNorBlockErase}, e.addrBytes(addr)...)
		if err := transactionWrite(e.transport, cmd); err != nil {
			return err
		}
		if err := e.waitReady(); err != nil {
			return err
		}
		progress.report(uint64(i+1), uint64(totalBlocks))
	}
	return nil
}

// ReadStatus implements FlashEngine: the status/protect register, used for
// write-protection control independent of the main data path.
func (e *NOREngine) ReadStatus() ([]byte, error) {
	status, err := e.readStatusReg()
	if err != nil {
		return nil, err
	}
	return []byte{status}, nil
}

// WriteStatus implements FlashEngine.
func (e *NOREngine) WriteStatus(status []byte) error {
	if len(status) == 0 {
		return nil
	}
	if err := e.writeEnable(); err != nil {
		return err
	}
	if err := transactionWrite(e.transport, []byte{cmdNorWriteStatus, status[0]}); err != nil {
		return err
	}
	return e.waitReady()
}

// ScanBadBlocks implements FlashEngine. NOR media has no bad block
// bookkeeping.
func (*NOREngine) ScanBadBlocks(ProgressFunc) (*BadBlockTable, error) {
	return nil, ErrNotSupported
}

// MarkBad implements FlashEngine.
func (*NOREngine) MarkBad(uint32) error {
	return ErrNotSupported
}
