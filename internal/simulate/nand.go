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

// NAND command and register constants mirrored from the SPI NAND
// protocol the engine speaks.
const (
	nandCmdJEDECID     = 0x9F
	nandCmdWriteEnable = 0x06
	nandCmdPageRead    = 0x13
	nandCmdReadCache   = 0x03
	nandCmdProgramLoad = 0x02
	nandCmdProgramExec = 0x10
	nandCmdBlockErase  = 0xD8
	nandCmdGetFeature  = 0x0F
	nandCmdSetFeature  = 0x1F

	nandRegProtection = 0xA0
	nandRegConfig     = 0xB0
	nandRegStatus     = 0xC0

	nandStatusPFail = 0x08
	nandStatusEFail = 0x04

	nandConfigEcc = 0x10
)

// NAND is an in-memory SPI NAND model. Pages are stored with their
// spare area appended, so raw access sees both. Fault injection covers
// program failures, erase failures and ECC status per page.
type NAND struct {
	layout nander.ChipLayout
	id     nander.JEDECID

	// pages holds main+spare per page, contiguous by page index.
	pages []byte
	cache []byte

	protection byte
	config     byte
	status     byte
	wel        bool

	failProgram map[uint32]bool
	failErase   map[uint32]bool
	// eccStatus maps page index to the status bits (mask 0x30) reported
	// after loading that page with ECC enabled.
	eccStatus map[uint32]byte
}

// NewNAND creates an erased chip with the given layout and identifier.
func NewNAND(layout nander.ChipLayout, id nander.JEDECID) *NAND {
	stride := layout.RawPageSize()
	s := &NAND{
		layout:      layout,
		id:          id,
		pages:       make([]byte, layout.PageCount()*stride),
		cache:       make([]byte, stride),
		failProgram: make(map[uint32]bool),
		failErase:   make(map[uint32]bool),
		eccStatus:   make(map[uint32]byte),
	}
	fill(s.pages, 0xFF)
	fill(s.cache, 0xFF)
	return s
}

// FailProgramInBlock makes every program in block report P_FAIL.
func (s *NAND) FailProgramInBlock(block uint32) { s.failProgram[block] = true }

// FailEraseInBlock makes erasing block report E_FAIL.
func (s *NAND) FailEraseInBlock(block uint32) { s.failErase[block] = true }

// SetEccStatus sets the ECC status bits reported after loading page.
func (s *NAND) SetEccStatus(page uint32, bits byte) { s.eccStatus[page] = bits }

// MarkBadFactory writes the factory bad marker of block: first spare
// byte of the block's first page.
func (s *NAND) MarkBadFactory(block uint32) {
	page := block * s.layout.PagesPerBlock()
	s.pages[page*s.layout.RawPageSize()+s.layout.PageSize] = 0x00
}

// PageData returns the raw contents (main+spare) of page.
func (s *NAND) PageData(page uint32) []byte {
	stride := s.layout.RawPageSize()
	return s.pages[page*stride : (page+1)*stride]
}

func (s *NAND) pageOffset(page uint32) (uint32, error) {
	if page >= s.layout.PageCount() {
		return 0, fmt.Errorf("page %d out of range", page)
	}
	return page * s.layout.RawPageSize(), nil
}

func row(tx []byte) uint32 {
	return uint32(tx[1])<<16 | uint32(tx[2])<<8 | uint32(tx[3])
}

// Transaction implements the transport contract against the chip model.
func (s *NAND) Transaction(tx []byte, rxLen int) ([]byte, error) {
	if len(tx) == 0 {
		return nil, fmt.Errorf("empty transaction")
	}
	switch tx[0] {
	case nandCmdJEDECID:
		return []byte{s.id[0], s.id[1], s.id[2]}[:min(3, rxLen)], nil

	case nandCmdGetFeature:
		var v byte
		switch tx[1] {
		case nandRegProtection:
			v = s.protection
		case nandRegConfig:
			v = s.config
		case nandRegStatus:
			v = s.status
		}
		return []byte{v}, nil

	case nandCmdSetFeature:
		switch tx[1] {
		case nandRegProtection:
			s.protection = tx[2]
		case nandRegConfig:
			s.config = tx[2]
		}
		return nil, nil

	case nandCmdWriteEnable:
		s.wel = true
		return nil, nil

	case nandCmdPageRead:
		page := row(tx)
		off, err := s.pageOffset(page)
		if err != nil {
			return nil, err
		}
		copy(s.cache, s.pages[off:off+s.layout.RawPageSize()])
		s.status = 0
		if s.config&nandConfigEcc != 0 {
			s.status |= s.eccStatus[page]
		}
		return nil, nil

	case nandCmdReadCache:
		col := int(tx[1])<<8 | int(tx[2])
		if col >= len(s.cache) {
			return nil, fmt.Errorf("column %d out of range", col)
		}
		end := min(col+rxLen, len(s.cache))
		return append([]byte(nil), s.cache[col:end]...), nil

	case nandCmdProgramLoad:
		col := int(tx[1])<<8 | int(tx[2])
		data := tx[3:]
		if col+len(data) > len(s.cache) {
			return nil, fmt.Errorf("program load overflows page at column %d", col)
		}
		fill(s.cache, 0xFF)
		copy(s.cache[col:], data)
		return nil, nil

	case nandCmdProgramExec:
		page := row(tx)
		off, err := s.pageOffset(page)
		if err != nil {
			return nil, err
		}
		s.status = 0
		if !s.wel {
			return nil, nil
		}
		s.wel = false
		if s.failProgram[page/s.layout.PagesPerBlock()] {
			s.status |= nandStatusPFail
			return nil, nil
		}
		// NAND cells only clear bits.
		stride := s.layout.RawPageSize()
		for i := uint32(0); i < stride; i++ {
			s.pages[off+i] &= s.cache[i]
		}
		return nil, nil

	case nandCmdBlockErase:
		page := row(tx)
		if _, err := s.pageOffset(page); err != nil {
			return nil, err
		}
		s.status = 0
		if !s.wel {
			return nil, nil
		}
		s.wel = false
		block := page / s.layout.PagesPerBlock()
		if s.failErase[block] {
			s.status |= nandStatusEFail
			return nil, nil
		}
		stride := s.layout.RawPageSize()
		start := block * s.layout.PagesPerBlock() * stride
		fill(s.pages[start:start+s.layout.PagesPerBlock()*stride], 0xFF)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown NAND command 0x%02X", tx[0])
	}
}

// Transfer implements the transport contract.
func (s *NAND) Transfer(tx []byte) ([]byte, error) {
	return s.Transaction(tx, 0)
}

// SetChipSelect implements the transport contract.
func (*NAND) SetChipSelect(bool) error { return nil }

// MaxTransferSize implements the transport contract.
func (*NAND) MaxTransferSize() int { return 4096 }

// SetSpeed implements the transport contract.
func (*NAND) SetSpeed(uint8) error { return nil }

// Close implements the transport contract.
func (*NAND) Close() error { return nil }

// Type implements the transport contract.
func (*NAND) Type() nander.TransportType { return nander.TransportSim }
