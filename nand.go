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
	"errors"
	"fmt"
)

// NANDEngine drives SPI NAND parts page by page: load page to cache, read
// or program the cache, then poll the busy flag with a deadline.
type NANDEngine struct {
	transport Transport
	layout    ChipLayout
	cfg       engineConfig
}

func newNANDEngine(t Transport, layout ChipLayout, cfg engineConfig) *NANDEngine {
	return &NANDEngine{transport: t, layout: layout, cfg: cfg}
}

// Layout returns the chip layout.
func (e *NANDEngine) Layout() ChipLayout { return e.layout }

// BadBlockTable returns the attached table, or nil when operating without
// one (marker bytes are then probed live).
func (e *NANDEngine) BadBlockTable() *BadBlockTable { return e.cfg.bbt }

// AttachBadBlockTable replaces the attached table. Must not be called
// while an operation is in flight.
func (e *NANDEngine) AttachBadBlockTable(bbt *BadBlockTable) { e.cfg.bbt = bbt }

func (e *NANDEngine) getFeature(addr byte) (byte, error) {
	rx, err := e.transport.Transaction([]byte{cmdNandGetFeature, addr}, 1)
	if err != nil {
		return 0, err
	}
	return rx[0], nil
}

func (e *NANDEngine) setFeature(addr, value byte) error {
	return transactionWrite(e.transport, []byte{cmdNandSetFeature, addr, value})
}

func (e *NANDEngine) writeEnable() error {
	return transactionWrite(e.transport, []byte{cmdWriteEnable})
}

func rowAddr(page uint32) [3]byte {
	return [3]byte{byte(page >> 16), byte(page >> 8), byte(page)}
}

func colAddr(column uint32) [2]byte {
	return [2]byte{byte(column >> 8), byte(column)}
}

// waitReady polls the OIP flag until clear and returns the final status
// register value so callers can inspect the fail bits.
func (e *NANDEngine) waitReady() (byte, error) {
	var status byte
	err := pollUntil("nand wait-ready", e.cfg.pollTimeout, e.cfg.pollInterval,
		func() (bool, error) {
			s, err := e.getFeature(featureStatus)
			if err != nil {
				return false, err
			}
			status = s
			return s&statusNandOIP == 0, nil
		})
	return status, err
}

func (e *NANDEngine) setEcc(enabled bool) error {
	config, err := e.getFeature(featureConfig)
	if err != nil {
		return err
	}
	if enabled {
		config |= configEccEnable
	} else {
		config &^= configEccEnable
	}
	return e.setFeature(featureConfig, config)
}

// loadPage issues the page-read-to-cache command and waits for the array
// read to finish.
func (e *NANDEngine) loadPage(page uint32) (byte, error) {
	row := rowAddr(page)
	if err := transactionWrite(e.transport,
		[]byte{cmdNandPageRead, row[0], row[1], row[2]}); err != nil {
		return 0, err
	}
	return e.waitReady()
}

// readCache reads n bytes from the page cache starting at column.
func (e *NANDEngine) readCache(column uint32, n int) ([]byte, error) {
	col := colAddr(column)
	return e.transport.Transaction([]byte{cmdNandReadCache, col[0], col[1], 0x00}, n)
}

func (e *NANDEngine) readPageRaw(page, column uint32, n int) ([]byte, error) {
	if _, err := e.loadPage(page); err != nil {
		return nil, err
	}
	return e.readCache(column, n)
}

// checkEccStatus classifies the ECC bits after a page read.
func (e *NANDEngine) checkEccStatus(status byte, page uint32) error {
	switch status & statusNandEccMask {
	case statusNandEccUncorrectable:
		return &EccError{Address: PageAddress(page, e.layout)}
	case statusNandEccCorrected, statusNandEccCorrectedAlt:
		debugf("corrected ECC errors at page %d", page)
		return nil
	default:
		return nil
	}
}

// probeFactoryMarker reads the factory marker byte(s) of a block. Returns
// true when any probed byte differs from 0xFF.
func (e *NANDEngine) probeFactoryMarker(block uint32) (bool, error) {
	first := block * e.layout.PagesPerBlock()
	for _, p := range e.cfg.marker.Probes(e.layout) {
		oob, err := e.readPageRaw(first+p.Page, p.Column, 1)
		if err != nil {
			return false, err
		}
		if oob[0] != 0xFF {
			return true, nil
		}
	}
	return false, nil
}

// blockIsBad resolves a block's status against the attached table, probing
// the marker for Unknown entries, or probes live when no table is
// attached.
func (e *NANDEngine) blockIsBad(block uint32) (bool, error) {
	if e.cfg.bbt != nil {
		switch e.cfg.bbt.Status(block) {
		case BlockGood:
			return false, nil
		case BlockBadFactory, BlockBadRuntime:
			return true, nil
		}
	}
	bad, err := e.probeFactoryMarker(block)
	if err != nil {
		return false, err
	}
	if e.cfg.bbt != nil {
		if bad {
			e.cfg.bbt.Mark(block, BlockBadFactory)
		} else {
			e.cfg.bbt.Mark(block, BlockGood)
		}
	}
	return bad, nil
}

// skipBadBlock applies the strategy when page iteration enters a bad
// block. It returns the page to continue from, or an error for the Fail
// strategy.
func (e *NANDEngine) skipBadBlock(strategy BadBlockStrategy, block uint32) (uint32, error) {
	switch strategy {
	case BadBlockFail:
		return 0, &BadBlockError{Block: block}
	case BadBlockSkip:
		debugf("skipping bad block %d", block)
		return (block + 1) * e.layout.PagesPerBlock(), nil
	default:
		return 0, &BadBlockError{Block: block}
	}
}

// oobWindow returns the cache column base and bytes-per-page for an
// OobMode.
func (e *NANDEngine) oobWindow(mode OobMode) (uint32, uint32) {
	switch mode {
	case OobIncluded:
		return 0, e.layout.RawPageSize()
	case OobOnly:
		return e.layout.PageSize, e.layout.OOBSize
	default:
		return 0, e.layout.PageSize
	}
}

// Read implements FlashEngine.
func (e *NANDEngine) Read(req ReadRequest, progress ProgressFunc) ([]byte, error) {
	if err := req.Validate(e.layout); err != nil {
		return nil, err
	}
	if req.Oob != OobNone && uint32(req.Address)%e.layout.PageSize != 0 {
		return nil, fmt.Errorf("%w: OOB reads must start page-aligned", ErrInvalidRequest)
	}
	if err := e.setEcc(req.Ecc.Enabled); err != nil {
		return nil, err
	}

	colBase, perPage := e.oobWindow(req.Oob)
	page := uint32(req.Address) / e.layout.PageSize
	column := colBase
	if req.Oob == OobNone {
		column += uint32(req.Address) % e.layout.PageSize
	}

	total := uint64(req.Length)
	result := make([]byte, 0, req.Length)

	for uint32(len(result)) < req.Length {
		block := page / e.layout.PagesPerBlock()
		if req.BadBlocks != BadBlockInclude {
			bad, err := e.blockIsBad(block)
			if err != nil {
				return nil, err
			}
			if bad {
				next, err := e.skipBadBlock(req.BadBlocks, block)
				if err != nil {
					return nil, err
				}
				page = next
				continue
			}
		}

		n := min(perPage-(column-colBase), req.Length-uint32(len(result)))
		status, err := e.loadPage(page)
		if err != nil {
			return nil, err
		}
		if req.Ecc.Enabled {
			if eccErr := e.checkEccStatus(status, page); eccErr != nil {
				if !req.Ecc.IgnoreErrors {
					return nil, eccErr
				}
				debugf("ignored ECC error: %v", eccErr)
			}
		}
		chunk, err := e.readCache(column, int(n))
		if err != nil {
			return nil, err
		}
		result = append(result, chunk...)

		page++
		column = colBase
		progress.report(uint64(len(result)), total)
	}

	return result, nil
}

// Write implements FlashEngine. NAND writes are page-aligned; each page is
// cache-loaded then program-executed, with the program-fail status bit
// checked after the busy wait.
func (e *NANDEngine) Write(req WriteRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}
	if err := e.setEcc(req.Ecc.Enabled); err != nil {
		return err
	}

	colBase, perPage := e.oobWindow(req.Oob)
	page := uint32(req.Address) / e.layout.PageSize
	total := uint64(len(req.Data))
	offset := uint32(0)

	for offset < uint32(len(req.Data)) {
		block := page / e.layout.PagesPerBlock()
		if req.BadBlocks != BadBlockInclude {
			bad, err := e.blockIsBad(block)
			if err != nil {
				return err
			}
			if bad {
				next, err := e.skipBadBlock(req.BadBlocks, block)
				if err != nil {
					return err
				}
				page = next
				continue
			}
		}

		n := min(perPage, uint32(len(req.Data))-offset)
		if err := e.programPage(page, colBase, req.Data[offset:offset+n]); err != nil {
			return err
		}

		offset += n
		page++
		progress.report(uint64(offset), total)
	}

	return nil
}

func (e *NANDEngine) programPage(page, column uint32, data []byte) error {
	if err := e.writeEnable(); err != nil {
		return err
	}

	col := colAddr(column)
	load := make([]byte, 0, len(data)+3)
	load = append(load, cmdNandProgramLoad, col[0], col[1])
	load = append(load, data...)
	if err := transactionWrite(e.transport, load); err != nil {
		return err
	}

	row := rowAddr(page)
	if err := transactionWrite(e.transport,
		[]byte{cmdNandProgramExec, row[0], row[1], row[2]}); err != nil {
		return err
	}

	status, err := e.waitReady()
	if err != nil {
		return err
	}
	if status&statusNandPFail != 0 {
		return &ProgramError{
			Address: PageAddress(page, e.layout),
			Block:   page / e.layout.PagesPerBlock(),
		}
	}
	return nil
}

// Erase implements FlashEngine. Progress counts blocks.
func (e *NANDEngine) Erase(req EraseRequest, progress ProgressFunc) error {
	if err := req.Validate(e.layout); err != nil {
		return err
	}

	totalBlocks := (req.Length + e.layout.BlockSize - 1) / e.layout.BlockSize
	block := uint32(req.Address) / e.layout.BlockSize
	var erased uint32

	for erased < totalBlocks {
		if req.BadBlocks != BadBlockInclude {
			bad, err := e.blockIsBad(block)
			if err != nil {
				return err
			}
			if bad {
				if req.BadBlocks != BadBlockSkip {
					return &BadBlockError{Block: block}
				}
				debugf("skipping bad block %d", block)
				block++
				continue
			}
		}

		if err := e.eraseBlock(block); err != nil {
			return err
		}
		erased++
		block++
		progress.report(uint64(erased), uint64(totalBlocks))
	}

	return nil
}

func (e *NANDEngine) eraseBlock(block uint32) error {
	if err := e.writeEnable(); err != nil {
		return err
	}
	row := rowAddr(block * e.layout.PagesPerBlock())
	if err := transactionWrite(e.transport,
		[]byte{cmdNandBlockErase, row[0], row[1], row[2]}); err != nil {
		return err
	}
	status, err := e.waitReady()
	if err != nil {
		return err
	}
	if status&statusNandEFail != 0 {
		return &EraseError{Block: block}
	}
	return nil
}

// ReadStatus implements FlashEngine: status register then configuration
// register.
func (e *NANDEngine) ReadStatus() ([]byte, error) {
	status, err := e.getFeature(featureStatus)
	if err != nil {
		return nil, err
	}
	config, err := e.getFeature(featureConfig)
	if err != nil {
		return nil, err
	}
	return []byte{status, config}, nil
}

// WriteStatus implements FlashEngine: writes the block protection
// register.
func (e *NANDEngine) WriteStatus(status []byte) error {
	if len(status) == 0 {
		return nil
	}
	return e.setFeature(featureProtection, status[0])
}

// ScanBadBlocks implements FlashEngine. It reads the factory marker
// byte(s) of every block without modifying chip contents, and reports
// progress per block. ECC is disabled during the scan so marker bytes are
// read verbatim.
func (e *NANDEngine) ScanBadBlocks(progress ProgressFunc) (*BadBlockTable, error) {
	if err := e.setEcc(false); err != nil {
		return nil, err
	}

	blocks := e.layout.BlockCount()
	table := NewBadBlockTable(blocks)
	for block := uint32(0); block < blocks; block++ {
		bad, err := e.probeFactoryMarker(block)
		if err != nil {
			return nil, err
		}
		if bad {
			table.Mark(block, BlockBadFactory)
		} else {
			table.Mark(block, BlockGood)
		}
		progress.report(uint64(block+1), uint64(blocks))
	}
	return table, nil
}

// MarkBad implements FlashEngine: writes 0x00 into the factory marker
// position of the block's first page and records BadRuntime in the
// attached table. A program failure on the marker write is ignored — the
// block is being condemned anyway.
func (e *NANDEngine) MarkBad(block uint32) error {
	if block >= e.layout.BlockCount() {
		return fmt.Errorf("%w: block %d out of range", ErrInvalidRequest, block)
	}
	if err := e.setEcc(false); err != nil {
		return err
	}

	page := block * e.layout.PagesPerBlock()
	err := e.programPage(page, e.layout.PageSize, []byte{0x00})
	var perr *ProgramError
	if err != nil && !errors.As(err, &perr) {
		return err
	}

	if e.cfg.bbt != nil {
		e.cfg.bbt.Mark(block, BlockBadRuntime)
	}
	debugf("marked block %d bad (runtime)", block)
	return nil
}
