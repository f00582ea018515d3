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

// OobMode controls whether a read/write touches the main data area, the
// spare area, or both. It only applies to paged (NAND) media.
type OobMode uint8

const (
	// OobNone touches only the main data area.
	OobNone OobMode = iota
	// OobIncluded touches main data followed by the spare area, per page.
	OobIncluded
	// OobOnly touches only the spare area.
	OobOnly
)

// String returns the mode name.
func (m OobMode) String() string {
	switch m {
	case OobNone:
		return "none"
	case OobIncluded:
		return "included"
	case OobOnly:
		return "only"
	default:
		return fmt.Sprintf("OobMode(%d)", uint8(m))
	}
}

// BadBlockStrategy governs behavior when a target block is marked bad.
type BadBlockStrategy uint8

const (
	// BadBlockFail aborts the operation with a BadBlockError.
	BadBlockFail BadBlockStrategy = iota
	// BadBlockSkip transparently continues in the next good block,
	// shifting logical addressing past the bad block.
	BadBlockSkip
	// BadBlockInclude forces access to bad blocks (raw dumps).
	BadBlockInclude
)

// String returns the strategy name.
func (s BadBlockStrategy) String() string {
	switch s {
	case BadBlockFail:
		return "fail"
	case BadBlockSkip:
		return "skip"
	case BadBlockInclude:
		return "include"
	default:
		return fmt.Sprintf("BadBlockStrategy(%d)", uint8(s))
	}
}

// EccPolicy controls on-chip error correction during NAND operations.
type EccPolicy struct {
	// Enabled selects on-chip ECC. Disabled means raw access including
	// the OOB ECC bytes, verbatim.
	Enabled bool
	// IgnoreErrors downgrades an uncorrectable ECC error from fatal to
	// reported-but-continued, for best-effort data recovery.
	IgnoreErrors bool
}

// DefaultEccPolicy returns the policy applied when requests leave it unset:
// ECC on, errors fatal.
func DefaultEccPolicy() EccPolicy {
	return EccPolicy{Enabled: true}
}

// Progress reports position within a long operation. Counters are
// monotonically non-decreasing; a retried chunk never double-counts.
type Progress struct {
	// Current is the number of units processed so far.
	Current uint64
	// Total is the expected number of units.
	Total uint64
}

// ProgressFunc consumes progress events. It is invoked synchronously on
// the calling goroutine during bus transaction sequences, so it must not
// block indefinitely. A nil ProgressFunc is always allowed.
type ProgressFunc func(Progress)

func (f ProgressFunc) report(current, total uint64) {
	if f != nil {
		f(Progress{Current: current, Total: total})
	}
}

// ReadRequest describes one logical read. Construct it fresh per call.
type ReadRequest struct {
	// Address is the starting byte offset.
	Address Address
	// Length is the number of bytes to read. With OobIncluded or
	// OobOnly it counts the raw bytes actually transferred.
	Length uint32
	// Oob selects main, main+spare or spare-only access (NAND only).
	Oob OobMode
	// Ecc is the error-correction policy (NAND only). Zero value means
	// ECC disabled, raw access.
	Ecc EccPolicy
	// BadBlocks selects the bad block strategy (NAND only).
	BadBlocks BadBlockStrategy
	// Retries is the number of re-attempts after transport or timeout
	// failures; the operation runs at most Retries+1 times.
	Retries int
}

// WriteRequest describes one logical write.
type WriteRequest struct {
	// Address is the starting byte offset. NAND writes must be
	// page-aligned.
	Address Address
	// Data is the payload.
	Data []byte
	// Verify re-reads the written range afterwards and byte-compares.
	Verify bool
	// Oob selects main, main+spare or spare-only access (NAND only).
	Oob OobMode
	// Ecc is the error-correction policy (NAND only).
	Ecc EccPolicy
	// BadBlocks selects the bad block strategy (NAND only).
	BadBlocks BadBlockStrategy
	// Retries bounds re-attempts after transport or timeout failures.
	Retries int
}

// EraseRequest describes one logical erase. Address and Length must be
// block-aligned for block-erase media.
type EraseRequest struct {
	// Address is the starting byte offset.
	Address Address
	// Length is the number of bytes to erase.
	Length uint32
	// BadBlocks selects the bad block strategy (NAND only).
	BadBlocks BadBlockStrategy
	// Retries bounds re-attempts after transport or timeout failures.
	Retries int
}

// Validate checks the request against a layout.
func (r ReadRequest) Validate(layout ChipLayout) error {
	if r.Length == 0 {
		return fmt.Errorf("%w: zero-length read", ErrInvalidRequest)
	}
	if r.Oob == OobNone && uint32(r.Address)+r.Length > layout.Capacity {
		return fmt.Errorf("%w: read of %d bytes at 0x%06X exceeds capacity %d",
			ErrInvalidRequest, r.Length, uint32(r.Address), layout.Capacity)
	}
	if r.Oob != OobNone && layout.Family != FamilyNAND {
		return fmt.Errorf("%w: OOB access on non-NAND media", ErrInvalidRequest)
	}
	return nil
}

// Validate checks the request against a layout.
func (r WriteRequest) Validate(layout ChipLayout) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("%w: empty write", ErrInvalidRequest)
	}
	if r.Oob == OobNone && uint32(r.Address)+uint32(len(r.Data)) > layout.Capacity {
		return fmt.Errorf("%w: write of %d bytes at 0x%06X exceeds capacity %d",
			ErrInvalidRequest, len(r.Data), uint32(r.Address), layout.Capacity)
	}
	if r.Oob != OobNone && layout.Family != FamilyNAND {
		return fmt.Errorf("%w: OOB access on non-NAND media", ErrInvalidRequest)
	}
	if layout.Family == FamilyNAND && uint32(r.Address)%layout.PageSize != 0 {
		return fmt.Errorf("%w: NAND write address 0x%06X not page-aligned",
			ErrInvalidRequest, uint32(r.Address))
	}
	return nil
}

// Validate checks the request against a layout.
func (r EraseRequest) Validate(layout ChipLayout) error {
	if r.Length == 0 {
		return fmt.Errorf("%w: zero-length erase", ErrInvalidRequest)
	}
	if uint32(r.Address)+r.Length > layout.Capacity {
		return fmt.Errorf("%w: erase of %d bytes at 0x%06X exceeds capacity %d",
			ErrInvalidRequest, r.Length, uint32(r.Address), layout.Capacity)
	}
	if layout.BlockSize > 0 && uint32(r.Address)%layout.BlockSize != 0 {
		return fmt.Errorf("%w: erase address 0x%06X not block-aligned",
			ErrInvalidRequest, uint32(r.Address))
	}
	return nil
}
