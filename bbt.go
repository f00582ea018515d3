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

// BlockStatus is the per-block state tracked by a BadBlockTable.
type BlockStatus uint8

const (
	// BlockUnknown means the block has not been probed yet.
	BlockUnknown BlockStatus = iota
	// BlockGood means the factory marker probe found the block usable.
	BlockGood
	// BlockBadFactory means the factory bad-block marker is set.
	BlockBadFactory
	// BlockBadRuntime means a program/erase failed on this block after
	// shipment.
	BlockBadRuntime
)

// String returns the status name.
func (s BlockStatus) String() string {
	switch s {
	case BlockUnknown:
		return "unknown"
	case BlockGood:
		return "good"
	case BlockBadFactory:
		return "bad (factory)"
	case BlockBadRuntime:
		return "bad (runtime)"
	default:
		return fmt.Sprintf("BlockStatus(%d)", uint8(s))
	}
}

// IsBad reports whether the status excludes the block from use.
func (s BlockStatus) IsBad() bool {
	return s == BlockBadFactory || s == BlockBadRuntime
}

// BadBlockTable holds per-block status for NAND media. It is mutably owned
// by exactly one in-flight operation at a time; callers sharing a table
// across operations must serialize access themselves — the table does no
// internal locking.
type BadBlockTable struct {
	status []BlockStatus
}

// NewBadBlockTable creates a table with all blocks Unknown.
func NewBadBlockTable(blocks uint32) *BadBlockTable {
	return &BadBlockTable{status: make([]BlockStatus, blocks)}
}

// Len returns the number of tracked blocks.
func (t *BadBlockTable) Len() uint32 {
	return uint32(len(t.status))
}

// Status returns the recorded status for a block. Out-of-range indexes
// report Unknown.
func (t *BadBlockTable) Status(block uint32) BlockStatus {
	if block >= uint32(len(t.status)) {
		return BlockUnknown
	}
	return t.status[block]
}

// Mark records a single block status.
func (t *BadBlockTable) Mark(block uint32, status BlockStatus) {
	if block < uint32(len(t.status)) {
		t.status[block] = status
	}
}

// IsBad reports whether a block is recorded as bad (factory or runtime).
func (t *BadBlockTable) IsBad(block uint32) bool {
	return t.Status(block).IsBad()
}

// NextGood returns the first block at or after start that is not recorded
// bad, and false when no such block exists.
func (t *BadBlockTable) NextGood(start uint32) (uint32, bool) {
	for b := start; b < uint32(len(t.status)); b++ {
		if !t.status[b].IsBad() {
			return b, true
		}
	}
	return 0, false
}

// BadCount returns the number of blocks recorded bad.
func (t *BadBlockTable) BadCount() uint32 {
	var n uint32
	for _, s := range t.status {
		if s.IsBad() {
			n++
		}
	}
	return n
}

// BadBlocks returns the indexes of all blocks recorded bad, in order.
func (t *BadBlockTable) BadBlocks() []uint32 {
	var out []uint32
	for b, s := range t.status {
		if s.IsBad() {
			out = append(out, uint32(b))
		}
	}
	return out
}

// Export serializes the table as one status code per block index, in
// block order. The format carries no header; the block count is implied
// by the chip geometry.
func (t *BadBlockTable) Export() []byte {
	out := make([]byte, len(t.status))
	for i, s := range t.status {
		out[i] = byte(s)
	}
	return out
}

// ImportBadBlockTable rebuilds a table from its Export form. The data
// length must equal the chip's block count.
func ImportBadBlockTable(data []byte, layout ChipLayout) (*BadBlockTable, error) {
	blocks := layout.BlockCount()
	if uint32(len(data)) != blocks {
		return nil, fmt.Errorf("%w: table holds %d blocks, chip has %d",
			ErrFormatMismatch, len(data), blocks)
	}
	t := NewBadBlockTable(blocks)
	for i, b := range data {
		if b > byte(BlockBadRuntime) {
			return nil, fmt.Errorf("%w: invalid status code %d at block %d",
				ErrFormatMismatch, b, i)
		}
		t.status[i] = BlockStatus(b)
	}
	return t, nil
}

// MarkerProbe identifies one factory bad-block marker byte to check:
// a page index relative to the block start and a column offset within the
// raw page.
type MarkerProbe struct {
	Page   uint32
	Column uint32
}

// MarkerScheme locates factory bad-block markers. The common convention is
// covered by DefaultMarkerScheme; manufacturers with different marker
// placement (e.g. last-page markers) can provide their own scheme.
type MarkerScheme interface {
	// Probes returns the marker bytes to check for a block. A block is
	// factory-bad when any probed byte differs from 0xFF.
	Probes(layout ChipLayout) []MarkerProbe
}

// DefaultMarkerScheme checks the first OOB byte of the first and second
// page of each block.
type DefaultMarkerScheme struct{}

// Probes implements MarkerScheme.
func (DefaultMarkerScheme) Probes(layout ChipLayout) []MarkerProbe {
	return []MarkerProbe{
		{Page: 0, Column: layout.PageSize},
		{Page: 1, Column: layout.PageSize},
	}
}
