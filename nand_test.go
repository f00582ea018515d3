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

package nander_test

import (
	"testing"

	nander "github.com/NanderProject/go-nander"
	"github.com/NanderProject/go-nander/internal/simulate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNANDFixture(t *testing.T) (*simulate.NAND, nander.FlashEngine) {
	t.Helper()
	layout := testNANDLayout()
	sim := simulate.NewNAND(layout, layout.ID)
	engine, err := nander.NewEngine(sim, layout)
	require.NoError(t, err)
	return sim, engine
}

// pattern fills n bytes with a deterministic non-trivial sequence.
func pattern(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i*7)
	}
	return out
}

func TestNANDWriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	_, engine := newNANDFixture(t)
	layout := engine.Layout()

	// Two and a half pages, crossing a page boundary mid-write.
	data := pattern(int(layout.PageSize*2+100), 0x11)
	err := engine.Write(nander.WriteRequest{Data: data}, nil)
	require.NoError(t, err)

	got, err := engine.Read(nander.ReadRequest{Length: uint32(len(data))}, nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestNANDReadAtOffset(t *testing.T) {
	t.Parallel()

	_, engine := newNANDFixture(t)
	layout := engine.Layout()

	data := pattern(int(layout.PageSize), 0x42)
	require.NoError(t, engine.Write(nander.WriteRequest{
		Address: nander.PageAddress(2, layout),
		Data:    data,
	}, nil))

	// Unaligned read window inside the written page.
	got, err := engine.Read(nander.ReadRequest{
		Address: nander.PageAddress(2, layout) + 10,
		Length:  100,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, data[10:110], got)
}

func TestNANDEraseRestoresFF(t *testing.T) {
	t.Parallel()

	_, engine := newNANDFixture(t)
	layout := engine.Layout()

	data := pattern(int(layout.BlockSize), 0x01)
	require.NoError(t, engine.Write(nander.WriteRequest{Data: data}, nil))

	require.NoError(t, engine.Erase(nander.EraseRequest{Length: layout.BlockSize}, nil))

	got, err := engine.Read(nander.ReadRequest{Length: layout.BlockSize}, nil)
	require.NoError(t, err)
	for i, b := range got {
		require.Equal(t, byte(0xFF), b, "byte %d not erased", i)
	}
}

func TestNANDProgramFailure(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()
	sim.FailProgramInBlock(0)

	err := engine.Write(nander.WriteRequest{Data: pattern(int(layout.PageSize), 0)}, nil)
	var perr *nander.ProgramError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, uint32(0), perr.Block)
}

func TestNANDEraseFailure(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()
	sim.FailEraseInBlock(1)

	err := engine.Erase(nander.EraseRequest{
		Address: nander.BlockAddress(1, layout),
		Length:  layout.BlockSize,
	}, nil)
	var eerr *nander.EraseError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, uint32(1), eerr.Block)
}

func TestNANDBadBlockFailStrategy(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()
	sim.MarkBadFactory(0)

	_, err := engine.Read(nander.ReadRequest{Length: layout.PageSize}, nil)
	var bbe *nander.BadBlockError
	require.ErrorAs(t, err, &bbe)
	assert.Equal(t, uint32(0), bbe.Block)
}

// Writing across a factory bad block with the skip strategy must place the
// data contiguously in the good blocks and leave the bad block untouched.
func TestNANDBadBlockSkipContinuity(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()
	sim.MarkBadFactory(1)

	data := pattern(int(layout.BlockSize*2), 0x33)
	require.NoError(t, engine.Write(nander.WriteRequest{
		Data:      data,
		BadBlocks: nander.BadBlockSkip,
	}, nil))

	got, err := engine.Read(nander.ReadRequest{
		Length:    uint32(len(data)),
		BadBlocks: nander.BadBlockSkip,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Block 1 pages stay erased; the data flowed into block 2 instead.
	firstSkipped := sim.PageData(layout.PagesPerBlock())
	for i := uint32(0); i < layout.PageSize; i++ {
		require.Equal(t, byte(0xFF), firstSkipped[i])
	}
	inBlock2 := sim.PageData(2 * layout.PagesPerBlock())
	assert.Equal(t, data[layout.BlockSize:layout.BlockSize+layout.PageSize],
		inBlock2[:layout.PageSize])
}

func TestNANDEccErrorSurfaces(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()
	sim.SetEccStatus(0, 0x30) // uncorrectable

	req := nander.ReadRequest{
		Length: layout.PageSize,
		Ecc:    nander.EccPolicy{Enabled: true},
	}
	_, err := engine.Read(req, nil)
	var ecc *nander.EccError
	require.ErrorAs(t, err, &ecc)
	assert.Equal(t, nander.Address(0), ecc.Address)

	// Same page, ignore policy: data comes back anyway.
	req.Ecc.IgnoreErrors = true
	got, err := engine.Read(req, nil)
	require.NoError(t, err)
	assert.Len(t, got, int(layout.PageSize))

	// Raw access bypasses the ECC engine entirely.
	raw := nander.ReadRequest{Length: layout.PageSize}
	_, err = engine.Read(raw, nil)
	require.NoError(t, err)
}

func TestNANDCorrectedEccIsNotAnError(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()
	sim.SetEccStatus(0, 0x10) // corrected

	_, err := engine.Read(nander.ReadRequest{
		Length: layout.PageSize,
		Ecc:    nander.EccPolicy{Enabled: true},
	}, nil)
	assert.NoError(t, err)
}

func TestNANDOobAccess(t *testing.T) {
	t.Parallel()

	_, engine := newNANDFixture(t)
	layout := engine.Layout()

	// Raw page: main area plus spare in one write.
	raw := pattern(int(layout.RawPageSize()), 0x55)
	require.NoError(t, engine.Write(nander.WriteRequest{
		Data: raw,
		Oob:  nander.OobIncluded,
	}, nil))

	spare, err := engine.Read(nander.ReadRequest{
		Length: layout.OOBSize,
		Oob:    nander.OobOnly,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, raw[layout.PageSize:], spare)

	full, err := engine.Read(nander.ReadRequest{
		Length: layout.RawPageSize(),
		Oob:    nander.OobIncluded,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, full)
}

func TestNANDOobReadRequiresAlignment(t *testing.T) {
	t.Parallel()

	_, engine := newNANDFixture(t)
	_, err := engine.Read(nander.ReadRequest{
		Address: 3,
		Length:  16,
		Oob:     nander.OobOnly,
	}, nil)
	assert.ErrorIs(t, err, nander.ErrInvalidRequest)
}

func TestNANDScanBadBlocks(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()
	sim.MarkBadFactory(2)
	sim.MarkBadFactory(5)

	var reports []nander.Progress
	bbt, err := engine.ScanBadBlocks(func(p nander.Progress) { reports = append(reports, p) })
	require.NoError(t, err)

	assert.Equal(t, []uint32{2, 5}, bbt.BadBlocks())
	assert.Equal(t, nander.BlockGood, bbt.Status(0))
	require.NotEmpty(t, reports)
	assert.Equal(t, uint64(layout.BlockCount()), reports[len(reports)-1].Current)
}

func TestNANDMarkBad(t *testing.T) {
	t.Parallel()

	sim, engine := newNANDFixture(t)
	layout := engine.Layout()

	require.NoError(t, engine.MarkBad(1))

	// Marker byte in the first spare byte of the block's first page.
	page := sim.PageData(layout.PagesPerBlock())
	assert.Equal(t, byte(0x00), page[layout.PageSize])

	// A fresh scan now reports the block bad.
	bbt, err := engine.ScanBadBlocks(nil)
	require.NoError(t, err)
	assert.True(t, bbt.IsBad(1))

	assert.ErrorIs(t, engine.MarkBad(layout.BlockCount()), nander.ErrInvalidRequest)
}

func TestNANDStatusRegisters(t *testing.T) {
	t.Parallel()

	_, engine := newNANDFixture(t)

	require.NoError(t, engine.WriteStatus([]byte{0x38}))
	status, err := engine.ReadStatus()
	require.NoError(t, err)
	require.Len(t, status, 2)
}
